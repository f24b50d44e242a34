package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/accounts"
)

// Files written by Disk.
const (
	diskKeyFile      = "ledger.key"
	diskLedgerFile   = "ledger.csv"
	diskAccountsFile = "accounts.csv"
)

// Disk persists one derived ledger as CSV next to a key file naming the
// snapshots it came from.
type Disk struct {
	dir string
}

// NewDisk returns a Disk writing under dir.
func NewDisk(dir string) *Disk {
	return &Disk{dir: dir}
}

// Load returns the stored ledger when it was derived from key. A missing
// cache or a different key reports false with no error.
func (d *Disk) Load(key Key) (*Ledger, bool, error) {
	stored, err := os.ReadFile(filepath.Join(d.dir, diskKeyFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading ledger key: %w", err)
	}
	if Key(strings.TrimSpace(string(stored))) != key {
		return nil, false, nil
	}

	f, err := os.Open(filepath.Join(d.dir, diskLedgerFile))
	if err != nil {
		return nil, false, fmt.Errorf("opening cached ledger: %w", err)
	}
	defer f.Close()
	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, false, fmt.Errorf("reading cached ledger: %w", err)
	}

	svc, err := accounts.Load(filepath.Join(d.dir, diskAccountsFile))
	if err != nil {
		return nil, false, err
	}
	return &Ledger{Key: key, Transactions: txns, Accounts: svc.All()}, true, nil
}

// Save replaces the stored ledger. The key file is written last, so an
// interrupted save never matches.
func (d *Disk) Save(l *Ledger) error {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.Remove(filepath.Join(d.dir, diskKeyFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clearing ledger key: %w", err)
	}

	f, err := os.Create(filepath.Join(d.dir, diskLedgerFile))
	if err != nil {
		return fmt.Errorf("creating cached ledger: %w", err)
	}
	if err := WriteTransactions(f, l.Transactions); err != nil {
		f.Close()
		return fmt.Errorf("writing cached ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing cached ledger: %w", err)
	}

	if err := accounts.NewService(l.Accounts).Save(filepath.Join(d.dir, diskAccountsFile)); err != nil {
		return err
	}

	tmp := filepath.Join(d.dir, diskKeyFile+".tmp")
	if err := os.WriteFile(tmp, []byte(string(l.Key)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing ledger key: %w", err)
	}
	return os.Rename(tmp, filepath.Join(d.dir, diskKeyFile))
}
