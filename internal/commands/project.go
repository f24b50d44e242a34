package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/config"
	"github.com/ledgerlens/ledgerlens/internal/ledger"
	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/refresh"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
	"github.com/ledgerlens/ledgerlens/internal/snapshot/postgres"
	"github.com/ledgerlens/ledgerlens/internal/subscriptions"
)

// project is a loaded ledgerlens directory. The store is opened on demand
// and closed by Close.
type project struct {
	root  string
	cfg   *config.Config
	log   logging.Logger
	store snapshot.Store
}

// loadProject reads <repo>/ledgerlens.yaml. With allowMissing, a missing
// config file falls back to the defaults.
func loadProject(cmd *cobra.Command, repoDir string, allowMissing bool) (*project, error) {
	root, err := filepath.Abs(repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		if !allowMissing || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.Default("")
	}

	return &project{
		root: root,
		cfg:  cfg,
		log:  newLogger(cmd.ErrOrStderr(), cfg),
	}, nil
}

// openProject loads the project and opens its snapshot store.
func openProject(ctx context.Context, cmd *cobra.Command, repoDir string) (*project, error) {
	p, err := loadProject(cmd, repoDir, false)
	if err != nil {
		return nil, err
	}
	if err := p.openStore(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *project) openStore(ctx context.Context) error {
	switch p.cfg.Storage.Backend {
	case config.BackendPostgres:
		store, err := postgres.Open(ctx, p.cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("opening postgres store: %w", err)
		}
		p.store = store
	default:
		p.store = snapshot.NewFileStore(p.root, p.cfg.Storage.SnapshotDir)
	}
	p.log.WithField(logging.FieldBackend, p.cfg.Storage.Backend).Debug("Snapshot store opened")
	return nil
}

// Close releases the store, if one was opened.
func (p *project) Close() error {
	if p.store == nil {
		return nil
	}
	return p.store.Close()
}

func (p *project) detectorOptions() (subscriptions.Options, error) {
	d := p.cfg.Detector
	delta, err := d.PriceDelta()
	if err != nil {
		return subscriptions.Options{}, err
	}
	opts := subscriptions.DefaultOptions()
	opts.MinGapDays = d.MinGapDays
	opts.MaxGapDays = d.MaxGapDays
	opts.MaxPriceDelta = delta
	opts.GroupBlankMerchants = d.GroupBlankMerchants
	return opts, nil
}

// ledgerDisk is the on-disk ledger cache, or nil when storage.cache_dir
// is empty.
func (p *project) ledgerDisk() *ledger.Disk {
	dir := p.cfg.Storage.CacheDir
	if dir == "" {
		return nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(p.root, dir)
	}
	return ledger.NewDisk(dir)
}

// refreshStatus reads the refresh log and warns when the data is older
// than refresh.max_age_days.
func (p *project) refreshStatus(ctx context.Context) (refresh.Status, error) {
	status, err := refresh.NewRecorder(p.store, p.log).Status(ctx)
	if err != nil {
		return refresh.Status{}, err
	}
	if days := p.cfg.Refresh.MaxAgeDays; days > 0 && status.Stale(time.Duration(days)*24*time.Hour) {
		p.log.WithField("max_age_days", days).Warn("Snapshots are stale, run ledgerlens import")
	}
	return status, nil
}

func newLogger(w io.Writer, cfg *config.Config) logging.Logger {
	return logging.NewLogrusAdapter(w, cfg.Log.Level, cfg.Log.Format)
}

// createOutput opens path for writing, creating parent directories. "-"
// is stdout.
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
