// Package ledger derives the merged transaction ledger from the newest
// checking and credit snapshots.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/plaid"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

// ErrNoSnapshots is returned when neither feed has a stored snapshot.
var ErrNoSnapshots = errors.New("no snapshots imported yet")

// Ledger is the merged view over one checking and one credit snapshot.
type Ledger struct {
	Key          Key
	Transactions []model.Transaction
	Accounts     []model.Account
}

// Key identifies the snapshots a ledger was derived from.
type Key string

// KeyOf returns the identity of a snapshot pair. Nil snapshots contribute
// an empty slot.
func KeyOf(checking, credit *snapshot.Snapshot) Key {
	part := func(s *snapshot.Snapshot) string {
		if s == nil {
			return "-"
		}
		return s.Name + "@" + s.Timestamp.UTC().Format("20060102T150405.000000000")
	}
	return Key(part(checking) + "|" + part(credit))
}

// Build decodes both snapshots, tags each transaction with its source and
// merges them ordered by date. Either snapshot may be nil.
func Build(checking, credit *snapshot.Snapshot) (*Ledger, error) {
	if checking == nil && credit == nil {
		return nil, ErrNoSnapshots
	}

	l := &Ledger{Key: KeyOf(checking, credit)}
	for _, in := range []struct {
		snap   *snapshot.Snapshot
		source model.AccountSource
	}{
		{checking, model.SourceChecking},
		{credit, model.SourceCredit},
	} {
		if in.snap == nil {
			continue
		}
		doc, err := plaid.DecodeBytes(in.snap.Content)
		if err != nil {
			return nil, fmt.Errorf("decoding snapshot %s: %w", in.snap.Name, err)
		}
		l.Transactions = append(l.Transactions, doc.LedgerTransactions(in.source)...)
		l.Accounts = MergeAccounts(l.Accounts, doc.LedgerAccounts())
	}

	sort.SliceStable(l.Transactions, func(i, j int) bool {
		return l.Transactions[i].Date.Before(l.Transactions[j].Date)
	})
	return l, nil
}

// Latest fetches the newest snapshot for each source. A source with no
// snapshot yields nil.
func Latest(ctx context.Context, store snapshot.Store) (checking, credit *snapshot.Snapshot, err error) {
	return newest(ctx, store.Latest)
}

// Heads is Latest without snapshot content. KeyOf over the heads equals
// the key of the ledger Build would derive.
func Heads(ctx context.Context, store snapshot.Store) (checking, credit *snapshot.Snapshot, err error) {
	return newest(ctx, store.Head)
}

func newest(ctx context.Context, get func(context.Context, string) (snapshot.Snapshot, error)) (checking, credit *snapshot.Snapshot, err error) {
	fetch := func(source model.AccountSource) (*snapshot.Snapshot, error) {
		s, err := get(ctx, string(source)+"_")
		if errors.Is(err, snapshot.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("loading %s snapshot: %w", source, err)
		}
		return &s, nil
	}

	if checking, err = fetch(model.SourceChecking); err != nil {
		return nil, nil, err
	}
	if credit, err = fetch(model.SourceCredit); err != nil {
		return nil, nil, err
	}
	return checking, credit, nil
}

// Snapshots returns the snapshot names encoded in the key.
func (k Key) Snapshots() []string {
	var out []string
	for _, part := range strings.Split(string(k), "|") {
		if name, _, ok := strings.Cut(part, "@"); ok {
			out = append(out, name)
		}
	}
	return out
}
