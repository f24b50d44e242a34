// Package refresh records when snapshots were pulled and reports staleness.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

// Status describes the last refresh. Known is false when nothing has
// been logged yet.
type Status struct {
	Known bool
	Last  snapshot.Refresh
	Age   time.Duration
}

// Recorder writes and reads the refresh log through a snapshot store.
type Recorder struct {
	store snapshot.Store
	log   logging.Logger
	now   func() time.Time
}

// NewRecorder returns a Recorder backed by store.
func NewRecorder(store snapshot.Store, log logging.Logger) *Recorder {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Recorder{store: store, log: log, now: time.Now}
}

// Record logs that snap was refreshed with count transactions.
func (r *Recorder) Record(ctx context.Context, snap string, count int) error {
	entry := snapshot.Refresh{At: r.now().UTC(), Snapshot: snap, Transactions: count}
	if err := r.store.LogRefresh(ctx, entry); err != nil {
		return fmt.Errorf("logging refresh of %s: %w", snap, err)
	}
	r.log.WithFields(
		logging.F(logging.FieldSnapshot, snap),
		logging.F(logging.FieldCount, count),
	).Info("Refresh recorded")
	return nil
}

// Status returns the last refresh and how long ago it happened.
func (r *Recorder) Status(ctx context.Context) (Status, error) {
	last, err := r.store.LastRefresh(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("reading last refresh: %w", err)
	}
	age := r.now().Sub(last.At)
	if age < 0 {
		age = 0
	}
	return Status{Known: true, Last: last, Age: age}, nil
}

// Stale reports whether the last refresh is older than maxAge. A log with
// no entries is always stale.
func (s Status) Stale(maxAge time.Duration) bool {
	return !s.Known || s.Age > maxAge
}

// String renders the status for CLI output.
func (s Status) String() string {
	if !s.Known {
		return "never refreshed"
	}
	return fmt.Sprintf("last refreshed %s (%s ago, %s)",
		s.Last.At.Local().Format("2006-01-02 15:04"), s.Age.Truncate(time.Minute), s.Last.Snapshot)
}
