// Package snapshot persists raw aggregator snapshots and the refresh log.
package snapshot

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no snapshot or refresh record matches.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for empty names or content that is not JSON.
	ErrInvalidInput = errors.New("invalid input")
)

// Snapshot is one stored raw document. Content is the JSON document as saved.
type Snapshot struct {
	Name      string
	Timestamp time.Time
	Content   []byte
}

// Refresh is one row of the refresh log.
type Refresh struct {
	At           time.Time
	Snapshot     string
	Transactions int
}

// Store is implemented by every snapshot backend.
type Store interface {
	// Save stores content under name, stamped with the current time.
	Save(ctx context.Context, name string, content []byte) (Snapshot, error)
	// Latest returns the newest snapshot whose name starts with prefix,
	// compared case-insensitively.
	Latest(ctx context.Context, prefix string) (Snapshot, error)
	// Head is Latest without Content. It identifies the newest snapshot
	// without loading the document.
	Head(ctx context.Context, prefix string) (Snapshot, error)
	// LogRefresh appends r to the refresh log.
	LogRefresh(ctx context.Context, r Refresh) error
	// LastRefresh returns the most recent refresh log row.
	LastRefresh(ctx context.Context) (Refresh, error)
	Close() error
}
