package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

// Store is a snapshot.Store over the json_data and refresh_log tables.
type Store struct {
	pool *Pool
	now  func() time.Time
}

var _ snapshot.Store = (*Store)(nil)

// NewStore wraps an existing pool. The caller owns migrations.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Open connects to dsn, applies migrations and returns a Store that owns
// the pool.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewStore(pool), nil
}

// Save inserts a new json_data row. Older rows with the same name are kept;
// Latest picks by timestamp.
func (s *Store) Save(ctx context.Context, name string, content []byte) (snapshot.Snapshot, error) {
	if strings.TrimSpace(name) == "" {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot name %q", snapshot.ErrInvalidInput, name)
	}
	if !json.Valid(content) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: snapshot %s content is not JSON", snapshot.ErrInvalidInput, name)
	}

	ts := s.now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO json_data (name, content, "timestamp")
		VALUES ($1, $2::jsonb, $3)
	`, name, string(content), ts)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("insert snapshot %s: %w", name, err)
	}

	return snapshot.Snapshot{Name: name, Timestamp: ts, Content: content}, nil
}

// Latest returns the newest row whose name starts with prefix, ignoring case.
func (s *Store) Latest(ctx context.Context, prefix string) (snapshot.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT name, content::text, "timestamp"
		FROM json_data
		WHERE lower(name) LIKE lower($1) || '%'
		ORDER BY "timestamp" DESC, id DESC
		LIMIT 1
	`, escapeLike(prefix))

	var (
		snap    snapshot.Snapshot
		content string
	)
	if err := row.Scan(&snap.Name, &content, &snap.Timestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot.Snapshot{}, fmt.Errorf("snapshot %q: %w", prefix, snapshot.ErrNotFound)
		}
		return snapshot.Snapshot{}, fmt.Errorf("query snapshot %q: %w", prefix, err)
	}
	snap.Content = []byte(content)
	return snap, nil
}

// Head is Latest without loading the content column.
func (s *Store) Head(ctx context.Context, prefix string) (snapshot.Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT name, "timestamp"
		FROM json_data
		WHERE lower(name) LIKE lower($1) || '%'
		ORDER BY "timestamp" DESC, id DESC
		LIMIT 1
	`, escapeLike(prefix))

	var snap snapshot.Snapshot
	if err := row.Scan(&snap.Name, &snap.Timestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot.Snapshot{}, fmt.Errorf("snapshot %q: %w", prefix, snapshot.ErrNotFound)
		}
		return snapshot.Snapshot{}, fmt.Errorf("query snapshot %q: %w", prefix, err)
	}
	return snap, nil
}

// LogRefresh inserts a refresh_log row.
func (s *Store) LogRefresh(ctx context.Context, r snapshot.Refresh) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO refresh_log (clicked_at, snapshot, transactions)
		VALUES ($1, $2, $3)
	`, r.At.UTC(), r.Snapshot, r.Transactions)
	if err != nil {
		return fmt.Errorf("insert refresh log: %w", err)
	}
	return nil
}

// LastRefresh returns the refresh_log row with the latest clicked_at.
func (s *Store) LastRefresh(ctx context.Context) (snapshot.Refresh, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT clicked_at, snapshot, transactions
		FROM refresh_log
		ORDER BY clicked_at DESC, id DESC
		LIMIT 1
	`)

	var r snapshot.Refresh
	if err := row.Scan(&r.At, &r.Snapshot, &r.Transactions); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return snapshot.Refresh{}, fmt.Errorf("refresh log: %w", snapshot.ErrNotFound)
		}
		return snapshot.Refresh{}, fmt.Errorf("query refresh log: %w", err)
	}
	return r, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
