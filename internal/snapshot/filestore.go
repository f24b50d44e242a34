package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/id"
)

// SnapshotDir is the default directory, relative to the project root,
// holding snapshot envelopes.
const SnapshotDir = "snapshots"

type envelope struct {
	Name      string          `json:"name"`
	Timestamp time.Time       `json:"timestamp"`
	Content   json.RawMessage `json:"content"`
}

// FileStore keeps one JSON envelope per snapshot name under dir and the
// refresh log under <root>/logs.
type FileStore struct {
	root string
	dir  string
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileStore returns a store rooted at the project directory root.
// dir is the snapshot directory, relative to root unless absolute.
func NewFileStore(root, dir string) *FileStore {
	if dir == "" {
		dir = SnapshotDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return &FileStore{root: root, dir: dir, now: time.Now}
}

// Save writes content to <dir>/<name>.json. Saving an existing name
// replaces it.
func (s *FileStore) Save(ctx context.Context, name string, content []byte) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, `/\`) {
		return Snapshot{}, fmt.Errorf("%w: snapshot name %q", ErrInvalidInput, name)
	}
	if !json.Valid(content) {
		return Snapshot{}, fmt.Errorf("%w: snapshot %s content is not JSON", ErrInvalidInput, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Snapshot{}, fmt.Errorf("creating snapshot dir: %w", err)
	}

	env := envelope{Name: name, Timestamp: s.now().UTC(), Content: content}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encoding snapshot %s: %w", name, err)
	}

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return Snapshot{}, fmt.Errorf("writing snapshot %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return Snapshot{}, fmt.Errorf("writing snapshot %s: %w", name, err)
	}

	return Snapshot{Name: name, Timestamp: env.Timestamp, Content: content}, nil
}

// Latest scans the snapshot directory for the newest matching envelope.
func (s *FileStore) Latest(ctx context.Context, prefix string) (Snapshot, error) {
	return s.newest(ctx, prefix, readEnvelope)
}

// Head is Latest reading only each envelope's name and timestamp.
func (s *FileStore) Head(ctx context.Context, prefix string) (Snapshot, error) {
	return s.newest(ctx, prefix, readHeader)
}

func (s *FileStore) newest(ctx context.Context, prefix string, read func(string) (*envelope, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("snapshot %q: %w", prefix, ErrNotFound)
		}
		return Snapshot{}, fmt.Errorf("reading snapshot dir: %w", err)
	}

	var best *envelope
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || !id.HasPrefix(name, prefix) {
			continue
		}
		env, err := read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return Snapshot{}, err
		}
		if best == nil || env.Timestamp.After(best.Timestamp) {
			best = env
		}
	}

	if best == nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: %w", prefix, ErrNotFound)
	}
	return Snapshot{Name: best.Name, Timestamp: best.Timestamp, Content: best.Content}, nil
}

// LogRefresh appends r to logs/refresh-log.csv.
func (s *FileStore) LogRefresh(ctx context.Context, r Refresh) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendRefresh(s.root, r)
}

// LastRefresh returns the refresh log row with the latest timestamp.
func (s *FileStore) LastRefresh(ctx context.Context) (Refresh, error) {
	if err := ctx.Err(); err != nil {
		return Refresh{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := readRefreshLog(s.root)
	if err != nil {
		return Refresh{}, err
	}
	if len(rows) == 0 {
		return Refresh{}, fmt.Errorf("refresh log: %w", ErrNotFound)
	}

	last := rows[0]
	for _, r := range rows[1:] {
		if !r.At.Before(last.At) {
			last = r
		}
	}
	return last, nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func readEnvelope(path string) (*envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", filepath.Base(path), err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", filepath.Base(path), err)
	}
	return &env, nil
}

// readHeader decodes name and timestamp, stopping before content. Save
// writes the fields in that order.
func readHeader(path string) (*envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	malformed := func(err error) error {
		return fmt.Errorf("decoding snapshot %s: %w", filepath.Base(path), err)
	}

	dec := json.NewDecoder(f)
	if tok, err := dec.Token(); err != nil {
		return nil, malformed(err)
	} else if tok != json.Delim('{') {
		return nil, malformed(fmt.Errorf("expected object, got %v", tok))
	}

	var env envelope
	seen := 0
	for seen < 2 && dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		switch tok {
		case "name":
			err = dec.Decode(&env.Name)
			seen++
		case "timestamp":
			err = dec.Decode(&env.Timestamp)
			seen++
		default:
			var skip json.RawMessage
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, malformed(err)
		}
	}
	return &env, nil
}
