package logging

import "sync"

// LogEntry is one entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// MockLogger records entries for assertions in tests. Loggers derived with
// With* share the parent's entry list.
type MockLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	err     error
	fields  []Field
}

// NewMockLogger returns a MockLogger that is safe to share between goroutines.
func NewMockLogger() *MockLogger {
	m := &MockLogger{}
	m.init()
	return m
}

func (m *MockLogger) init() {
	if m.mu == nil {
		m.mu = &sync.Mutex{}
		m.entries = &[]LogEntry{}
	}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	m.init()
	all := append(append([]Field{}, m.fields...), fields...)
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = append(*m.entries, LogEntry{Level: level, Message: msg, Fields: all, Error: m.err})
}

func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...Field)  { m.record("INFO", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...Field)  { m.record("WARN", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

func (m *MockLogger) WithError(err error) Logger {
	m.init()
	return &MockLogger{mu: m.mu, entries: m.entries, err: err, fields: m.fields}
}

func (m *MockLogger) WithField(key string, value any) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

func (m *MockLogger) WithFields(fields ...Field) Logger {
	m.init()
	all := append(append([]Field{}, m.fields...), fields...)
	return &MockLogger{mu: m.mu, entries: m.entries, err: m.err, fields: all}
}

// Entries returns a copy of everything logged so far.
func (m *MockLogger) Entries() []LogEntry {
	m.init()
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry{}, *m.entries...)
}

// EntriesByLevel returns captured entries of one level.
func (m *MockLogger) EntriesByLevel(level string) []LogEntry {
	var out []LogEntry
	for _, e := range m.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasEntry reports whether an entry with level and message was logged.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, e := range m.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}
