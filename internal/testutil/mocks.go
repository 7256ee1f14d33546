package testutil

import (
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (e LogEntry) Message() string {
	return fmt.Sprintf(e.Format, e.Args...)
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Contains reports whether a message of the given level contains substr.
func (m *MockLogger) Contains(level, substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Logs {
		if e.Level == level && strings.Contains(e.Message(), substr) {
			return true
		}
	}
	return false
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu          sync.Mutex
	Data        map[string][]byte
	Invalidated int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Invalidate(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invalidated++
	if len(keys) == 0 {
		m.Data = make(map[string][]byte)
		return
	}
	for _, k := range keys {
		delete(m.Data, k)
	}
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
	Closed       bool
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	// Default: return as-is (identity)
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {
	m.Closed = true
}

// MockStore implements interfaces.StoreInterface in memory with the same
// staging rules as the file backed store.
type MockStore struct {
	mu         sync.Mutex
	Due        []*models.Subscription
	LoadErrs   []error
	Watermarks map[string]time.Time
	PersistErr error
	Persisted  int

	pending map[string]time.Time
	held    map[string]bool
}

func NewMockStore(due ...*models.Subscription) *MockStore {
	return &MockStore{Due: due, Watermarks: map[string]time.Time{}}
}

func (m *MockStore) Restore() error { return nil }

func (m *MockStore) LoadDue(_ time.Time) ([]*models.Subscription, []error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Due, m.LoadErrs
}

func (m *MockStore) Advance(source string, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[source] {
		return
	}
	if m.pending == nil {
		m.pending = map[string]time.Time{}
	}
	m.pending[source] = models.TruncateToMinute(ts)
}

func (m *MockStore) Hold(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = map[string]bool{}
	}
	m.held[source] = true
	delete(m.pending, source)
}

func (m *MockStore) Commit() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var advanced []string
	for source, ts := range m.pending {
		m.Watermarks[source] = ts
		advanced = append(advanced, source)
	}
	sort.Strings(advanced)
	m.pending = nil
	m.held = nil
	return advanced
}

func (m *MockStore) Persist() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
	return m.PersistErr
}

func (m *MockStore) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.Watermarks))
	for k, v := range m.Watermarks {
		out[k] = v.Format(models.WatermarkLayout)
	}
	return out
}
