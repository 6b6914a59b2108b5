package testutil

import (
	"context"
	"sync"
	"time"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
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

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu       sync.Mutex
	Data     map[string][]byte
	Deleted  []string
	versions map[string]uint64
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

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
	m.Deleted = append(m.Deleted, key)
	if m.versions == nil {
		m.versions = make(map[string]uint64)
	}
	m.versions[key]++
}

func (m *MockCache) Version(key string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[key]
}

func (m *MockCache) SetIfVersion(key string, value []byte, version uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.versions[key] != version {
		return false
	}
	m.Data[key] = value
	return true
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
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

// MockMetrics implements providers.MetricsProviderInterface and counts archive outcomes.
type MockMetrics struct {
	mu               sync.Mutex
	Requests         int
	CacheHits        int
	CacheMisses      int
	ReportsIngested  int
	StoreOps         []string
	ArchiveOutcomes  map[string]int
	SnapshotObserved int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObserveStoreDuration(op string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreOps = append(m.StoreOps, op)
}

func (m *MockMetrics) IncReportsIngested() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportsIngested++
}

func (m *MockMetrics) IncArchiveOutcome(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ArchiveOutcomes == nil {
		m.ArchiveOutcomes = make(map[string]int)
	}
	m.ArchiveOutcomes[outcome]++
}

func (m *MockMetrics) ObserveSnapshotDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SnapshotObserved++
}

func (m *MockMetrics) Outcome(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ArchiveOutcomes[outcome]
}

type activeStore interface {
	Append(ctx context.Context, report *models.PositionReport) error
	Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error)
	AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error)
	Clear(ctx context.Context, flightID string) error
}

type archiveStore interface {
	Insert(ctx context.Context, flight *models.ArchivedFlight) error
	FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error)
}

// FaultyActiveStore delegates to Next unless the matching error field is set.
type FaultyActiveStore struct {
	Next      activeStore
	AppendErr error
	LatestErr error
	AllForErr error
	ClearErr  error
	// BeforeAllFor runs inside AllFor before delegating.
	BeforeAllFor func()

	mu     sync.Mutex
	Clears int
}

func (f *FaultyActiveStore) Append(ctx context.Context, report *models.PositionReport) error {
	if f.AppendErr != nil {
		return f.AppendErr
	}
	return f.Next.Append(ctx, report)
}

func (f *FaultyActiveStore) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	if f.LatestErr != nil {
		return nil, f.LatestErr
	}
	return f.Next.Latest(ctx, flightID, atOrBefore)
}

func (f *FaultyActiveStore) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	if f.BeforeAllFor != nil {
		f.BeforeAllFor()
	}
	if f.AllForErr != nil {
		return nil, f.AllForErr
	}
	return f.Next.AllFor(ctx, flightID)
}

func (f *FaultyActiveStore) Clear(ctx context.Context, flightID string) error {
	f.mu.Lock()
	f.Clears++
	f.mu.Unlock()
	if f.ClearErr != nil {
		return f.ClearErr
	}
	return f.Next.Clear(ctx, flightID)
}

// FaultyArchiveStore delegates to Next unless the matching error field is set.
type FaultyArchiveStore struct {
	Next      archiveStore
	InsertErr error
	FindErr   error
	// AfterFind runs inside FindLatest once the result has been read.
	AfterFind func()

	mu      sync.Mutex
	Inserts int
}

func (f *FaultyArchiveStore) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	f.mu.Lock()
	f.Inserts++
	f.mu.Unlock()
	if f.InsertErr != nil {
		return f.InsertErr
	}
	return f.Next.Insert(ctx, flight)
}

func (f *FaultyArchiveStore) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	if f.FindErr != nil {
		return nil, f.FindErr
	}
	flight, err := f.Next.FindLatest(ctx, flightID)
	if hook := f.AfterFind; hook != nil {
		hook()
	}
	return flight, err
}

// MockPublisher records published archive events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []models.ArchivedFlightEvent
	Err    error
	Closed bool
}

func (m *MockPublisher) PublishArchived(_ context.Context, event models.ArchivedFlightEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

func (m *MockPublisher) Published() []models.ArchivedFlightEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ArchivedFlightEvent, len(m.Events))
	copy(out, m.Events)
	return out
}
