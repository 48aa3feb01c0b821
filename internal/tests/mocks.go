package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// ──────────────────────────────────────────────
// FAKE CLOCK
// ──────────────────────────────────────────────

// FakeClock is a manually advanced clock for deterministic timing tests.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a fake clock at a fixed starting instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ──────────────────────────────────────────────
// MOCK SNAPSHOT STORE
// ──────────────────────────────────────────────

// MockSnapshotStore is a mock implementation of SnapshotStore.
type MockSnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.TripState

	// Counters for verification
	SaveCallCount  int32
	LoadCallCount  int32
	ClearCallCount int32

	// Error injection
	SaveError  error
	LoadError  error
	ClearError error
}

// NewMockSnapshotStore creates a new mock snapshot store.
func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{snapshots: make(map[string]*domain.TripState)}
}

// Seed places a snapshot without touching counters.
func (m *MockSnapshotStore) Seed(userID string, state *domain.TripState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[userID] = state.Clone()
}

func (m *MockSnapshotStore) Save(ctx context.Context, userID string, state *domain.TripState) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[userID] = state.Clone()
	return nil
}

func (m *MockSnapshotStore) Load(ctx context.Context, userID string) (*domain.TripState, error) {
	atomic.AddInt32(&m.LoadCallCount, 1)
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.snapshots[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return state.Clone(), nil
}

func (m *MockSnapshotStore) Clear(ctx context.Context, userID string) error {
	atomic.AddInt32(&m.ClearCallCount, 1)
	if m.ClearError != nil {
		return m.ClearError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, userID)
	return nil
}

// GetSnapshot returns the stored snapshot for assertions.
func (m *MockSnapshotStore) GetSnapshot(userID string) *domain.TripState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[userID]
}

// HasSnapshot reports whether a snapshot exists for the user.
func (m *MockSnapshotStore) HasSnapshot(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.snapshots[userID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu      sync.RWMutex
	records []*domain.TripRecord

	// Counters for verification
	AppendCallCount int32
	ListCallCount   int32

	// Error injection
	AppendError error
	ListError   error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{}
}

func (m *MockTripRepository) Append(ctx context.Context, record *domain.TripRecord) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *record
	m.records = append(m.records, &copy)
	return nil
}

func (m *MockTripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TripRecord, error) {
	atomic.AddInt32(&m.ListCallCount, 1)
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.TripRecord, 0)
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			copy := *m.records[i]
			result = append(result, &copy)
		}
	}
	return result, nil
}

// CountRecords returns the number of appended trips.
func (m *MockTripRepository) CountRecords() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// LastRecord returns the most recently appended trip.
func (m *MockTripRepository) LastRecord() *domain.TripRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.records) == 0 {
		return nil
	}
	return m.records[len(m.records)-1]
}

// Ensure mocks satisfy the repository interfaces.
var (
	_ repository.SnapshotStore  = (*MockSnapshotStore)(nil)
	_ repository.TripRepository = (*MockTripRepository)(nil)
)
