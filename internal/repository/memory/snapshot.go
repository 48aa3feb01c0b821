// Package memory provides a process-local SnapshotStore used as a
// fallback when the durable store is unavailable. Snapshots kept here
// do not survive a restart, so autosave still works but the resume
// prompt only covers in-process interruptions.
package memory

import (
	"context"
	"sync"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// SnapshotStore is an in-memory implementation of repository.SnapshotStore.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.TripState
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]*domain.TripState)}
}

// Save upserts the snapshot for the given user.
func (s *SnapshotStore) Save(ctx context.Context, userID string, state *domain.TripState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[userID] = state.Clone()
	return nil
}

// Load retrieves the snapshot for the given user.
func (s *SnapshotStore) Load(ctx context.Context, userID string) (*domain.TripState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.snapshots[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return state.Clone(), nil
}

// Clear removes the snapshot for the given user.
func (s *SnapshotStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, userID)
	return nil
}

// Ensure SnapshotStore implements repository.SnapshotStore.
var _ repository.SnapshotStore = (*SnapshotStore)(nil)
