package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

const snapshotKeyPrefix = "snapshot:trip:"

// SnapshotStore persists in-flight trip snapshots in Redis, keyed by
// user. It is the durable store behind the resume prompt.
type SnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotStore creates a new SnapshotStore. A zero ttl keeps
// snapshots until explicitly cleared.
func NewSnapshotStore(client *redis.Client, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{client: client, ttl: ttl}
}

// Save upserts the snapshot for the given user.
func (s *SnapshotStore) Save(ctx context.Context, userID string, state *domain.TripState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, snapshotKeyPrefix+userID, data, s.ttl).Err()
}

// Load retrieves the snapshot for the given user.
func (s *SnapshotStore) Load(ctx context.Context, userID string) (*domain.TripState, error) {
	data, err := s.client.Get(ctx, snapshotKeyPrefix+userID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	var state domain.TripState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, repository.ErrCorruptSnapshot
	}
	return &state, nil
}

// Clear removes the snapshot for the given user.
func (s *SnapshotStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, snapshotKeyPrefix+userID).Err()
}

// Ensure SnapshotStore implements repository.SnapshotStore.
var _ repository.SnapshotStore = (*SnapshotStore)(nil)
