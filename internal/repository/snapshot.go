package repository

import (
	"context"

	"farecalc/internal/domain"
)

// SnapshotStore persists the in-flight trip state of a single user so
// an interrupted wizard can be resumed.
type SnapshotStore interface {
	// Save upserts the snapshot for the given user.
	Save(ctx context.Context, userID string, state *domain.TripState) error

	// Load retrieves the snapshot for the given user.
	// Returns ErrNotFound if none exists, ErrCorruptSnapshot if the
	// stored payload cannot be decoded.
	Load(ctx context.Context, userID string) (*domain.TripState, error)

	// Clear removes the snapshot for the given user. Clearing a
	// missing snapshot is not an error.
	Clear(ctx context.Context, userID string) error
}
