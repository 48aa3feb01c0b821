package repository

import (
	"context"

	"farecalc/internal/domain"
)

// TripRepository defines the persistence operations for the completed
// trip log.
type TripRepository interface {
	// Append persists a completed trip.
	Append(ctx context.Context, record *domain.TripRecord) error

	// ListByUser retrieves a user's completed trips, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.TripRecord, error)
}
