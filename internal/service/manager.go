package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"farecalc/internal/clock"
	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// WorkflowService owns the active trip workflows, one per user, and
// the resume handshake against the snapshot store.
type WorkflowService struct {
	mu     sync.Mutex
	active map[string]*TripWorkflow

	clk       clock.Clock
	snapshots repository.SnapshotStore
	trips     repository.TripRepository
	tick      time.Duration
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(clk clock.Clock, snapshots repository.SnapshotStore, trips repository.TripRepository, tick time.Duration) *WorkflowService {
	if tick <= 0 {
		tick = time.Second
	}
	return &WorkflowService{
		active:    make(map[string]*TripWorkflow),
		clk:       clk,
		snapshots: snapshots,
		trips:     trips,
		tick:      tick,
	}
}

// Begin starts a fresh trip for the user, replacing any active one and
// clearing any stale snapshot.
func (s *WorkflowService) Begin(ctx context.Context, userID string, serviceType domain.ServiceType) (*domain.TripState, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if !serviceType.Valid() {
		return nil, ErrInvalidServiceType
	}

	s.mu.Lock()
	if existing, ok := s.active[userID]; ok {
		existing.teardown()
		delete(s.active, userID)
	}
	state := &domain.TripState{
		UserID:      userID,
		ServiceType: serviceType,
		Step:        domain.StepPickup,
	}
	w := newTripWorkflow(s.clk, s.snapshots, s.trips, s.tick, state)
	s.active[userID] = w
	s.mu.Unlock()

	if err := s.snapshots.Clear(ctx, userID); err != nil {
		log.Printf("failed to clear stale snapshot for user %s: %v", userID, err)
	}

	return w.State(), nil
}

// Current returns the user's live trip state if one is active, or the
// persisted snapshot when a resumable trip is detected. Corrupt or
// foreign snapshots are discarded and reported as absent.
func (s *WorkflowService) Current(ctx context.Context, userID string) (state *domain.TripState, active, resumable bool, err error) {
	if userID == "" {
		return nil, false, false, ErrInvalidUserID
	}

	if w, ok := s.lookup(userID); ok {
		return w.State(), true, false, nil
	}

	snap := s.loadUsableSnapshot(ctx, userID)
	if snap == nil {
		return nil, false, false, nil
	}
	return snap, false, true, nil
}

// Resume restores the user's persisted in-flight trip. Elapsed time
// lost across the interruption is compensated from the snapshot's last
// persisted instant, and running timers are re-armed.
func (s *WorkflowService) Resume(ctx context.Context, userID string) (*domain.TripState, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	if w, ok := s.lookup(userID); ok {
		return w.State(), nil
	}

	snap := s.loadUsableSnapshot(ctx, userID)
	if snap == nil {
		return nil, ErrNoResumableTrip
	}

	now := s.clk.Now()
	drift := int64(now.Sub(snap.LastUpdated) / time.Second)
	if drift < 0 {
		drift = 0
	}
	if snap.IsWaitingTimerRunning {
		snap.WaitingSeconds += drift
		snap.WaitingStartInstant = now.Add(-time.Duration(snap.WaitingSeconds) * time.Second)
	}
	if snap.IsTimerRunning && !snap.IsManualTimeMode {
		snap.ElapsedSeconds += drift
		snap.TripStartInstant = now.Add(-time.Duration(snap.ElapsedSeconds) * time.Second)
	}

	w := newTripWorkflow(s.clk, s.snapshots, s.trips, s.tick, snap)

	s.mu.Lock()
	s.active[userID] = w
	s.mu.Unlock()

	w.resumeTimers()

	w.mu.Lock()
	w.saveLocked(ctx)
	w.mu.Unlock()

	return w.State(), nil
}

// Discard drops the persisted snapshot without resuming it.
func (s *WorkflowService) Discard(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.snapshots.Clear(ctx, userID)
}

// RideAgain resets the user's trip to defaults and releases the
// workflow so a new service can be selected.
func (s *WorkflowService) RideAgain(ctx context.Context, userID string) error {
	w, err := s.workflow(userID)
	if err != nil {
		return err
	}

	w.Reset(ctx)

	s.mu.Lock()
	delete(s.active, userID)
	s.mu.Unlock()
	return nil
}

// MarkArrived records arrival at the pickup location.
func (s *WorkflowService) MarkArrived(ctx context.Context, userID string) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	w.MarkArrived(ctx)
	return w.State(), nil
}

// SetPickupDetails records pickup step fields.
func (s *WorkflowService) SetPickupDetails(ctx context.Context, userID string, details PickupDetails) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	if err := w.SetPickupDetails(ctx, details); err != nil {
		return nil, err
	}
	return w.State(), nil
}

// StartTrip attempts the pickup→dropoff transition.
func (s *WorkflowService) StartTrip(ctx context.Context, userID string) (*domain.TripState, bool, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, false, err
	}
	advanced := w.StartTrip(ctx)
	return w.State(), advanced, nil
}

// SetDropoffDetails records dropoff step fields.
func (s *WorkflowService) SetDropoffDetails(ctx context.Context, userID string, details DropoffDetails) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	if err := w.SetDropoffDetails(ctx, details); err != nil {
		return nil, err
	}
	return w.State(), nil
}

// UseManualDuration switches the trip duration to a manual value.
func (s *WorkflowService) UseManualDuration(ctx context.Context, userID string, hours, minutes, seconds int) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	if err := w.UseManualDuration(ctx, hours, minutes, seconds); err != nil {
		return nil, err
	}
	return w.State(), nil
}

// UseAutoDuration switches the trip duration back to the clock.
func (s *WorkflowService) UseAutoDuration(ctx context.Context, userID string) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	w.UseAutoDuration(ctx)
	return w.State(), nil
}

// MarkDropped freezes the trip duration.
func (s *WorkflowService) MarkDropped(ctx context.Context, userID string) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	w.MarkDropped(ctx)
	return w.State(), nil
}

// Preview computes a read-only fare projection from live values.
func (s *WorkflowService) Preview(userID string) (FarePreview, bool, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return FarePreview{}, false, err
	}
	preview, ok := w.Preview()
	return preview, ok, nil
}

// EndTrip attempts the dropoff→customer-payment transition.
func (s *WorkflowService) EndTrip(ctx context.Context, userID string) (*domain.TripState, bool, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, false, err
	}
	advanced := w.EndTrip(ctx)
	return w.State(), advanced, nil
}

// SetCustomerDetails records customer payment step fields.
func (s *WorkflowService) SetCustomerDetails(ctx context.Context, userID string, details CustomerDetails) (*domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, err
	}
	if err := w.SetCustomerDetails(ctx, details); err != nil {
		return nil, err
	}
	return w.State(), nil
}

// Complete appends the finished trip to the trip log and advances to
// the driver payment step.
func (s *WorkflowService) Complete(ctx context.Context, userID string) (*domain.TripRecord, *domain.TripState, error) {
	w, err := s.workflow(userID)
	if err != nil {
		return nil, nil, err
	}
	record, err := w.Complete(ctx)
	if err != nil {
		return nil, nil, err
	}
	return record, w.State(), nil
}

// Shutdown cancels all timer callbacks. Active state stays persisted
// through the last autosave, so trips resume after a restart.
func (s *WorkflowService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.active {
		w.teardown()
	}
}

func (s *WorkflowService) lookup(userID string) (*TripWorkflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.active[userID]
	return w, ok
}

func (s *WorkflowService) workflow(userID string) (*TripWorkflow, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	w, ok := s.lookup(userID)
	if !ok {
		return nil, ErrNoActiveTrip
	}
	return w, nil
}

// loadUsableSnapshot loads the user's snapshot, discarding corrupt or
// mismatched ones. Any failure degrades to "no snapshot".
func (s *WorkflowService) loadUsableSnapshot(ctx context.Context, userID string) *domain.TripState {
	snap, err := s.snapshots.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptSnapshot) {
			if clearErr := s.snapshots.Clear(ctx, userID); clearErr != nil {
				log.Printf("failed to clear corrupt snapshot for user %s: %v", userID, clearErr)
			}
		} else if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("failed to load snapshot for user %s: %v", userID, err)
		}
		return nil
	}

	if snap.UserID != userID {
		if clearErr := s.snapshots.Clear(ctx, userID); clearErr != nil {
			log.Printf("failed to clear mismatched snapshot for user %s: %v", userID, clearErr)
		}
		return nil
	}

	return snap
}
