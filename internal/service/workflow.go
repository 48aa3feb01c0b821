package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"farecalc/internal/clock"
	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// durationSource is the single authority over elapsed trip time. At
// any instant exactly one variant governs: the automatic source derived
// from the trip start instant, or the operator-entered manual value.
type durationSource interface {
	elapsedSeconds(now time.Time) int64
}

type autoDuration struct {
	start time.Time
}

func (d autoDuration) elapsedSeconds(now time.Time) int64 {
	if d.start.IsZero() || now.Before(d.start) {
		return 0
	}
	return int64(now.Sub(d.start) / time.Second)
}

type manualDuration struct {
	hours, minutes, seconds int
}

func (d manualDuration) elapsedSeconds(time.Time) int64 {
	return int64(d.hours)*3600 + int64(d.minutes)*60 + int64(d.seconds)
}

// PickupDetails carries the fields collected on the pickup step.
type PickupDetails struct {
	Location   string
	Area       domain.Area
	StartMeter *float64
}

// DropoffDetails carries the fields collected on the dropoff step.
type DropoffDetails struct {
	Location        string
	Area            domain.Area
	EndLocationArea domain.EndLocationArea
	EndMeter        *float64
}

// CustomerDetails carries the fields collected on the customer payment
// step.
type CustomerDetails struct {
	Name          string
	Phone         string
	PaymentMethod domain.PaymentMethod
}

// FarePreview is the read-only fare projection shown during the
// dropoff step. It is computed from live values and discarded after
// display.
type FarePreview struct {
	Fare           domain.FareBreakdown
	DistanceKm     float64
	ElapsedSeconds int64
	Duration       string
}

// TripWorkflow drives one user's trip wizard: the ordered steps, the
// trip and waiting timers, the fare computation at end-of-trip, and
// snapshot autosaving. All mutations go through its mutex, including
// timer callbacks, so state changes are fully serialized.
type TripWorkflow struct {
	mu        sync.Mutex
	clk       clock.Clock
	snapshots repository.SnapshotStore
	trips     repository.TripRepository
	tick      time.Duration

	tripTimer *clock.Interval
	waitTimer *clock.Interval

	state *domain.TripState
}

func newTripWorkflow(clk clock.Clock, snapshots repository.SnapshotStore, trips repository.TripRepository, tick time.Duration, state *domain.TripState) *TripWorkflow {
	return &TripWorkflow{
		clk:       clk,
		snapshots: snapshots,
		trips:     trips,
		tick:      tick,
		tripTimer: clock.NewInterval(),
		waitTimer: clock.NewInterval(),
		state:     state,
	}
}

// State returns a copy of the trip state with live timer values.
func (w *TripWorkflow) State() *domain.TripState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.refreshLocked(w.clk.Now())
	return w.state.Clone()
}

// MarkArrived records arrival at the pickup location. For drink-and-
// drive this starts the waiting clock; for every other service the
// trip timer starts immediately. The pickup timestamp is set once.
func (w *TripWorkflow) MarkArrived(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.state.PickupTimestamp.IsZero() {
		return
	}

	now := w.clk.Now()
	w.state.PickupTimestamp = now

	if w.state.ServiceType.UsesWaitingTimer() {
		w.state.WaitingStartInstant = now
		w.state.WaitingSeconds = 0
		w.state.IsWaitingTimerRunning = true
		w.waitTimer.Start(w.tick, w.onWaitingTick)
	} else {
		w.startTripTimerLocked(now)
	}

	w.saveLocked(ctx)
}

// SetPickupDetails records the pickup step fields.
func (w *TripWorkflow) SetPickupDetails(ctx context.Context, details PickupDetails) error {
	if details.StartMeter != nil && *details.StartMeter < 0 {
		return ErrInvalidMeterCount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if details.Location != "" {
		w.state.PickupLocation = details.Location
	}
	if details.Area != "" {
		w.state.PickupArea = details.Area
	}
	if details.StartMeter != nil {
		w.state.StartMeterCount = details.StartMeter
	}

	w.saveLocked(ctx)
	return nil
}

// StartTrip attempts the pickup→dropoff transition. For drink-and-
// drive the waiting clock stops and the trip timer starts at the same
// instant; for other services timing already began at arrival. Returns
// false, with no state change, when required pickup fields are missing.
func (w *TripWorkflow) StartTrip(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != domain.StepPickup || !w.canLeavePickupLocked() {
		return false
	}

	now := w.clk.Now()
	if w.state.ServiceType.UsesWaitingTimer() {
		w.stopWaitingLocked(now)
		w.startTripTimerLocked(now)
	}

	w.state.Step = domain.StepDropoff
	w.saveLocked(ctx)
	return true
}

// SetDropoffDetails records the dropoff step fields.
func (w *TripWorkflow) SetDropoffDetails(ctx context.Context, details DropoffDetails) error {
	if details.EndMeter != nil && *details.EndMeter < 0 {
		return ErrInvalidMeterCount
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if details.Location != "" {
		w.state.DropLocation = details.Location
	}
	if details.Area != "" {
		w.state.DropArea = details.Area
	}
	if details.EndLocationArea != "" {
		w.state.EndLocationArea = details.EndLocationArea
	}
	if details.EndMeter != nil {
		w.state.EndMeterCount = details.EndMeter
	}

	w.saveLocked(ctx)
	return nil
}

// UseManualDuration switches elapsed time to the operator-entered
// value and halts the automatic tick.
func (w *TripWorkflow) UseManualDuration(ctx context.Context, hours, minutes, seconds int) error {
	if hours < 0 || minutes < 0 || seconds < 0 {
		return ErrInvalidManualDuration
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.IsManualTimeMode = true
	w.state.ManualHours = hours
	w.state.ManualMinutes = minutes
	w.state.ManualSeconds = seconds
	w.state.ElapsedSeconds = w.durationSourceLocked().elapsedSeconds(w.clk.Now())
	w.tripTimer.Stop()

	w.saveLocked(ctx)
	return nil
}

// UseAutoDuration switches back to clock-driven elapsed time. The
// value resumes from the original trip start instant; a manually
// edited duration is discarded, matching the historical behaviour.
func (w *TripWorkflow) UseAutoDuration(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.IsManualTimeMode = false
	if w.state.IsTimerRunning && !w.state.TripStartInstant.IsZero() {
		w.state.ElapsedSeconds = autoDuration{start: w.state.TripStartInstant}.elapsedSeconds(w.clk.Now())
		w.tripTimer.Start(w.tick, w.onTripTick)
	}

	w.saveLocked(ctx)
}

// MarkDropped freezes the trip duration for invoicing and stops the
// trip timer. Calling it again has no effect.
func (w *TripWorkflow) MarkDropped(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.markDroppedLocked()
	w.saveLocked(ctx)
}

func (w *TripWorkflow) markDroppedLocked() {
	if !w.state.TripEndInstant.IsZero() {
		return
	}

	now := w.clk.Now()
	w.refreshLocked(now)
	w.state.TripEndInstant = now
	w.state.FinalElapsedSeconds = w.state.ElapsedSeconds
	w.state.FinalDurationDisplay = domain.FormatDuration(w.state.ElapsedSeconds)
	w.state.IsTimerRunning = false
	w.tripTimer.Stop()
}

// Preview computes the fare from live values without freezing anything
// or advancing the step. Only meaningful during the dropoff step.
func (w *TripWorkflow) Preview() (FarePreview, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != domain.StepDropoff {
		return FarePreview{}, false
	}

	now := w.clk.Now()
	elapsed := w.state.ElapsedSeconds
	if w.state.IsTimerRunning && !w.state.IsManualTimeMode {
		elapsed = w.durationSourceLocked().elapsedSeconds(now)
	}

	fare, distance := w.computeFareLocked(elapsed)
	return FarePreview{
		Fare:           fare,
		DistanceKm:     distance,
		ElapsedSeconds: elapsed,
		Duration:       domain.FormatDuration(elapsed),
	}, true
}

// EndTrip attempts the dropoff→customer-payment transition: it freezes
// the duration if not already frozen, validates the dropoff fields,
// computes the fare breakdown once, stops all timers and advances the
// step. Returns false, with no state change, when the guard fails.
func (w *TripWorkflow) EndTrip(ctx context.Context) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != domain.StepDropoff || !w.canLeaveDropoffLocked() {
		return false
	}

	w.markDroppedLocked()

	elapsed := w.state.FinalElapsedSeconds
	if elapsed == 0 {
		elapsed = w.state.ElapsedSeconds
	}

	fare, distance := w.computeFareLocked(elapsed)
	w.state.Fare = &fare
	w.state.DistanceKm = distance

	w.stopAllTimersLocked()
	w.state.Step = domain.StepCustomerPayment
	w.saveLocked(ctx)
	return true
}

// SetCustomerDetails records the customer payment step fields.
func (w *TripWorkflow) SetCustomerDetails(ctx context.Context, details CustomerDetails) error {
	if details.PaymentMethod != "" && !details.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if details.Name != "" {
		w.state.CustomerName = details.Name
	}
	if details.Phone != "" {
		w.state.PhoneNumber = details.Phone
	}
	if details.PaymentMethod != "" {
		w.state.PaymentMethod = details.PaymentMethod
	}

	w.saveLocked(ctx)
	return nil
}

// Complete appends the trip to the trip log and advances to the driver
// payment step. On append failure the workflow stays at customer
// payment and the caller may retry without re-entering data.
func (w *TripWorkflow) Complete(ctx context.Context) (*domain.TripRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.Step != domain.StepCustomerPayment || w.state.Fare == nil {
		return nil, ErrNotAtCustomerPayment
	}
	if !w.state.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	status := domain.TripStatusPending
	if w.state.PaymentMethod == domain.PaymentCash {
		status = domain.TripStatusCompleted
	}

	record := &domain.TripRecord{
		ID:              uuid.New().String(),
		UserID:          w.state.UserID,
		ServiceType:     w.state.ServiceType,
		PickupLocation:  w.state.PickupLocation,
		DropLocation:    w.state.DropLocation,
		PickupArea:      w.state.PickupArea,
		DropArea:        w.state.DropArea,
		EndLocationArea: w.state.EndLocationArea,
		StartMeterCount: w.state.StartMeterCount,
		EndMeterCount:   w.state.EndMeterCount,
		DistanceKm:      w.state.DistanceKm,
		TripDuration:    w.state.FinalDurationDisplay,
		ElapsedSeconds:  w.state.FinalElapsedSeconds,
		WaitingSeconds:  w.state.WaitingSeconds,
		Fare:            *w.state.Fare,
		CustomerName:    w.state.CustomerName,
		PhoneNumber:     w.state.PhoneNumber,
		PaymentMethod:   w.state.PaymentMethod,
		Status:          status,
		CreatedAt:       w.clk.Now(),
	}

	if err := w.trips.Append(ctx, record); err != nil {
		return nil, err
	}

	w.state.Step = domain.StepDriverPayment
	if err := w.snapshots.Clear(ctx, w.state.UserID); err != nil {
		log.Printf("failed to clear snapshot for user %s: %v", w.state.UserID, err)
	}

	return record, nil
}

// Reset stops all timers, clears the snapshot and restores the state
// to defaults so a new ride can begin.
func (w *TripWorkflow) Reset(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.stopAllTimersLocked()
	userID := w.state.UserID
	w.state = &domain.TripState{UserID: userID, Step: domain.StepPickup}

	if err := w.snapshots.Clear(ctx, userID); err != nil {
		log.Printf("failed to clear snapshot for user %s: %v", userID, err)
	}
}

// teardown cancels timer callbacks without touching persisted state.
func (w *TripWorkflow) teardown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopAllTimersLocked()
}

// resumeTimers re-arms tick callbacks after a snapshot restore.
func (w *TripWorkflow) resumeTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state.IsWaitingTimerRunning {
		w.waitTimer.Start(w.tick, w.onWaitingTick)
	}
	if w.state.IsTimerRunning && !w.state.IsManualTimeMode {
		w.tripTimer.Start(w.tick, w.onTripTick)
	}
}

// ────────────────────────────────────────────────
// internals
// ────────────────────────────────────────────────

func (w *TripWorkflow) startTripTimerLocked(now time.Time) {
	w.state.TripStartInstant = now
	w.state.IsTimerRunning = true
	w.state.IsManualTimeMode = false
	w.state.ElapsedSeconds = 0
	w.tripTimer.Start(w.tick, w.onTripTick)
}

func (w *TripWorkflow) stopWaitingLocked(now time.Time) {
	if !w.state.IsWaitingTimerRunning {
		return
	}
	w.state.WaitingEndInstant = now
	w.state.WaitingSeconds = int64(now.Sub(w.state.WaitingStartInstant) / time.Second)
	if w.state.WaitingSeconds < 0 {
		w.state.WaitingSeconds = 0
	}
	w.state.IsWaitingTimerRunning = false
	w.waitTimer.Stop()
}

func (w *TripWorkflow) stopAllTimersLocked() {
	w.tripTimer.Stop()
	w.waitTimer.Stop()
	w.state.IsTimerRunning = false
	w.state.IsWaitingTimerRunning = false
}

func (w *TripWorkflow) durationSourceLocked() durationSource {
	if w.state.IsManualTimeMode {
		return manualDuration{
			hours:   w.state.ManualHours,
			minutes: w.state.ManualMinutes,
			seconds: w.state.ManualSeconds,
		}
	}
	return autoDuration{start: w.state.TripStartInstant}
}

func (w *TripWorkflow) refreshLocked(now time.Time) {
	if w.state.IsWaitingTimerRunning {
		seconds := int64(now.Sub(w.state.WaitingStartInstant) / time.Second)
		if seconds < 0 {
			seconds = 0
		}
		w.state.WaitingSeconds = seconds
	}
	if w.state.IsTimerRunning && !w.state.IsManualTimeMode && !w.state.TripStartInstant.IsZero() {
		w.state.ElapsedSeconds = w.durationSourceLocked().elapsedSeconds(now)
	}
}

func (w *TripWorkflow) onTripTick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.state.IsTimerRunning || w.state.IsManualTimeMode {
		return
	}
	w.refreshLocked(w.clk.Now())
	w.saveLocked(context.Background())
}

func (w *TripWorkflow) onWaitingTick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.state.IsWaitingTimerRunning {
		return
	}
	w.refreshLocked(w.clk.Now())
	w.saveLocked(context.Background())
}

func (w *TripWorkflow) canLeavePickupLocked() bool {
	s := w.state
	if s.PickupLocation == "" || s.PickupTimestamp.IsZero() {
		return false
	}
	if s.ServiceType.RequiresArea() && s.PickupArea == "" {
		return false
	}
	if s.ServiceType.RequiresMeter() && s.StartMeterCount == nil {
		return false
	}
	return true
}

func (w *TripWorkflow) canLeaveDropoffLocked() bool {
	s := w.state
	if s.DropLocation == "" {
		return false
	}
	if s.ServiceType == domain.ServiceVehicleDelivery {
		if s.EndLocationArea == "" {
			return false
		}
	} else if s.DropArea == "" {
		return false
	}
	if s.ServiceType.RequiresMeter() && s.EndMeterCount == nil {
		return false
	}
	return true
}

func (w *TripWorkflow) computeFareLocked(elapsedSeconds int64) (domain.FareBreakdown, float64) {
	s := w.state

	var distance float64
	if s.ServiceType.RequiresMeter() && s.StartMeterCount != nil && s.EndMeterCount != nil {
		distance = *s.EndMeterCount - *s.StartMeterCount
		if distance < 0 {
			distance = 0
		}
	}

	durationMinutes := (elapsedSeconds + 59) / 60

	switch s.ServiceType {
	case domain.ServiceDrinkAndDrive:
		waiting := WaitingCharge(s.WaitingSeconds)
		return DrinkAndDriveFare(
			distance,
			durationMinutes,
			s.PickupArea.OutOfColombo(),
			s.DropArea.OutOfColombo(),
			waiting,
		), distance
	case domain.ServiceDayTime:
		return DayTimeFare(durationMinutes, s.DropArea.OutOfColombo()), distance
	case domain.ServiceDayTimeLong:
		return DayTimeLongFare(durationMinutes), distance
	case domain.ServiceVehicleDelivery:
		return VehicleDeliveryFare(s.EndLocationArea), distance
	default:
		return domain.FareBreakdown{}, distance
	}
}

// saveLocked persists the snapshot while a trip is in progress.
// Autosave is best-effort: the trip continues in memory on failure.
func (w *TripWorkflow) saveLocked(ctx context.Context) {
	w.state.LastUpdated = w.clk.Now()
	if !w.state.InProgress() || w.state.Step >= domain.StepDriverPayment {
		return
	}
	if err := w.snapshots.Save(ctx, w.state.UserID, w.state); err != nil {
		log.Printf("autosave failed for user %s: %v", w.state.UserID, err)
	}
}
