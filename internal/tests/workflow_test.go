package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
	"farecalc/internal/service"
)

// The tick interval is set to an hour so the background timers never
// fire during a test; elapsed time is driven entirely by the fake clock.
const testTick = time.Hour

func newTestService(clk *FakeClock, snaps *MockSnapshotStore, trips *MockTripRepository) *service.WorkflowService {
	return service.NewWorkflowService(clk, snaps, trips, testTick)
}

func f64(v float64) *float64 {
	return &v
}

// ──────────────────────────────────────────────
// 1. FULL LIFECYCLE
// ──────────────────────────────────────────────

func TestWorkflow_DrinkAndDriveFullLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	snaps := NewMockSnapshotStore()
	trips := NewMockTripRepository()
	svc := newTestService(clk, snaps, trips)

	state, err := svc.Begin(ctx, "u1", domain.ServiceDrinkAndDrive)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Step != domain.StepPickup {
		t.Fatalf("expected pickup step, got %s", state.Step)
	}

	// Arrival starts the waiting clock for drink-and-drive.
	state, err = svc.MarkArrived(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.IsWaitingTimerRunning {
		t.Error("expected waiting timer running after arrival")
	}
	if state.IsTimerRunning {
		t.Error("trip timer must not run before the trip starts")
	}

	clk.Advance(1000 * time.Second)

	if _, err := svc.SetPickupDetails(ctx, "u1", service.PickupDetails{
		Location:   "Fort Railway Station",
		Area:       domain.AreaColombo,
		StartMeter: f64(100),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, advanced, err := svc.StartTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatal("expected transition to dropoff")
	}
	if state.Step != domain.StepDropoff {
		t.Fatalf("expected dropoff step, got %s", state.Step)
	}
	if state.WaitingSeconds != 1000 {
		t.Errorf("expected 1000s of waiting, got %d", state.WaitingSeconds)
	}
	if state.IsWaitingTimerRunning {
		t.Error("waiting timer must stop when the trip starts")
	}
	if !state.IsTimerRunning {
		t.Error("trip timer must start when the trip starts")
	}

	clk.Advance(4000 * time.Second)

	if _, err := svc.SetDropoffDetails(ctx, "u1", service.DropoffDetails{
		Location: "Galle Face",
		Area:     domain.AreaOutOfColombo,
		EndMeter: f64(113),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, advanced, err = svc.EndTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatal("expected transition to customer payment")
	}
	if state.Step != domain.StepCustomerPayment {
		t.Fatalf("expected customer payment step, got %s", state.Step)
	}
	if state.FinalElapsedSeconds != 4000 {
		t.Errorf("expected final duration 4000s, got %d", state.FinalElapsedSeconds)
	}
	if state.FinalDurationDisplay != "01:06:40" {
		t.Errorf("expected display 01:06:40, got %s", state.FinalDurationDisplay)
	}
	if state.DistanceKm != 13 {
		t.Errorf("expected 13km from the meter delta, got %.2f", state.DistanceKm)
	}
	if state.Fare == nil {
		t.Fatal("expected fare to be computed")
	}
	// 67 minutes → second tier 2400, 3km over → 300, drop out of
	// Colombo → 500, 1000s waiting → 300.
	if state.Fare.TotalPayment != 3500_00 {
		t.Errorf("expected total 350000, got %d", state.Fare.TotalPayment)
	}
	if state.Fare.CompanyCommission != 700_00 || state.Fare.DriverPayment != 2800_00 {
		t.Errorf("expected split 70000/280000, got %d/%d", state.Fare.CompanyCommission, state.Fare.DriverPayment)
	}

	if _, err := svc.SetCustomerDetails(ctx, "u1", service.CustomerDetails{
		Name:          "Nimal",
		Phone:         "0771234567",
		PaymentMethod: domain.PaymentCash,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, state, err := svc.Complete(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Step != domain.StepDriverPayment {
		t.Fatalf("expected driver payment step, got %s", state.Step)
	}
	if record.Status != domain.TripStatusCompleted {
		t.Errorf("cash trips settle immediately, got status %s", record.Status)
	}
	if trips.CountRecords() != 1 {
		t.Errorf("expected 1 logged trip, got %d", trips.CountRecords())
	}
	if snaps.HasSnapshot("u1") {
		t.Error("snapshot must be cleared after the trip is logged")
	}
}

func TestWorkflow_VehicleDeliveryLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	snaps := NewMockSnapshotStore()
	trips := NewMockTripRepository()
	svc := newTestService(clk, snaps, trips)

	if _, err := svc.Begin(ctx, "u1", domain.ServiceVehicleDelivery); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No waiting clock for deliveries, timing starts at arrival.
	state, err := svc.MarkArrived(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.IsWaitingTimerRunning {
		t.Error("deliveries must not track waiting time")
	}
	if !state.IsTimerRunning {
		t.Error("expected trip timer running from arrival")
	}

	// Trip areas are not collected for deliveries, only the meter.
	if _, err := svc.SetPickupDetails(ctx, "u1", service.PickupDetails{
		Location:   "Negombo",
		StartMeter: f64(5000),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, advanced, err := svc.StartTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatal("expected start without a trip area")
	}

	clk.Advance(2 * time.Hour)

	if _, err := svc.SetDropoffDetails(ctx, "u1", service.DropoffDetails{
		Location:        "Jaffna",
		EndLocationArea: domain.EndAreaIslandWide,
		EndMeter:        f64(5400),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, advanced, err = svc.EndTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !advanced {
		t.Fatal("expected transition to customer payment")
	}
	if state.Fare.BasePayment != 5000_00 {
		t.Errorf("expected island-wide flat rate 500000, got %d", state.Fare.BasePayment)
	}
}

// ──────────────────────────────────────────────
// 2. TRANSITION GUARDS
// ──────────────────────────────────────────────

func TestWorkflow_StartTripBlockedUntilPickupComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	svc := newTestService(clk, NewMockSnapshotStore(), NewMockTripRepository())

	if _, err := svc.Begin(ctx, "u1", domain.ServiceDrinkAndDrive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Nothing recorded yet.
	state, advanced, err := svc.StartTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced || state.Step != domain.StepPickup {
		t.Fatal("start must be blocked with no pickup details")
	}

	// Location and arrival but no meter reading for a metered service.
	if _, err := svc.MarkArrived(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SetPickupDetails(ctx, "u1", service.PickupDetails{
		Location: "Fort",
		Area:     domain.AreaColombo,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, advanced, _ = svc.StartTrip(ctx, "u1")
	if advanced {
		t.Fatal("start must be blocked without the start meter reading")
	}

	// Complete the step.
	if _, err := svc.SetPickupDetails(ctx, "u1", service.PickupDetails{StartMeter: f64(100)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, advanced, _ = svc.StartTrip(ctx, "u1")
	if !advanced {
		t.Fatal("start must proceed once all pickup fields are present")
	}
}

func TestWorkflow_EndTripBlockedUntilDropoffComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	svc := newTestService(clk, NewMockSnapshotStore(), NewMockTripRepository())

	beginDayTimeAtDropoff(t, ctx, svc, "u1")

	state, advanced, err := svc.EndTrip(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if advanced || state.Step != domain.StepDropoff {
		t.Fatal("end must be blocked with no dropoff details")
	}
	if state.Fare != nil {
		t.Error("a blocked end must not compute a fare")
	}

	if _, err := svc.SetDropoffDetails(ctx, "u1", service.DropoffDetails{
		Location: "Kandy",
		Area:     domain.AreaOutOfColombo,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, advanced, _ = svc.EndTrip(ctx, "u1")
	if !advanced {
		t.Fatal("end must proceed once all dropoff fields are present")
	}
}

func TestWorkflow_OperationsRequireActiveTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(NewFakeClock(), NewMockSnapshotStore(), NewMockTripRepository())

	if _, err := svc.MarkArrived(ctx, "ghost"); !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
	if _, _, err := svc.StartTrip(ctx, "ghost"); !errors.Is(err, service.ErrNoActiveTrip) {
		t.Errorf("expected ErrNoActiveTrip, got %v", err)
	}
	if _, err := svc.Begin(ctx, "", domain.ServiceDayTime); !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
	if _, err := svc.Begin(ctx, "u1", "helicopter"); !errors.Is(err, service.ErrInvalidServiceType) {
		t.Errorf("expected ErrInvalidServiceType, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 3. DURATION HANDLING
// ──────────────────────────────────────────────

func TestWorkflow_ManualDurationOverridesClock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	svc := newTestService(clk, NewMockSnapshotStore(), NewMockTripRepository())

	beginDayTimeAtDropoff(t, ctx, svc, "u1")
	clk.Advance(600 * time.Second)

	state, err := svc.UseManualDuration(ctx, "u1", 1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ElapsedSeconds != 3600 {
		t.Errorf("expected manual 3600s, got %d", state.ElapsedSeconds)
	}

	// The manual value holds while the clock moves on.
	clk.Advance(500 * time.Second)
	state, _, _, err = svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ElapsedSeconds != 3600 {
		t.Errorf("manual duration must not tick, got %d", state.ElapsedSeconds)
	}

	// Switching back resumes from the original start instant; the
	// manual value is discarded.
	state, err = svc.UseAutoDuration(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ElapsedSeconds != 1100 {
		t.Errorf("expected 1100s from the start instant, got %d", state.ElapsedSeconds)
	}
}

func TestWorkflow_ManualDurationRejectsNegatives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(NewFakeClock(), NewMockSnapshotStore(), NewMockTripRepository())
	beginDayTimeAtDropoff(t, ctx, svc, "u1")

	if _, err := svc.UseManualDuration(ctx, "u1", -1, 0, 0); !errors.Is(err, service.ErrInvalidManualDuration) {
		t.Errorf("expected ErrInvalidManualDuration, got %v", err)
	}
}

func TestWorkflow_MarkDroppedFreezesDurationOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	svc := newTestService(clk, NewMockSnapshotStore(), NewMockTripRepository())

	beginDayTimeAtDropoff(t, ctx, svc, "u1")
	clk.Advance(300 * time.Second)

	state, err := svc.MarkDropped(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.FinalElapsedSeconds != 300 {
		t.Errorf("expected frozen 300s, got %d", state.FinalElapsedSeconds)
	}
	if state.IsTimerRunning {
		t.Error("trip timer must stop at drop")
	}

	// A second drop is a no-op.
	clk.Advance(500 * time.Second)
	state, err = svc.MarkDropped(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.FinalElapsedSeconds != 300 {
		t.Errorf("duration must stay frozen at 300s, got %d", state.FinalElapsedSeconds)
	}
}

func TestWorkflow_PreviewDoesNotMutate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	svc := newTestService(clk, NewMockSnapshotStore(), NewMockTripRepository())

	beginDayTimeAtDropoff(t, ctx, svc, "u1")
	clk.Advance(90 * time.Minute)

	preview, ok, err := svc.Preview("u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a preview during dropoff")
	}
	if preview.ElapsedSeconds != 5400 {
		t.Errorf("expected live 5400s, got %d", preview.ElapsedSeconds)
	}
	if preview.Fare.BasePayment != 3000_00 {
		t.Errorf("expected 4h rate 300000 for 90 minutes, got %d", preview.Fare.BasePayment)
	}

	state, _, _, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Step != domain.StepDropoff {
		t.Error("preview must not advance the step")
	}
	if state.Fare != nil {
		t.Error("preview must not persist a fare")
	}
	if !state.IsTimerRunning {
		t.Error("preview must not stop the timer")
	}
}

func TestWorkflow_PreviewOnlyDuringDropoff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(NewFakeClock(), NewMockSnapshotStore(), NewMockTripRepository())

	if _, err := svc.Begin(ctx, "u1", domain.ServiceDayTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok, _ := svc.Preview("u1"); ok {
		t.Error("no preview at the pickup step")
	}
}

// ──────────────────────────────────────────────
// 4. COMPLETION AND THE TRIP LOG
// ──────────────────────────────────────────────

func TestWorkflow_CompleteRequiresCustomerPaymentStep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(NewFakeClock(), NewMockSnapshotStore(), NewMockTripRepository())
	beginDayTimeAtDropoff(t, ctx, svc, "u1")

	if _, _, err := svc.Complete(ctx, "u1"); !errors.Is(err, service.ErrNotAtCustomerPayment) {
		t.Errorf("expected ErrNotAtCustomerPayment, got %v", err)
	}
}

func TestWorkflow_CompleteRetriesAfterLogFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	trips := NewMockTripRepository()
	svc := newTestService(clk, NewMockSnapshotStore(), trips)

	advanceToCustomerPayment(t, ctx, clk, svc, "u1")
	if _, err := svc.SetCustomerDetails(ctx, "u1", service.CustomerDetails{
		PaymentMethod: domain.PaymentCredit,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trips.AppendError = errors.New("connection refused")
	if _, _, err := svc.Complete(ctx, "u1"); err == nil {
		t.Fatal("expected append failure to surface")
	}

	// The workflow stays put so the operator can retry.
	state, _, _, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Step != domain.StepCustomerPayment {
		t.Fatalf("expected to remain at customer payment, got %s", state.Step)
	}

	trips.AppendError = nil
	record, _, err := svc.Complete(ctx, "u1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if record.Status != domain.TripStatusPending {
		t.Errorf("credit trips await settlement, got status %s", record.Status)
	}
	if trips.CountRecords() != 1 {
		t.Errorf("expected exactly 1 logged trip, got %d", trips.CountRecords())
	}
}

func TestWorkflow_RideAgainReleasesTheUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	snaps := NewMockSnapshotStore()
	svc := newTestService(clk, snaps, NewMockTripRepository())

	beginDayTimeAtDropoff(t, ctx, svc, "u1")

	if err := svc.RideAgain(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, active, resumable, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active || resumable {
		t.Error("expected no active or resumable trip after ride-again")
	}
	if snaps.HasSnapshot("u1") {
		t.Error("snapshot must be cleared on ride-again")
	}
}

// ──────────────────────────────────────────────
// 5. SNAPSHOTS AND RESUME
// ──────────────────────────────────────────────

func TestWorkflow_AutosavePersistsProgress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	snaps := NewMockSnapshotStore()
	svc := newTestService(clk, snaps, NewMockTripRepository())

	if _, err := svc.Begin(ctx, "u1", domain.ServiceDrinkAndDrive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkArrived(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := snaps.GetSnapshot("u1")
	if snap == nil {
		t.Fatal("expected an autosaved snapshot after arrival")
	}
	if !snap.IsWaitingTimerRunning {
		t.Error("snapshot must carry the waiting timer state")
	}
	if snap.LastUpdated.IsZero() {
		t.Error("snapshot must carry the save instant")
	}
}

func TestWorkflow_AutosaveFailureDoesNotBlockTheTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snaps := NewMockSnapshotStore()
	snaps.SaveError = errors.New("redis down")
	svc := newTestService(NewFakeClock(), snaps, NewMockTripRepository())

	if _, err := svc.Begin(ctx, "u1", domain.ServiceDayTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	state, err := svc.MarkArrived(ctx, "u1")
	if err != nil {
		t.Fatalf("the trip must continue without persistence: %v", err)
	}
	if state.PickupTimestamp.IsZero() {
		t.Error("arrival must be recorded in memory")
	}
}

func TestWorkflow_ResumeCompensatesDrift(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := NewFakeClock()
	snaps := NewMockSnapshotStore()
	svc := newTestService(clk, snaps, NewMockTripRepository())

	now := clk.Now()
	snaps.Seed("u1", &domain.TripState{
		UserID:           "u1",
		ServiceType:      domain.ServiceDayTime,
		Step:             domain.StepDropoff,
		PickupLocation:   "Fort",
		PickupArea:       domain.AreaColombo,
		PickupTimestamp:  now.Add(-160 * time.Second),
		TripStartInstant: now.Add(-100 * time.Second),
		ElapsedSeconds:   100,
		IsTimerRunning:   true,
		LastUpdated:      now.Add(-60 * time.Second),
	})

	_, _, resumable, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resumable {
		t.Fatal("expected the snapshot to be offered for resume")
	}

	// 60 seconds passed between the last save and the resume; the
	// elapsed time must include them.
	state, err := svc.Resume(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ElapsedSeconds != 160 {
		t.Errorf("expected 160s after drift compensation, got %d", state.ElapsedSeconds)
	}

	// And the rebased timer keeps counting.
	clk.Advance(40 * time.Second)
	state, _, _, err = svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.ElapsedSeconds != 200 {
		t.Errorf("expected 200s after advancing, got %d", state.ElapsedSeconds)
	}
}

func TestWorkflow_ResumeWithoutSnapshotFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newTestService(NewFakeClock(), NewMockSnapshotStore(), NewMockTripRepository())

	if _, err := svc.Resume(ctx, "u1"); !errors.Is(err, service.ErrNoResumableTrip) {
		t.Errorf("expected ErrNoResumableTrip, got %v", err)
	}
}

func TestWorkflow_CorruptSnapshotTreatedAsAbsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snaps := NewMockSnapshotStore()
	snaps.LoadError = repository.ErrCorruptSnapshot
	svc := newTestService(NewFakeClock(), snaps, NewMockTripRepository())

	_, active, resumable, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if active || resumable {
		t.Error("a corrupt snapshot must not be offered for resume")
	}
	if snaps.ClearCallCount == 0 {
		t.Error("a corrupt snapshot must be cleared")
	}
}

func TestWorkflow_MismatchedSnapshotDiscarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snaps := NewMockSnapshotStore()
	snaps.Seed("u1", &domain.TripState{
		UserID:          "somebody-else",
		ServiceType:     domain.ServiceDayTime,
		Step:            domain.StepDropoff,
		PickupTimestamp: NewFakeClock().Now(),
	})
	svc := newTestService(NewFakeClock(), snaps, NewMockTripRepository())

	_, _, resumable, err := svc.Current(ctx, "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resumable {
		t.Error("a snapshot for another user must not be offered")
	}
	if snaps.HasSnapshot("u1") {
		t.Error("the mismatched snapshot must be cleared")
	}
}

func TestWorkflow_BeginClearsStaleSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snaps := NewMockSnapshotStore()
	snaps.Seed("u1", &domain.TripState{
		UserID:          "u1",
		ServiceType:     domain.ServiceDayTime,
		Step:            domain.StepDropoff,
		PickupTimestamp: NewFakeClock().Now(),
	})
	svc := newTestService(NewFakeClock(), snaps, NewMockTripRepository())

	if _, err := svc.Begin(ctx, "u1", domain.ServiceDrinkAndDrive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snaps.HasSnapshot("u1") {
		t.Error("beginning a fresh trip must discard the stale snapshot")
	}
}

func TestWorkflow_DiscardDropsSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	snaps := NewMockSnapshotStore()
	snaps.Seed("u1", &domain.TripState{
		UserID:          "u1",
		ServiceType:     domain.ServiceDayTime,
		Step:            domain.StepDropoff,
		PickupTimestamp: NewFakeClock().Now(),
	})
	svc := newTestService(NewFakeClock(), snaps, NewMockTripRepository())

	if err := svc.Discard(ctx, "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snaps.HasSnapshot("u1") {
		t.Error("discard must remove the snapshot")
	}
	if _, err := svc.Resume(ctx, "u1"); !errors.Is(err, service.ErrNoResumableTrip) {
		t.Errorf("expected ErrNoResumableTrip after discard, got %v", err)
	}
}

// ──────────────────────────────────────────────
// helpers
// ──────────────────────────────────────────────

// beginDayTimeAtDropoff drives a fresh day-time trip to the dropoff step.
func beginDayTimeAtDropoff(t *testing.T, ctx context.Context, svc *service.WorkflowService, userID string) {
	t.Helper()

	if _, err := svc.Begin(ctx, userID, domain.ServiceDayTime); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.MarkArrived(ctx, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SetPickupDetails(ctx, userID, service.PickupDetails{
		Location: "Fort",
		Area:     domain.AreaColombo,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, advanced, err := svc.StartTrip(ctx, userID); err != nil || !advanced {
		t.Fatalf("failed to reach dropoff: advanced=%v err=%v", advanced, err)
	}
}

// advanceToCustomerPayment drives a day-time trip through end-of-trip.
func advanceToCustomerPayment(t *testing.T, ctx context.Context, clk *FakeClock, svc *service.WorkflowService, userID string) {
	t.Helper()

	beginDayTimeAtDropoff(t, ctx, svc, userID)
	clk.Advance(30 * time.Minute)
	if _, err := svc.SetDropoffDetails(ctx, userID, service.DropoffDetails{
		Location: "Mount Lavinia",
		Area:     domain.AreaColombo,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, advanced, err := svc.EndTrip(ctx, userID); err != nil || !advanced {
		t.Fatalf("failed to reach customer payment: advanced=%v err=%v", advanced, err)
	}
}
