package domain

import "time"

// Step is the wizard position of an active trip. Steps advance
// strictly forward except on a full reset.
type Step int

const (
	StepPickup Step = iota
	StepDropoff
	StepCustomerPayment
	StepDriverPayment
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepPickup:
		return "PICKUP"
	case StepDropoff:
		return "DROPOFF"
	case StepCustomerPayment:
		return "CUSTOMER_PAYMENT"
	case StepDriverPayment:
		return "DRIVER_PAYMENT"
	default:
		return "UNKNOWN"
	}
}

// TripStatus represents the settlement status of a completed trip.
type TripStatus string

const (
	TripStatusCompleted TripStatus = "completed"
	TripStatusPending   TripStatus = "pending"
)

// TripState is the full state of one in-flight trip. It is owned by
// the workflow state machine and mutated only through its transitions.
// The JSON form doubles as the persisted snapshot.
type TripState struct {
	UserID      string      `json:"user_id"`
	ServiceType ServiceType `json:"service_type"`
	Step        Step        `json:"step"`

	PickupLocation  string          `json:"pickup_location"`
	DropLocation    string          `json:"drop_location"`
	PickupArea      Area            `json:"pickup_area,omitempty"`
	DropArea        Area            `json:"drop_area,omitempty"`
	EndLocationArea EndLocationArea `json:"end_location_area,omitempty"`

	// Odometer readings. Pointers so "not entered" is distinguishable
	// from a zero reading.
	StartMeterCount *float64 `json:"start_meter_count,omitempty"`
	EndMeterCount   *float64 `json:"end_meter_count,omitempty"`

	PickupTimestamp  time.Time `json:"pickup_timestamp,omitempty"`
	TripStartInstant time.Time `json:"trip_start_instant,omitempty"`
	TripEndInstant   time.Time `json:"trip_end_instant,omitempty"`

	ElapsedSeconds       int64  `json:"elapsed_seconds"`
	FinalElapsedSeconds  int64  `json:"final_elapsed_seconds"`
	FinalDurationDisplay string `json:"final_duration_display,omitempty"`

	WaitingStartInstant time.Time `json:"waiting_start_instant,omitempty"`
	WaitingEndInstant   time.Time `json:"waiting_end_instant,omitempty"`
	WaitingSeconds      int64     `json:"waiting_seconds"`

	IsTimerRunning        bool `json:"is_timer_running"`
	IsWaitingTimerRunning bool `json:"is_waiting_timer_running"`
	IsManualTimeMode      bool `json:"is_manual_time_mode"`
	ManualHours           int  `json:"manual_hours"`
	ManualMinutes         int  `json:"manual_minutes"`
	ManualSeconds         int  `json:"manual_seconds"`

	CustomerName  string        `json:"customer_name,omitempty"`
	PhoneNumber   string        `json:"phone_number,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`

	// Fare is set exactly once, at the end-of-trip transition.
	Fare *FareBreakdown `json:"fare,omitempty"`

	// DistanceKm is the meter delta captured at the end-of-trip
	// transition, for services billed by distance.
	DistanceKm float64 `json:"distance_km"`

	// LastUpdated is the wall-clock instant of the latest persisted
	// snapshot; used to compensate timer drift across a restart.
	LastUpdated time.Time `json:"last_updated"`
}

// InProgress reports whether the trip has advanced far enough that a
// snapshot should be kept for resuming.
func (t *TripState) InProgress() bool {
	return t.Step > StepPickup || !t.PickupTimestamp.IsZero()
}

// Clone returns a deep copy of the state.
func (t *TripState) Clone() *TripState {
	c := *t
	if t.StartMeterCount != nil {
		v := *t.StartMeterCount
		c.StartMeterCount = &v
	}
	if t.EndMeterCount != nil {
		v := *t.EndMeterCount
		c.EndMeterCount = &v
	}
	if t.Fare != nil {
		f := *t.Fare
		c.Fare = &f
	}
	return &c
}

// TripRecord is one completed trip appended to the trip log.
type TripRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ServiceType     ServiceType     `json:"service_type"`
	PickupLocation  string          `json:"pickup_location"`
	DropLocation    string          `json:"drop_location"`
	PickupArea      Area            `json:"pickup_area,omitempty"`
	DropArea        Area            `json:"drop_area,omitempty"`
	EndLocationArea EndLocationArea `json:"end_location_area,omitempty"`
	StartMeterCount *float64        `json:"start_meter_count,omitempty"`
	EndMeterCount   *float64        `json:"end_meter_count,omitempty"`
	DistanceKm      float64         `json:"distance_km"`
	TripDuration    string          `json:"trip_duration"`
	ElapsedSeconds  int64           `json:"elapsed_seconds"`
	WaitingSeconds  int64           `json:"waiting_seconds"`
	Fare            FareBreakdown   `json:"fare"`
	CustomerName    string          `json:"customer_name,omitempty"`
	PhoneNumber     string          `json:"phone_number,omitempty"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Status          TripStatus      `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}
