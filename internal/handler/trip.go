package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"farecalc/internal/domain"
	"farecalc/internal/service"
)

// TripHandler handles HTTP requests for the trip wizard.
type TripHandler struct {
	workflows *service.WorkflowService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(workflows *service.WorkflowService) *TripHandler {
	return &TripHandler{workflows: workflows}
}

// FareResponse is the fare breakdown in the response, in cents.
type FareResponse struct {
	BasePayment       int64 `json:"base_payment_cents"`
	DistanceSurcharge int64 `json:"distance_surcharge_cents"`
	AreaSurcharge     int64 `json:"area_surcharge_cents"`
	WaitingSurcharge  int64 `json:"waiting_surcharge_cents"`
	TotalPayment      int64 `json:"total_payment_cents"`
	CompanyCommission int64 `json:"company_commission_cents"`
	DriverPayment     int64 `json:"driver_payment_cents"`
}

// TripStateResponse is the HTTP view of the wizard state.
type TripStateResponse struct {
	UserID          string        `json:"user_id"`
	ServiceType     string        `json:"service_type"`
	ServiceTitle    string        `json:"service_title"`
	Step            int           `json:"step"`
	StepName        string        `json:"step_name"`
	PickupLocation  string        `json:"pickup_location,omitempty"`
	DropLocation    string        `json:"drop_location,omitempty"`
	PickupArea      string        `json:"pickup_area,omitempty"`
	DropArea        string        `json:"drop_area,omitempty"`
	EndLocationArea string        `json:"end_location_area,omitempty"`
	StartMeterCount *float64      `json:"start_meter_count,omitempty"`
	EndMeterCount   *float64      `json:"end_meter_count,omitempty"`
	PickupTime      string        `json:"pickup_time,omitempty"`
	ElapsedSeconds  int64         `json:"elapsed_seconds"`
	TripDuration    string        `json:"trip_duration"`
	FinalDuration   string        `json:"final_duration,omitempty"`
	WaitingSeconds  int64         `json:"waiting_seconds,omitempty"`
	TimerRunning    bool          `json:"timer_running"`
	WaitingRunning  bool          `json:"waiting_running"`
	ManualTimeMode  bool          `json:"manual_time_mode"`
	DistanceKm      float64       `json:"distance_km,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	PhoneNumber     string        `json:"phone_number,omitempty"`
	PaymentMethod   string        `json:"payment_method,omitempty"`
	Fare            *FareResponse `json:"fare,omitempty"`
}

// CurrentTripResponse wraps the state with resume information.
type CurrentTripResponse struct {
	Active    bool               `json:"active"`
	Resumable bool               `json:"resumable"`
	Trip      *TripStateResponse `json:"trip,omitempty"`
}

// TransitionResponse reports whether a guarded step transition fired.
type TransitionResponse struct {
	Advanced bool               `json:"advanced"`
	Trip     *TripStateResponse `json:"trip"`
}

// PreviewResponse is the read-only fare projection.
type PreviewResponse struct {
	DistanceKm     float64      `json:"distance_km"`
	ElapsedSeconds int64        `json:"elapsed_seconds"`
	TripDuration   string       `json:"trip_duration"`
	Fare           FareResponse `json:"fare"`
}

// BeginTripRequest selects the service for a new trip.
type BeginTripRequest struct {
	ServiceType string `json:"service_type"`
}

// PickupRequest carries pickup step fields.
type PickupRequest struct {
	PickupLocation  string   `json:"pickup_location"`
	PickupArea      string   `json:"pickup_area"`
	StartMeterCount *float64 `json:"start_meter_count"`
}

// DropoffRequest carries dropoff step fields.
type DropoffRequest struct {
	DropLocation    string   `json:"drop_location"`
	DropArea        string   `json:"drop_area"`
	EndLocationArea string   `json:"end_location_area"`
	EndMeterCount   *float64 `json:"end_meter_count"`
}

// DurationRequest toggles between automatic and manual trip duration.
type DurationRequest struct {
	Mode    string `json:"mode"` // "auto" or "manual"
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Seconds int    `json:"seconds"`
}

// CustomerRequest carries customer payment step fields.
type CustomerRequest struct {
	CustomerName  string `json:"customer_name"`
	PhoneNumber   string `json:"phone_number"`
	PaymentMethod string `json:"payment_method"`
}

// CompletedTripResponse is returned when the trip log append succeeds.
type CompletedTripResponse struct {
	TripID string             `json:"trip_id"`
	Status string             `json:"status"`
	Trip   *TripStateResponse `json:"trip"`
}

// GetCurrent handles GET /v1/trips/:userId
func (h *TripHandler) GetCurrent(c *gin.Context) {
	state, active, resumable, err := h.workflows.Current(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CurrentTripResponse{
		Active:    active,
		Resumable: resumable,
		Trip:      toStateResponse(state),
	})
}

// Begin handles POST /v1/trips/:userId/begin
func (h *TripHandler) Begin(c *gin.Context) {
	var req BeginTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidServiceType)
		return
	}

	state, err := h.workflows.Begin(c.Request.Context(), c.Param("userId"), domain.ServiceType(req.ServiceType))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toStateResponse(state))
}

// Resume handles POST /v1/trips/:userId/resume
func (h *TripHandler) Resume(c *gin.Context) {
	state, err := h.workflows.Resume(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// Discard handles POST /v1/trips/:userId/discard
func (h *TripHandler) Discard(c *gin.Context) {
	if err := h.workflows.Discard(c.Request.Context(), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkArrived handles POST /v1/trips/:userId/arrive
func (h *TripHandler) MarkArrived(c *gin.Context) {
	state, err := h.workflows.MarkArrived(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// SetPickup handles POST /v1/trips/:userId/pickup
func (h *TripHandler) SetPickup(c *gin.Context) {
	var req PickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidMeterCount)
		return
	}

	state, err := h.workflows.SetPickupDetails(c.Request.Context(), c.Param("userId"), service.PickupDetails{
		Location:   req.PickupLocation,
		Area:       domain.Area(req.PickupArea),
		StartMeter: req.StartMeterCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// StartTrip handles POST /v1/trips/:userId/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	state, advanced, err := h.workflows.StartTrip(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, TransitionResponse{Advanced: advanced, Trip: toStateResponse(state)})
}

// SetDropoff handles POST /v1/trips/:userId/dropoff
func (h *TripHandler) SetDropoff(c *gin.Context) {
	var req DropoffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidMeterCount)
		return
	}

	state, err := h.workflows.SetDropoffDetails(c.Request.Context(), c.Param("userId"), service.DropoffDetails{
		Location:        req.DropLocation,
		Area:            domain.Area(req.DropArea),
		EndLocationArea: domain.EndLocationArea(req.EndLocationArea),
		EndMeter:        req.EndMeterCount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// SetDuration handles POST /v1/trips/:userId/duration
func (h *TripHandler) SetDuration(c *gin.Context) {
	var req DurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidManualDuration)
		return
	}

	var state *domain.TripState
	var err error
	if req.Mode == "manual" {
		state, err = h.workflows.UseManualDuration(c.Request.Context(), c.Param("userId"), req.Hours, req.Minutes, req.Seconds)
	} else {
		state, err = h.workflows.UseAutoDuration(c.Request.Context(), c.Param("userId"))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// MarkDropped handles POST /v1/trips/:userId/drop
func (h *TripHandler) MarkDropped(c *gin.Context) {
	state, err := h.workflows.MarkDropped(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// Preview handles GET /v1/trips/:userId/preview
func (h *TripHandler) Preview(c *gin.Context) {
	preview, ok, err := h.workflows.Preview(c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "preview only available during dropoff"})
		return
	}

	respondJSON(c, http.StatusOK, PreviewResponse{
		DistanceKm:     preview.DistanceKm,
		ElapsedSeconds: preview.ElapsedSeconds,
		TripDuration:   preview.Duration,
		Fare:           toFareResponse(preview.Fare),
	})
}

// EndTrip handles POST /v1/trips/:userId/end
func (h *TripHandler) EndTrip(c *gin.Context) {
	state, advanced, err := h.workflows.EndTrip(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, TransitionResponse{Advanced: advanced, Trip: toStateResponse(state)})
}

// SetCustomer handles POST /v1/trips/:userId/customer
func (h *TripHandler) SetCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, service.ErrInvalidPaymentMethod)
		return
	}

	state, err := h.workflows.SetCustomerDetails(c.Request.Context(), c.Param("userId"), service.CustomerDetails{
		Name:          req.CustomerName,
		Phone:         req.PhoneNumber,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toStateResponse(state))
}

// Complete handles POST /v1/trips/:userId/complete
func (h *TripHandler) Complete(c *gin.Context) {
	record, state, err := h.workflows.Complete(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CompletedTripResponse{
		TripID: record.ID,
		Status: string(record.Status),
		Trip:   toStateResponse(state),
	})
}

// RideAgain handles POST /v1/trips/:userId/again
func (h *TripHandler) RideAgain(c *gin.Context) {
	if err := h.workflows.RideAgain(c.Request.Context(), c.Param("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toStateResponse(state *domain.TripState) *TripStateResponse {
	if state == nil {
		return nil
	}

	resp := &TripStateResponse{
		UserID:          state.UserID,
		ServiceType:     string(state.ServiceType),
		ServiceTitle:    state.ServiceType.Title(),
		Step:            int(state.Step),
		StepName:        state.Step.String(),
		PickupLocation:  state.PickupLocation,
		DropLocation:    state.DropLocation,
		PickupArea:      string(state.PickupArea),
		DropArea:        string(state.DropArea),
		EndLocationArea: string(state.EndLocationArea),
		StartMeterCount: state.StartMeterCount,
		EndMeterCount:   state.EndMeterCount,
		ElapsedSeconds:  state.ElapsedSeconds,
		TripDuration:    domain.FormatDuration(state.ElapsedSeconds),
		FinalDuration:   state.FinalDurationDisplay,
		WaitingSeconds:  state.WaitingSeconds,
		TimerRunning:    state.IsTimerRunning,
		WaitingRunning:  state.IsWaitingTimerRunning,
		ManualTimeMode:  state.IsManualTimeMode,
		DistanceKm:      state.DistanceKm,
		CustomerName:    state.CustomerName,
		PhoneNumber:     state.PhoneNumber,
		PaymentMethod:   string(state.PaymentMethod),
	}

	if !state.PickupTimestamp.IsZero() {
		resp.PickupTime = state.PickupTimestamp.Format("15:04:05")
	}
	if state.Fare != nil {
		fare := toFareResponse(*state.Fare)
		resp.Fare = &fare
	}

	return resp
}

func toFareResponse(fare domain.FareBreakdown) FareResponse {
	return FareResponse{
		BasePayment:       fare.BasePayment,
		DistanceSurcharge: fare.DistanceSurcharge,
		AreaSurcharge:     fare.AreaSurcharge,
		WaitingSurcharge:  fare.WaitingSurcharge,
		TotalPayment:      fare.TotalPayment,
		CompanyCommission: fare.CompanyCommission,
		DriverPayment:     fare.DriverPayment,
	}
}
