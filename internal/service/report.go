package service

import (
	"context"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// TripSummary is one completed trip prepared for display: amounts are
// pre-formatted and the route collapsed into a single line.
type TripSummary struct {
	ID            string  `json:"id"`
	ServiceTitle  string  `json:"service_title"`
	Route         string  `json:"route"`
	TripDuration  string  `json:"trip_duration"`
	WaitingTime   string  `json:"waiting_time,omitempty"`
	DistanceKm    float64 `json:"distance_km,omitempty"`
	TotalPayment  string  `json:"total_payment"`
	Commission    string  `json:"commission"`
	DriverPayment string  `json:"driver_payment"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// ReportService reads the completed trip log.
type ReportService struct {
	trips repository.TripRepository
}

// NewReportService creates a new ReportService.
func NewReportService(trips repository.TripRepository) *ReportService {
	return &ReportService{trips: trips}
}

// ListTrips returns the user's completed trips, newest first, formatted
// for display.
func (s *ReportService) ListTrips(ctx context.Context, userID string) ([]TripSummary, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	records, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]TripSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, summarize(r))
	}
	return summaries, nil
}

func summarize(r *domain.TripRecord) TripSummary {
	s := TripSummary{
		ID:            r.ID,
		ServiceTitle:  r.ServiceType.Title(),
		Route:         r.PickupLocation + " → " + r.DropLocation,
		TripDuration:  r.TripDuration,
		DistanceKm:    r.DistanceKm,
		TotalPayment:  domain.FormatCents(r.Fare.TotalPayment),
		Commission:    domain.FormatCents(r.Fare.CompanyCommission),
		DriverPayment: domain.FormatCents(r.Fare.DriverPayment),
		PaymentMethod: string(r.PaymentMethod),
		Status:        string(r.Status),
		CustomerName:  r.CustomerName,
		CreatedAt:     r.CreatedAt.Format("2006-01-02 15:04"),
	}
	if r.ServiceType.UsesWaitingTimer() && r.WaitingSeconds > 0 {
		s.WaitingTime = domain.FormatDuration(r.WaitingSeconds)
	}
	return s
}
