package postgres

import (
	"context"
	"database/sql"

	"farecalc/internal/domain"
	"farecalc/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip log repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip log repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, user_id, service_type, pickup_location, drop_location,
	pickup_area, drop_area, end_location_area,
	start_meter_count, end_meter_count, distance_km,
	trip_duration, elapsed_seconds, waiting_seconds,
	base_payment_cents, distance_surcharge_cents, area_surcharge_cents,
	waiting_surcharge_cents, total_payment_cents,
	company_commission_cents, driver_payment_cents,
	customer_name, phone_number, payment_method, status, created_at`

// Append persists a completed trip.
func (r *TripRepository) Append(ctx context.Context, record *domain.TripRecord) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`

	var startMeter, endMeter sql.NullFloat64
	if record.StartMeterCount != nil {
		startMeter = sql.NullFloat64{Float64: *record.StartMeterCount, Valid: true}
	}
	if record.EndMeterCount != nil {
		endMeter = sql.NullFloat64{Float64: *record.EndMeterCount, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.ServiceType,
		record.PickupLocation,
		record.DropLocation,
		nullString(string(record.PickupArea)),
		nullString(string(record.DropArea)),
		nullString(string(record.EndLocationArea)),
		startMeter,
		endMeter,
		record.DistanceKm,
		record.TripDuration,
		record.ElapsedSeconds,
		record.WaitingSeconds,
		record.Fare.BasePayment,
		record.Fare.DistanceSurcharge,
		record.Fare.AreaSurcharge,
		record.Fare.WaitingSurcharge,
		record.Fare.TotalPayment,
		record.Fare.CompanyCommission,
		record.Fare.DriverPayment,
		record.CustomerName,
		record.PhoneNumber,
		record.PaymentMethod,
		record.Status,
		record.CreatedAt,
	)

	return err
}

// ListByUser retrieves a user's completed trips, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]*domain.TripRecord, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips WHERE user_id = $1 ORDER BY created_at DESC LIMIT 200
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.TripRecord
	for rows.Next() {
		record, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

func scanTrip(rows *sql.Rows) (*domain.TripRecord, error) {
	var record domain.TripRecord
	var pickupArea, dropArea, endLocationArea sql.NullString
	var startMeter, endMeter sql.NullFloat64

	if err := rows.Scan(
		&record.ID,
		&record.UserID,
		&record.ServiceType,
		&record.PickupLocation,
		&record.DropLocation,
		&pickupArea,
		&dropArea,
		&endLocationArea,
		&startMeter,
		&endMeter,
		&record.DistanceKm,
		&record.TripDuration,
		&record.ElapsedSeconds,
		&record.WaitingSeconds,
		&record.Fare.BasePayment,
		&record.Fare.DistanceSurcharge,
		&record.Fare.AreaSurcharge,
		&record.Fare.WaitingSurcharge,
		&record.Fare.TotalPayment,
		&record.Fare.CompanyCommission,
		&record.Fare.DriverPayment,
		&record.CustomerName,
		&record.PhoneNumber,
		&record.PaymentMethod,
		&record.Status,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}

	if pickupArea.Valid {
		record.PickupArea = domain.Area(pickupArea.String)
	}
	if dropArea.Valid {
		record.DropArea = domain.Area(dropArea.String)
	}
	if endLocationArea.Valid {
		record.EndLocationArea = domain.EndLocationArea(endLocationArea.String)
	}
	if startMeter.Valid {
		v := startMeter.Float64
		record.StartMeterCount = &v
	}
	if endMeter.Valid {
		v := endMeter.Float64
		record.EndMeterCount = &v
	}

	return &record, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
