package service

import "errors"

var (
	// ErrInvalidUserID is returned when the user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidServiceType is returned when the service type is unknown.
	ErrInvalidServiceType = errors.New("invalid service type")

	// ErrNoActiveTrip is returned when an operation targets a user with
	// no trip in progress.
	ErrNoActiveTrip = errors.New("no active trip")

	// ErrNoResumableTrip is returned when resume is requested but no
	// usable snapshot exists.
	ErrNoResumableTrip = errors.New("no resumable trip")

	// ErrInvalidPaymentMethod is returned when the payment method is
	// neither cash nor credit.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidManualDuration is returned when manual time components
	// are negative.
	ErrInvalidManualDuration = errors.New("invalid manual duration")

	// ErrInvalidMeterCount is returned when an odometer reading is
	// negative.
	ErrInvalidMeterCount = errors.New("invalid meter count")

	// ErrNotAtCustomerPayment is returned when completion is requested
	// before the fare has been computed.
	ErrNotAtCustomerPayment = errors.New("trip not at customer payment step")
)
