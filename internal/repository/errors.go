package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrCorruptSnapshot is returned when a persisted snapshot cannot
	// be decoded. Callers treat the snapshot as absent.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)
