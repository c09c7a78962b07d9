package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when an optimistic write targets a
	// row whose version changed since it was read.
	ErrVersionConflict = errors.New("version conflict")
	// ErrStatusConflict is returned when a conditional status transition
	// finds the row no longer in the expected status.
	ErrStatusConflict = errors.New("status conflict")
)
