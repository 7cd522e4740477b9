package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrPaymentFinalized is returned when a status change targets a payment
	// that already reached a terminal state.
	ErrPaymentFinalized = errors.New("payment already finalized")

	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("entity already exists")
)
