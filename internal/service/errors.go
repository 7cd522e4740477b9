package service

import "errors"

var (
	// ErrInvalidPaymentID is returned when payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidUserName is returned when a checkout has no customer name.
	ErrInvalidUserName = errors.New("user name is required")

	// ErrInvalidPaymentStatus is returned when a notification carries a non-terminal or unknown status.
	ErrInvalidPaymentStatus = errors.New("invalid payment status")

	// ErrInvalidRedirect is returned when a checkout redirect reports neither success nor cancellation.
	ErrInvalidRedirect = errors.New("redirect carries no payment result")

	// ErrInvalidMinCommission is returned when the minimum commission is negative.
	ErrInvalidMinCommission = errors.New("invalid minimum commission")

	// ErrInvalidDriverName is returned when driver name is empty.
	ErrInvalidDriverName = errors.New("invalid driver name")

	// ErrInvalidEarningsRange is returned for an unknown earnings period.
	ErrInvalidEarningsRange = errors.New("invalid earnings range")

	// ErrCheckoutInProgress is returned when another checkout for the same trip holds the lock.
	ErrCheckoutInProgress = errors.New("checkout already in progress for this trip")

	// ErrCheckoutProvider is returned when the checkout provider cannot create a session.
	ErrCheckoutProvider = errors.New("checkout provider unavailable")
)
