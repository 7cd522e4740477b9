package domain

import "time"

// ScheduledTrip is a booked trip a payment can be attached to.
type ScheduledTrip struct {
	ID                 string
	UserName           string
	DriverID           string
	DriverName         string
	OriginAddress      string
	DestinationAddress string
	ScheduledDate      time.Time
	EstimatedPrice     int64 // minor units, 0 when unknown
	Status             string
}

// Receipt summarizes a payment for the customer.
type Receipt struct {
	PaymentID            string
	TripID               string
	UserName             string
	DriverName           string
	Description          string
	Currency             string
	GrossAmount          int64
	CommissionPercentage string
	CommissionAmount     int64
	DriverAmount         int64
	Status               PaymentStatus
	Reconciled           bool
	PaidAt               time.Time
	IssuedAt             time.Time
}
