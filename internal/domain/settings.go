package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionSettings holds the platform commission configured for a deployment.
type CommissionSettings struct {
	ID                   string
	CommissionPercentage decimal.Decimal
	MinCommission        int64 // minor units; informational
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
