// Package commission splits a gross trip amount between the platform and the driver.
//
// Amounts are integers in the currency's minor unit. The commission is
// rounded half-up to a whole minor unit and the driver amount is the
// remainder, so Commission + Driver always equals Gross.
package commission

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned when the gross amount is not positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPercentage is returned when the commission percentage is outside [0,100].
	ErrInvalidPercentage = errors.New("invalid commission percentage")

	// ErrSplitMismatch is returned when a stored split does not add up to its gross amount.
	ErrSplitMismatch = errors.New("commission split does not reconcile")
)

var (
	minPercentage = decimal.Zero
	maxPercentage = decimal.NewFromInt(100)
)

// Split is a gross amount divided into platform commission and driver payout.
type Split struct {
	Gross      int64
	Percentage decimal.Decimal
	Commission int64
	Driver     int64
}

// ComputeSplit derives the commission and driver amounts for a gross amount.
func ComputeSplit(gross int64, percentage decimal.Decimal) (Split, error) {
	if gross <= 0 {
		return Split{}, ErrInvalidAmount
	}

	if err := ValidatePercentage(percentage); err != nil {
		return Split{}, err
	}

	// gross * pct / 100, rounded to a whole minor unit. Shift keeps it exact.
	commission := decimal.NewFromInt(gross).Mul(percentage).Shift(-2).Round(0).IntPart()

	return Split{
		Gross:      gross,
		Percentage: percentage,
		Commission: commission,
		Driver:     gross - commission,
	}, nil
}

// PercentagePlaces is the number of decimal places a percentage may carry.
// It matches the storage precision, so a stored percentage reproduces its split.
const PercentagePlaces = 2

// ValidatePercentage reports ErrInvalidPercentage for values outside [0,100]
// or with more than PercentagePlaces decimal places.
func ValidatePercentage(percentage decimal.Decimal) error {
	if percentage.LessThan(minPercentage) || percentage.GreaterThan(maxPercentage) {
		return ErrInvalidPercentage
	}
	// "12.50" is fine, "12.345" is not.
	if !percentage.Equal(percentage.Truncate(PercentagePlaces)) {
		return ErrInvalidPercentage
	}
	return nil
}

// ParsePercentage parses a textual percentage such as "15" or "12.5".
func ParsePercentage(s string) (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidPercentage
	}
	if err := ValidatePercentage(pct); err != nil {
		return decimal.Decimal{}, err
	}
	return pct, nil
}

// Verify checks that a commission/driver pair reconciles with its gross amount.
func Verify(gross, commission, driver int64) error {
	if commission < 0 || driver < 0 || commission+driver != gross {
		return ErrSplitMismatch
	}
	return nil
}

// Reconcile checks the split's own sum invariant.
func (s Split) Reconcile() error {
	return Verify(s.Gross, s.Commission, s.Driver)
}
