package shared

import (
	"github.com/shopspring/decimal"
)

// Currency is the single currency the ledger operates in. Amounts carry no sub-units.
const Currency = "IDR"

// MaxAmountDigits is the number of integer digits a stored amount or balance may carry.
const MaxAmountDigits = 18

var (
	ErrInvalidAmount = NewError(CategoryValidation, "amount must be a positive whole number")
	ErrInvalidLimit  = NewError(CategoryValidation, "limit must be a non-negative whole number")
)

// WithinRange reports whether d fits in MaxAmountDigits integer digits.
// Only the exponent and coefficient length are inspected, so no rescaling
// happens for hostile inputs such as "1e50000000".
func WithinRange(d decimal.Decimal) bool {
	exp := int(d.Exponent())
	if exp < -MaxAmountDigits || exp > MaxAmountDigits {
		return false
	}
	return d.NumDigits()+exp <= MaxAmountDigits
}

// ValidateAmount checks that amount is a positive, whole currency value.
func ValidateAmount(amount decimal.Decimal) error {
	if !WithinRange(amount) || !amount.IsPositive() || !amount.IsInteger() {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateLimit checks a daily limit. Zero means unlimited.
func ValidateLimit(limit decimal.Decimal) error {
	if !WithinRange(limit) || limit.IsNegative() || !limit.IsInteger() {
		return ErrInvalidLimit
	}
	return nil
}

// ParseAmount parses a textual monetary value and validates it.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ParseLimit parses a textual daily limit and validates it.
func ParseLimit(raw string) (decimal.Decimal, error) {
	limit, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrInvalidLimit
	}
	if err := ValidateLimit(limit); err != nil {
		return decimal.Zero, err
	}
	return limit, nil
}
