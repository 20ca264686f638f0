package credential

import (
	"regexp"

	"github.com/tabungan-ledger/internal/domain/shared"
)

// PinLength is the number of digits in a transaction PIN.
const PinLength = 6

var pinPattern = regexp.MustCompile(`^\d{6}$`)

var (
	ErrInvalidPinFormat = shared.NewError(shared.CategoryValidation, "PIN must be exactly 6 digits")
	ErrPinNotSet        = shared.NewError(shared.CategoryCredential, "PIN has not been configured")
	ErrInvalidPin       = shared.NewError(shared.CategoryCredential, "PIN does not match")
	ErrPinLocked        = shared.NewError(shared.CategoryCredential, "too many failed PIN attempts")
)

// ValidatePinFormat rejects anything that is not a 6-digit numeric string.
func ValidatePinFormat(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPinFormat
	}
	return nil
}
