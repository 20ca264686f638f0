package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tabungan-ledger/internal/domain/shared"
)

func TestValidatePinFormat(t *testing.T) {
	tests := []struct {
		pin   string
		valid bool
	}{
		{"123456", true},
		{"000000", true},
		{"00000", false},
		{"1234567", false},
		{"12345a", false},
		{"12345 6", false},
		{"", false},
		{"١٢٣٤٥٦", false},
	}

	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePinFormat(tt.pin)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPinFormat)
			}
		})
	}
}

func TestCredentialErrorsShareCategory(t *testing.T) {
	assert.Equal(t, shared.CategoryCredential, shared.Classify(ErrPinNotSet))
	assert.Equal(t, shared.CategoryCredential, shared.Classify(ErrInvalidPin))
	assert.Equal(t, shared.CategoryValidation, shared.Classify(ErrInvalidPinFormat))
}
