package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tabungan-ledger/internal/domain/credential"
	"github.com/tabungan-ledger/internal/domain/shared"
)

var registerOnce sync.Once

// RegisterValidators adds the pin and money tags to gin's binding validator.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("pin", validatePin)
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("limit", validateLimit)
	})
}

// pin: exactly six digits
func validatePin(fl validator.FieldLevel) bool {
	return credential.ValidatePinFormat(fl.Field().String()) == nil
}

// money: a positive whole amount written as a decimal string
func validateMoney(fl validator.FieldLevel) bool {
	_, err := shared.ParseAmount(fl.Field().String())
	return err == nil
}

// limit: a non-negative whole amount; zero means unlimited
func validateLimit(fl validator.FieldLevel) bool {
	_, err := shared.ParseLimit(fl.Field().String())
	return err == nil
}
