package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tabungan-ledger/internal/api_gateway/middleware"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/credential"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
)

const (
	invalidCredentialMessage = "Invalid credential"
	operationFailedMessage   = "Operation failed, no changes were made"
	unconfirmedMessage       = "Operation could not be confirmed, contact support before retrying"
)

// RespondWithDomainError maps an error from the balance core onto a status
// code and a client-safe message. Credential failures all look the same to
// the client; the specific reason is only logged.
func RespondWithDomainError(c *gin.Context, logger *slog.Logger, err error) {
	category := shared.Classify(err)
	logger = logger.With(
		"correlation_id", middleware.GetCorrelationID(c),
		"category", string(category),
		"error", err,
	)

	switch category {
	case shared.CategoryValidation:
		logger.Info("Request rejected")
		RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())

	case shared.CategoryCredential:
		logger.Warn("Credential check failed")
		if errors.Is(err, credential.ErrPinLocked) {
			RespondWithError(c, http.StatusTooManyRequests, "PIN_LOCKED", "Too many failed attempts, try again later")
			return
		}
		RespondWithError(c, http.StatusUnauthorized, "INVALID_CREDENTIAL", invalidCredentialMessage)

	case shared.CategoryAuthorization:
		logger.Warn("Request forbidden")
		RespondForbidden(c)

	case shared.CategoryBusinessRule:
		logger.Info("Business rule violated")
		respondBusinessRule(c, err)

	case shared.CategoryConcurrency:
		logger.Warn("Concurrency conflict not resolved by retries")
		if errors.Is(err, shared.ErrBusy) {
			RespondWithError(c, http.StatusServiceUnavailable, "ACCOUNT_BUSY", err.Error())
			return
		}
		RespondWithError(c, http.StatusConflict, "CONCURRENT_MODIFICATION", "Account was modified concurrently, try again")

	default:
		if errors.Is(err, shared.ErrLedgerInconsistency) {
			logger.Error("Operation outcome unknown", "alert", "ledger_inconsistency")
			RespondWithError(c, http.StatusInternalServerError, "OPERATION_UNCONFIRMED", unconfirmedMessage)
			return
		}
		logger.Error("Operation failed")
		RespondWithError(c, http.StatusInternalServerError, "OPERATION_FAILED", operationFailedMessage)
	}
}

func respondBusinessRule(c *gin.Context, err error) {
	switch {
	case errors.As(err, &account.ErrAccountNotFound{}),
		errors.As(err, &account.ErrAccountNumberNotFound{}),
		errors.As(err, &transfer.ErrTransferNotFound{}),
		errors.As(err, &user.ErrUserNotFound{}):
		RespondNotFound(c, err.Error())
	case errors.Is(err, transfer.ErrDestinationNotFound):
		RespondNotFound(c, err.Error())
	case errors.As(err, &account.ErrDuplicateAccount{}), errors.As(err, &user.ErrDuplicateEmail{}):
		RespondConflict(c, err.Error())
	case errors.Is(err, account.ErrInsufficientFunds):
		RespondWithError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", err.Error())
	case errors.Is(err, account.ErrDailyLimitExceeded):
		RespondWithError(c, http.StatusUnprocessableEntity, "DAILY_LIMIT_EXCEEDED", err.Error())
	default:
		RespondWithError(c, http.StatusUnprocessableEntity, "BUSINESS_RULE_VIOLATION", err.Error())
	}
}
