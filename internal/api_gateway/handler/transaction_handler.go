package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/api_gateway/middleware"
	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/ledger"
)

// TransactionHandler handles HTTP requests for deposits and withdrawals
type TransactionHandler struct {
	transactions service.TransactionService
	logger       *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactions service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// Create applies a deposit or withdrawal synchronously and returns the ledger entry it wrote
func (h *TransactionHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// binding already validated both
	accountID := uuid.MustParse(req.AccountID)
	amount := decimal.RequireFromString(req.Amount)

	entry, err := h.transactions.ApplyTransaction(c.Request.Context(), actor, service.TransactionCommand{
		AccountID:   accountID,
		Kind:        ledger.Kind(req.Kind),
		Amount:      amount,
		Description: req.Description,
		Pin:         req.Pin,
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, TransactionResponse{
		EntryID:       entry.ID.String(),
		EntryResponse: mapEntryToResponse(entry),
	})
}
