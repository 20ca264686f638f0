package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/api_gateway/middleware"
	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
)

// TransferHandler handles HTTP requests for transfers between accounts
type TransferHandler struct {
	transfers service.TransferService
	queries   service.QueryService
	logger    *slog.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transfers service.TransferService, queries service.QueryService) *TransferHandler {
	return &TransferHandler{
		transfers: transfers,
		queries:   queries,
		logger:    logger,
	}
}

// Create moves money to the account with the given number
func (h *TransferHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.transfers.ApplyTransfer(c.Request.Context(), actor, service.TransferCommand{
		FromAccountID:   uuid.MustParse(req.FromAccountID),
		ToAccountNumber: req.ToAccountNumber,
		Amount:          decimal.RequireFromString(req.Amount),
		Description:     req.Description,
		Pin:             req.Pin,
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapTransferResult(result))
}

// List returns transfers, newest first. A nasabah only sees its own.
func (h *TransferHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	var q TransferQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Info("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := transfer.Filter{Status: transfer.Status(q.Status)}
	if q.AccountID != "" {
		id := uuid.MustParse(q.AccountID)
		filter.AccountID = &id
	}

	page, err := h.queries.ListTransfers(c.Request.Context(), actor, filter, shared.PageRequest{Page: q.Page, PerPage: q.PerPage})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	records := make([]TransferResponse, 0, len(page.Records))
	for _, r := range page.Records {
		records = append(records, mapTransferToResponse(r))
	}
	RespondWithPaginatedData(c, http.StatusOK, records, page.Page, page.PerPage, int(page.Total))
}

// GetByID returns one transfer with both of its ledger entries
func (h *TransferHandler) GetByID(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Info("Invalid transfer ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	detail, err := h.queries.GetTransfer(c.Request.Context(), actor, id)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	resp := mapTransferToResponse(detail.Record)
	resp.Entries = mapEntries(detail.Entries)
	RespondOK(c, resp)
}
