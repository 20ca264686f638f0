package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/api_gateway/middleware"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// AccountHandler handles HTTP requests for accounts, their PIN and their ledger
type AccountHandler struct {
	accounts service.AccountService
	pins     service.PinService
	queries  service.QueryService
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accounts service.AccountService, pins service.PinService, queries service.QueryService) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		pins:     pins,
		queries:  queries,
		logger:   logger,
	}
}

// Create opens an account together with its nasabah user
func (h *AccountHandler) Create(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cmd := service.OpenAccountCommand{
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Address:      req.Address,
		IDCardNumber: req.IDCardNumber,
		DailyLimit:   decimal.Zero,
	}
	if req.DailyLimit != "" {
		cmd.DailyLimit = decimal.RequireFromString(req.DailyLimit)
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			RespondBadRequest(c, "Invalid date_of_birth")
			return
		}
		cmd.DateOfBirth = &dob
	}

	opened, err := h.accounts.OpenAccount(c.Request.Context(), actor, cmd)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondCreated(c, OpenAccountResponse{
		User:    mapUserToResponse(opened.User),
		Account: mapAccountToResponse(opened.Account),
	})
}

// GetByID returns an account the actor may see
func (h *AccountHandler) GetByID(c *gin.Context) {
	actor, id, ok := h.actorAndAccountID(c)
	if !ok {
		return
	}

	acc, err := h.accounts.GetAccount(c.Request.Context(), actor, id)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Me returns the account held by the authenticated user
func (h *AccountHandler) Me(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	acc, err := h.accounts.GetOwnAccount(c.Request.Context(), actor)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Lookup resolves an account number to its account. Staff only.
func (h *AccountHandler) Lookup(c *gin.Context) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return
	}

	var q AccountLookupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Info("Invalid query parameters", "error", err)
		RespondBadRequest(c, "account_number must be 10 digits")
		return
	}

	acc, err := h.accounts.FindByAccountNumber(c.Request.Context(), actor, q.AccountNumber)
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// Ledger returns a filtered page of the account's ledger, newest first
func (h *AccountHandler) Ledger(c *gin.Context) {
	actor, id, ok := h.actorAndAccountID(c)
	if !ok {
		return
	}

	var q LedgerQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Info("Invalid query parameters", "error", err)
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := ledger.Filter{
		AccountID: id,
		Kind:      ledger.Kind(q.Kind),
		Search:    q.Search,
	}
	if q.DateFrom != "" {
		from, _ := time.Parse(dateLayout, q.DateFrom)
		filter.DateFrom = &from
	}
	if q.DateTo != "" {
		to, _ := time.Parse(dateLayout, q.DateTo)
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		RespondBadRequest(c, "date_to must not be before date_from")
		return
	}

	page, err := h.queries.ListEntries(c.Request.Context(), actor, filter, shared.PageRequest{Page: q.Page, PerPage: q.PerPage})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondWithPaginatedData(c, http.StatusOK, mapEntries(page.Entries), page.Page, page.PerPage, int(page.Total))
}

// SetPin configures the account PIN. Only the owning nasabah may do this.
func (h *AccountHandler) SetPin(c *gin.Context) {
	actor, id, ok := h.actorAndAccountID(c)
	if !ok {
		return
	}

	var req SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// never echo PIN values back
		h.logger.Info("Invalid PIN request")
		RespondBadRequest(c, "PIN must be exactly 6 digits")
		return
	}

	err := h.pins.SetPin(c.Request.Context(), actor, service.SetPinCommand{
		AccountID:  id,
		Pin:        req.Pin,
		CurrentPin: req.CurrentPin,
	})
	if err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// VerifyPin lets a client check a PIN before submitting a mutation
func (h *AccountHandler) VerifyPin(c *gin.Context) {
	actor, id, ok := h.actorAndAccountID(c)
	if !ok {
		return
	}

	var req VerifyPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Info("Invalid PIN request")
		RespondBadRequest(c, "PIN must be exactly 6 digits")
		return
	}

	if err := h.pins.VerifyPin(c.Request.Context(), actor, id, req.Pin); err != nil {
		RespondWithDomainError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"valid": true})
}

func (h *AccountHandler) actorAndAccountID(c *gin.Context) (*auth.Actor, uuid.UUID, bool) {
	actor := middleware.GetActor(c)
	if actor == nil {
		RespondUnauthorized(c, "")
		return nil, uuid.Nil, false
	}

	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Info("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return nil, uuid.Nil, false
	}
	return actor, id, true
}
