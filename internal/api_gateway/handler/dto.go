package handler

import (
	"time"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
)

const dateLayout = "2006-01-02"

// CreateTransactionRequest is a teller deposit or withdrawal. Amounts are
// decimal strings so no precision is lost in JSON.
type CreateTransactionRequest struct {
	AccountID   string `json:"account_id" binding:"required,uuid"`
	Kind        string `json:"kind" binding:"required,oneof=deposit withdrawal"`
	Amount      string `json:"amount" binding:"required,money"`
	Description string `json:"description" binding:"max=255"`
	Pin         string `json:"pin" binding:"required,pin"`
}

// CreateTransferRequest moves money to another account by its number
type CreateTransferRequest struct {
	FromAccountID   string `json:"from_account_id" binding:"required,uuid"`
	ToAccountNumber string `json:"to_account_number" binding:"required,len=10,numeric"`
	Amount          string `json:"amount" binding:"required,money"`
	Description     string `json:"description" binding:"max=255"`
	Pin             string `json:"pin" binding:"required,pin"`
}

// SetPinRequest sets or replaces an account PIN
type SetPinRequest struct {
	Pin        string `json:"pin" binding:"required,pin"`
	CurrentPin string `json:"current_pin" binding:"omitempty,pin"`
}

// VerifyPinRequest checks a PIN without moving money
type VerifyPinRequest struct {
	Pin string `json:"pin" binding:"required,pin"`
}

// OpenAccountRequest creates a nasabah and its account
type OpenAccountRequest struct {
	Email        string `json:"email" binding:"required,email"`
	FullName     string `json:"full_name" binding:"required,max=255"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
	Address      string `json:"address" binding:"omitempty,max=500"`
	IDCardNumber string `json:"id_card_number" binding:"omitempty,max=32"`
	DateOfBirth  string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	DailyLimit   string `json:"daily_limit" binding:"omitempty,limit"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// AccountLookupQuery resolves an account by its external number
type AccountLookupQuery struct {
	AccountNumber string `form:"account_number" binding:"required,len=10,numeric"`
}

// LedgerQuery filters an account's ledger
type LedgerQuery struct {
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	Kind     string `form:"kind" binding:"omitempty,oneof=deposit withdrawal transfer_in transfer_out"`
	Search   string `form:"search" binding:"max=100"`
	PaginationParams
}

// TransferQuery filters the transfer listing
type TransferQuery struct {
	AccountID string `form:"account_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending completed failed"`
	PaginationParams
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID              string  `json:"id"`
	AccountID       string  `json:"account_id"`
	Kind            string  `json:"kind"`
	Amount          string  `json:"amount"`
	BalanceBefore   string  `json:"balance_before"`
	BalanceAfter    string  `json:"balance_after"`
	Description     string  `json:"description,omitempty"`
	PerformedBy     string  `json:"performed_by"`
	TransferID      *string `json:"transfer_id,omitempty"`
	TransactionDate string  `json:"transaction_date"`
	CreatedAt       string  `json:"created_at"`
}

// TransactionResponse is the result of a deposit or withdrawal
type TransactionResponse struct {
	EntryID string `json:"entry_id"`
	EntryResponse
}

// TransferResponse represents a transfer record in API responses
type TransferResponse struct {
	TransferID    string          `json:"transfer_id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        string          `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Status        string          `json:"status"`
	PerformedBy   string          `json:"performed_by"`
	BalanceAfter  string          `json:"balance_after,omitempty"`
	CreatedAt     string          `json:"created_at"`
	CompletedAt   string          `json:"completed_at,omitempty"`
	Entries       []EntryResponse `json:"entries,omitempty"`
}

// AccountResponse represents an account in API responses. The PIN hash never leaves the service.
type AccountResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	DailyLimit    string `json:"daily_limit"`
	HasPin        bool   `json:"has_pin"`
	Address       string `json:"address,omitempty"`
	IDCardNumber  string `json:"id_card_number,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	Version       int    `json:"version"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// OpenAccountResponse is the user and account created together
type OpenAccountResponse struct {
	User    UserResponse    `json:"user"`
	Account AccountResponse `json:"account"`
}

func mapEntryToResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:              e.ID.String(),
		AccountID:       e.AccountID.String(),
		Kind:            string(e.Kind),
		Amount:          e.Amount.String(),
		BalanceBefore:   e.BalanceBefore.String(),
		BalanceAfter:    e.BalanceAfter.String(),
		Description:     e.Description,
		PerformedBy:     e.PerformedBy.String(),
		TransactionDate: e.TransactionDate.Format(dateLayout),
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.TransferID != nil {
		id := e.TransferID.String()
		resp.TransferID = &id
	}
	return resp
}

func mapEntries(entries []*ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, mapEntryToResponse(e))
	}
	return out
}

func mapTransferToResponse(r *transfer.Record) TransferResponse {
	resp := TransferResponse{
		TransferID:    r.ID.String(),
		FromAccountID: r.FromAccountID.String(),
		ToAccountID:   r.ToAccountID.String(),
		Amount:        r.Amount.String(),
		Description:   r.Description,
		Status:        string(r.Status),
		PerformedBy:   r.PerformedBy.String(),
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		resp.CompletedAt = r.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

func mapTransferResult(res *service.TransferResult) TransferResponse {
	resp := mapTransferToResponse(res.Record)
	if res.SourceEntry != nil {
		resp.BalanceAfter = res.SourceEntry.BalanceAfter.String()
	}
	for _, e := range []*ledger.Entry{res.SourceEntry, res.DestinationEntry} {
		if e != nil {
			resp.Entries = append(resp.Entries, mapEntryToResponse(e))
		}
	}
	return resp
}

func mapAccountToResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:            acc.ID.String(),
		UserID:        acc.UserID.String(),
		AccountNumber: acc.AccountNumber,
		Balance:       acc.Balance.String(),
		DailyLimit:    acc.DailyLimit.String(),
		HasPin:        acc.HasPin(),
		Address:       acc.Address,
		IDCardNumber:  acc.IDCardNumber,
		Version:       acc.Version,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     acc.UpdatedAt.Format(time.RFC3339),
	}
	if acc.DateOfBirth != nil {
		resp.DateOfBirth = acc.DateOfBirth.Format(dateLayout)
	}
	return resp
}

func mapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:       u.ID.String(),
		Email:    u.Email,
		FullName: u.FullName,
		Phone:    u.Phone,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}
