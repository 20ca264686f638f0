package transfer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Status is the lifecycle state of a transfer record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Default descriptions written on the two ledger entries of a transfer.
const (
	DefaultOutgoingDescription = "Transfer keluar"
	DefaultIncomingDescription = "Transfer masuk"
)

var (
	ErrSelfTransfer            = shared.NewError(shared.CategoryValidation, "cannot transfer to the same account")
	ErrDestinationNotFound     = shared.NewError(shared.CategoryBusinessRule, "destination account not found")
	ErrInvalidStatusTransition = shared.NewError(shared.CategoryPersistence, "invalid transfer status transition")
	ErrInvalidStatus           = shared.NewError(shared.CategoryValidation, "invalid transfer status")
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Record groups the two ledger entries of a transfer.
type Record struct {
	ID            uuid.UUID       `json:"id"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Status        Status          `json:"status"`
	PerformedBy   uuid.UUID       `json:"performed_by"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// NewRecord creates a pending transfer between two distinct accounts.
func NewRecord(from, to uuid.UUID, amount decimal.Decimal, description string, performedBy uuid.UUID) (*Record, error) {
	if from == to {
		return nil, ErrSelfTransfer
	}
	if err := shared.ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Record{
		ID:            uuid.New(),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Description:   description,
		Status:        StatusPending,
		PerformedBy:   performedBy,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// Complete moves a pending record to completed.
func (r *Record) Complete() error {
	if r.Status != StatusPending {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	r.Status = StatusCompleted
	r.CompletedAt = &now
	return nil
}

// Fail moves a pending record to failed.
func (r *Record) Fail() error {
	if r.Status != StatusPending {
		return ErrInvalidStatusTransition
	}
	r.Status = StatusFailed
	return nil
}

// OutgoingDescription is the description written on the source entry.
func (r *Record) OutgoingDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return DefaultOutgoingDescription
}

// IncomingDescription is the description written on the destination entry.
func (r *Record) IncomingDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return DefaultIncomingDescription
}
