package transfer

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Filter narrows a transfer listing. AccountID matches either side.
type Filter struct {
	AccountID *uuid.UUID
	Status    Status
}

// Repository manages transfer record persistence. Records are never deleted;
// only their status changes, and only out of pending.
type Repository interface {
	Create(ctx context.Context, record *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	List(ctx context.Context, filter Filter, page shared.PageRequest) ([]*Record, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// UpdateStatus transitions a pending record. It fails with
	// ErrInvalidStatusTransition when the stored record is not pending.
	UpdateStatus(ctx context.Context, record *Record) error
	WithTx(tx pgx.Tx) Repository
}

// ErrTransferNotFound indicates a missing transfer record
type ErrTransferNotFound struct {
	TransferID uuid.UUID
}

func (e ErrTransferNotFound) Error() string {
	return "transfer not found: " + e.TransferID.String()
}

func (e ErrTransferNotFound) Category() shared.ErrorCategory {
	return shared.CategoryBusinessRule
}
