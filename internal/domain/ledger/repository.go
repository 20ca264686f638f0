package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Filter narrows a ledger query to one account.
type Filter struct {
	AccountID uuid.UUID
	DateFrom  *time.Time // inclusive, on transaction date
	DateTo    *time.Time // inclusive, on transaction date
	Kind      Kind
	Search    string // case-insensitive match on description
}

// Repository manages append-only ledger entry persistence with pagination support
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	List(ctx context.Context, filter Filter, page shared.PageRequest) ([]*Entry, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*Entry, error)

	// SumDebits totals withdrawals and outgoing transfers on the given transaction date.
	SumDebits(ctx context.Context, accountID uuid.UUID, day time.Time) (decimal.Decimal, error)
	WithTx(tx pgx.Tx) Repository
}
