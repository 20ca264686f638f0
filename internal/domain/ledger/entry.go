package ledger

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Kind is the type of balance movement an entry records.
type Kind string

const (
	KindDeposit     Kind = "deposit"
	KindWithdrawal  Kind = "withdrawal"
	KindTransferIn  Kind = "transfer_in"
	KindTransferOut Kind = "transfer_out"
)

var (
	ErrInvalidKind     = shared.NewError(shared.CategoryValidation, "invalid ledger entry kind")
	ErrBalanceMismatch = shared.NewError(shared.CategoryPersistence, "ledger entry balances do not match its amount")
)

// Valid reports whether k is a known entry kind.
func (k Kind) Valid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransferIn, KindTransferOut:
		return true
	}
	return false
}

// IsDebit reports whether the kind reduces the account balance.
func (k Kind) IsDebit() bool {
	return k == KindWithdrawal || k == KindTransferOut
}

// Delta returns the signed balance change for amount under this kind.
func (k Kind) Delta(amount decimal.Decimal) decimal.Decimal {
	if k.IsDebit() {
		return amount.Neg()
	}
	return amount
}

// Entry is an immutable record of one balance-affecting event.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	Kind            Kind            `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	BalanceBefore   decimal.Decimal `json:"balance_before"`
	BalanceAfter    decimal.Decimal `json:"balance_after"`
	Description     string          `json:"description,omitempty"`
	PerformedBy     uuid.UUID       `json:"performed_by"`
	TransferID      *uuid.UUID      `json:"transfer_id,omitempty"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewEntry builds an entry for a movement from balanceBefore by amount.
func NewEntry(accountID uuid.UUID, kind Kind, amount, balanceBefore decimal.Decimal, description string, performedBy uuid.UUID, transferID *uuid.UUID) (*Entry, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if err := shared.ValidateAmount(amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Entry{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            kind,
		Amount:          amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceBefore.Add(kind.Delta(amount)),
		Description:     description,
		PerformedBy:     performedBy,
		TransferID:      transferID,
		TransactionDate: TransactionDate(now),
		CreatedAt:       now,
	}, nil
}

// Consistent checks balance_after = balance_before ± amount.
func (e *Entry) Consistent() bool {
	return e.BalanceBefore.Add(e.Kind.Delta(e.Amount)).Equal(e.BalanceAfter)
}

var businessLocation atomic.Pointer[time.Location]

// SetLocation sets the time zone whose calendar days bucket entries and
// daily limits. It is called once at startup; the default is UTC.
func SetLocation(loc *time.Location) {
	businessLocation.Store(loc)
}

// Location returns the business time zone.
func Location() *time.Location {
	if loc := businessLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// TransactionDate returns the business day t falls on, as midnight UTC of
// that date so it maps onto a DATE column unchanged.
func TransactionDate(t time.Time) time.Time {
	return DateOnly(t.In(Location()))
}

// DateOnly keeps the calendar date of t in its own location. Use it for
// values that already are dates, such as query filters.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
