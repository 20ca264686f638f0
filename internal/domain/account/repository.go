package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// Repository defines account persistence operations
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)

	// UpdateBalance writes the new balance only if the stored version still equals version.
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error

	// UpdatePinHash swaps the PIN hash only if the stored one still equals
	// previousHash ("" when no PIN is set).
	UpdatePinHash(ctx context.Context, id uuid.UUID, previousHash, pinHash string) error

	// LockForUpdate acquires a pessimistic lock for transaction processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Account, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}

func (e ErrConcurrentModification) Category() shared.ErrorCategory {
	return shared.CategoryConcurrency
}

// Is matches any ErrConcurrentModification when the target carries no account id.
func (e ErrConcurrentModification) Is(target error) bool {
	t, ok := target.(ErrConcurrentModification)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

func (e ErrAccountNotFound) Category() shared.ErrorCategory {
	return shared.CategoryBusinessRule
}

// Is matches any ErrAccountNotFound when the target carries no account id.
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == uuid.Nil || e.AccountID == t.AccountID
}

// ErrAccountNumberNotFound indicates that no account carries the given number
type ErrAccountNumberNotFound struct {
	AccountNumber string
}

func (e ErrAccountNumberNotFound) Error() string {
	return "account number not found: " + e.AccountNumber
}

func (e ErrAccountNumberNotFound) Category() shared.ErrorCategory {
	return shared.CategoryBusinessRule
}

// ErrDuplicateAccount indicates an account number or owner uniqueness violation
type ErrDuplicateAccount struct {
	AccountNumber string
}

func (e ErrDuplicateAccount) Error() string {
	return "account already exists: " + e.AccountNumber
}

func (e ErrDuplicateAccount) Category() shared.ErrorCategory {
	return shared.CategoryBusinessRule
}
