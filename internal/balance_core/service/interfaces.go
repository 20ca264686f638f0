package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
)

// TransactionService applies deposits and withdrawals.
type TransactionService interface {
	ApplyTransaction(ctx context.Context, actor *auth.Actor, cmd TransactionCommand) (*ledger.Entry, error)
}

// TransferService moves money between two accounts.
type TransferService interface {
	ApplyTransfer(ctx context.Context, actor *auth.Actor, cmd TransferCommand) (*TransferResult, error)
}

// PinService manages the transaction PIN of an account.
type PinService interface {
	SetPin(ctx context.Context, actor *auth.Actor, cmd SetPinCommand) error
	VerifyPin(ctx context.Context, actor *auth.Actor, accountID uuid.UUID, pin string) error
}

// AccountService opens and reads accounts.
type AccountService interface {
	OpenAccount(ctx context.Context, actor *auth.Actor, cmd OpenAccountCommand) (*OpenedAccount, error)
	GetAccount(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*account.Account, error)
	GetOwnAccount(ctx context.Context, actor *auth.Actor) (*account.Account, error)
	FindByAccountNumber(ctx context.Context, actor *auth.Actor, number string) (*account.Account, error)
}

// QueryService serves read-only ledger and transfer views.
type QueryService interface {
	ListEntries(ctx context.Context, actor *auth.Actor, filter ledger.Filter, page shared.PageRequest) (*EntryPage, error)
	ListTransfers(ctx context.Context, actor *auth.Actor, filter transfer.Filter, page shared.PageRequest) (*TransferPage, error)
	GetTransfer(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*TransferDetail, error)
}

// CredentialVerifier checks and hashes transaction PINs.
type CredentialVerifier interface {
	VerifyPin(ctx context.Context, acc *account.Account, pin string) error
	HashPin(pin string) (string, error)
}

// BalanceLedger is the shared primitive: one balance write plus one ledger
// entry on an account already row-locked in tx.
type BalanceLedger interface {
	Apply(ctx context.Context, tx pgx.Tx, acc *account.Account, m Mutation) (*ledger.Entry, error)
}

// AccountLocker takes row locks on accounts inside tx.
type AccountLocker interface {
	Lock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*account.Account, error)

	// LockPair locks both accounts in ascending id order and returns them in argument order.
	LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*account.Account, *account.Account, error)
}

// DailyLimitGuard rejects debits that would exceed an account's daily limit.
type DailyLimitGuard interface {
	Check(ctx context.Context, tx pgx.Tx, acc *account.Account, amount decimal.Decimal) error
}

// Mutation describes one balance movement handed to the BalanceLedger.
type Mutation struct {
	Kind        ledger.Kind
	Amount      decimal.Decimal
	Description string
	PerformedBy uuid.UUID
	TransferID  *uuid.UUID
}
