// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a pgx.Tx so the balance mutation core can
// lock, update and append within one database transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

const accountColumns = `id, user_id, account_number, balance, COALESCE(pin_hash, ''), daily_limit,
		COALESCE(address, ''), COALESCE(id_card_number, ''), date_of_birth, version, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository.
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository bound to tx.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.UserID,
		&acc.AccountNumber,
		&acc.Balance,
		&acc.PinHash,
		&acc.DailyLimit,
		&acc.Address,
		&acc.IDCardNumber,
		&acc.DateOfBirth,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Create stores a new account. Duplicate account numbers or owners yield ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, account_number, balance, pin_hash, daily_limit, address, id_card_number, date_of_birth, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)
	`

	_, err := r.querier.Exec(ctx, query,
		acc.ID,
		acc.UserID,
		acc.AccountNumber,
		acc.Balance,
		acc.PinHash,
		acc.DailyLimit,
		acc.Address,
		acc.IDCardNumber,
		acc.DateOfBirth,
		acc.Version,
		acc.CreatedAt,
		acc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return account.ErrDuplicateAccount{AccountNumber: acc.AccountNumber}
		}
		r.logger.Error("Failed to create account", "account_number", acc.AccountNumber, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByUserID retrieves the account owned by a user
func (r *AccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{}
		}
		r.logger.Error("Failed to get account by owner", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account by owner: %w", err)
	}

	return acc, nil
}

// GetByAccountNumber retrieves an account by its externally visible number
func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_number = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNumberNotFound{AccountNumber: accountNumber}
		}
		r.logger.Error("Failed to get account by number", "account_number", accountNumber, "error", err)
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}

	return acc, nil
}

// UpdateBalance stores balance if the row still carries version, bumping the version.
// Returns ErrConcurrentModification if another writer got there first.
func (r *AccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error {
	query := `
		UPDATE accounts
		SET balance = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	result, err := r.querier.Exec(ctx, query, balance, id, version)
	if err != nil {
		if isSerializationConflict(err) {
			return account.ErrConcurrentModification{AccountID: id}
		}
		r.logger.Error("Failed to update account balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: id}
	}

	return nil
}

// UpdatePinHash replaces the stored PIN hash if it has not changed since it was read.
func (r *AccountRepository) UpdatePinHash(ctx context.Context, id uuid.UUID, previousHash, pinHash string) error {
	query := `
		UPDATE accounts
		SET pin_hash = $1, updated_at = NOW()
		WHERE id = $2 AND COALESCE(pin_hash, '') = $3
	`

	result, err := r.querier.Exec(ctx, query, pinHash, id, previousHash)
	if err != nil {
		r.logger.Error("Failed to update PIN hash", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update PIN hash: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: id}
	}

	return nil
}

// LockForUpdate obtains a row lock on the account and returns its current state.
// A lock wait beyond the transaction's lock_timeout yields shared.ErrBusy.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, account.ErrAccountNotFound{AccountID: id}
		case isLockTimeout(err):
			r.logger.Warn("Timed out waiting for account lock", "id", id.String())
			return nil, fmt.Errorf("lock account %s: %w", id, shared.ErrBusy)
		case isSerializationConflict(err):
			return nil, account.ErrConcurrentModification{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}
