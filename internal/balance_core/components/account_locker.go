package components

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

// AccountLockerImpl takes SELECT ... FOR UPDATE locks under a bounded lock timeout.
type AccountLockerImpl struct {
	accountRepo account.Repository
	lockTimeout time.Duration
	logger      *slog.Logger
}

func NewAccountLocker(accountRepo account.Repository, lockTimeout time.Duration, logger *slog.Logger) service.AccountLocker {
	return &AccountLockerImpl{
		accountRepo: accountRepo,
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

func (l *AccountLockerImpl) Lock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*account.Account, error) {
	if err := persistence.SetLockTimeout(ctx, tx, l.lockTimeout); err != nil {
		return nil, err
	}
	acc, err := l.accountRepo.WithTx(tx).LockForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Account locked", "account_id", id.String(), "version", acc.Version)
	return acc, nil
}

// LockPair always locks the lower id first so two opposing transfers cannot deadlock.
func (l *AccountLockerImpl) LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*account.Account, *account.Account, error) {
	if err := persistence.SetLockTimeout(ctx, tx, l.lockTimeout); err != nil {
		return nil, nil, err
	}

	first, second := a, b
	if bytes.Compare(a[:], b[:]) > 0 {
		first, second = b, a
	}

	repo := l.accountRepo.WithTx(tx)
	firstAcc, err := repo.LockForUpdate(ctx, first)
	if err != nil {
		return nil, nil, err
	}
	secondAcc, err := repo.LockForUpdate(ctx, second)
	if err != nil {
		return nil, nil, err
	}
	l.logger.Debug("Account pair locked", "first", first.String(), "second", second.String())

	if first == a {
		return firstAcc, secondAcc, nil
	}
	return secondAcc, firstAcc, nil
}
