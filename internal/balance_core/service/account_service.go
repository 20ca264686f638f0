package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/user"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

const accountNumberAttempts = 5

type AccountServiceImpl struct {
	db       persistence.TxBeginner
	users    user.Repository
	accounts account.Repository
	recorder activity.Recorder
	logger   *slog.Logger

	generateNumber func() (string, error)
}

func NewAccountService(db persistence.TxBeginner, users user.Repository, accounts account.Repository, recorder activity.Recorder, logger *slog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{
		db:             db,
		users:          users,
		accounts:       accounts,
		recorder:       recorder,
		logger:         logger,
		generateNumber: account.GenerateAccountNumber,
	}
}

// OpenAccount creates a nasabah user and its zero-balance account together.
// A colliding account number is regenerated a few times before giving up.
func (s *AccountServiceImpl) OpenAccount(ctx context.Context, actor *auth.Actor, cmd OpenAccountCommand) (*OpenedAccount, error) {
	if err := actor.Authorize(auth.OpOpenAccount, nil); err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	owner, err := user.NewUser(cmd.Email, cmd.FullName, cmd.Phone, user.RoleNasabah)
	if err != nil {
		return nil, err
	}

	var opened *OpenedAccount
	for attempt := 1; attempt <= accountNumberAttempts; attempt++ {
		number, err := s.generateNumber()
		if err != nil {
			return nil, fmt.Errorf("failed to generate account number: %w", err)
		}
		acc, err := account.NewAccount(owner.ID, number, cmd.DailyLimit)
		if err != nil {
			return nil, err
		}
		acc.Address = cmd.Address
		acc.IDCardNumber = cmd.IDCardNumber
		acc.DateOfBirth = cmd.DateOfBirth

		err = persistence.RunInTx(ctx, s.db, func(tx pgx.Tx) error {
			if err := s.users.WithTx(tx).Create(ctx, owner); err != nil {
				return err
			}
			return s.accounts.WithTx(tx).Create(ctx, acc)
		})
		if err == nil {
			opened = &OpenedAccount{User: owner, Account: acc}
			break
		}
		if !errors.As(err, &account.ErrDuplicateAccount{}) {
			return nil, err
		}
		s.logger.Warn("Account number collision, regenerating", "attempt", attempt)
	}
	if opened == nil {
		return nil, fmt.Errorf("failed to allocate a unique account number after %d attempts", accountNumberAttempts)
	}

	s.logger.Info("Account opened",
		"account_id", opened.Account.ID.String(),
		"user_id", owner.ID.String(),
		"actor_id", actor.UserID.String(),
	)
	s.recorder.Record(ctx, activity.NewEvent(actor.UserID, activity.ActionCreate, activity.EntityNasabah, opened.Account.ID.String(),
		map[string]any{
			"account_number": opened.Account.AccountNumber,
			"email":          owner.Email,
		}))

	return opened, nil
}

// GetAccount returns an account the actor may see.
func (s *AccountServiceImpl) GetAccount(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*account.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.OpViewAccount, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetOwnAccount returns the account held by the actor itself.
func (s *AccountServiceImpl) GetOwnAccount(ctx context.Context, actor *auth.Actor) (*account.Account, error) {
	if err := actor.Authorize(auth.OpViewAccount, nil); err != nil {
		return nil, err
	}
	acc, err := s.accounts.GetByUserID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.OpViewAccount, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// FindByAccountNumber resolves an account number for staff, who address
// accounts by id in every other call.
func (s *AccountServiceImpl) FindByAccountNumber(ctx context.Context, actor *auth.Actor, number string) (*account.Account, error) {
	if err := actor.Authorize(auth.OpSearchAccounts, nil); err != nil {
		return nil, err
	}
	if !account.ValidAccountNumber(number) {
		return nil, account.ErrInvalidAccountNumber
	}
	return s.accounts.GetByAccountNumber(ctx, number)
}
