package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/user"
)

func openCommand() OpenAccountCommand {
	return OpenAccountCommand{
		Email:      "Siti@Example.com",
		FullName:   "Siti Rahma",
		Phone:      "08123456789",
		Address:    "Jl. Merdeka 1",
		DailyLimit: amount(5000000),
	}
}

func TestAccountService_OpenAccount(t *testing.T) {
	ctx := context.Background()
	actor := teller()

	t.Run("creates user and account in one transaction", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		users := new(MockUserRepo)
		accounts := new(MockAccountRepo)
		recorder := new(MockRecorder)

		pool.ExpectBegin()
		users.On("Create", ctx, mock.MatchedBy(func(u *user.User) bool {
			return u.Email == "siti@example.com" && u.Role == user.RoleNasabah && u.IsActive
		})).Return(nil)
		accounts.On("Create", ctx, mock.MatchedBy(func(a *account.Account) bool {
			return a.AccountNumber == "1000000001" && a.Balance.IsZero() && !a.HasPin() && a.Address == "Jl. Merdeka 1"
		})).Return(nil)
		pool.ExpectCommit()
		recorder.On("Record", ctx, mock.MatchedBy(func(e *activity.Event) bool {
			return e.EntityType == activity.EntityNasabah && e.Details["account_number"] == "1000000001"
		})).Return()

		s := NewAccountService(pool, users, accounts, recorder, testLogger)
		s.generateNumber = func() (string, error) { return "1000000001", nil }

		opened, err := s.OpenAccount(ctx, actor, openCommand())

		require.NoError(t, err)
		assert.Equal(t, opened.User.ID, opened.Account.UserID)
		assert.True(t, opened.Account.DailyLimit.Equal(amount(5000000)))
		users.AssertExpectations(t)
		accounts.AssertExpectations(t)
		recorder.AssertExpectations(t)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("regenerates a colliding account number", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		users := new(MockUserRepo)
		accounts := new(MockAccountRepo)
		recorder := new(MockRecorder)

		numbers := []string{"1000000001", "1000000002"}
		pool.ExpectBegin()
		pool.ExpectRollback()
		pool.ExpectBegin()
		pool.ExpectCommit()
		users.On("Create", ctx, mock.Anything).Return(nil)
		accounts.On("Create", ctx, mock.MatchedBy(func(a *account.Account) bool { return a.AccountNumber == "1000000001" })).
			Return(account.ErrDuplicateAccount{AccountNumber: "1000000001"})
		accounts.On("Create", ctx, mock.MatchedBy(func(a *account.Account) bool { return a.AccountNumber == "1000000002" })).
			Return(nil)
		recorder.On("Record", ctx, mock.Anything).Return()

		s := NewAccountService(pool, users, accounts, recorder, testLogger)
		s.generateNumber = func() (string, error) {
			n := numbers[0]
			numbers = numbers[1:]
			return n, nil
		}

		opened, err := s.OpenAccount(ctx, actor, openCommand())

		require.NoError(t, err)
		assert.Equal(t, "1000000002", opened.Account.AccountNumber)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("duplicate email is not retried", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		users := new(MockUserRepo)

		pool.ExpectBegin()
		pool.ExpectRollback()
		users.On("Create", ctx, mock.Anything).Return(user.ErrDuplicateEmail{Email: "siti@example.com"})

		s := NewAccountService(pool, users, new(MockAccountRepo), new(MockRecorder), testLogger)
		s.generateNumber = func() (string, error) { return "1000000001", nil }

		_, err = s.OpenAccount(ctx, actor, openCommand())

		assert.True(t, errors.As(err, &user.ErrDuplicateEmail{}))
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("validation and authorization", func(t *testing.T) {
		s := NewAccountService(nil, new(MockUserRepo), new(MockAccountRepo), new(MockRecorder), testLogger)

		cmd := openCommand()
		cmd.DailyLimit = amount(-1)
		_, err := s.OpenAccount(ctx, actor, cmd)
		assert.ErrorIs(t, err, account.ErrInvalidDailyLimit)

		cmd = openCommand()
		cmd.Email = "not-an-email"
		_, err = s.OpenAccount(ctx, actor, cmd)
		assert.ErrorIs(t, err, user.ErrInvalidEmail)

		_, err = s.OpenAccount(ctx, nasabah(), openCommand())
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestAccountService_GetAccount(t *testing.T) {
	ctx := context.Background()
	owner := nasabah()
	acc := testAccount(owner.UserID, 1000)

	accounts := new(MockAccountRepo)
	accounts.On("GetByID", ctx, acc.ID).Return(acc, nil)
	s := NewAccountService(nil, new(MockUserRepo), accounts, new(MockRecorder), testLogger)

	got, err := s.GetAccount(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.Same(t, acc, got)

	got, err = s.GetAccount(ctx, teller(), acc.ID)
	require.NoError(t, err)
	assert.Same(t, acc, got)

	_, err = s.GetAccount(ctx, nasabah(), acc.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	missing := uuid.New()
	accounts.On("GetByID", ctx, missing).Return(nil, account.ErrAccountNotFound{AccountID: missing})
	_, err = s.GetAccount(ctx, owner, missing)
	assert.ErrorIs(t, err, account.ErrAccountNotFound{})
}

func TestAccountService_GetOwnAccount(t *testing.T) {
	ctx := context.Background()
	owner := nasabah()
	acc := testAccount(owner.UserID, 1000)

	t.Run("nasabah gets its own account", func(t *testing.T) {
		accounts := new(MockAccountRepo)
		accounts.On("GetByUserID", ctx, owner.UserID).Return(acc, nil)
		s := NewAccountService(nil, new(MockUserRepo), accounts, new(MockRecorder), testLogger)

		got, err := s.GetOwnAccount(ctx, owner)

		require.NoError(t, err)
		assert.Same(t, acc, got)
	})

	t.Run("no account yet", func(t *testing.T) {
		staff := teller()
		accounts := new(MockAccountRepo)
		accounts.On("GetByUserID", ctx, staff.UserID).Return(nil, account.ErrAccountNotFound{})
		s := NewAccountService(nil, new(MockUserRepo), accounts, new(MockRecorder), testLogger)

		_, err := s.GetOwnAccount(ctx, staff)

		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
	})
}

func TestAccountService_FindByAccountNumber(t *testing.T) {
	ctx := context.Background()
	acc := testAccount(uuid.New(), 1000)

	tests := []struct {
		name      string
		actor     func() *auth.Actor
		number    string
		setupMock func(m *MockAccountRepo)
		wantErr   error
	}{
		{
			name:   "staff resolves a number",
			actor:  teller,
			number: acc.AccountNumber,
			setupMock: func(m *MockAccountRepo) {
				m.On("GetByAccountNumber", ctx, acc.AccountNumber).Return(acc, nil)
			},
		},
		{
			name:   "unknown number",
			actor:  teller,
			number: "0000000000",
			setupMock: func(m *MockAccountRepo) {
				m.On("GetByAccountNumber", ctx, "0000000000").
					Return(nil, account.ErrAccountNumberNotFound{AccountNumber: "0000000000"})
			},
			wantErr: account.ErrAccountNumberNotFound{AccountNumber: "0000000000"},
		},
		{
			name:    "malformed number",
			actor:   teller,
			number:  "12-34",
			wantErr: account.ErrInvalidAccountNumber,
		},
		{
			name:    "nasabah cannot search",
			actor:   nasabah,
			number:  acc.AccountNumber,
			wantErr: shared.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountRepo)
			if tt.setupMock != nil {
				tt.setupMock(accounts)
			}
			s := NewAccountService(nil, new(MockUserRepo), accounts, new(MockRecorder), testLogger)

			got, err := s.FindByAccountNumber(ctx, tt.actor(), tt.number)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Same(t, acc, got)
			}
			accounts.AssertExpectations(t)
		})
	}
}
