package service

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
)

var testLogger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// noRetry keeps unit tests from sleeping.
var noRetry = RetryPolicy{MaxRetries: 0}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockLocker) LockPair(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) (*account.Account, *account.Account, error) {
	args := m.Called(ctx, tx, a, b)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Get(1).(*account.Account), args.Error(2)
}

type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) VerifyPin(ctx context.Context, acc *account.Account, pin string) error {
	return m.Called(ctx, acc, pin).Error(0)
}

func (m *MockCredentials) HashPin(pin string) (string, error) {
	args := m.Called(pin)
	return args.String(0), args.Error(1)
}

type MockLimits struct {
	mock.Mock
}

func (m *MockLimits) Check(ctx context.Context, tx pgx.Tx, acc *account.Account, amount decimal.Decimal) error {
	return m.Called(ctx, tx, acc, amount).Error(0)
}

type MockBalanceLedger struct {
	mock.Mock
}

func (m *MockBalanceLedger) Apply(ctx context.Context, tx pgx.Tx, acc *account.Account, mut Mutation) (*ledger.Entry, error) {
	args := m.Called(ctx, tx, acc, mut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, event *activity.Event) {
	m.Called(ctx, event)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	return m.Called(ctx, acc).Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByAccountNumber(ctx context.Context, number string) (*account.Account, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error {
	return m.Called(ctx, id, balance, version).Error(0)
}

func (m *MockAccountRepo) UpdatePinHash(ctx context.Context, id uuid.UUID, previousHash, pinHash string) error {
	return m.Called(ctx, id, previousHash, pinHash).Error(0)
}

func (m *MockAccountRepo) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) WithTx(pgx.Tx) account.Repository {
	return m
}

type MockTransferRepo struct {
	mock.Mock
}

func (m *MockTransferRepo) Create(ctx context.Context, record *transfer.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTransferRepo) GetByID(ctx context.Context, id uuid.UUID) (*transfer.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transfer.Record), args.Error(1)
}

func (m *MockTransferRepo) List(ctx context.Context, filter transfer.Filter, page shared.PageRequest) ([]*transfer.Record, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transfer.Record), args.Error(1)
}

func (m *MockTransferRepo) Count(ctx context.Context, filter transfer.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransferRepo) UpdateStatus(ctx context.Context, record *transfer.Record) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTransferRepo) WithTx(pgx.Tx) transfer.Repository {
	return m
}

type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) Append(ctx context.Context, entry *ledger.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepo) List(ctx context.Context, filter ledger.Filter, page shared.PageRequest) ([]*ledger.Entry, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerRepo) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepo) SumDebits(ctx context.Context, accountID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, day)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepo) WithTx(pgx.Tx) ledger.Repository {
	return m
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepo) ExistsWithRole(ctx context.Context, role user.Role) (bool, error) {
	args := m.Called(ctx, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) WithTx(pgx.Tx) user.Repository {
	return m
}

func teller() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Role: user.RolePetugas}
}

func nasabah() *auth.Actor {
	return &auth.Actor{UserID: uuid.New(), Role: user.RoleNasabah}
}

func testAccount(owner uuid.UUID, balance int64) *account.Account {
	return &account.Account{
		ID:            uuid.New(),
		UserID:        owner,
		AccountNumber: "1234567890",
		Balance:       decimal.NewFromInt(balance),
		PinHash:       "$2a$04$hash",
		Version:       1,
	}
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
