package account

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// AccountNumberLength is the number of digits in an externally visible account number.
const AccountNumberLength = 10

// Common errors
var (
	ErrInsufficientFunds    = shared.NewError(shared.CategoryBusinessRule, "insufficient funds")
	ErrDailyLimitExceeded   = shared.NewError(shared.CategoryBusinessRule, "daily transaction limit exceeded")
	ErrInvalidDailyLimit    = shared.NewError(shared.CategoryValidation, "daily limit must be a non-negative whole number")
	ErrBalanceOverflow      = shared.NewError(shared.CategoryBusinessRule, "balance would exceed the maximum storable amount")
	ErrInvalidAccountNumber = shared.NewError(shared.CategoryValidation, "account number must be 10 digits")
)

// Account is a customer's savings account. Balance is only changed through
// Deposit and Withdraw, and only persisted by the balance mutation core.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	PinHash       string          `json:"-"` // empty when no PIN is configured
	DailyLimit    decimal.Decimal `json:"daily_limit"`
	Address       string          `json:"address,omitempty"`
	IDCardNumber  string          `json:"id_card_number,omitempty"`
	DateOfBirth   *time.Time      `json:"date_of_birth,omitempty"`
	Version       int             `json:"version"` // For optimistic locking
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewAccount opens a zero-balance account without a PIN.
func NewAccount(userID uuid.UUID, accountNumber string, dailyLimit decimal.Decimal) (*Account, error) {
	if !ValidAccountNumber(accountNumber) {
		return nil, ErrInvalidAccountNumber
	}
	if shared.ValidateLimit(dailyLimit) != nil {
		return nil, ErrInvalidDailyLimit
	}

	now := time.Now()
	return &Account{
		ID:            uuid.New(),
		UserID:        userID,
		AccountNumber: accountNumber,
		Balance:       decimal.Zero,
		DailyLimit:    dailyLimit,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Deposit adds the specified amount to the account balance
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := shared.ValidateAmount(amount); err != nil {
		return err
	}

	next := a.Balance.Add(amount)
	if !shared.WithinRange(next) {
		return ErrBalanceOverflow
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// Withdraw subtracts the specified amount from the account balance
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := shared.ValidateAmount(amount); err != nil {
		return err
	}

	if !a.CanWithdraw(amount) {
		return ErrInsufficientFunds
	}

	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now()
	a.Version++
	return nil
}

// CanWithdraw checks if the account has sufficient funds for a withdrawal
func (a *Account) CanWithdraw(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

// HasPin reports whether a PIN has been configured.
func (a *Account) HasPin() bool {
	return a.PinHash != ""
}

// WithinDailyLimit reports whether debiting amount on top of spentToday stays
// within the account's daily limit. A zero limit means unlimited.
func (a *Account) WithinDailyLimit(spentToday, amount decimal.Decimal) bool {
	if !a.DailyLimit.IsPositive() {
		return true
	}
	return spentToday.Add(amount).LessThanOrEqual(a.DailyLimit)
}

// ValidAccountNumber checks the externally visible account number format.
func ValidAccountNumber(number string) bool {
	if len(number) != AccountNumberLength {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GenerateAccountNumber returns a random account number that does not start with zero.
func GenerateAccountNumber() (string, error) {
	buf := make([]byte, AccountNumberLength)
	for i := range buf {
		lower := int64(0)
		if i == 0 {
			lower = 1
		}
		n, err := rand.Int(rand.Reader, big.NewInt(10-lower))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + lower + n.Int64())
	}
	return string(buf), nil
}
