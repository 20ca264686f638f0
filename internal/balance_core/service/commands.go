package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/credential"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/domain/user"
)

// TransactionCommand is a deposit or withdrawal request.
type TransactionCommand struct {
	AccountID   uuid.UUID
	Kind        ledger.Kind
	Amount      decimal.Decimal
	Description string
	Pin         string
}

// Validate runs every check that does not need storage.
func (c TransactionCommand) Validate() error {
	if c.Kind != ledger.KindDeposit && c.Kind != ledger.KindWithdrawal {
		return ledger.ErrInvalidKind
	}
	if err := shared.ValidateAmount(c.Amount); err != nil {
		return err
	}
	return credential.ValidatePinFormat(c.Pin)
}

// TransferCommand moves Amount from FromAccountID to the account numbered ToAccountNumber.
type TransferCommand struct {
	FromAccountID   uuid.UUID
	ToAccountNumber string
	Amount          decimal.Decimal
	Description     string
	Pin             string
}

func (c TransferCommand) Validate() error {
	if !account.ValidAccountNumber(c.ToAccountNumber) {
		return account.ErrInvalidAccountNumber
	}
	if err := shared.ValidateAmount(c.Amount); err != nil {
		return err
	}
	return credential.ValidatePinFormat(c.Pin)
}

// TransferResult is a completed transfer with both of its ledger entries.
type TransferResult struct {
	Record           *transfer.Record
	SourceEntry      *ledger.Entry
	DestinationEntry *ledger.Entry
}

// SetPinCommand configures or replaces an account PIN. CurrentPin is
// required once a PIN exists.
type SetPinCommand struct {
	AccountID  uuid.UUID
	Pin        string
	CurrentPin string
}

// OpenAccountCommand creates a nasabah user together with its account.
type OpenAccountCommand struct {
	Email        string
	FullName     string
	Phone        string
	Address      string
	IDCardNumber string
	DateOfBirth  *time.Time
	DailyLimit   decimal.Decimal
}

func (c OpenAccountCommand) Validate() error {
	if shared.ValidateLimit(c.DailyLimit) != nil {
		return account.ErrInvalidDailyLimit
	}
	if strings.TrimSpace(c.FullName) == "" {
		return user.ErrEmptyFullName
	}
	return nil
}

// OpenedAccount is the pair created by OpenAccount.
type OpenedAccount struct {
	User    *user.User
	Account *account.Account
}

// EntryPage is one page of ledger entries.
type EntryPage struct {
	Entries    []*ledger.Entry
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// TransferPage is one page of transfer records.
type TransferPage struct {
	Records    []*transfer.Record
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

// TransferDetail is a transfer record with the entries it produced.
type TransferDetail struct {
	Record  *transfer.Record
	Entries []*ledger.Entry
}
