package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
)

// BalanceLedgerImpl writes a new balance and the ledger entry that explains it.
type BalanceLedgerImpl struct {
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	logger      *slog.Logger
}

func NewBalanceLedger(accountRepo account.Repository, ledgerRepo ledger.Repository, logger *slog.Logger) service.BalanceLedger {
	return &BalanceLedgerImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
	}
}

// Apply expects acc to be row-locked in tx. On success acc carries the new
// balance and version.
func (b *BalanceLedgerImpl) Apply(ctx context.Context, tx pgx.Tx, acc *account.Account, m service.Mutation) (*ledger.Entry, error) {
	if !m.Kind.Valid() {
		return nil, ledger.ErrInvalidKind
	}

	before := acc.Balance
	expectedVersion := acc.Version

	var err error
	if m.Kind.IsDebit() {
		err = acc.Withdraw(m.Amount)
	} else {
		err = acc.Deposit(m.Amount)
	}
	if err != nil {
		return nil, err
	}

	entry, err := ledger.NewEntry(acc.ID, m.Kind, m.Amount, before, m.Description, m.PerformedBy, m.TransferID)
	if err != nil {
		return nil, err
	}
	if !entry.Consistent() || !entry.BalanceAfter.Equal(acc.Balance) {
		return nil, fmt.Errorf("account %s: %w", acc.ID, ledger.ErrBalanceMismatch)
	}

	if err := b.accountRepo.WithTx(tx).UpdateBalance(ctx, acc.ID, acc.Balance, expectedVersion); err != nil {
		return nil, err
	}
	if err := b.ledgerRepo.WithTx(tx).Append(ctx, entry); err != nil {
		return nil, err
	}

	b.logger.Debug("Balance mutated",
		"account_id", acc.ID.String(),
		"kind", string(m.Kind),
		"balance_before", before.String(),
		"balance_after", entry.BalanceAfter.String(),
		"version", acc.Version,
	)
	return entry, nil
}
