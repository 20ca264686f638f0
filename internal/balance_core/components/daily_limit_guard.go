package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tabungan-ledger/internal/balance_core/service"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
)

// DailyLimitGuardImpl sums today's debits inside the locking transaction, so
// concurrent debits on one account see each other.
type DailyLimitGuardImpl struct {
	ledgerRepo ledger.Repository
	now        func() time.Time
	logger     *slog.Logger
}

func NewDailyLimitGuard(ledgerRepo ledger.Repository, logger *slog.Logger) service.DailyLimitGuard {
	return &DailyLimitGuardImpl{
		ledgerRepo: ledgerRepo,
		now:        time.Now,
		logger:     logger,
	}
}

func (g *DailyLimitGuardImpl) Check(ctx context.Context, tx pgx.Tx, acc *account.Account, amount decimal.Decimal) error {
	if !acc.DailyLimit.IsPositive() {
		return nil
	}

	spent, err := g.ledgerRepo.WithTx(tx).SumDebits(ctx, acc.ID, g.now())
	if err != nil {
		return err
	}
	if !acc.WithinDailyLimit(spent, amount) {
		g.logger.Info("Daily limit reached",
			"account_id", acc.ID.String(),
			"limit", acc.DailyLimit.String(),
			"spent_today", spent.String(),
			"amount", amount.String(),
		)
		return fmt.Errorf("account %s: %w", acc.ID, account.ErrDailyLimitExceeded)
	}
	return nil
}
