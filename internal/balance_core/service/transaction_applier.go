package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

// TransactionApplier applies deposits and withdrawals to a single account.
type TransactionApplier struct {
	db          persistence.TxBeginner
	locker      AccountLocker
	credentials CredentialVerifier
	limits      DailyLimitGuard
	ledger      BalanceLedger
	recorder    activity.Recorder
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewTransactionApplier(
	db persistence.TxBeginner,
	locker AccountLocker,
	credentials CredentialVerifier,
	limits DailyLimitGuard,
	balanceLedger BalanceLedger,
	recorder activity.Recorder,
	retry RetryPolicy,
	logger *slog.Logger,
) *TransactionApplier {
	return &TransactionApplier{
		db:          db,
		locker:      locker,
		credentials: credentials,
		limits:      limits,
		ledger:      balanceLedger,
		recorder:    recorder,
		retry:       retry,
		logger:      logger,
	}
}

// ApplyTransaction validates cmd, then locks the account, checks the actor,
// the PIN and the daily limit, and writes the balance and its ledger entry in
// one database transaction.
func (s *TransactionApplier) ApplyTransaction(ctx context.Context, actor *auth.Actor, cmd TransactionCommand) (*ledger.Entry, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.OpApplyTransaction, nil); err != nil {
		return nil, err
	}

	logger := s.logger.With(
		"account_id", cmd.AccountID.String(),
		"kind", string(cmd.Kind),
		"actor_id", actor.UserID.String(),
	)

	var entry *ledger.Entry
	err := s.retry.Do(ctx, logger, "apply_transaction", func() error {
		var err error
		entry, err = s.applyOnce(ctx, logger, actor, cmd)
		return err
	})
	if err != nil {
		logger.Warn("Transaction rejected", "error", err)
		return nil, err
	}

	logger.Info("Transaction applied",
		"entry_id", entry.ID.String(),
		"amount", entry.Amount.String(),
		"balance_after", entry.BalanceAfter.String(),
	)

	s.recorder.Record(ctx, activity.NewEvent(actor.UserID, activity.ActionCreate, activity.EntityTransaction, entry.ID.String(),
		map[string]any{
			"transaction_type": string(cmd.Kind),
			"amount":           cmd.Amount.String(),
			"account_id":       cmd.AccountID.String(),
		}))

	return entry, nil
}

func (s *TransactionApplier) applyOnce(ctx context.Context, logger *slog.Logger, actor *auth.Actor, cmd TransactionCommand) (entry *ledger.Entry, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	finished := false
	defer func() {
		if !finished {
			_ = rollback(ctx, logger, tx, err)
		}
	}()

	acc, err := s.locker.Lock(ctx, tx, cmd.AccountID)
	if err != nil {
		return nil, err
	}
	if err = actor.Authorize(auth.OpApplyTransaction, acc); err != nil {
		return nil, err
	}
	if err = s.credentials.VerifyPin(ctx, acc, cmd.Pin); err != nil {
		return nil, err
	}
	if cmd.Kind.IsDebit() {
		if err = s.limits.Check(ctx, tx, acc, cmd.Amount); err != nil {
			return nil, err
		}
	}

	// Past this point a client disconnect must not abort the unit half way.
	writeCtx := context.WithoutCancel(ctx)

	entry, err = s.ledger.Apply(writeCtx, tx, acc, Mutation{
		Kind:        cmd.Kind,
		Amount:      cmd.Amount,
		Description: cmd.Description,
		PerformedBy: actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	finished = true
	if err = commit(writeCtx, logger, tx, "entry_id", entry.ID.String()); err != nil {
		return nil, err
	}
	return entry, nil
}
