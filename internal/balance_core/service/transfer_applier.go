package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

// TransferApplier moves money between two accounts as one database transaction.
type TransferApplier struct {
	db          persistence.TxBeginner
	accounts    account.Repository
	transfers   transfer.Repository
	locker      AccountLocker
	credentials CredentialVerifier
	limits      DailyLimitGuard
	ledger      BalanceLedger
	recorder    activity.Recorder
	retry       RetryPolicy
	logger      *slog.Logger
}

func NewTransferApplier(
	db persistence.TxBeginner,
	accounts account.Repository,
	transfers transfer.Repository,
	locker AccountLocker,
	credentials CredentialVerifier,
	limits DailyLimitGuard,
	balanceLedger BalanceLedger,
	recorder activity.Recorder,
	retry RetryPolicy,
	logger *slog.Logger,
) *TransferApplier {
	return &TransferApplier{
		db:          db,
		accounts:    accounts,
		transfers:   transfers,
		locker:      locker,
		credentials: credentials,
		limits:      limits,
		ledger:      balanceLedger,
		recorder:    recorder,
		retry:       retry,
		logger:      logger,
	}
}

// ApplyTransfer resolves the destination, locks both accounts in id order,
// verifies the source PIN and limits, and writes the transfer record and both
// entries atomically. A nasabah only gets its own entry back.
func (s *TransferApplier) ApplyTransfer(ctx context.Context, actor *auth.Actor, cmd TransferCommand) (*TransferResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.OpApplyTransfer, nil); err != nil {
		return nil, err
	}

	dest, err := s.accounts.GetByAccountNumber(ctx, cmd.ToAccountNumber)
	if err != nil {
		if errors.As(err, &account.ErrAccountNumberNotFound{}) {
			return nil, transfer.ErrDestinationNotFound
		}
		return nil, err
	}
	if dest.ID == cmd.FromAccountID {
		return nil, transfer.ErrSelfTransfer
	}

	logger := s.logger.With(
		"from_account_id", cmd.FromAccountID.String(),
		"to_account_id", dest.ID.String(),
		"actor_id", actor.UserID.String(),
	)

	var result *TransferResult
	err = s.retry.Do(ctx, logger, "apply_transfer", func() error {
		var err error
		result, err = s.applyOnce(ctx, logger, actor, cmd, dest.ID)
		return err
	})
	if err != nil {
		logger.Warn("Transfer rejected", "error", err)
		return nil, err
	}

	logger.Info("Transfer completed",
		"transfer_id", result.Record.ID.String(),
		"amount", result.Record.Amount.String(),
	)

	s.recorder.Record(ctx, activity.NewEvent(actor.UserID, activity.ActionCreate, activity.EntityTransfer, result.Record.ID.String(),
		map[string]any{
			"from_account_id": result.Record.FromAccountID.String(),
			"to_account_id":   result.Record.ToAccountID.String(),
			"amount":          result.Record.Amount.String(),
		}))

	if !actor.IsStaff() {
		result.DestinationEntry = nil
	}
	return result, nil
}

func (s *TransferApplier) applyOnce(ctx context.Context, logger *slog.Logger, actor *auth.Actor, cmd TransferCommand, destID uuid.UUID) (result *TransferResult, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var pending *transfer.Record
	finished := false
	defer func() {
		if finished {
			return
		}
		if rbErr := rollback(ctx, logger, tx, err); rbErr != nil && pending != nil {
			s.compensate(ctx, logger, pending)
		}
	}()

	src, dst, err := s.locker.LockPair(ctx, tx, cmd.FromAccountID, destID)
	if err != nil {
		return nil, err
	}
	if err = actor.Authorize(auth.OpApplyTransfer, src); err != nil {
		return nil, err
	}
	if err = s.credentials.VerifyPin(ctx, src, cmd.Pin); err != nil {
		return nil, err
	}
	if !src.CanWithdraw(cmd.Amount) {
		return nil, account.ErrInsufficientFunds
	}
	if err = s.limits.Check(ctx, tx, src, cmd.Amount); err != nil {
		return nil, err
	}

	record, err := transfer.NewRecord(src.ID, dst.ID, cmd.Amount, cmd.Description, actor.UserID)
	if err != nil {
		return nil, err
	}

	writeCtx := context.WithoutCancel(ctx)
	transfersTx := s.transfers.WithTx(tx)

	if err = transfersTx.Create(writeCtx, record); err != nil {
		return nil, err
	}
	pending = record

	out, err := s.ledger.Apply(writeCtx, tx, src, Mutation{
		Kind:        ledger.KindTransferOut,
		Amount:      record.Amount,
		Description: record.OutgoingDescription(),
		PerformedBy: actor.UserID,
		TransferID:  &record.ID,
	})
	if err != nil {
		return nil, err
	}
	in, err := s.ledger.Apply(writeCtx, tx, dst, Mutation{
		Kind:        ledger.KindTransferIn,
		Amount:      record.Amount,
		Description: record.IncomingDescription(),
		PerformedBy: actor.UserID,
		TransferID:  &record.ID,
	})
	if err != nil {
		return nil, err
	}

	completed := *record
	if err = completed.Complete(); err != nil {
		return nil, err
	}
	if err = transfersTx.UpdateStatus(writeCtx, &completed); err != nil {
		return nil, err
	}

	finished = true
	if err = commit(writeCtx, logger, tx, "transfer_id", record.ID.String()); err != nil {
		return nil, err
	}

	return &TransferResult{Record: &completed, SourceEntry: out, DestinationEntry: in}, nil
}

// compensate marks a record failed on a fresh connection after the unit that
// inserted it could not be rolled back cleanly.
func (s *TransferApplier) compensate(ctx context.Context, logger *slog.Logger, record *transfer.Record) {
	failed := *record
	if err := failed.Fail(); err != nil {
		return
	}
	if err := s.transfers.UpdateStatus(context.WithoutCancel(ctx), &failed); err != nil {
		if errors.Is(err, transfer.ErrInvalidStatusTransition) {
			// nothing pending was persisted
			logger.Info("No pending transfer record to compensate", "transfer_id", record.ID.String())
			return
		}
		logger.Error("Failed to mark transfer as failed",
			"alert", "ledger_inconsistency",
			"transfer_id", record.ID.String(),
			"error", err,
		)
		return
	}
	logger.Warn("Transfer marked as failed after rollback error", "transfer_id", record.ID.String())
}
