package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// rollback aborts tx on a context that cannot be cancelled. It returns the
// rollback error, if any, so callers can decide whether to compensate.
func rollback(ctx context.Context, logger *slog.Logger, tx pgx.Tx, cause error) error {
	err := tx.Rollback(context.WithoutCancel(ctx))
	if err == nil || errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	logger.Error("Failed to roll back database transaction", "rollback_error", err, "original_error", cause)
	return err
}

// commit commits tx. A failure here leaves the outcome unknown to the caller,
// so it is raised as an inconsistency alert for reconciliation.
func commit(ctx context.Context, logger *slog.Logger, tx pgx.Tx, attrs ...any) error {
	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit balance mutation",
			append([]any{"alert", "ledger_inconsistency", "error", err}, attrs...)...)
		return fmt.Errorf("%w: %v", shared.ErrLedgerInconsistency, err)
	}
	return nil
}
