package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

const ledgerColumns = `id, account_id, kind, amount, balance_before, balance_after, COALESCE(description, ''),
		performed_by, transfer_id, transaction_date, created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL.
// Entries are only ever inserted.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository.
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append inserts an immutable ledger entry
func (r *LedgerRepository) Append(ctx context.Context, e *ledger.Entry) error {
	query := `
		INSERT INTO ledger_entries (id, account_id, kind, amount, balance_before, balance_after, description, performed_by, transfer_id, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10, $11)
	`

	_, err := r.querier.Exec(ctx, query,
		e.ID,
		e.AccountID,
		e.Kind,
		e.Amount,
		e.BalanceBefore,
		e.BalanceAfter,
		e.Description,
		e.PerformedBy,
		e.TransferID,
		e.TransactionDate,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append ledger entry", "entry_id", e.ID.String(), "account_id", e.AccountID.String(), "error", err)
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// List returns entries matching filter, newest first
func (r *LedgerRepository) List(ctx context.Context, filter ledger.Filter, page shared.PageRequest) ([]*ledger.Entry, error) {
	where, args := ledgerWhere(filter)
	args = append(args, page.PerPage, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM ledger_entries
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, ledgerColumns, where, len(args)-1, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list ledger entries", "account_id", filter.AccountID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// Count returns the number of entries matching filter
func (r *LedgerRepository) Count(ctx context.Context, filter ledger.Filter) (int64, error) {
	where, args := ledgerWhere(filter)
	query := `SELECT COUNT(*) FROM ledger_entries WHERE ` + where

	var total int64
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count ledger entries", "account_id", filter.AccountID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return total, nil
}

// GetByTransferID returns the entries written for one transfer
func (r *LedgerRepository) GetByTransferID(ctx context.Context, transferID uuid.UUID) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM ledger_entries
		WHERE transfer_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, transferID)
	if err != nil {
		r.logger.Error("Failed to get ledger entries for transfer", "transfer_id", transferID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries for transfer: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// SumDebits totals the withdrawals and outgoing transfers booked on the business day of day
func (r *LedgerRepository) SumDebits(ctx context.Context, accountID uuid.UUID, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND transaction_date = $2 AND kind IN ('withdrawal', 'transfer_out')
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, accountID, ledger.TransactionDate(day)).Scan(&total); err != nil {
		r.logger.Error("Failed to sum daily debits", "account_id", accountID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum daily debits: %w", err)
	}

	return total, nil
}

func ledgerWhere(f ledger.Filter) (string, []interface{}) {
	clauses := []string{"account_id = $1"}
	args := []interface{}{f.AccountID}

	if f.DateFrom != nil {
		args = append(args, ledger.DateOnly(*f.DateFrom))
		clauses = append(clauses, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, ledger.DateOnly(*f.DateTo))
		clauses = append(clauses, fmt.Sprintf("transaction_date <= $%d", len(args)))
	}
	if f.Kind != "" {
		args = append(args, f.Kind)
		clauses = append(clauses, fmt.Sprintf("kind = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		clauses = append(clauses, fmt.Sprintf("description ILIKE $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func collectEntries(rows pgx.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.Kind,
			&e.Amount,
			&e.BalanceBefore,
			&e.BalanceAfter,
			&e.Description,
			&e.PerformedBy,
			&e.TransferID,
			&e.TransactionDate,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}
