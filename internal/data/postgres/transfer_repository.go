package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
	"github.com/tabungan-ledger/internal/platform/persistence"
)

const transferColumns = `id, from_account_id, to_account_id, amount, COALESCE(description, ''), status,
		performed_by, created_at, completed_at`

// TransferRepository implements the transfer.Repository interface for PostgreSQL
type TransferRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransferRepository creates a new PostgreSQL transfer repository.
func NewTransferRepository(logger *slog.Logger, db *persistence.PostgresDB) transfer.Repository {
	return &TransferRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *TransferRepository) WithTx(tx pgx.Tx) transfer.Repository {
	return &TransferRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create inserts a new transfer record
func (r *TransferRepository) Create(ctx context.Context, rec *transfer.Record) error {
	query := `
		INSERT INTO transfer_records (id, from_account_id, to_account_id, amount, description, status, performed_by, created_at, completed_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		rec.ID,
		rec.FromAccountID,
		rec.ToAccountID,
		rec.Amount,
		rec.Description,
		rec.Status,
		rec.PerformedBy,
		rec.CreatedAt,
		rec.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create transfer record", "transfer_id", rec.ID.String(), "error", err)
		return fmt.Errorf("failed to create transfer record: %w", err)
	}

	return nil
}

// GetByID retrieves a transfer record by its ID
func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*transfer.Record, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_records WHERE id = $1`

	rec, err := scanTransfer(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transfer.ErrTransferNotFound{TransferID: id}
		}
		r.logger.Error("Failed to get transfer record", "transfer_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transfer record: %w", err)
	}

	return rec, nil
}

// List returns transfer records matching filter, newest first
func (r *TransferRepository) List(ctx context.Context, filter transfer.Filter, page shared.PageRequest) ([]*transfer.Record, error) {
	where, args := transferWhere(filter)
	args = append(args, page.PerPage, page.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM transfer_records
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, transferColumns, where, len(args)-1, len(args))

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list transfer records", "error", err)
		return nil, fmt.Errorf("failed to list transfer records: %w", err)
	}
	defer rows.Close()

	var records []*transfer.Record
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfer records: %w", err)
	}

	return records, nil
}

// Count returns the number of transfer records matching filter
func (r *TransferRepository) Count(ctx context.Context, filter transfer.Filter) (int64, error) {
	where, args := transferWhere(filter)
	query := `SELECT COUNT(*) FROM transfer_records ` + where

	var total int64
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count transfer records", "error", err)
		return 0, fmt.Errorf("failed to count transfer records: %w", err)
	}

	return total, nil
}

// UpdateStatus moves a pending record to the status carried by rec.
func (r *TransferRepository) UpdateStatus(ctx context.Context, rec *transfer.Record) error {
	query := `
		UPDATE transfer_records
		SET status = $1, completed_at = $2
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.querier.Exec(ctx, query, rec.Status, rec.CompletedAt, rec.ID)
	if err != nil {
		r.logger.Error("Failed to update transfer status", "transfer_id", rec.ID.String(), "status", rec.Status, "error", err)
		return fmt.Errorf("failed to update transfer status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("transfer %s: %w", rec.ID, transfer.ErrInvalidStatusTransition)
	}

	return nil
}

func transferWhere(f transfer.Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if f.AccountID != nil {
		args = append(args, *f.AccountID)
		clauses = append(clauses, fmt.Sprintf("(from_account_id = $%d OR to_account_id = $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func scanTransfer(row pgx.Row) (*transfer.Record, error) {
	var rec transfer.Record
	err := row.Scan(
		&rec.ID,
		&rec.FromAccountID,
		&rec.ToAccountID,
		&rec.Amount,
		&rec.Description,
		&rec.Status,
		&rec.PerformedBy,
		&rec.CreatedAt,
		&rec.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
