package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tabungan-ledger/internal/auth"
	"github.com/tabungan-ledger/internal/domain/account"
	"github.com/tabungan-ledger/internal/domain/ledger"
	"github.com/tabungan-ledger/internal/domain/shared"
	"github.com/tabungan-ledger/internal/domain/transfer"
)

// QueryServiceImpl reads ledger entries and transfers. It never writes.
type QueryServiceImpl struct {
	accounts  account.Repository
	entries   ledger.Repository
	transfers transfer.Repository
	logger    *slog.Logger
}

func NewQueryService(accounts account.Repository, entries ledger.Repository, transfers transfer.Repository, logger *slog.Logger) *QueryServiceImpl {
	return &QueryServiceImpl{
		accounts:  accounts,
		entries:   entries,
		transfers: transfers,
		logger:    logger,
	}
}

// ListEntries returns a page of an account's ledger, newest first.
func (s *QueryServiceImpl) ListEntries(ctx context.Context, actor *auth.Actor, filter ledger.Filter, page shared.PageRequest) (*EntryPage, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, ledger.ErrInvalidKind
	}

	acc, err := s.accounts.GetByID(ctx, filter.AccountID)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.OpViewLedger, acc); err != nil {
		return nil, err
	}

	entries, err := s.entries.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	total, err := s.entries.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Listed ledger entries", "account_id", filter.AccountID.String(), "total", total, "page", page.Page)

	return &EntryPage{
		Entries:    entries,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(total),
	}, nil
}

// ListTransfers returns a page of transfers. A nasabah only ever sees
// transfers touching its own account.
func (s *QueryServiceImpl) ListTransfers(ctx context.Context, actor *auth.Actor, filter transfer.Filter, page shared.PageRequest) (*TransferPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, transfer.ErrInvalidStatus
	}
	if err := actor.Authorize(auth.OpViewTransfers, nil); err != nil {
		return nil, err
	}

	if !actor.IsStaff() {
		own, err := s.accounts.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if filter.AccountID != nil && *filter.AccountID != own.ID {
			return nil, fmt.Errorf("transfers of account %s: %w", *filter.AccountID, shared.ErrForbidden)
		}
		filter.AccountID = &own.ID
	}

	records, err := s.transfers.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	total, err := s.transfers.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Listed transfers", "actor_id", actor.UserID.String(), "total", total, "page", page.Page)

	return &TransferPage{
		Records:    records,
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages(total),
	}, nil
}

// GetTransfer returns one transfer and its entries.
func (s *QueryServiceImpl) GetTransfer(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*TransferDetail, error) {
	if err := actor.Authorize(auth.OpViewTransfers, nil); err != nil {
		return nil, err
	}

	record, err := s.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var own *account.Account
	if !actor.IsStaff() {
		own, err = s.accounts.GetByUserID(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if record.FromAccountID != own.ID && record.ToAccountID != own.ID {
			return nil, fmt.Errorf("transfer %s: %w", id, shared.ErrForbidden)
		}
	}

	entries, err := s.entries.GetByTransferID(ctx, id)
	if err != nil {
		return nil, err
	}
	if own != nil {
		entries = entriesOfAccount(entries, own.ID)
	}

	return &TransferDetail{Record: record, Entries: entries}, nil
}

// entriesOfAccount keeps the entries posted to accountID. The counterparty's
// entry carries its balance snapshots and stays hidden from a nasabah.
func entriesOfAccount(entries []*ledger.Entry, accountID uuid.UUID) []*ledger.Entry {
	out := make([]*ledger.Entry, 0, len(entries))
	for _, e := range entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}
