package service

import (
	"context"

	"github.com/tabungan-ledger/internal/domain/activity"
)

// StoreService persists decoded audit events.
type StoreService interface {
	StoreEvent(ctx context.Context, event *activity.Event) error
}
