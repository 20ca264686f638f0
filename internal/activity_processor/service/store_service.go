package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/domain/shared"
)

// ErrInvalidEvent is returned for events missing an id, action, entity type or timestamp.
var ErrInvalidEvent = shared.NewError(shared.CategoryValidation, "activity event is incomplete")

// ActivityStoreService writes audit events to the activity repository
type ActivityStoreService struct {
	repo   activity.Repository
	logger *slog.Logger
}

func NewActivityStoreService(repo activity.Repository, logger *slog.Logger) *ActivityStoreService {
	return &ActivityStoreService{
		repo:   repo,
		logger: logger,
	}
}

// StoreEvent validates and stores a single event. Storing the same event twice is a no-op.
func (s *ActivityStoreService) StoreEvent(ctx context.Context, event *activity.Event) error {
	if event == nil || !event.Valid() {
		return ErrInvalidEvent
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("storing activity event %s: %w", event.ID, err)
	}

	s.logger.Debug("Stored activity event",
		"event_id", event.ID.String(),
		"user_id", event.UserID.String(),
		"action", string(event.Action),
		"entity_type", string(event.EntityType),
	)
	return nil
}
