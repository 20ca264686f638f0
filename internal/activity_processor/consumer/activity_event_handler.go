package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tabungan-ledger/internal/activity_processor/service"
	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/platform/messaging/producers"
)

// ActivityEventHandler decodes audit events from Kafka and hands them to the store
type ActivityEventHandler struct {
	storeService service.StoreService
	producer     producers.DeadLetterPublisher
	logger       *slog.Logger
}

// NewActivityEventHandler creates a new handler. producer may be nil.
func NewActivityEventHandler(
	logger *slog.Logger,
	storeService service.StoreService,
	producer producers.DeadLetterPublisher,
) *ActivityEventHandler {
	return &ActivityEventHandler{
		storeService: storeService,
		producer:     producer,
		logger:       logger,
	}
}

// HandleMessage processes one Kafka message. A nil return commits the offset.
func (h *ActivityEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event activity.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("undecodable activity event: %s", err))
	}
	if !event.Valid() {
		return h.deadLetter(ctx, key, value, "incomplete activity event")
	}

	logger := h.logger.With("event_id", event.ID.String())

	if err := h.storeService.StoreEvent(ctx, &event); err != nil {
		logger.Error("Failed to store activity event",
			"action", string(event.Action),
			"entity_type", string(event.EntityType),
			"error", err,
		)
		return fmt.Errorf("storing activity event %s failed: %w", event.ID, err)
	}

	logger.Info("Stored activity event",
		"user_id", event.UserID.String(),
		"action", string(event.Action),
		"entity_type", string(event.EntityType),
	)
	return nil
}

// deadLetter parks a message that can never be stored. Without a DLQ the
// message is dropped so it does not block the partition.
func (h *ActivityEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string) error {
	h.logger.Error("Rejecting activity event", "message_key", string(key), "reason", reason)

	if h.producer == nil {
		h.logger.Warn("Dropping activity event, DLQ is disabled", "message_key", string(key))
		return nil
	}

	err := h.producer.PublishToDLQ(ctx, string(key), value, reason)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, producers.ErrDLQDisabled):
		h.logger.Warn("Dropping activity event, DLQ is disabled", "message_key", string(key))
		return nil
	default:
		h.logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"message_key", string(key),
		)
		return fmt.Errorf("dead lettering activity event: %w", err)
	}
}
