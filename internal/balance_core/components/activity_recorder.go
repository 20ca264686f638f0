package components

import (
	"context"
	"log/slog"

	"github.com/tabungan-ledger/internal/domain/activity"
	"github.com/tabungan-ledger/internal/platform/messaging/producers"
)

// ActivityRecorderImpl publishes audit events without ever failing the
// operation that produced them.
type ActivityRecorderImpl struct {
	publisher producers.EventPublisher
	logger    *slog.Logger
}

func NewActivityRecorder(publisher producers.EventPublisher, logger *slog.Logger) activity.Recorder {
	return &ActivityRecorderImpl{
		publisher: publisher,
		logger:    logger,
	}
}

func (r *ActivityRecorderImpl) Record(ctx context.Context, event *activity.Event) {
	if event == nil || !event.Valid() {
		r.logger.Warn("Dropping malformed activity event", "event", event)
		return
	}
	if info, ok := activity.ClientFrom(ctx); ok {
		event.IPAddress = info.IPAddress
		event.UserAgent = info.UserAgent
		event.RequestID = info.RequestID
	}

	if err := r.publisher.Publish(context.WithoutCancel(ctx), event.UserID.String(), event); err != nil {
		r.logger.Error("Failed to record activity event",
			"event_id", event.ID.String(),
			"action", string(event.Action),
			"entity_type", string(event.EntityType),
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}
