package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tabungan-ledger/internal/domain/activity"
)

const (
	// ActivityCollectionName is the name of the audit collection in MongoDB
	ActivityCollectionName = "activity_logs"
)

// ActivityRepository implements the activity.Repository interface for MongoDB
type ActivityRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewActivityRepository creates a new MongoDB activity repository
func NewActivityRepository(logger *slog.Logger, db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores an audit event. Events are keyed by their ID, so a redelivered
// event that was already stored is accepted without a second write.
func (r *ActivityRepository) Create(ctx context.Context, event *activity.Event) error {
	collection := r.db.Collection(ActivityCollectionName)

	_, err := collection.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			r.logger.Debug("Activity event already stored", "event_id", event.ID.String())
			return nil
		}
		r.logger.Error("Failed to store activity event",
			"event_id", event.ID.String(),
			"action", string(event.Action),
			"error", err)
		return fmt.Errorf("failed to store activity event: %w", err)
	}

	return nil
}

// EnsureIndexes creates the indexes behind the per-user timeline and the
// per-entity history. Creating an index that already exists is a no-op.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_timeline"),
		},
		{
			Keys:    bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("entity_history"),
		},
	}

	names, err := r.db.Collection(ActivityCollectionName).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to create activity indexes: %w", err)
	}

	r.logger.Info("Ensured activity indexes", "collection", ActivityCollectionName, "indexes", names)
	return nil
}
