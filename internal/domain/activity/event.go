package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is what the actor did.
type Action string

const (
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionView   Action = "view"
)

// EntityType is the kind of object an action was applied to.
type EntityType string

const (
	EntityNasabah     EntityType = "nasabah"
	EntityTransaction EntityType = "transaction"
	EntityTransfer    EntityType = "transfer"
	EntityUser        EntityType = "user"
)

// Event is one append-only audit record.
type Event struct {
	ID         uuid.UUID      `json:"id" bson:"_id"`
	UserID     uuid.UUID      `json:"user_id" bson:"user_id"`
	Action     Action         `json:"action" bson:"action"`
	EntityType EntityType     `json:"entity_type" bson:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty" bson:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	RequestID  string         `json:"request_id,omitempty" bson:"request_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// NewEvent creates an audit event stamped with the current time.
func NewEvent(userID uuid.UUID, action Action, entityType EntityType, entityID string, details map[string]any) *Event {
	return &Event{
		ID:         uuid.New(),
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}
}

// Valid reports whether the event carries the fields every sink requires.
func (e *Event) Valid() bool {
	return e.ID != uuid.Nil && e.Action != "" && e.EntityType != "" && !e.CreatedAt.IsZero()
}

// Recorder accepts audit events without ever failing the caller.
type Recorder interface {
	Record(ctx context.Context, event *Event)
}

// Repository stores audit events.
type Repository interface {
	Create(ctx context.Context, event *Event) error
}

type clientKey struct{}

// ClientInfo identifies the caller and request that triggered an event.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	RequestID string // the gateway's correlation id
}

// WithClient attaches info to ctx.
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey{}, info)
}

// ClientFrom returns the ClientInfo stored by WithClient.
func ClientFrom(ctx context.Context) (ClientInfo, bool) {
	info, ok := ctx.Value(clientKey{}).(ClientInfo)
	return info, ok
}
