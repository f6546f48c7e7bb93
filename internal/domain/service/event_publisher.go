package service

import (
	"context"
	"time"
)

// PropertyEventType names what happened to a listing.
type PropertyEventType string

const (
	PropertyCreated      PropertyEventType = "property.created"
	PropertyPublished    PropertyEventType = "property.published"
	PropertyStateChanged PropertyEventType = "property.state_changed"
	PropertyClosed       PropertyEventType = "property.closed"
	PropertyPriceUpdated PropertyEventType = "property.price_updated"
)

// PropertyEvent is emitted after a property change has been persisted.
type PropertyEvent struct {
	EventID    string            `json:"event_id"`
	Type       PropertyEventType `json:"type"`
	PropertyID string            `json:"property_id"`
	PublicCode string            `json:"public_code"`
	FromState  string            `json:"from_state,omitempty"`
	ToState    string            `json:"to_state,omitempty"`
	ActorID    string            `json:"actor_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	RequestID  string            `json:"request_id,omitempty"` // For distributed tracing
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	PublishPropertyEvent(ctx context.Context, event *PropertyEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
