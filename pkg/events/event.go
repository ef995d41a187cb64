package events

import (
	"context"
	"time"
)

const (
	TypeUserCreated          = "USER_CREATED"
	TypeUserDeleted          = "USER_DELETED"
	TypeDocumentUploaded     = "DOCUMENT_UPLOADED"
	TypeDocumentOrphanObject = "DOCUMENT_ORPHANED_OBJECT"
	TypeDocumentStatus       = "DOCUMENT_STATUS_CHANGED"
	TypeSessionChanged       = "SESSION_CHANGED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "USER_CREATED").
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Sink accepts events for delivery. The NATS publisher is the production sink.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

// Envelope is the wire form carried on the bus.
type Envelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), Data: e.Payload(), OccurredAt: e.Timestamp()}
}

func (e Envelope) Event() BaseEvent {
	return BaseEvent{Type: e.Type, Data: e.Data, OccurredAt: e.OccurredAt}
}
