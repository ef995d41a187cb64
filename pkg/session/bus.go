package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"case-portal-be/internal/pkg/logger"
	"case-portal-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const Topic = "session.changed"

type ChangeType string

const (
	SignedIn  ChangeType = "SIGNED_IN"
	SignedOut ChangeType = "SIGNED_OUT"
)

type Change struct {
	Type       ChangeType `json:"type"`
	SessionID  string     `json:"session_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Origin     string     `json:"origin"`
	OccurredAt time.Time  `json:"occurred_at"`
}

func (c Change) Event() events.BaseEvent {
	return events.BaseEvent{
		Type: events.TypeSessionChanged,
		Data: map[string]interface{}{
			"type":       string(c.Type),
			"session_id": c.SessionID,
			"user_id":    c.UserID.String(),
			"origin":     c.Origin,
		},
		OccurredAt: c.OccurredAt,
	}
}

func ChangeFromEvent(e events.Event) (Change, error) {
	data := e.Payload()
	rawType, _ := data["type"].(string)
	sid, _ := data["session_id"].(string)
	rawUser, _ := data["user_id"].(string)
	origin, _ := data["origin"].(string)

	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return Change{}, fmt.Errorf("session change user_id: %w", err)
	}
	t := ChangeType(rawType)
	if t != SignedIn && t != SignedOut {
		return Change{}, fmt.Errorf("unknown session change type %q", rawType)
	}
	return Change{Type: t, SessionID: sid, UserID: userID, Origin: origin, OccurredAt: e.Timestamp()}, nil
}

// Bus carries session changes over a watermill channel. It allows exactly
// one subscriber; the Coordinator fans changes out from there.
type Bus struct {
	pubsub  *gochannel.GoChannel
	origin  string
	forward events.Sink
	logger  logger.ILogger

	mu         sync.Mutex
	subscribed bool
}

func NewBus(pubsub *gochannel.GoChannel, origin string, forward events.Sink, logger logger.ILogger) *Bus {
	return &Bus{pubsub: pubsub, origin: origin, forward: forward, logger: logger}
}

// NewLocalBus builds a bus on a private gochannel with no forwarding.
func NewLocalBus(logger logger.ILogger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	return NewBus(pubsub, "local", nil, logger)
}

// Publish delivers a change to local listeners and forwards it to other instances.
func (b *Bus) Publish(ctx context.Context, c Change) error {
	c.Origin = b.origin
	if err := b.deliver(c); err != nil {
		return err
	}
	if b.forward != nil {
		if err := b.forward.Publish(ctx, c.Event()); err != nil {
			b.logger.Warn("SESSION", "Failed to forward session change", map[string]interface{}{
				"error":      err.Error(),
				"session_id": c.SessionID,
			})
		}
	}
	return nil
}

// Inject delivers a change received from another instance. Changes that
// originated here are ignored.
func (b *Bus) Inject(ctx context.Context, c Change) error {
	if c.Origin == b.origin {
		return nil
	}
	return b.deliver(c)
}

func (b *Bus) deliver(c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal session change: %w", err)
	}
	return b.pubsub.Publish(Topic, message.NewMessage(watermill.NewUUID(), payload))
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan Change, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribed {
		return nil, ErrAlreadySubscribed
	}

	msgs, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, err
	}
	b.subscribed = true

	out := make(chan Change)
	go func() {
		defer close(out)
		for msg := range msgs {
			var c Change
			if err := json.Unmarshal(msg.Payload, &c); err != nil {
				b.logger.Error("SESSION", "Dropping malformed session change", map[string]interface{}{"error": err.Error()})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
