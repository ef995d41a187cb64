package session

import (
	"context"
	"sync"

	"case-portal-be/internal/pkg/logger"
)

type Listener interface {
	HandleSessionChange(ctx context.Context, c Change)
}

type ListenerFunc func(ctx context.Context, c Change)

func (f ListenerFunc) HandleSessionChange(ctx context.Context, c Change) { f(ctx, c) }

// Coordinator is the only subscriber on the bus. Everything that reacts to
// sign-in or sign-out registers here instead of subscribing itself.
type Coordinator struct {
	bus    *Bus
	logger logger.ILogger

	mu        sync.RWMutex
	listeners []Listener
}

func NewCoordinator(bus *Bus, logger logger.ILogger) *Coordinator {
	return &Coordinator{bus: bus, logger: logger}
}

func (c *Coordinator) Register(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Run blocks until ctx is done or the bus closes.
func (c *Coordinator) Run(ctx context.Context) error {
	changes, err := c.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			c.dispatch(ctx, change)
		}
	}
}

func (c *Coordinator) dispatch(ctx context.Context, change Change) {
	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	c.logger.Info("SESSION", "Session changed", map[string]interface{}{
		"type":       string(change.Type),
		"session_id": change.SessionID,
		"user_id":    change.UserID.String(),
	})

	for _, l := range listeners {
		c.safeCall(ctx, l, change)
	}
}

func (c *Coordinator) safeCall(ctx context.Context, l Listener, change Change) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("SESSION", "Session listener panicked", map[string]interface{}{"panic": r})
		}
	}()
	l.HandleSessionChange(ctx, change)
}
