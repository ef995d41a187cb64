package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"case-portal-be/internal/pkg/logger"
	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, "test", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func connect(t *testing.T, hub *Hub, userID uuid.UUID, sid string) *Client {
	t.Helper()
	before := hub.Connected(userID)
	c := &Client{Hub: hub, UserID: userID, SessionID: sid, Send: make(chan []byte, 4)}
	require.True(t, hub.join(c))
	require.Eventually(t, func() bool { return hub.Connected(userID) == before+1 }, time.Second, time.Millisecond)
	return c
}

func TestSendReachesEveryDeviceOfUser(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	a := connect(t, hub, user, "s1")
	b := connect(t, hub, user, "s2")
	other := connect(t, hub, uuid.New(), "s3")

	hub.Send(user, Message{Type: "document.uploaded", Data: map[string]string{"id": "d1"}})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var msg map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "document.uploaded", msg["type"])
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestSignedOutClosesOnlyThatSession(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	a := connect(t, hub, user, "s1")
	connect(t, hub, user, "s2")
	require.Equal(t, 2, hub.Connected(user))

	hub.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, UserID: user, SessionID: "s1"})

	_, open := <-a.Send
	assert.False(t, open)
	assert.Equal(t, 1, hub.Connected(user))

	hub.HandleSessionChange(context.Background(), session.Change{Type: session.SignedIn, UserID: user, SessionID: "s4"})
	assert.Equal(t, 1, hub.Connected(user))
}

func TestFullBufferDropsConnection(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := connect(t, hub, user, "s1")

	for i := 0; i < cap(c.Send)+1; i++ {
		hub.Send(user, Message{Type: "tick"})
	}

	assert.Zero(t, hub.Connected(user))
}

func TestStoppedHubDoesNotBlockClients(t *testing.T) {
	hub := NewHub(nil, "test", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	user := uuid.New()
	c := connect(t, hub, user, "s1")
	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open)

	left := make(chan struct{})
	go func() {
		hub.leave(c)
		assert.False(t, hub.join(&Client{Hub: hub, UserID: user, Send: make(chan []byte, 1)}))
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("client blocked on a stopped hub")
	}
}
