package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCancelsOnlySignedOutSession(t *testing.T) {
	tr := NewTracker()
	user := uuid.New()

	ctxA, doneA, err := tr.Begin(context.Background(), user, "a", time.Time{})
	require.NoError(t, err)
	defer doneA()
	ctxB, doneB, err := tr.Begin(context.Background(), user, "b", time.Time{})
	require.NoError(t, err)
	defer doneB()
	assert.Equal(t, 2, tr.InFlight(user))

	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, SessionID: "a", UserID: user})

	assert.True(t, errors.Is(context.Cause(ctxA), ErrSessionEnded))
	assert.NoError(t, ctxB.Err())
	assert.True(t, tr.Blocked(user, "a"))
	assert.False(t, tr.Blocked(user, "b"))

	_, _, err = tr.Begin(context.Background(), user, "a", time.Time{})
	assert.ErrorIs(t, err, ErrRetriesDisabled)
}

func TestTrackerSignOutWithoutSessionEndsAll(t *testing.T) {
	tr := NewTracker()
	user := uuid.New()

	ctxA, doneA, err := tr.Begin(context.Background(), user, "a", time.Time{})
	require.NoError(t, err)
	defer doneA()

	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, UserID: user})

	assert.Error(t, ctxA.Err())
	assert.True(t, tr.Blocked(user, "a"))
}

func TestTrackerSignInUnblocks(t *testing.T) {
	tr := NewTracker()
	user := uuid.New()

	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, SessionID: "a", UserID: user})
	require.True(t, tr.Blocked(user, "a"))

	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedIn, SessionID: "c", UserID: user})
	assert.False(t, tr.Blocked(user, "a"))
}

func TestTrackerDoneReleases(t *testing.T) {
	tr := NewTracker()
	user := uuid.New()

	ctx, done, err := tr.Begin(context.Background(), user, "a", time.Time{})
	require.NoError(t, err)
	done()

	assert.Zero(t, tr.InFlight(user))
	assert.Error(t, ctx.Err())
}

func TestTrackerCancelsAtSessionExpiry(t *testing.T) {
	tr := NewTracker()
	user := uuid.New()

	ctx, done, err := tr.Begin(context.Background(), user, "a", time.Now().Add(20*time.Millisecond))
	require.NoError(t, err)
	defer done()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("call outlived its session")
	}
	assert.ErrorIs(t, context.Cause(ctx), ErrSessionEnded)
}

func TestTrackerDropsBlocksAfterRetention(t *testing.T) {
	tr := NewTrackerWithRetention(time.Hour)
	now := time.Now()
	tr.now = func() time.Time { return now }
	gone, active := uuid.New(), uuid.New()

	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, SessionID: "a", UserID: gone})
	require.True(t, tr.Blocked(gone, "a"))

	now = now.Add(61 * time.Minute)
	assert.False(t, tr.Blocked(gone, "a"))

	// any later change prunes stale blocks of users who never came back
	tr.HandleSessionChange(context.Background(), session.Change{Type: session.SignedOut, SessionID: "b", UserID: active})
	assert.Zero(t, tr.Ended(gone))
	assert.Equal(t, 1, tr.Ended(active))
}
