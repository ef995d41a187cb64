package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"case-portal-be/pkg/session"

	"github.com/google/uuid"
)

var (
	ErrSessionEnded    = errors.New("session ended")
	ErrRetriesDisabled = errors.New("retries disabled for signed out session")
)

type inflightCall struct {
	sessionID string
	cancel    context.CancelCauseFunc
}

const defaultEndedRetention = 24 * time.Hour

// Tracker owns the cancel functions of in-flight AI calls. A sign-out cancels
// the calls made under that session and blocks further AI attempts from it
// until the user signs in again or the retention window passes. By then the
// session has lapsed on its own and the session check rejects it.
type Tracker struct {
	mu        sync.Mutex
	next      uint64
	inflight  map[uuid.UUID]map[uint64]inflightCall
	ended     map[uuid.UUID]map[string]time.Time
	retention time.Duration
	now       func() time.Time
}

func NewTracker() *Tracker {
	return NewTrackerWithRetention(defaultEndedRetention)
}

// NewTrackerWithRetention keeps sign-out blocks for the given window. Use the
// session TTL.
func NewTrackerWithRetention(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = defaultEndedRetention
	}
	return &Tracker{
		inflight:  map[uuid.UUID]map[uint64]inflightCall{},
		ended:     map[uuid.UUID]map[string]time.Time{},
		retention: retention,
		now:       time.Now,
	}
}

// Begin derives a cancellable context for one AI call. The returned func must
// be called when the call finishes. A non-zero expiresAt cancels the call with
// ErrSessionEnded when the session lapses, since natural expiry publishes no
// sign-out.
func (t *Tracker) Begin(ctx context.Context, userID uuid.UUID, sessionID string, expiresAt time.Time) (context.Context, func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.blockedLocked(userID, sessionID) {
		return nil, nil, ErrRetriesDisabled
	}

	callCtx, cancel := context.WithCancelCause(ctx)
	stopDeadline := func() {}
	if !expiresAt.IsZero() {
		callCtx, stopDeadline = context.WithDeadlineCause(callCtx, expiresAt, ErrSessionEnded)
	}
	t.next++
	id := t.next
	if t.inflight[userID] == nil {
		t.inflight[userID] = map[uint64]inflightCall{}
	}
	t.inflight[userID][id] = inflightCall{sessionID: sessionID, cancel: cancel}

	done := func() {
		t.mu.Lock()
		delete(t.inflight[userID], id)
		if len(t.inflight[userID]) == 0 {
			delete(t.inflight, userID)
		}
		t.mu.Unlock()
		stopDeadline()
		cancel(nil)
	}
	return callCtx, done, nil
}

func (t *Tracker) Blocked(userID uuid.UUID, sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blockedLocked(userID, sessionID)
}

func (t *Tracker) blockedLocked(userID uuid.UUID, sessionID string) bool {
	endedAt, ok := t.ended[userID][sessionID]
	if !ok {
		return false
	}
	return t.now().Sub(endedAt) < t.retention
}

// Ended counts the sign-out blocks still held for a user.
func (t *Tracker) Ended(userID uuid.UUID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ended[userID])
}

func (t *Tracker) pruneLocked(now time.Time) {
	for userID, sessions := range t.ended {
		for sid, endedAt := range sessions {
			if now.Sub(endedAt) >= t.retention {
				delete(sessions, sid)
			}
		}
		if len(sessions) == 0 {
			delete(t.ended, userID)
		}
	}
}

func (t *Tracker) InFlight(userID uuid.UUID) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight[userID])
}

// HandleSessionChange is registered with the session coordinator. A
// sign-out without a session id ends every session of the user.
func (t *Tracker) HandleSessionChange(ctx context.Context, c session.Change) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.pruneLocked(now)

	switch c.Type {
	case session.SignedOut:
		if t.ended[c.UserID] == nil {
			t.ended[c.UserID] = map[string]time.Time{}
		}
		t.ended[c.UserID][c.SessionID] = now
		for _, call := range t.inflight[c.UserID] {
			if c.SessionID == "" || call.sessionID == c.SessionID {
				call.cancel(ErrSessionEnded)
				if c.SessionID == "" {
					t.ended[c.UserID][call.sessionID] = now
				}
			}
		}
	case session.SignedIn:
		delete(t.ended, c.UserID)
	}
}
