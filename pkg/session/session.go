// Package session issues and resolves login sessions and broadcasts
// sign-in and sign-out changes to in-process listeners.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoSession         = errors.New("no active session")
	ErrAlreadySubscribed = errors.New("session bus already has a subscriber")
	ErrStoreUnavailable  = errors.New("session store unavailable")
)

type Session struct {
	ID        string    `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns nil, nil for an unknown id.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error)
}
