package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChangePublisher receives every sign-in and sign-out.
type ChangePublisher interface {
	Publish(ctx context.Context, c Change) error
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
	bus    ChangePublisher
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration, store Store, bus ChangePublisher) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		bus:    bus,
		now:    time.Now,
	}
}

// Issue creates a session and returns its signed token.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID, role string) (string, *Session, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"sid":     s.ID,
		"role":    role,
		"iat":     now.Unix(),
		"exp":     s.ExpiresAt.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	if err := m.store.Save(ctx, s); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.publish(ctx, Change{Type: SignedIn, SessionID: s.ID, UserID: userID})
	return signed, s, nil
}

// Resolve validates a token and returns the live session behind it.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrNoSession
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrNoSession
	}
	sid, _ := claims["sid"].(string)
	rawUser, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawUser)
	if sid == "" || err != nil {
		return nil, ErrNoSession
	}

	s, err := m.lookup(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, ErrNoSession
	}
	return s, nil
}

// Live reports whether the session with the given id is still active.
func (m *Manager) Live(ctx context.Context, sessionID string) error {
	_, err := m.lookup(ctx, sessionID)
	return err
}

// ExpiresAt returns when a live session lapses.
func (m *Manager) ExpiresAt(ctx context.Context, sessionID string) (time.Time, error) {
	s, err := m.lookup(ctx, sessionID)
	if err != nil {
		return time.Time{}, err
	}
	return s.ExpiresAt, nil
}

func (m *Manager) lookup(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s == nil {
		return nil, ErrNoSession
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, sessionID)
		m.publish(ctx, Change{Type: SignedOut, SessionID: s.ID, UserID: s.UserID})
		return nil, ErrNoSession
	}
	return s, nil
}

// Revoke ends one session. Revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	s, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if s == nil {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	m.publish(ctx, Change{Type: SignedOut, SessionID: s.ID, UserID: s.UserID})
	return nil
}

// RevokeUser ends every session held by the user and returns how many ended.
func (m *Manager) RevokeUser(ctx context.Context, userID uuid.UUID) (int, error) {
	sessions, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var errs []error
	revoked := 0
	for _, s := range sessions {
		if err := m.Revoke(ctx, s.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		revoked++
	}
	return revoked, errors.Join(errs...)
}

func (m *Manager) publish(ctx context.Context, c Change) {
	if m.bus == nil {
		return
	}
	c.OccurredAt = m.now().UTC()
	// Delivery is best effort. Listeners also re-check Live before acting.
	_ = m.bus.Publish(ctx, c)
}
