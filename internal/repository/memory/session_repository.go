package memory

import (
	"context"
	"time"

	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process. Suitable for a single instance
// and for tests.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		cache: cache.New(1*time.Hour, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	r.cache.Set(s.ID, s, ttl)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	if x, found := r.cache.Get(id); found {
		return x.(*session.Session), nil
	}
	return nil, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error) {
	var out []*session.Session
	for _, item := range r.cache.Items() {
		if s, ok := item.Object.(*session.Session); ok && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
