package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "user_sessions:"
)

// SessionRepository shares sessions between instances through Redis.
type SessionRepository struct {
	rdb *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{rdb: rdb}
}

func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+s.ID, payload, ttl)
	pipe.SAdd(ctx, userKeyPrefix+s.UserID.String(), s.ID)
	pipe.Expire(ctx, userKeyPrefix+s.UserID.String(), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s session.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil || s == nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+id)
	pipe.SRem(ctx, userKeyPrefix+s.UserID.String(), id)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error) {
	ids, err := r.rdb.SMembers(ctx, userKeyPrefix+userID.String()).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*session.Session, 0, len(ids))
	var stale []interface{}
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			stale = append(stale, id)
			continue
		}
		out = append(out, s)
	}
	if len(stale) > 0 {
		r.rdb.SRem(ctx, userKeyPrefix+userID.String(), stale...)
	}
	return out, nil
}
