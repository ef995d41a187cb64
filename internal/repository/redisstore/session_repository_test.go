package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"case-portal-be/pkg/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	rdb := redis.NewClient(opt)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func newSession(userID uuid.UUID, ttl time.Duration) *session.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &session.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      "client",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func cleanupUser(t *testing.T, rdb *redis.Client, userID uuid.UUID, sessions ...*session.Session) {
	t.Cleanup(func() {
		keys := []string{userKeyPrefix + userID.String()}
		for _, s := range sessions {
			keys = append(keys, sessionKeyPrefix+s.ID)
		}
		rdb.Del(context.Background(), keys...)
	})
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	rdb := newTestRedis(t)
	repo := NewSessionRepository(rdb)
	ctx := context.Background()

	user := uuid.New()
	a := newSession(user, time.Hour)
	b := newSession(user, time.Hour)
	cleanupUser(t, rdb, user, a, b)

	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.UserID, got.UserID)
	assert.Equal(t, a.Role, got.Role)
	assert.True(t, a.ExpiresAt.Equal(got.ExpiresAt))

	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+a.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	listed, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	ids := make([]string, 0, len(listed))
	for _, s := range listed {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	require.NoError(t, repo.Delete(ctx, a.ID))
	got, err = repo.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	listed, err = repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, b.ID, listed[0].ID)
}

func TestGetUnknownSessionIsNil(t *testing.T) {
	repo := NewSessionRepository(newTestRedis(t))

	got, err := repo.Get(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, repo.Delete(context.Background(), uuid.NewString()))
}

func TestListByUserPrunesExpiredMembers(t *testing.T) {
	rdb := newTestRedis(t)
	repo := NewSessionRepository(rdb)
	ctx := context.Background()

	user := uuid.New()
	live := newSession(user, time.Hour)
	gone := newSession(user, time.Hour)
	cleanupUser(t, rdb, user, live, gone)

	require.NoError(t, repo.Save(ctx, live))
	require.NoError(t, repo.Save(ctx, gone))
	// The session key lapses on its own TTL while the user set keeps the id.
	require.NoError(t, rdb.Del(ctx, sessionKeyPrefix+gone.ID).Err())

	listed, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, live.ID, listed[0].ID)

	members, err := rdb.SMembers(ctx, userKeyPrefix+user.String()).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{live.ID}, members)
}

func TestSaveKeepsAlreadyExpiredSessionBriefly(t *testing.T) {
	rdb := newTestRedis(t)
	repo := NewSessionRepository(rdb)
	ctx := context.Background()

	user := uuid.New()
	s := newSession(user, -time.Minute)
	cleanupUser(t, rdb, user, s)

	require.NoError(t, repo.Save(ctx, s))
	ttl, err := rdb.TTL(ctx, sessionKeyPrefix+s.ID).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Second)
}
