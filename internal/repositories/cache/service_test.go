package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *CacheService {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCacheService(rdb, time.Hour)
}

func TestCacheUserRoundTrip(t *testing.T) {
	s := newTestCache(t)
	ctx := context.Background()

	user := &models.User{Username: "pkalu", Email: "pkalu@bidke.co.ke", Status: models.StatusActive}
	user.ID = 1

	require.NoError(t, s.CacheUser(ctx, user))

	byID, err := s.GetUser(ctx, s.UserKeyByID(1))
	require.NoError(t, err)
	assert.Equal(t, "pkalu", byID.Username)

	byUsername, err := s.GetUser(ctx, s.UserKeyByUsername("pkalu"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), byUsername.ID)
}

func TestCacheMiss(t *testing.T) {
	s := newTestCache(t)

	_, err := s.GetUser(context.Background(), s.UserKeyByID(99))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestInvalidateUserDropsBothKeys(t *testing.T) {
	s := newTestCache(t)
	ctx := context.Background()

	user := &models.User{Username: "pkalu", Email: "pkalu@bidke.co.ke"}
	user.ID = 1
	require.NoError(t, s.CacheUser(ctx, user))

	require.NoError(t, s.InvalidateUser(ctx, 1, "pkalu"))

	_, err := s.GetUser(ctx, s.UserKeyByID(1))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = s.GetUser(ctx, s.UserKeyByUsername("pkalu"))
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheNilUser(t *testing.T) {
	s := newTestCache(t)
	assert.Error(t, s.CacheUser(context.Background(), nil))
}
