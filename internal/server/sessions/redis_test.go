package sessions

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return NewRedisStore(rdb, "", ttl), mr
}

func TestRedisStore_SetGetClear(t *testing.T) {
	s, mr := newRedisStore(t, time.Hour)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "u1", "rt-1"))
	assert.True(t, mr.Exists("vidtube:session:u1"))
	assert.Equal(t, time.Hour, mr.TTL("vidtube:session:u1"))

	got, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rt-1", got)

	require.NoError(t, s.Clear(ctx, "u1"))
	require.NoError(t, s.Clear(ctx, "u1"))
	_, ok, err = s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Rotate(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	assert.ErrorIs(t, s.Rotate(ctx, "u1", "rt-1", "rt-2"), common.ErrStaleSession)

	require.NoError(t, s.Set(ctx, "u1", "rt-1"))
	mr.FastForward(30 * time.Second)

	assert.ErrorIs(t, s.Rotate(ctx, "u1", "other", "rt-2"), common.ErrStaleSession)
	require.NoError(t, s.Rotate(ctx, "u1", "rt-1", "rt-2"))

	got, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "rt-2", got)
	assert.Equal(t, time.Minute, mr.TTL("vidtube:session:u1"))
}

func TestRedisStore_SessionExpires(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "u1", "rt-1"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, s.Rotate(ctx, "u1", "rt-1", "rt-2"), common.ErrStaleSession)
}

func TestRedisStore_RotateSingleWinner(t *testing.T) {
	s, _ := newRedisStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "u1", "rt-0"))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Rotate(ctx, "u1", "rt-0", "next"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t, time.Minute)
	mr.Close()

	_, _, err := s.Get(context.Background(), "u1")
	assert.Error(t, err)
}
