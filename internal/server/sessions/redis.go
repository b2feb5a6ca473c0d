package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "vidtube:session"

const rotateScript = `
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
  return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// RedisStore keeps sessions in Redis with the refresh token lifetime as
// key TTL, so an expired session disappears on its own.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore{redis: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(identityID string) string {
	return s.prefix + ":" + identityID
}

func (s *RedisStore) Set(ctx context.Context, identityID, token string) error {
	if err := s.redis.Set(ctx, s.key(identityID), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, identityID string) (string, bool, error) {
	token, err := s.redis.Get(ctx, s.key(identityID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis error: %w", err)
	}
	return token, true, nil
}

func (s *RedisStore) Rotate(ctx context.Context, identityID, expected, next string) error {
	swapped, err := rotateLua.Run(ctx, s.redis, []string{s.key(identityID)},
		expected, next, s.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if swapped == 0 {
		return common.ErrStaleSession
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, identityID string) error {
	if err := s.redis.Del(ctx, s.key(identityID)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
