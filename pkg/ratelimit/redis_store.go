package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "ratelimit:"

// incrementScript bumps the counter, starts the TTL on the first hit of a
// window and returns {count, remaining ttl in ms}.
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore shares windows between gateway instances. Windows expire with
// their Redis key.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Window, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{redisKeyPrefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return Window{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return Window{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}
	count, ok1 := values[0].(int64)
	ttl, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return Window{}, fmt.Errorf("unexpected rate limit script result: %v", res)
	}

	resetAt := s.now().Add(time.Duration(ttl) * time.Millisecond)
	return Window{Start: resetAt.Add(-window), Count: int(count)}, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit window: %w", err)
	}
	return nil
}
