package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrementIfAllowedScript checks and increments the window counter in one
// atomic step so concurrent processes cannot jointly overshoot the limit.
// The window TTL is set only when the key is created, giving fixed-window
// semantics with automatic expiry.
//
// KEYS[1] = counter key
// ARGV[1] = increment, ARGV[2] = limit, ARGV[3] = window in milliseconds
//
// Returns {allowed, current, pttl}.
var incrementIfAllowedScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local incr = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])

if current + incr > limit then
	local pttl = redis.call('PTTL', KEYS[1])
	return {0, current, pttl}
end

current = redis.call('INCRBY', KEYS[1], incr)
local pttl = redis.call('PTTL', KEYS[1])
if pttl < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
	pttl = tonumber(ARGV[3])
end
return {1, current, pttl}
`)

// RedisStore is the production Store backed by a shared Redis instance.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a Store on the given client. All keys are placed
// under the "ratelimit:" prefix to keep the keyspace tidy.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("ratelimit: redis client is required")
	}
	return &RedisStore{client: client, keyPrefix: "ratelimit:"}, nil
}

func (s *RedisStore) key(key string) string {
	return s.keyPrefix + key
}

// IncrementIfAllowed atomically counts n against the window for key.
func (s *RedisStore) IncrementIfAllowed(ctx context.Context, key string, n, limit int, window time.Duration) (bool, int64, time.Duration, error) {
	raw, err := incrementIfAllowedScript.Run(ctx, s.client,
		[]string{s.key(key)}, n, limit, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, 0, fmt.Errorf("ratelimit: redis script failed: %w", err)
	}

	allowed, current, pttl, err := parseIncrementResult(raw)
	if err != nil {
		return false, 0, 0, err
	}

	ttl := window
	if pttl > 0 {
		ttl = time.Duration(pttl) * time.Millisecond
	}
	return allowed, current, ttl, nil
}

// parseIncrementResult validates the {allowed, current, pttl} reply shape.
// Every element is checked: a malformed reply becomes an error, not a panic.
func parseIncrementResult(raw any) (bool, int64, int64, error) {
	vals, ok := raw.([]any)
	if !ok || len(vals) != 3 {
		return false, 0, 0, fmt.Errorf("ratelimit: unexpected script result %v", raw)
	}

	allowed, ok0 := vals[0].(int64)
	current, ok1 := vals[1].(int64)
	pttl, ok2 := vals[2].(int64)
	if !ok0 || !ok1 || !ok2 {
		return false, 0, 0, fmt.Errorf("ratelimit: unexpected script result %v", raw)
	}
	return allowed == 1, current, pttl, nil
}

// Count returns the current counter and remaining window for key.
func (s *RedisStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	pipe := s.client.Pipeline()
	getCmd := pipe.Get(ctx, s.key(key))
	ttlCmd := pipe.PTTL(ctx, s.key(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return 0, 0, fmt.Errorf("ratelimit: redis read failed: %w", err)
	}

	current, err := getCmd.Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("ratelimit: redis read failed: %w", err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}
	return current, ttl, nil
}

// Delete resets the window for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis delete failed: %w", err)
	}
	return nil
}
