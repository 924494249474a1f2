package rescache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// revalidateChannel carries cache patch events to UI-facing subscribers.
const revalidateChannel = "rescache:revalidate"

// patchScript applies field updates and deletions only when the hash already
// exists. HSET on a missing key would create a partial set with no TTL, and
// every later read would mistake that subset for the complete list.
//
// KEYS[1] = family hash key
// ARGV[1] = number of set pairs, ARGV[2..] = field,value pairs then del fields
//
// Returns 1 when the patch applied, 0 on a missing key.
var patchScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
local nset = tonumber(ARGV[1])
local i = 2
for n = 1, nset do
	redis.call('HSET', KEYS[1], ARGV[i], ARGV[i+1])
	i = i + 2
end
while i <= #ARGV do
	redis.call('HDEL', KEYS[1], ARGV[i])
	i = i + 1
end
return 1
`)

// RedisStore keeps cached resources in Redis hashes.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Store on the given client.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("rescache: redis client is required")
	}
	return &RedisStore{client: client}, nil
}

// GetAll returns every field of the hash at key.
func (s *RedisStore) GetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("rescache: redis read failed: %w", err)
	}
	return fields, nil
}

// SetAll replaces the hash at key and refreshes its TTL atomically.
func (s *RedisStore) SetAll(ctx context.Context, key string, fields map[string]string, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, flatten(fields)...)
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rescache: redis write failed: %w", err)
	}
	return nil
}

// Patch updates and deletes individual hash fields in one atomic script so a
// concurrent reader never observes a half-applied mutation. A missing key is
// reported as not applied and left absent.
func (s *RedisStore) Patch(ctx context.Context, key string, set map[string]string, del []string) (bool, error) {
	args := make([]any, 0, 1+len(set)*2+len(del))
	args = append(args, len(set))
	for k, v := range set {
		args = append(args, k, v)
	}
	for _, id := range del {
		args = append(args, id)
	}

	applied, err := patchScript.Run(ctx, s.client, []string{key}, args...).Int64()
	if err != nil {
		return false, fmt.Errorf("rescache: redis patch failed: %w", err)
	}
	return applied == 1, nil
}

// Delete removes the whole key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("rescache: redis delete failed: %w", err)
	}
	return nil
}

func flatten(fields map[string]string) []any {
	flat := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		flat = append(flat, k, v)
	}
	return flat
}

// NewRedisRevalidateHook publishes patch events on the revalidate pub/sub
// channel. Publish failures are logged by go-redis internals and otherwise
// ignored: a lost event degrades to a TTL-bounded stale route cache, never
// to a stale resource cache.
func NewRedisRevalidateHook(client redis.UniversalClient) RevalidateHook {
	return func(ctx context.Context, event RevalidateEvent) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		_ = client.Publish(ctx, revalidateChannel, payload).Err()
	}
}
