package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a Redis sorted set per key, scored by
// request timestamp in milliseconds. It is suitable for distributed
// deployments where multiple gateway instances share limiter state. The
// prune+record+count sequence runs as a single Lua script, so concurrent
// callers on the same key can never undercount.
type RedisStore struct {
	client *redis.Client
	script *redis.Script
}

// slidingWindowLua prunes expired entries, records the new one, and returns
// the window count together with the oldest retained score. The key expires
// one window after its last hit so idle clients cost nothing.
const slidingWindowLua = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local member = ARGV[3]

	redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
	redis.call("ZADD", key, now, member)
	local count = redis.call("ZCARD", key)
	local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
	redis.call("PEXPIRE", key, window)

	return {count, oldest[2]}
`

// NewRedis creates a RedisStore. The Lua script is pre-compiled and sent via
// EVALSHA after the first call.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		script: redis.NewScript(slidingWindowLua),
	}
}

// RecordAndCount runs the sliding-window script for the given key. Members
// carry a UUID suffix so concurrent hits within the same millisecond are
// never collapsed into one sorted-set entry.
func (s *RedisStore) RecordAndCount(ctx context.Context, key string, now time.Time, window time.Duration) (int64, time.Time, error) {
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()

	res, err := s.script.Run(ctx, s.client, []string{key},
		now.UnixMilli(), window.Milliseconds(), member).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("sliding window script: %w", err)
	}

	reply, ok := res.([]interface{})
	if !ok || len(reply) < 1 {
		return 0, time.Time{}, fmt.Errorf("unexpected script reply: %T", res)
	}

	count, ok := reply[0].(int64)
	if !ok {
		return 0, time.Time{}, fmt.Errorf("unexpected count reply: %T", reply[0])
	}

	var oldest time.Time
	if len(reply) > 1 {
		if raw, ok := reply[1].(string); ok {
			if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
				oldest = time.UnixMilli(ms)
			}
		}
	}

	return count, oldest, nil
}

// CheckHealth pings the Redis backend.
func (s *RedisStore) CheckHealth(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
