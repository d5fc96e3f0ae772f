// Package lock provides a best-effort distributed lock on Redis.
package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLocker takes short-lived locks with SET NX. Locks are never released
// early; they expire after their TTL.
type RedisLocker struct {
	rdb   *redis.Client
	owner string
}

func NewRedisLocker(rdb *redis.Client, owner string) *RedisLocker {
	return &RedisLocker{rdb: rdb, owner: owner}
}

// TryLock reports whether this process now holds key for ttl
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, "lock:"+key, l.owner, ttl).Result()
}
