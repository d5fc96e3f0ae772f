package auth

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// RedisRevocationList looks up revoked tokens written by the account service
type RedisRevocationList struct {
	rdb *redis.Client
}

func NewRedisRevocationList(rdb *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb}
}

// IsRevoked reports whether the token has been blacklisted
func (r *RedisRevocationList) IsRevoked(ctx context.Context, token string) (bool, error) {
	exists, err := r.rdb.Exists(ctx, blacklistPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
