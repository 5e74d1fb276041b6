package redis

import (
	"context"
	"fmt"
	"time"
)

const denyKeyPrefix = "chat:denied:"

// Deny marks a session token as revoked until its natural expiry.
func (r *RedisService) Deny(ctx context.Context, token string, ttl time.Duration) error {
	return r.Set(ctx, fmt.Sprintf("%s%s", denyKeyPrefix, token), "1", ttl)
}

// IsDenied reports whether a session token has been revoked.
func (r *RedisService) IsDenied(ctx context.Context, token string) (bool, error) {
	return r.Exists(ctx, fmt.Sprintf("%s%s", denyKeyPrefix, token))
}
