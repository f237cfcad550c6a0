package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs until their natural expiration, backed by
// Redis keys with a TTL. A nil client disables revocation checks.
type TokenBlacklist struct {
	rc *redis.Client
}

func NewTokenBlacklist(rc *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{rc: rc}
}

// Revoke stores the token until expiresAt.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if b == nil || b.rc == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.rc.Set(ctx, "jwt:blacklist:"+token, "1", ttl).Err()
}

// IsRevoked checks whether a token was revoked before natural expiration.
// On Redis errors it fails open to avoid locking everyone out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b == nil || b.rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	n, err := b.rc.Exists(ctx, "jwt:blacklist:"+token).Result()
	return err == nil && n > 0
}
