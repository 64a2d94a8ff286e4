// internal/cache/revocation.go
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/authentrace/provenance-backend/internal/config"
)

const revokedKeyPrefix = "revoked_token:"

// TokenRevoker is a Redis-backed denylist for logged-out JWTs. Entries
// expire with the token itself, so the set stays bounded. A nil
// *TokenRevoker is valid and treats every token as live, which keeps
// Redis optional in development.
type TokenRevoker struct {
	client *redis.Client
}

func NewTokenRevoker(cfg config.RedisConfig) *TokenRevoker {
	if !cfg.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &TokenRevoker{client: client}
}

// Revoke denylists the token id until its natural expiry.
func (r *TokenRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if r == nil {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (r *TokenRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r == nil {
		return false, nil
	}

	n, err := r.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TokenRevoker) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
