package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations tracks logged-out token IDs until their natural expiry.
type Revocations struct {
	client *redis.Client
	prefix string
}

// NewRevocations constructs a Redis backed revocation list.
func NewRevocations(client *redis.Client, prefix string) *Revocations {
	if prefix == "" {
		prefix = "taskhub:revoked:"
	}
	return &Revocations{client: client, prefix: prefix}
}

// Revoke marks jti revoked until expiresAt. Already expired tokens need no entry.
func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.prefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("auth: check revocation: %w", err)
	}
	return n > 0, nil
}
