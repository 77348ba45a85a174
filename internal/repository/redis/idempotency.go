package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	redisx "github.com/kirinyoku/eventix/internal/redis"
)

// IdempotencyStore marks notification job nonces as consumed so redelivered
// or re-swept jobs do not produce duplicate notification rows.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

// Claim atomically marks the nonce as consumed. It returns true for the
// first caller and false for everyone after, until the TTL expires.
func (s *IdempotencyStore) Claim(ctx context.Context, nonce string) (bool, error) {
	return s.rdb.SetNX(ctx, redisx.KeyNotifyNonce(nonce), "1", s.ttl).Result()
}

// Release frees the nonce so a failed job can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, nonce string) error {
	return s.rdb.Del(ctx, redisx.KeyNotifyNonce(nonce)).Err()
}
