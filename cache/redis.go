package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Tier2 wraps a Redis client as the optional second cache tier. Its
// methods are not safe to call on a nil *Tier2; callers construct one
// only when REDIS_HOST is configured, and TwoTier treats a nil Tier2 as
// "tier 2 disabled" rather than erroring.
type Tier2 struct {
	client *redis.Client
}

func NewTier2(addr, password string) *Tier2 {
	return &Tier2{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
	}
}

func (t *Tier2) Get(ctx context.Context, key string) ([]byte, bool) {
	v, err := t.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (t *Tier2) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return t.client.Set(ctx, key, value, ttl).Err()
}

func (t *Tier2) Remove(ctx context.Context, key string) error {
	return t.client.Del(ctx, key).Err()
}

func (t *Tier2) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func (t *Tier2) Close() error {
	return t.client.Close()
}
