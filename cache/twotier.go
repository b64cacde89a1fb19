package cache

import (
	"context"
	"time"
)

// TwoTier fronts an optional Tier2 (Redis) with a mandatory Tier1
// (in-process LRU). A hit in tier 2 is promoted into tier 1 with a
// shortened TTL so repeated lookups in the same process don't round-trip
// to Redis every time.
type TwoTier struct {
	tier1        *Tier1
	tier2        *Tier2
	promotionTTL time.Duration
}

func NewTwoTier(tier1 *Tier1, tier2 *Tier2, promotionTTL time.Duration) *TwoTier {
	return &TwoTier{tier1: tier1, tier2: tier2, promotionTTL: promotionTTL}
}

// Get checks tier 1, then falls back to tier 2 if configured, promoting
// a tier-2 hit back into tier 1.
func (c *TwoTier) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.tier1.Get(key); ok {
		return v, true
	}
	if c.tier2 == nil {
		return nil, false
	}
	v, ok := c.tier2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	c.tier1.Set(key, v, c.promotionTTL)
	return v, true
}

// Set writes through to both tiers; a tier-2 write error is swallowed
// since the design treats Redis as an optional accelerator, not a
// source of truth for the pipeline driver.
func (c *TwoTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	c.tier1.Set(key, value, ttl)
	if c.tier2 != nil {
		_ = c.tier2.Set(ctx, key, value, ttl)
	}
}

func (c *TwoTier) Remove(ctx context.Context, key string) {
	c.tier1.Remove(key)
	if c.tier2 != nil {
		_ = c.tier2.Remove(ctx, key)
	}
}
