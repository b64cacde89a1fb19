package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/videoscribe/analyzer/config"
)

// entry is what tier1 actually stores: the payload plus enough
// bookkeeping to evict on a byte budget as well as an entry-count budget.
type entry struct {
	value     []byte
	size      int64
	expiresAt time.Time
}

// Tier1 is the in-process cache tier: an LRU bounded both by entry count
// (via hashicorp/golang-lru) and by total byte size (tracked alongside
// it), matching the design's "two independent budgets" requirement that
// a plain count-bounded LRU cannot express on its own.
type Tier1 struct {
	lru      *lru.Cache[string, entry]
	maxBytes int64
	mu       sync.Mutex
	curBytes int64
}

func NewTier1(maxEntries int, maxBytes int64) (*Tier1, error) {
	t := &Tier1{maxBytes: maxBytes}
	l, err := lru.NewWithEvict(maxEntries, t.onEvict)
	if err != nil {
		return nil, err
	}
	t.lru = l
	return t, nil
}

func (t *Tier1) onEvict(_ string, v entry) {
	t.curBytes -= v.size
}

// Get returns the cached value if present and unexpired.
func (t *Tier1) Get(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	v, ok := t.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !v.expiresAt.IsZero() && config.Clock.GetTime().After(v.expiresAt) {
		t.lru.Remove(key)
		return nil, false
	}
	return v.value, true
}

// Set stores value under key with the given TTL (zero means no expiry),
// evicting LRU entries as needed to stay within the byte budget.
func (t *Tier1) Set(key string, value []byte, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := int64(len(value))
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = config.Clock.GetTime().Add(ttl)
	}

	if old, ok := t.lru.Peek(key); ok {
		t.curBytes -= old.size
	}
	t.lru.Add(key, entry{value: value, size: size, expiresAt: expiresAt})
	t.curBytes += size

	for t.curBytes > t.maxBytes {
		_, _, ok := t.lru.RemoveOldest()
		if !ok {
			break
		}
	}
}

func (t *Tier1) Remove(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lru.Remove(key)
}

// Len reports the current entry count, used in tests and diagnostics.
func (t *Tier1) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lru.Len()
}
