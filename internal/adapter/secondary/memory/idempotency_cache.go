package memory

import (
	"context"
	"sync"
	"time"

	"github.com/payflow/payment-orchestrator/internal/port/output"
)

type cacheEntry struct {
	response  output.CachedResponse
	expiresAt time.Time
}

// IdempotencyCache is an in-memory implementation of the IdempotencyCache
// output port. Inserts are first-writer-wins; expired entries are dropped on
// read and by a periodic sweep.
type IdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewIdempotencyCache creates a new in-memory idempotency cache with the
// given entry TTL. A ttl of zero disables expiry.
func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	c := &IdempotencyCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go c.sweep()
	}
	return c
}

// Get returns the cached response for a token, if any
func (c *IdempotencyCache) Get(_ context.Context, token string) (*output.CachedResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(c.entries, token)
		return nil, false, nil
	}

	resp := entry.response
	return &resp, true, nil
}

// PutIfAbsent stores the response under the token unless one already exists
func (c *IdempotencyCache) PutIfAbsent(_ context.Context, token string, response output.CachedResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[token]; exists {
		return nil
	}

	entry := cacheEntry{response: response}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.entries[token] = entry
	return nil
}

// Close stops the background sweeper
func (c *IdempotencyCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *IdempotencyCache) sweep() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for token, entry := range c.entries {
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					delete(c.entries, token)
				}
			}
			c.mu.Unlock()
		}
	}
}
