package cache

import (
	"context"
	"sync"
	"time"
)

type cachedText struct {
	text     string
	storedAt time.Time
}

// Memory is a process-local TextCache with TTL expiration.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]cachedText
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates a Memory cache. A non-positive ttl uses DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]cachedText),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached text unless it has expired.
func (c *Memory) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[key]; ok {
		if c.now().Sub(cached.storedAt) < c.ttl {
			return cached.text, true, nil
		}
	}
	return "", false, nil
}

// Set stores text under key and drops expired entries.
func (c *Memory) Set(_ context.Context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, cached := range c.entries {
		if now.Sub(cached.storedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedText{text: text, storedAt: now}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
