package cache

import (
	"context"
	"sync"
	"time"
)

type cacheItem[T any] struct {
	value      T
	expiration time.Time
}

// TTLCache is a simple thread-safe TTL cache for storing values in-memory.
type TTLCache[T any] struct {
	mu   sync.RWMutex
	data map[string]cacheItem[T]
	ttl  time.Duration
}

// NewTTLCache creates a new TTL-based in-memory cache. defaultTTL applies to Put.
func NewTTLCache[T any](defaultTTL time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		data: make(map[string]cacheItem[T]),
		ttl:  defaultTTL,
	}
}

// Get returns a cached value if present and not expired.
func (c *TTLCache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	item, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	if time.Now().After(item.expiration) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		var zero T
		return zero, false
	}
	return item.value, true
}

// Put inserts or overwrites an entry with the default TTL.
func (c *TTLCache[T]) Put(key string, value T) {
	c.PutTTL(key, value, c.ttl)
}

// PutTTL inserts or overwrites an entry with an explicit TTL.
func (c *TTLCache[T]) PutTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheItem[T]{
		value:      value,
		expiration: time.Now().Add(ttl),
	}
}

// StartCleaner periodically removes expired cache entries until stop is closed.
func (c *TTLCache[T]) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-stop:
			return
		}
	}
}

func (c *TTLCache[T]) cleanupExpired() {
	now := time.Now()
	c.mu.Lock()
	for k, v := range c.data {
		if now.After(v.expiration) {
			delete(c.data, k)
		}
	}
	c.mu.Unlock()
}

// DefaultCleanupInterval is how often NewMemory sweeps expired bodies.
const DefaultCleanupInterval = time.Minute

// Memory is a Cache backed by a TTLCache of response bodies.
// A background cleaner runs until Close is called.
type Memory struct {
	items     *TTLCache[[]byte]
	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemory creates an in-memory response cache swept every DefaultCleanupInterval.
func NewMemory() *Memory {
	return NewMemoryWithCleanup(DefaultCleanupInterval)
}

// NewMemoryWithCleanup creates an in-memory response cache swept every interval.
func NewMemoryWithCleanup(interval time.Duration) *Memory {
	m := &Memory{
		items: NewTTLCache[[]byte](time.Minute),
		stop:  make(chan struct{}),
	}
	go m.items.StartCleaner(interval, m.stop)
	return m
}

// Close stops the cleaner. It is safe to call more than once.
func (m *Memory) Close() {
	m.closeOnce.Do(func() { close(m.stop) })
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	body, ok := m.items.Get(key)
	return body, ok, nil
}

// Set stores body for ttl; a non-positive ttl uses the cache default.
func (m *Memory) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		m.items.Put(key, body)
		return nil
	}
	m.items.PutTTL(key, body, ttl)
	return nil
}
