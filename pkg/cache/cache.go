// Package cache stores raw endpoint response bodies keyed by request path.
package cache

import (
	"context"
	"time"
)

// Cache is the storage used by the client to serve repeated endpoint calls.
type Cache interface {
	// Get returns the stored body and true, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores body under key for ttl.
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
}
