package rate

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config defines rate limiting parameters for one client id.
// Battle.net allows 100 requests per second and 36,000 per hour per client.
type Config struct {
	RequestsPerSecond int
	Burst             int
}

// DefaultConfig matches the published per-second quota.
var DefaultConfig = Config{RequestsPerSecond: 100, Burst: 100}

// New creates a token bucket limiter for cfg. A non-positive rate disables limiting.
func New(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// Manager holds per-client limiters.
type Manager struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	defaults Config
}

func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters: make(map[string]*rate.Limiter),
		defaults: defaults,
	}
}

func (m *Manager) GetLimiter(clientKey string) *rate.Limiter {
	m.mu.RLock()
	if lim, ok := m.limiters[clientKey]; ok {
		m.mu.RUnlock()
		return lim
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if lim, ok := m.limiters[clientKey]; ok {
		return lim
	}
	lim := New(m.defaults)
	m.limiters[clientKey] = lim
	return lim
}

// Wait blocks until the limiter for key admits one request or ctx is done.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.GetLimiter(key).Wait(ctx)
}
