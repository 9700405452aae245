package trading

import (
	"sync"
	"time"

	"github.com/aristath/rebalancer/internal/domain"
)

// StatusCache memoizes a trading status classification for a short window.
// Purely a performance optimization; implementations must be safe for
// concurrent use.
type StatusCache interface {
	Get() (domain.DailyPnLState, bool)
	Set(state domain.DailyPnLState)
}

// TTLStatusCache caches the last classification for a fixed TTL keyed on
// wall-clock time alone.
type TTLStatusCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	state     domain.DailyPnLState
	expiresAt time.Time
	now       func() time.Time
}

// NewTTLStatusCache creates a status cache with the given TTL
func NewTTLStatusCache(ttl time.Duration) *TTLStatusCache {
	return &TTLStatusCache{
		ttl: ttl,
		now: time.Now,
	}
}

// Get returns the cached state when it has not expired
func (c *TTLStatusCache) Get() (domain.DailyPnLState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.expiresAt.IsZero() || c.now().After(c.expiresAt) {
		return domain.DailyPnLState{}, false
	}
	return c.state, true
}

// Set stores a state and restarts the TTL window
func (c *TTLStatusCache) Set(state domain.DailyPnLState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
	c.expiresAt = c.now().Add(c.ttl)
}

// NopStatusCache never caches. Used in tests and wherever every call must
// reclassify.
type NopStatusCache struct{}

func (NopStatusCache) Get() (domain.DailyPnLState, bool) { return domain.DailyPnLState{}, false }
func (NopStatusCache) Set(domain.DailyPnLState)          {}
