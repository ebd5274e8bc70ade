package forecast

import (
	"fmt"
	"sync"
	"time"
)

// Cache memoizes forecast series by (ticker, as-of date, horizon). A series
// is computed once per key; later requests for the same key return the same
// instance. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Series
}

// NewCache creates an empty forecast cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*Series)}
}

func cacheKey(ticker string, asOf time.Time, horizon int) string {
	return fmt.Sprintf("%s|%s|%d", ticker, asOf.Format("2006-01-02"), horizon)
}

// Project returns the cached series for the input's key, computing and
// storing it on first use.
func (c *Cache) Project(in Input, cfg Config) (*Series, error) {
	horizon := cfg.HorizonYears
	if horizon <= 0 {
		horizon = DefaultConfig().HorizonYears
	}
	key := cacheKey(in.Ticker, in.AsOf, horizon)

	c.mu.RLock()
	if s, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		return s, nil
	}
	c.mu.RUnlock()

	s, err := Project(in, cfg)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = s
	return s, nil
}

// Len reports how many series are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
