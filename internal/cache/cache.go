// Package cache provides a small typed cache on top of ristretto.
//
// It is only used for data that cannot change while the process runs,
// such as the shared system categories. Derived figures (balances, budget
// progress, reports) are never cached.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache defines a generic cache interface
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(key string) (T, bool)

	// Set stores a value in the cache
	Set(key string, data T)

	// Delete removes a key from the cache
	Delete(key string)
}

// Config holds cache sizing and expiry.
type Config struct {
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		TTL:         time.Hour,
	}
}

// Ristretto is a Cache backed by a ristretto.Cache. Every entry has cost 1.
type Ristretto[T any] struct {
	inner *ristretto.Cache
	ttl   time.Duration
}

// New creates a typed ristretto cache.
func New[T any](cfg Config) (*Ristretto[T], error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 {
		def := DefaultConfig()
		cfg.NumCounters, cfg.MaxCost = def.NumCounters, def.MaxCost
	}
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &Ristretto[T]{inner: inner, ttl: cfg.TTL}, nil
}

func (c *Ristretto[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.inner.Get(key)
	if !ok {
		return zero, false
	}
	data, ok := v.(T)
	if !ok {
		return zero, false
	}
	return data, true
}

// Set stores data and waits for the write buffer to flush so that an
// immediate Get observes it.
func (c *Ristretto[T]) Set(key string, data T) {
	if c.ttl > 0 {
		c.inner.SetWithTTL(key, data, 1, c.ttl)
	} else {
		c.inner.Set(key, data, 1)
	}
	c.inner.Wait()
}

func (c *Ristretto[T]) Delete(key string) {
	c.inner.Del(key)
}

// Close stops ristretto's background goroutines.
func (c *Ristretto[T]) Close() {
	c.inner.Close()
}
