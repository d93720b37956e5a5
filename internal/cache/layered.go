package cache

import (
	"context"
	"errors"
	"time"
)

// LayeredCache reads through a fast layer into a slower shared or
// persistent layer, promoting hits
type LayeredCache struct {
	fast Cache
	slow Cache
}

// NewLayeredCache creates a two-layer cache
func NewLayeredCache(fast, slow Cache) *LayeredCache {
	return &LayeredCache{fast: fast, slow: slow}
}

// Get checks the fast layer first, then the slow one
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, found := c.fast.Get(ctx, key); found {
		return val, true
	}

	if val, found := c.slow.Get(ctx, key); found {
		_ = c.fast.Set(ctx, key, val, 0)
		return val, true
	}

	return nil, false
}

// Set stores a value in both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.fast.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.slow.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.fast.Delete(ctx, key), c.slow.Delete(ctx, key))
}

// Clear empties both layers
func (c *LayeredCache) Clear(ctx context.Context) error {
	return errors.Join(c.fast.Clear(ctx), c.slow.Clear(ctx))
}

// Options selects the layers built by New
type Options struct {
	TTL      time.Duration
	Dir      string
	RedisURL string
}

// New builds memory, memory+disk or memory+redis depending on options.
// When both are set Redis is used as the slow layer.
func New(ctx context.Context, opts Options) (Cache, error) {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	memory := NewMemoryCache(opts.TTL, 10*time.Minute)

	switch {
	case opts.RedisURL != "":
		rc, err := NewRedisCache(ctx, opts.RedisURL, opts.TTL)
		if err != nil {
			return nil, err
		}
		return NewLayeredCache(memory, rc), nil
	case opts.Dir != "":
		return NewLayeredCache(memory, NewDiskCache(opts.Dir, opts.TTL)), nil
	default:
		return memory, nil
	}
}
