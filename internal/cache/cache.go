package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// KeyPrefix namespaces every key written by the cache layers
const KeyPrefix = "truthlens:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheKey derives a key for one signal kind and claim. The claim is
// normalized so that case and spacing differences share an entry.
func CacheKey(kind, claim string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(claim)), " ")

	h1 := xxhash.NewS64(0)
	_, _ = h1.WriteString(normalized)
	h2 := xxhash.NewS64(1)
	_, _ = h2.WriteString(normalized)

	sum := make([]byte, 16)
	binary.LittleEndian.PutUint64(sum[0:], h1.Sum64())
	binary.LittleEndian.PutUint64(sum[8:], h2.Sum64())
	return KeyPrefix + kind + ":" + hex.EncodeToString(sum)
}

// GetJSON decodes a cached JSON value. A miss or undecodable entry returns false.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if c == nil {
		return v, false
	}
	data, ok := c.Get(ctx, key)
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, false
	}
	return v, true
}

// SetJSON encodes and stores a value
func SetJSON[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(ctx, key, data, ttl)
}
