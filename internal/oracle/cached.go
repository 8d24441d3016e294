package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedOracle memoizes Classify replies. Suggest is deliberately never
// cached: a "Generate New" request must always produce a fresh list.
type CachedOracle struct {
	inner Oracle
	cache *gocache.Cache
}

// NewCachedOracle wraps an oracle with a classification reply cache
func NewCachedOracle(inner Oracle, ttl, cleanupInterval time.Duration) *CachedOracle {
	return &CachedOracle{
		inner: inner,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Name returns the wrapped provider name
func (c *CachedOracle) Name() string {
	return c.inner.Name()
}

// IsAvailable delegates to the wrapped provider
func (c *CachedOracle) IsAvailable(ctx context.Context) bool {
	return c.inner.IsAvailable(ctx)
}

// Classify returns a cached reply when the same prompt was answered before
func (c *CachedOracle) Classify(ctx context.Context, req ClassifyRequest) (string, error) {
	key := classifyKey(req)
	if val, found := c.cache.Get(key); found {
		return val.(string), nil
	}

	reply, err := c.inner.Classify(ctx, req)
	if err != nil {
		return "", err
	}

	c.cache.Set(key, reply, gocache.DefaultExpiration)
	return reply, nil
}

// Suggest always goes to the wrapped provider
func (c *CachedOracle) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	return c.inner.Suggest(ctx, req)
}

func classifyKey(req ClassifyRequest) string {
	hash := sha256.Sum256([]byte(req.System + "\x00" + req.Prompt + "\x00" + req.Model))
	return "claimcheck:classify:" + hex.EncodeToString(hash[:])
}
