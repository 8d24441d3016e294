package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedEmbedder memoizes embedding vectors per text. Corpus snippets are
// embedded once at load and claim values often repeat across a batch.
type CachedEmbedder struct {
	inner Embedder
	cache *gocache.Cache
}

// NewCachedEmbedder wraps an embedder with an in-memory cache
func NewCachedEmbedder(inner Embedder, ttl, cleanupInterval time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Name returns the wrapped embedder name
func (c *CachedEmbedder) Name() string {
	return c.inner.Name()
}

// Similarity delegates to the wrapped embedder
func (c *CachedEmbedder) Similarity(query, doc []float32) float64 {
	return c.inner.Similarity(query, doc)
}

// Embed returns a cached vector when the same text was embedded before
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := embedKey(c.inner.Name(), text)
	if val, found := c.cache.Get(key); found {
		return val.([]float32), nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, vec, gocache.DefaultExpiration)
	return vec, nil
}

func embedKey(name, text string) string {
	hash := sha256.Sum256([]byte(text))
	return "claimcheck:embed:" + name + ":" + hex.EncodeToString(hash[:])
}
