package llm

import (
	"context"
	"time"

	"github.com/matzehuels/reqtrace/pkg/cache"
	"github.com/matzehuels/reqtrace/pkg/observability"
)

// Cached serves repeated prompts from a cache and retries transient
// failures of the wrapped Generator with backoff.
type Cached struct {
	next  Generator
	cache cache.Cache
	keyer cache.Keyer
	model string
	TTL   time.Duration
}

// NewCached wraps next. A nil cache disables caching; a nil keyer uses the
// default one. model is part of every key.
func NewCached(next Generator, c cache.Cache, keyer cache.Keyer, model string) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{next: next, cache: c, keyer: keyer, model: model, TTL: cache.GenerationTTL}
}

// Generate returns the cached response for prompt or generates and stores it.
// Cache errors are ignored; only generation errors are returned.
func (c *Cached) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.keyer.GenerationKey(c.model, prompt)
	hooks := observability.Cache()

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		hooks.OnCacheHit(ctx, "generation")
		return string(data), nil
	}
	hooks.OnCacheMiss(ctx, "generation")

	var text string
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		text, err = c.next.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, []byte(text), c.TTL); err == nil {
		hooks.OnCacheSet(ctx, "generation", len(text))
	}
	return text, nil
}

var _ Generator = (*Cached)(nil)
