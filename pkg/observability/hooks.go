// Package observability lets library code report events without importing a
// metrics backend.
//
// Three hook sets exist: pipeline stages, cache lookups and model calls.
// Until a binary registers an implementation, each set is a no-op:
//
//	m := observability.NewMetrics("reqtrace")
//	observability.SetPipelineHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetGenerationHooks(m)
//	defer observability.Reset()
//
// Emitting is a plain method call on the current set:
//
//	observability.Pipeline().OnBuildStart(ctx, profile.IDCode)
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks observes the classify, build, layout and render stages.
type PipelineHooks interface {
	OnClassifyComplete(ctx context.Context, sentences, matches int, duration time.Duration)
	OnBuildStart(ctx context.Context, idCode string)
	OnBuildComplete(ctx context.Context, idCode string, nodeCount int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, duration time.Duration)
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks observes cache lookups. keyType is the key family, e.g.
// "artifact" or "generation".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// GenerationHooks observes calls to the text generation model.
type GenerationHooks interface {
	OnGenerateStart(ctx context.Context, model string)
	OnGenerateComplete(ctx context.Context, model string, duration time.Duration, err error)
	// OnBreakerStateChange fires when the circuit breaker guarding the model
	// moves between closed, half-open and open.
	OnBreakerStateChange(name, from, to string)
}

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnClassifyComplete(context.Context, int, int, time.Duration)         {}
func (NoopPipelineHooks) OnBuildStart(context.Context, string)                                {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error)  {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                  {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, time.Duration)                     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopGenerationHooks discards model events.
type NoopGenerationHooks struct{}

func (NoopGenerationHooks) OnGenerateStart(context.Context, string)                          {}
func (NoopGenerationHooks) OnGenerateComplete(context.Context, string, time.Duration, error) {}
func (NoopGenerationHooks) OnBreakerStateChange(string, string, string)                      {}

type registry struct {
	mu         sync.RWMutex
	pipeline   PipelineHooks
	cache      CacheHooks
	generation GenerationHooks
}

var current = newRegistry()

func newRegistry() *registry {
	r := &registry{}
	r.reset()
	return r
}

func (r *registry) reset() {
	r.pipeline = NoopPipelineHooks{}
	r.cache = NoopCacheHooks{}
	r.generation = NoopGenerationHooks{}
}

// SetPipelineHooks installs h as the pipeline hook set. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h == nil {
		return
	}
	current.mu.Lock()
	current.pipeline = h
	current.mu.Unlock()
}

// SetCacheHooks installs h as the cache hook set. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h == nil {
		return
	}
	current.mu.Lock()
	current.cache = h
	current.mu.Unlock()
}

// SetGenerationHooks installs h as the generation hook set. A nil h is ignored.
func SetGenerationHooks(h GenerationHooks) {
	if h == nil {
		return
	}
	current.mu.Lock()
	current.generation = h
	current.mu.Unlock()
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.pipeline
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.cache
}

// Generation returns the installed generation hooks.
func Generation() GenerationHooks {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.generation
}

// Reset puts every hook set back to its no-op default.
func Reset() {
	current.mu.Lock()
	current.reset()
	current.mu.Unlock()
}
