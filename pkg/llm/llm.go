// Package llm talks to the hosted text generation model.
//
// Callers depend on [Generator]. [Gemini] is the production implementation;
// [Breaker] and [Cached] wrap any Generator with a circuit breaker and a
// response cache. The usual stack, outermost first, is
//
//	llm.NewCached(llm.NewBreaker(gemini, llm.DefaultBreakerConfig("gemini")), c, keyer, model)
package llm

import "context"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f(ctx, prompt).
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
