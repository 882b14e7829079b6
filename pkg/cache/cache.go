// Package cache stores rendered artifacts and generated text.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for the API server, and [NullCache] when caching is disabled. Keys come
// from a [Keyer] so backends never see how they are built.
//
// Values are opaque bytes with an optional TTL; a zero TTL means the entry
// does not expire.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	ArtifactTTL   = 24 * time.Hour
	GenerationTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key for ttl (zero means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies a rendered artifact for an input.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
	// GenerationKey identifies a model response to a prompt.
	GenerationKey(model, prompt string) string
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	IDCode   string  `json:"id_code,omitempty"`
	Title    string  `json:"title,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Palette  string  `json:"palette,omitempty"`
}

// DefaultKeyer produces "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey hashes the input hash together with the render options.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// GenerationKey hashes the model name and prompt.
func (DefaultKeyer) GenerationKey(model, prompt string) string {
	return hashKey("generation", model, prompt)
}
