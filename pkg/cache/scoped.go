package cache

// ScopedKeyer prefixes every key of an inner Keyer. The API server scopes its
// keys with "api:" so it can share a Redis database with CLI runs.
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer prefixes the keys of inner, or of the default keyer when
// inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(inputHash, opts)
}

func (k ScopedKeyer) GenerationKey(model, prompt string) string {
	return k.Prefix + k.Inner.GenerationKey(model, prompt)
}
