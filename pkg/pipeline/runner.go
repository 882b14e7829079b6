package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/reqtrace/pkg/cache"
	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/observability"
	"github.com/matzehuels/reqtrace/pkg/render"
	"github.com/matzehuels/reqtrace/pkg/schema"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// SchemaSource provides a database schema snapshot.
type SchemaSource interface {
	Schema(ctx context.Context) (schema.Snapshot, error)
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching and degradation behave the same.
//
// A Runner holds no per-run state; multiple goroutines can share one.
type Runner struct {
	Classifier *classify.Classifier
	Detector   *detect.Detector
	Cache      cache.Cache
	Keyer      cache.Keyer
	Logger     *log.Logger
	// Schema, when set, supplies database nodes for runs without a snapshot.
	Schema SchemaSource
	// TTL is how long rendered artifacts stay cached.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching and a nil keyer
// uses the default one.
func NewRunner(classifier *classify.Classifier, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Classifier: classifier,
		Detector:   detect.New(nil),
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		TTL:        cache.ArtifactTTL,
	}
}

// Execute runs classify → detect → build → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if r.Classifier == nil {
		return nil, errors.New(errors.ErrCodeInternal, "runner has no classifier")
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[render.Format][]byte),
	}
	logger := opts.Logger.With("run", res.RunID[:8])
	hooks := observability.Pipeline()

	if opts.Schema == nil && !opts.SkipSchema && r.Schema != nil {
		snap, err := r.Schema.Schema(ctx)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("database schema unavailable: %v", err))
			logger.Warn("schema fetch failed", "err", err)
		} else {
			opts.Schema = snap
		}
	}

	text := opts.SourceText()

	// Stage 1: Classify and detect
	start := time.Now()
	res.Categories = r.Classifier.Classify(text)
	res.Profile = r.detector().Detect(text)
	res.Stats.ClassifyTime = time.Since(start)
	res.Stats.Sentences = len(r.Classifier.Sentences(text))
	res.Stats.Matches = res.Categories.Total()
	hooks.OnClassifyComplete(ctx, res.Stats.Sentences, res.Stats.Matches, res.Stats.ClassifyTime)

	logger.Info("classified requirements",
		"sentences", res.Stats.Sentences,
		"matches", res.Stats.Matches,
		"system", res.Profile.IDCode)

	// Stage 2: Build
	start = time.Now()
	hooks.OnBuildStart(ctx, res.Profile.IDCode)
	g, err := trace.Build(text, res.Categories, res.Profile, trace.Options{
		Schema: opts.Schema,
		HasPDF: opts.HasPDF,
	})
	res.Stats.BuildTime = time.Since(start)
	if err != nil {
		hooks.OnBuildComplete(ctx, res.Profile.IDCode, 0, res.Stats.BuildTime, err)
		return nil, fmt.Errorf("build: %w", err)
	}
	hooks.OnBuildComplete(ctx, res.Profile.IDCode, g.NodeCount(), res.Stats.BuildTime, nil)
	res.Graph = g
	res.Stats.NodeCount = g.NodeCount()
	res.Stats.EdgeCount = g.EdgeCount()

	logger.Info("built traceability graph",
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"duration", res.Stats.BuildTime)

	// Stage 3: Layout
	start = time.Now()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	res.Coordinates = layout.Compute(g)
	res.Stats.LayoutTime = time.Since(start)
	hooks.OnLayoutComplete(ctx, res.Stats.LayoutTime)

	// Stage 4: Render
	start = time.Now()
	res.InputHash = inputHash(opts)
	res.Palette, _, res.PaletteFallback = render.Colors(g, opts.renderOptions(DefaultFormat))
	if res.PaletteFallback {
		logger.Debug("no palette for system, using default", "code", res.Palette)
	}
	for _, f := range opts.Formats {
		data, hit, err := r.renderFormat(ctx, res, opts, f)
		if err != nil {
			if errors.Is(err, errors.ErrCodeRenderFailure) {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s output unavailable: %v", f, err))
				logger.Warn("render failed", "format", f, "err", err)
				continue
			}
			return nil, fmt.Errorf("render: %w", err)
		}
		res.Artifacts[f] = data
		if hit {
			res.CacheInfo.RenderHits = append(res.CacheInfo.RenderHits, f)
		}
	}
	res.CacheInfo.RenderHit = len(res.CacheInfo.RenderHits) == len(opts.Formats)
	res.Stats.RenderTime = time.Since(start)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", len(res.CacheInfo.RenderHits),
		"duration", res.Stats.RenderTime)

	return res, nil
}

// renderFormat returns the artifact for f, from the cache when possible.
func (r *Runner) renderFormat(ctx context.Context, res *Result, opts Options, f render.Format) ([]byte, bool, error) {
	key := r.Keyer.ArtifactKey(res.InputHash, opts.ArtifactKeyOpts(f, res.Profile.IDCode))
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, string(f))
	start := time.Now()
	data, err := render.Render(ctx, res.Graph, res.Coordinates, opts.renderOptions(f))
	hooks.OnRenderComplete(ctx, string(f), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.ArtifactTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err == nil {
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) detector() *detect.Detector {
	if r.Detector == nil {
		return detect.New(nil)
	}
	return r.Detector
}

// inputHash identifies everything that shapes the graph.
func inputHash(opts Options) string {
	return cache.HashStrings(
		opts.SourceText(),
		fmt.Sprint(opts.HasPDF),
		string(mustJSON(opts.Schema)),
	)
}

// mustJSON marshals values that cannot fail to encode (maps of strings and
// plain structs); sort order of map keys makes the output stable.
func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
