// Package pipeline runs the traceability pipeline for the CLI and the API.
//
// # Architecture
//
// One run has five stages:
//
//  1. Classify: split the requirement text into sentences and tag categories
//  2. Detect: pick the system profile from the text
//  3. Build: assemble the traceability graph, with database and PDF nodes
//  4. Layout: place every node on its layer
//  5. Render: produce one artifact per requested format
//
// Rendered artifacts are cached by input and render options. A format that
// fails to render is dropped from the result with a warning instead of
// failing the run.
//
// # Usage
//
//	classifier, _ := classify.New()
//	runner := pipeline.NewRunner(classifier, c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Text:    "The vehicle must brake safely.",
//	    Formats: []render.Format{render.FormatSVG},
//	})
//	svg := res.Artifacts[render.FormatSVG]
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reqtrace/pkg/cache"
	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/pdftext"
	"github.com/matzehuels/reqtrace/pkg/render"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = render.FormatSVG

// Options configures one pipeline run. It supports JSON for API requests.
type Options struct {
	// Text is the free-form requirement text.
	Text string `json:"text"`
	// Document is text extracted from an attached PDF. It is appended to
	// Text before classification. HasPDF adds the PDF node even when no
	// text could be extracted.
	Document string `json:"document,omitempty"`
	HasPDF   bool   `json:"has_pdf,omitempty"`
	// Schema adds database nodes. When nil and the runner has a schema
	// source, the snapshot is fetched unless SkipSchema is set.
	Schema     schema.Snapshot `json:"schema,omitempty"`
	SkipSchema bool            `json:"skip_schema,omitempty"`

	// Render options
	Formats  []render.Format `json:"formats,omitempty"`
	Palette  palette.Table   `json:"palette,omitempty"`
	Title    string          `json:"title,omitempty"`
	Width    float64         `json:"width,omitempty"`
	Height   float64         `json:"height,omitempty"`
	Detailed bool            `json:"detailed,omitempty"`

	// Refresh bypasses cached artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the text and formats and applies defaults.
// Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateText(o.Text); err != nil {
		return err
	}
	if err := errors.ValidateText(o.Document); err != nil {
		return err
	}
	if err := render.ValidateSize(o.Width, o.Height); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []render.Format{DefaultFormat}
	}
	formats := make([]render.Format, 0, len(o.Formats))
	for _, f := range o.Formats {
		parsed, err := render.ParseFormat(string(f))
		if err != nil {
			return err
		}
		if !slices.Contains(formats, parsed) {
			formats = append(formats, parsed)
		}
	}
	o.Formats = formats
	if o.HasPDF || o.Document != "" {
		o.HasPDF = true
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}

// SourceText is the requirement text with the document text appended.
func (o *Options) SourceText() string {
	return pdftext.Combine(o.Text, o.Document)
}

// renderOptions returns the renderer options for one format.
func (o *Options) renderOptions(f render.Format) render.Options {
	return render.Options{
		Format:   f,
		Palette:  o.Palette,
		Title:    o.Title,
		Width:    o.Width,
		Height:   o.Height,
		Detailed: o.Detailed,
	}
}

// ArtifactKeyOpts returns the cache key options for one format.
func (o *Options) ArtifactKeyOpts(f render.Format, idCode string) cache.ArtifactKeyOpts {
	var pal string
	if len(o.Palette) > 0 {
		pal = cache.Hash(mustJSON(o.Palette))
	}
	return cache.ArtifactKeyOpts{
		Format:   string(f),
		IDCode:   idCode,
		Title:    o.Title,
		Width:    o.Width,
		Height:   o.Height,
		Detailed: o.Detailed,
		Palette:  pal,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	Categories  classify.CategoryMap
	Profile     detect.Profile
	Graph       *dag.DAG
	Coordinates layout.Coordinates

	// InputHash is the content hash the artifact cache keys derive from.
	InputHash string

	// Artifacts holds one entry per successfully rendered format.
	Artifacts map[render.Format][]byte

	// Palette is the color scheme used; PaletteFallback reports that the
	// profile's code had no scheme and the default was used.
	Palette         string
	PaletteFallback bool

	// Warnings lists recovered problems such as failed formats.
	Warnings []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Sentences    int
	Matches      int
	NodeCount    int
	EdgeCount    int
	ClassifyTime time.Duration
	BuildTime    time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks which formats were served from the cache.
type CacheInfo struct {
	RenderHits []render.Format
	// RenderHit is true when every artifact came from the cache.
	RenderHit bool
}
