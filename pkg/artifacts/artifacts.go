// Package artifacts produces the four generated requirements-engineering
// documents for one input by fanning the prompts out to an llm.Generator.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/llm"
	"github.com/matzehuels/reqtrace/pkg/prompts"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// DefaultConcurrency bounds simultaneous model calls.
const DefaultConcurrency = 4

// Request describes one generation run.
type Request struct {
	Requirements string
	Categories   classify.CategoryMap
	Profile      detect.Profile
	Examples     prompts.Examples
	Schema       schema.Snapshot
	Sample       *schema.Rows
	SampleTable  string
	Document     string
	// Kinds selects documents; empty means all of prompts.Kinds.
	Kinds []prompts.Kind
}

// Document is one generated artifact. Err is set instead of Text when that
// document failed; the other documents are unaffected.
type Document struct {
	Kind     prompts.Kind  `json:"kind"`
	Title    string        `json:"title"`
	Text     string        `json:"text,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// Result holds the documents in request order.
type Result struct {
	Documents []Document `json:"documents"`
}

// Get returns the document of the given kind.
func (r *Result) Get(k prompts.Kind) (Document, bool) {
	for _, d := range r.Documents {
		if d.Kind == k {
			return d, true
		}
	}
	return Document{}, false
}

// Err joins the per-document errors.
func (r *Result) Err() error {
	var errs []error
	for _, d := range r.Documents {
		if d.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.Kind, d.Err))
		}
	}
	return errors.Join(errs...)
}

// Combined renders all documents under "=== Title ===" headings.
func (r *Result) Combined() string {
	parts := make([]string, len(r.Documents))
	for i, d := range r.Documents {
		body := d.Text
		if d.Err != nil {
			body = fmt.Sprintf("Error generating %s: %v", strings.ToLower(d.Title), d.Err)
		}
		parts[i] = fmt.Sprintf("=== %s ===\n%s", d.Title, body)
	}
	return strings.Join(parts, "\n\n")
}

// Generator runs the prompts against a model.
type Generator struct {
	model       llm.Generator
	logger      *log.Logger
	concurrency int
}

// New returns a Generator. A nil logger discards output.
func New(model llm.Generator, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{model: model, logger: logger, concurrency: DefaultConcurrency}
}

// WithConcurrency sets the number of concurrent model calls.
func (g *Generator) WithConcurrency(n int) *Generator {
	if n > 0 {
		g.concurrency = n
	}
	return g
}

// Generate builds every requested prompt and calls the model concurrently.
// A failing document does not cancel the others. The returned error is
// non-nil only when prompts cannot be built or ctx ends.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = prompts.Kinds
	}

	enhanced := prompts.Enhance(req.Requirements, req.Categories, req.Profile)
	texts := make([]string, len(kinds))
	for i, k := range kinds {
		in := prompts.Input{
			Requirements: req.Requirements,
			Examples:     req.Examples,
		}
		switch k {
		case prompts.SystemDesigns:
			in.Requirements = enhanced
			in.Schema, in.Sample, in.SampleTable = req.Schema, req.Sample, req.SampleTable
			in.Document = req.Document
		case prompts.VerificationRequirements:
			in.Requirements = enhanced
			in.Document = req.Document
		}
		text, err := prompts.Build(k, in)
		if err != nil {
			return nil, err
		}
		texts[i] = text
	}

	res := &Result{Documents: make([]Document, len(kinds))}
	var eg errgroup.Group
	eg.SetLimit(g.concurrency)
	for i, k := range kinds {
		eg.Go(func() error {
			start := time.Now()
			out, err := g.model.Generate(ctx, texts[i])
			doc := Document{Kind: k, Title: k.Title(), Text: out, Duration: time.Since(start), Err: err}
			if err != nil {
				doc.Text = ""
				doc.Error = err.Error()
				g.logger.Warn("generation failed", "document", k, "err", err)
			} else {
				g.logger.Debug("generated document", "document", k, "chars", len(out), "duration", doc.Duration)
			}
			res.Documents[i] = doc
			return nil
		})
	}
	// Workers record failures on their Document and always return nil.
	eg.Wait()

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
