package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/graph"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render/nodelink"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/render/raster"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// Format names an output format.
type Format string

// Output formats.
const (
	FormatDOT    Format = "dot"
	FormatSVG    Format = "svg"
	FormatPNG    Format = "png"
	FormatPDF    Format = "pdf"
	FormatRaster Format = "raster"
	FormatJSON   Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatDOT, FormatSVG, FormatPNG, FormatPDF, FormatRaster, FormatJSON}

// ParseFormat validates a format name, ignoring case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (valid: %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Extension returns the file extension for artifacts of this format.
func (f Format) Extension() string {
	switch f {
	case FormatRaster:
		return "png"
	case FormatDOT:
		return "dot"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type of artifacts of this format.
func (f Format) ContentType() string {
	switch f {
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG, FormatRaster:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Options configures rendering.
type Options struct {
	Format Format
	// Palette replaces or extends the built-in color table.
	Palette palette.Table
	// IDCode selects the color scheme. Empty uses the profile stored on the
	// graph by the builder.
	IDCode string
	// Title overrides the graph title.
	Title string
	// Width and Height size the canvas in pixels for every format, up to
	// MaxCanvas. Zero uses each backend's default.
	Width, Height float64
	// Detailed adds node metadata to Graphviz labels.
	Detailed bool
}

// MaxCanvas bounds Options.Width and Options.Height.
const MaxCanvas = 4096

// ValidateSize rejects canvas dimensions outside [0, MaxCanvas].
func ValidateSize(width, height float64) error {
	if width < 0 || height < 0 || width > MaxCanvas || height > MaxCanvas {
		return errors.New(errors.ErrCodeInvalidInput, "canvas %gx%g outside 0..%d pixels", width, height, MaxCanvas)
	}
	return nil
}

// Colors resolves the color scheme used for g and reports whether the
// default palette was substituted for an unknown ID code.
func Colors(g *dag.DAG, opts Options) (code string, entry palette.Entry, fallback bool) {
	code = opts.IDCode
	if code == "" {
		if p, ok := g.Meta()[trace.MetaProfile].(detect.Profile); ok {
			code = p.IDCode
		}
	}
	table := palette.Builtin
	if len(opts.Palette) > 0 {
		table = palette.Merge(palette.Builtin, opts.Palette)
	}
	entry, found := table.Lookup(code)
	return code, entry, !found
}

// Render produces the artifact for g laid out at coords.
func Render(ctx context.Context, g *dag.DAG, coords layout.Coordinates, opts Options) (out []byte, err error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is nil")
	}
	if opts.Format == "" {
		opts.Format = FormatDOT
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	if err := ValidateSize(opts.Width, opts.Height); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.New(errors.ErrCodeRenderFailure, "render %s panicked: %v\n%s", format, r, debug.Stack())
		}
	}()

	code, colors, fallback := Colors(g, opts)
	title := opts.Title
	if title == "" {
		title, _ = g.Meta()[trace.MetaTitle].(string)
	}

	s := scheme{code: code, colors: colors, fallback: fallback}
	out, err = dispatch(ctx, g, coords, format, s, title, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailure, err, "render %s", format)
	}
	return out, nil
}

type scheme struct {
	code     string
	colors   palette.Entry
	fallback bool
}

func dispatch(ctx context.Context, g *dag.DAG, coords layout.Coordinates, format Format, s scheme, title string, opts Options) ([]byte, error) {
	colors := s.colors
	dotOpts := nodelink.Options{Title: title, Width: opts.Width, Height: opts.Height, Detailed: opts.Detailed}

	switch format {
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, coords, colors, dotOpts)), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, coords, colors, dotOpts))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(g, coords, colors, dotOpts))
	case FormatPDF:
		svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, coords, colors, dotOpts))
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	case FormatRaster:
		return raster.RenderPNG(g, coords, colors,
			raster.WithSize(int(opts.Width), int(opts.Height)),
			raster.WithTitle(title))
	case FormatJSON:
		l := graph.Export(g, coords, colors)
		l.Palette, l.Fallback = s.code, s.fallback
		return graph.MarshalLayout(l)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// EncodeBase64 returns the standard base64 encoding of an artifact, for
// embedding in HTML or JSON.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DataURI returns a data: URI embedding the artifact.
func DataURI(format Format, data []byte) string {
	return "data:" + format.ContentType() + ";base64," + EncodeBase64(data)
}
