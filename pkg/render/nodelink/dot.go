package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// Canvas sizes are given in pixels and converted to Graphviz inches at
// PixelsPerInch.
const (
	PixelsPerInch = 96.0
	DefaultWidth  = 1344.0
	DefaultHeight = 960.0
)

// Options configures diagram generation.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string
	// Width and Height set the canvas size in pixels. Zero uses the defaults.
	Width, Height float64
	// Detailed appends node metadata (category, columns) to labels.
	Detailed bool
}

// size returns the canvas size in inches.
func (o Options) size() (w, h float64) {
	w, h = o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w / PixelsPerInch, h / PixelsPerInch
}

// ToDOT converts a graph and its layout to Graphviz DOT.
// Nodes are emitted in insertion order with pos="x,y!" in inches; nodes
// missing from coords are left for the engine to place.
func ToDOT(g *dag.DAG, coords layout.Coordinates, colors palette.Entry, opts Options) string {
	w, h := opts.size()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=white, splines=true, overlap=true, size=\"%.2f,%.2f\"", w, h)
	if opts.Title != "" {
		fmt.Fprintf(&buf, ", label=%q, labelloc=t, fontsize=20", opts.Title)
	}
	buf.WriteString("];\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=10, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [color=\"#808080\", fontsize=8, arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(*n, colors, opts.Detailed)
		if p, ok := coords[n.ID]; ok {
			attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", p.X*w, p.Y*h))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Label == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, e.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n dag.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed || len(n.Meta) == 0 {
		return label
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == trace.MetaSentence {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n dag.Node, colors palette.Entry, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", colors.Color(n.Type)),
	}
	switch n.Type {
	case dag.TypeExternal:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case dag.TypeSpec:
		attrs = append(attrs, "shape=ellipse", "style=filled")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderDOT(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG with the neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderDOT(ctx, dot, graphviz.PNG)
}

func renderDOT(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container, keeping Graphviz's drawing size as the intrinsic size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
