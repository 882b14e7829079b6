// Package raster draws traceability graphs directly onto a bitmap.
//
// Unlike the node-link renderer, which delegates drawing to Graphviz, this
// package paints the computed layout as is: filled circles for nodes, grey
// arrows for edges with the relationship label at the midpoint, and the
// diagram title across the top. The result is PNG-encoded.
package raster

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1344
	DefaultHeight = 960
)

// Option configures raster rendering.
type Option func(*renderer)

type renderer struct {
	width, height int
	radius        float64
	title         string
}

// WithSize sets the canvas size in pixels.
func WithSize(width, height int) Option {
	return func(r *renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

// WithTitle sets the title drawn at the top of the image.
func WithTitle(title string) Option {
	return func(r *renderer) { r.title = title }
}

// WithNodeRadius sets the node marker radius in pixels.
func WithNodeRadius(radius float64) Option {
	return func(r *renderer) {
		if radius > 0 {
			r.radius = radius
		}
	}
}

// RenderPNG draws g at the given coordinates and returns PNG bytes.
// Nodes without coordinates are skipped along with their edges.
func RenderPNG(g *dag.DAG, coords layout.Coordinates, colors palette.Entry, opts ...Option) ([]byte, error) {
	r := renderer{width: DefaultWidth, height: DefaultHeight, radius: 14}
	for _, opt := range opts {
		opt(&r)
	}

	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	r.drawEdges(dc, g, coords)
	if err := r.drawNodes(dc, g, coords, colors); err != nil {
		return nil, err
	}
	if r.title != "" {
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(r.title, float64(r.width)/2, 20, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *renderer) point(coords layout.Coordinates, id string) (x, y float64, ok bool) {
	p, ok := coords[id]
	if !ok {
		return 0, 0, false
	}
	x, y = p.Scale(float64(r.width), float64(r.height))
	return x, y, true
}

func (r *renderer) drawEdges(dc *gg.Context, g *dag.DAG, coords layout.Coordinates) {
	dc.SetLineWidth(1.2)
	for _, e := range g.Edges() {
		x1, y1, ok1 := r.point(coords, e.From)
		x2, y2, ok2 := r.point(coords, e.To)
		if !ok1 || !ok2 {
			continue
		}

		// Stop the shaft at the target's rim so the arrowhead stays visible.
		angle := math.Atan2(y2-y1, x2-x1)
		tx := x2 - r.radius*math.Cos(angle)
		ty := y2 - r.radius*math.Sin(angle)

		dc.SetHexColor("#808080")
		dc.DrawLine(x1, y1, tx, ty)
		dc.Stroke()
		drawArrowHead(dc, tx, ty, angle, 8)

		if e.Label != "" {
			dc.SetHexColor("#404040")
			dc.DrawStringAnchored(e.Label, (x1+x2)/2, (y1+y2)/2, 0.5, 0.5)
		}
	}
}

func drawArrowHead(dc *gg.Context, x, y, angle, size float64) {
	const spread = math.Pi / 7
	dc.MoveTo(x, y)
	dc.LineTo(x-size*math.Cos(angle-spread), y-size*math.Sin(angle-spread))
	dc.LineTo(x-size*math.Cos(angle+spread), y-size*math.Sin(angle+spread))
	dc.ClosePath()
	dc.Fill()
}

func (r *renderer) drawNodes(dc *gg.Context, g *dag.DAG, coords layout.Coordinates, colors palette.Entry) error {
	for _, n := range g.Nodes() {
		x, y, ok := r.point(coords, n.ID)
		if !ok {
			continue
		}
		fill, err := palette.ParseHex(colors.Color(n.Type))
		if err != nil {
			return fmt.Errorf("node %s: %w", n.ID, err)
		}

		dc.DrawCircle(x, y, r.radius)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetRGB(0.3, 0.3, 0.3)
		dc.SetLineWidth(1)
		dc.Stroke()

		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(n.DisplayLabel(), x, y+r.radius+10, 0.5, 0.5)
	}
	return nil
}
