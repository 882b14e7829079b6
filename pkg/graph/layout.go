package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
)

// =============================================================================
// Layout - Positioned, Colored Graph
// =============================================================================

// Layout is a Graph with every node's normalized position and fill color,
// plus the layer → node ID index. It is self-contained: a client can draw
// the diagram from it without running the layout or palette code.
type Layout struct {
	VizType string `json:"viz_type"`
	Graph

	// Palette is the profile ID code whose colors were used. Fallback is
	// true when that code had no entry and the default palette was used.
	Palette  string           `json:"palette"`
	Fallback bool             `json:"palette_fallback,omitempty"`
	Rows     map[int][]string `json:"rows"`
}

// Export combines a graph, its coordinates and a color scheme into a Layout.
func Export(g *dag.DAG, coords layout.Coordinates, colors palette.Entry) Layout {
	out := Layout{
		VizType: VizTypeTrace,
		Graph:   FromDAG(g),
		Rows:    make(map[int][]string),
	}
	for i := range out.Nodes {
		n := &out.Nodes[i]
		if p, ok := coords[n.ID]; ok {
			x, y := p.X, p.Y
			n.X, n.Y = &x, &y
		}
		n.Color = colors.Color(dag.NodeType(n.Type))
		out.Rows[n.Layer] = append(out.Rows[n.Layer], n.ID)
	}
	return out
}

// Coordinates returns the positions stored in the layout.
func (l Layout) Coordinates() layout.Coordinates {
	coords := make(layout.Coordinates, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.X != nil && n.Y != nil {
			coords[n.ID] = layout.Point{X: *n.X, Y: *n.Y}
		}
	}
	return coords
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every node must carry a position.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if l.VizType == "" {
		l.VizType = VizTypeTrace
	}
	if l.VizType != VizTypeTrace {
		return Layout{}, fmt.Errorf("unsupported viz type %q", l.VizType)
	}
	for _, n := range l.Nodes {
		if n.X == nil || n.Y == nil {
			return Layout{}, fmt.Errorf("node %s has no position", n.ID)
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
