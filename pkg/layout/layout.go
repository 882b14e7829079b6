// Package layout assigns normalized coordinates to traceability graph nodes.
//
// Coordinates live in the unit square with y pointing up: layer 0 sits at the
// top (y=0.9) and layer 4 at the bottom (y=0.1). Within a layer of k nodes the
// i-th node in insertion order (1-indexed) is placed at
//
//	x = 0.1 + i * 0.8/(k+1)
//
// so siblings are evenly spaced and never touch the 0.1/0.9 margins. The
// computation is a pure function of the graph's layers and node order.
package layout

import (
	"github.com/matzehuels/reqtrace/pkg/dag"
)

// Margin is the distance kept between nodes and the left/right edges.
const Margin = 0.1

// span is the horizontal room shared by the nodes of one layer.
const span = 1 - 2*Margin

var layerY = [dag.MaxLayer + 1]float64{0.9, 0.7, 0.5, 0.3, 0.1}

// Point is a normalized position in [0,1] x [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinates maps node IDs to positions.
type Coordinates map[string]Point

// LayerY returns the fixed y coordinate of a layer. Layers outside the valid
// range are clamped; graphs built through dag.AddNode never contain them.
func LayerY(layer int) float64 {
	layer = max(dag.MinLayer, min(dag.MaxLayer, layer))
	return layerY[layer]
}

// Compute returns the position of every node in g.
func Compute(g *dag.DAG) Coordinates {
	coords := make(Coordinates, g.NodeCount())
	for _, layer := range g.LayerIDs() {
		nodes := g.NodesInLayer(layer)
		step := span / float64(len(nodes)+1)
		y := LayerY(layer)
		for i, n := range nodes {
			coords[n.ID] = Point{X: Margin + float64(i+1)*step, Y: y}
		}
	}
	return coords
}

// Scale converts a normalized point into pixel space for a canvas of the
// given size, flipping y so layer 0 is drawn at the top.
func (p Point) Scale(width, height float64) (x, y float64) {
	return p.X * width, (1 - p.Y) * height
}
