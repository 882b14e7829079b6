package graph

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

// VizTypeTrace is the discriminator of layouts produced by this package.
const VizTypeTrace = "traceability"

// =============================================================================
// Graph - Traceability Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for traceability graphs.
// Used for API responses, caching, and the "json" render format.
//
// Nodes keep the graph's insertion order, which determines horizontal
// placement, so a decoded graph lays out exactly like the original.
type Graph struct {
	Title   string          `json:"title,omitempty"`
	Profile *detect.Profile `json:"profile,omitempty"`
	Nodes   []Node          `json:"nodes"`
	Edges   []Edge          `json:"edges"`
}

// =============================================================================
// Node / Edge
// =============================================================================

// Node is the serialized form of a graph node. X, Y and Color are only
// populated in layouts.
type Node struct {
	ID    string         `json:"id"`
	Label string         `json:"label,omitempty"`
	Type  string         `json:"type"`
	Layer int            `json:"layer"`
	X     *float64       `json:"x,omitempty"`
	Y     *float64       `json:"y,omitempty"`
	Color string         `json:"color,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a labelled, directed relationship.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// =============================================================================
// DAG ↔ Graph Conversion
// =============================================================================

// FromDAG converts a DAG to its serialization format.
// Graph-level title and profile metadata set by the builder are lifted into
// top-level fields.
func FromDAG(g *dag.DAG) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	if title, ok := g.Meta()[trace.MetaTitle].(string); ok {
		out.Title = title
	}
	if p, ok := g.Meta()[trace.MetaProfile].(detect.Profile); ok {
		out.Profile = &p
	}

	for i, n := range nodes {
		out.Nodes[i] = Node{
			ID:    n.ID,
			Label: n.Label,
			Type:  string(n.Type),
			Layer: n.Layer,
			Meta:  copyMeta(n.Meta),
		}
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To, Label: e.Label}
	}
	return out
}

// ToDAG converts a Graph to a DAG.
// Returns an error if a node is invalid (empty ID, unknown type, layer out of
// range, duplicate) or an edge references a missing node.
func ToDAG(gj Graph) (*dag.DAG, error) {
	meta := dag.Metadata{}
	if gj.Title != "" {
		meta[trace.MetaTitle] = gj.Title
	}
	if gj.Profile != nil {
		meta[trace.MetaProfile] = *gj.Profile
	}
	d := dag.New(meta)

	for _, nj := range gj.Nodes {
		n := dag.Node{
			ID:    nj.ID,
			Label: nj.Label,
			Type:  dag.NodeType(nj.Type),
			Layer: nj.Layer,
			Meta:  copyMeta(nj.Meta),
		}
		if err := d.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}

	for _, ej := range gj.Edges {
		if err := d.AddEdge(dag.Edge{From: ej.From, To: ej.To, Label: ej.Label}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}

	return d, nil
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, err
	}
	return g, nil
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
// Empty maps become nil so they are omitted from JSON.
func copyMeta(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
