package dag

import (
	"errors"
	"maps"
	"slices"
)

// Sentinel errors returned by graph mutation and checking. The trace
// builder maps them onto coded errors.
var (
	ErrInvalidNodeID       = errors.New("node ID must not be empty")
	ErrDuplicateNodeID     = errors.New("duplicate node ID")
	ErrInvalidLayer        = errors.New("node layer out of range")
	ErrInvalidNodeType     = errors.New("unknown node type")
	ErrUnknownSourceNode   = errors.New("unknown source node")
	ErrUnknownTargetNode   = errors.New("unknown target node")
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
	ErrGraphHasCycle       = errors.New("graph contains a cycle")
)

// Layer bounds. Layer 0 is drawn at the top of the diagram.
const (
	MinLayer = 0
	MaxLayer = 4
)

// Metadata holds free-form attributes: a leaf's category and sentence, or
// graph-level render options such as the title. Maps handed out by a DAG
// are never nil.
type Metadata map[string]any

// NodeType classifies a node for coloring and layering.
type NodeType string

const (
	// TypeCore is the single root node naming the detected system type.
	TypeCore NodeType = "core"
	// TypeRequirement marks the system/functional/non-functional requirement nodes.
	TypeRequirement NodeType = "requirement"
	// TypeConstraint marks the stability/performance/safety constraint nodes.
	TypeConstraint NodeType = "constraint"
	// TypeVerification marks the model, traceability and condition nodes.
	TypeVerification NodeType = "verification"
	// TypeSpec marks leaf nodes created from classified sentences.
	TypeSpec NodeType = "spec"
	// TypeExternal marks nodes describing auxiliary inputs (database tables, documents).
	TypeExternal NodeType = "external"
)

// NodeTypes lists every valid node type in display order.
var NodeTypes = []NodeType{TypeCore, TypeRequirement, TypeConstraint, TypeVerification, TypeSpec, TypeExternal}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool { return slices.Contains(NodeTypes, t) }

// Node is one artifact box in the diagram.
type Node struct {
	ID    string
	Label string // falls back to ID when empty
	Type  NodeType
	Layer int // 0 is the core row
	Meta  Metadata
}

// DisplayLabel is the text drawn inside the node.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a labelled relationship such as SR "includes" FR.
type Edge struct {
	From  string
	To    string
	Label string
	Meta  Metadata
}

// DAG is a layered graph of typed nodes. The order nodes are added in is
// kept and fixes their left-to-right position within a layer.
//
// AddNode and AddEdge reject bad IDs, layers and endpoints but not cycles;
// call [DAG.CheckAcyclic] for that. Use [New]; a DAG needs external
// locking for concurrent use.
type DAG struct {
	order    []*Node
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	layers   map[int][]*Node     // layer -> nodes in insertion order
	meta     Metadata
}

// New returns an empty DAG. meta may be nil.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		layers:   make(map[int][]*Node),
		meta:     meta,
	}
}

// Meta returns the graph attributes; callers may modify them.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends n. On error (empty or repeated ID, unknown type, layer
// outside [MinLayer, MaxLayer]) the graph is left as it was.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if !n.Type.Valid() {
		return ErrInvalidNodeType
	}
	if n.Layer < MinLayer || n.Layer > MaxLayer {
		return ErrInvalidLayer
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.order = append(d.order, node)
	d.nodes[node.ID] = node
	d.layers[node.Layer] = append(d.layers[node.Layer], node)
	return nil
}

// AddEdge appends e. Both endpoints must already be in the graph.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// Nodes returns the nodes in insertion order. The slice is fresh; the
// pointers are shared with the graph.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.order) }

// Edges returns a copy of the edge list.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

func (d *DAG) NodeCount() int { return len(d.order) }

func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of id's outgoing edges.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sources of id's incoming edges.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node looks a node up by ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInLayer returns one row of the diagram, left to right.
func (d *DAG) NodesInLayer(layer int) []*Node { return d.layers[layer] }

// LayerCount counts non-empty layers.
func (d *DAG) LayerCount() int { return len(d.layers) }

// LayerIDs returns the non-empty layers, top first.
func (d *DAG) LayerIDs() []int {
	return slices.Sorted(maps.Keys(d.layers))
}

// NodesOfType filters Nodes by type.
func (d *DAG) NodesOfType(t NodeType) []*Node {
	var result []*Node
	for _, n := range d.order {
		if n.Type == t {
			result = append(result, n)
		}
	}
	return result
}

// Sources returns the nodes nothing points at.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, n := range d.order {
		if len(d.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns the nodes that point at nothing.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, n := range d.order {
		if len(d.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Validate re-checks edge endpoints and layers. It only fails for graphs
// whose internals were assembled without AddNode/AddEdge.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	for _, n := range d.order {
		if n.Layer < MinLayer || n.Layer > MaxLayer {
			return ErrInvalidLayer
		}
	}
	return nil
}

// CheckAcyclic returns ErrGraphHasCycle if any directed cycle exists.
func (d *DAG) CheckAcyclic() error {
	// Kahn's algorithm: a cycle leaves nodes with unresolved in-degree.
	indeg := make(map[string]int, len(d.order))
	var ready []string
	for _, n := range d.order {
		indeg[n.ID] = len(d.incoming[n.ID])
		if indeg[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}
	seen := 0
	for len(ready) > 0 {
		id := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		seen++
		for _, child := range d.outgoing[id] {
			indeg[child]--
			if indeg[child] == 0 {
				ready = append(ready, child)
			}
		}
	}
	if seen != len(d.order) {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs returns the IDs of nodes in order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
