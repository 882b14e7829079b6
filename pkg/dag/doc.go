// Package dag provides the typed, layered directed graph that models a
// traceability diagram.
//
// # Overview
//
// A traceability graph links a core system node to its requirements,
// constraints and verification artifacts, and hangs one leaf per classified
// requirement sentence below them. Every node carries a [NodeType] (used for
// coloring) and a layer between [MinLayer] and [MaxLayer] (used for vertical
// placement).
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "AV", Label: "Autonomous Vehicle", Type: dag.TypeCore, Layer: 0})
//	g.AddNode(dag.Node{ID: "SR", Label: "AV System Requirements", Type: dag.TypeRequirement, Layer: 1})
//	g.AddEdge(dag.Edge{From: "AV", To: "SR", Label: "defines"})
//
// # Invariants
//
// The graph rejects invalid construction eagerly rather than at render time:
//
//   - Node IDs are unique; a duplicate returns [ErrDuplicateNodeID]
//   - Edges must reference existing nodes; otherwise [ErrUnknownSourceNode]
//     or [ErrUnknownTargetNode] is returned and the edge is not added
//   - Layers are bounded; an out-of-range layer returns [ErrInvalidLayer]
//
// Insertion order is preserved by [DAG.Nodes] and [DAG.NodesInLayer]. Layout
// depends on it, so the same construction sequence always produces the same
// picture.
//
// # Metadata
//
// Both nodes and the graph itself support arbitrary metadata via [Metadata]
// maps. Metadata maps are never nil after creation.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Each render request builds
// and discards its own graph, so no synchronization is needed in practice.
package dag
