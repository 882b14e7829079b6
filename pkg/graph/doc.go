// Package graph provides serialization types for traceability graphs and
// their layouts.
//
// This package defines the wire format used for JSON files, API responses,
// the artifact cache and the "json" render format.
//
// # Core Types
//
//   - [Graph]: Node-link format (nodes, labelled edges, title, profile)
//   - [Layout]: A Graph with node positions, colors and the layer index
//   - [Node], [Edge]: Shared structural types
//
// # Graph Serialization
//
//	{
//	  "title": "Autonomous Vehicle Architecture and Requirements Flow",
//	  "profile": {"type_name": "Autonomous Vehicle", "id_code": "AV"},
//	  "nodes": [{"id": "AV", "label": "Autonomous Vehicle", "type": "core", "layer": 0}, ...],
//	  "edges": [{"from": "AV", "to": "SR", "label": "defines"}, ...]
//	}
//
// Common operations:
//
//	data, _ := graph.MarshalGraph(g)        // DAG → []byte
//	g, _ := graph.ReadGraphFile("g.json")   // File → DAG
//	l := graph.Export(g, coords, colors)    // DAG + layout → Layout
//
// Node order is insertion order, so [ToDAG] followed by layout.Compute
// reproduces the original coordinates.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
