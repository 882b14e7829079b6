package dag_test

import (
	"fmt"

	"github.com/matzehuels/reqtrace/pkg/dag"
)

func ExampleDAG_basic() {
	// Core system defines its requirements, which impose a constraint.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "AV", Label: "Autonomous Vehicle", Type: dag.TypeCore, Layer: 0})
	_ = g.AddNode(dag.Node{ID: "SR", Label: "AV System Requirements", Type: dag.TypeRequirement, Layer: 1})
	_ = g.AddNode(dag.Node{ID: "SC", Label: "AV Stability Constraints", Type: dag.TypeConstraint, Layer: 2})
	_ = g.AddEdge(dag.Edge{From: "AV", To: "SR", Label: "defines"})
	_ = g.AddEdge(dag.Edge{From: "SR", To: "SC", Label: "imposes"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Layers:", g.LayerCount())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Layers: 3
}

func ExampleDAG_AddEdge() {
	// Edges to unknown nodes are rejected when they are added.
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "SR", Type: dag.TypeRequirement, Layer: 1})

	err := g.AddEdge(dag.Edge{From: "SR", To: "missing", Label: "includes"})
	fmt.Println(err)
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// unknown target node
	// Edges: 0
}

func ExampleDAG_NodesInLayer() {
	g := dag.New(nil)
	for _, id := range []string{"SC", "PC", "SAF"} {
		_ = g.AddNode(dag.Node{ID: id, Type: dag.TypeConstraint, Layer: 2})
	}

	fmt.Println(dag.NodeIDs(g.NodesInLayer(2)))
	// Output:
	// [SC PC SAF]
}
