package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/graph"
)

func ExampleWriteGraph() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "SYS", Label: "Generic System", Type: dag.TypeCore, Layer: 0})
	_ = g.AddNode(dag.Node{ID: "SR", Type: dag.TypeRequirement, Layer: 1})
	_ = g.AddEdge(dag.Edge{From: "SYS", To: "SR", Label: "defines"})

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "SYS",
	//       "label": "Generic System",
	//       "type": "core",
	//       "layer": 0
	//     },
	//     {
	//       "id": "SR",
	//       "type": "requirement",
	//       "layer": 1
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": "SYS",
	//       "to": "SR",
	//       "label": "defines"
	//     }
	//   ]
	// }
}

func ExampleReadGraph() {
	data := `{
		"nodes": [
			{"id": "VM", "type": "verification", "layer": 3},
			{"id": "ver_0", "label": "Verify the brakes.", "type": "spec", "layer": 4}
		],
		"edges": [{"from": "VM", "to": "ver_0", "label": "implements"}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(data))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Children of VM:", g.Children("VM"))
	// Output:
	// Nodes: 2
	// Children of VM: [ver_0]
}
