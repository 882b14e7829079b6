package trace

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

var av = detect.Profile{TypeName: "Autonomous Vehicle", IDCode: "AV"}

func mustBuild(t *testing.T, text string, cats classify.CategoryMap, p detect.Profile, opts Options) *dag.DAG {
	t.Helper()
	g, err := Build(text, cats, p, opts)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func edgeSet(g *dag.DAG) map[string]string {
	m := make(map[string]string)
	for _, e := range g.Edges() {
		m[e.From+"->"+e.To] = e.Label
	}
	return m
}

func TestBuildEmptyInput(t *testing.T) {
	g := mustBuild(t, "", classify.NewCategoryMap(), detect.Generic, Options{})

	if g.NodeCount() != 10 {
		t.Errorf("NodeCount() = %d, want 10", g.NodeCount())
	}
	if g.EdgeCount() != 11 {
		t.Errorf("EdgeCount() = %d, want 11", g.EdgeCount())
	}
	if g.NodeCount() != BackboneNodeCount || g.EdgeCount() != BackboneEdgeCount {
		t.Errorf("backbone constants disagree with graph: %d/%d", BackboneNodeCount, BackboneEdgeCount)
	}
	if len(g.NodesInLayer(4)) != 0 {
		t.Errorf("empty input produced %d leaves", len(g.NodesInLayer(4)))
	}
	if got := g.Meta()[MetaTitle]; got != "Generic System Architecture and Requirements Flow" {
		t.Errorf("title = %v", got)
	}
}

func TestBuildBackbone(t *testing.T) {
	g := mustBuild(t, "", classify.NewCategoryMap(), av, Options{})

	wantNodes := []struct {
		id    string
		label string
		typ   dag.NodeType
		layer int
	}{
		{"AV", "Autonomous Vehicle", dag.TypeCore, 0},
		{"SR", "AV System Requirements", dag.TypeRequirement, 1},
		{"FR", "AV Functional Requirements", dag.TypeRequirement, 1},
		{"NFR", "AV Non-Functional Requirements", dag.TypeRequirement, 1},
		{"SC", "AV Stability Constraints", dag.TypeConstraint, 2},
		{"PC", "AV Performance Constraints", dag.TypeConstraint, 2},
		{"SAF", "AV Safety Constraints", dag.TypeConstraint, 2},
		{"VM", "AV Mathematical Model", dag.TypeVerification, 3},
		{"TR", "AV Traceability Matrix", dag.TypeVerification, 3},
		{"VC", "AV Verification Conditions", dag.TypeVerification, 3},
	}
	for i, want := range wantNodes {
		n, ok := g.Node(want.id)
		if !ok {
			t.Fatalf("missing node %s", want.id)
		}
		if n.Label != want.label || n.Type != want.typ || n.Layer != want.layer {
			t.Errorf("node %s = {%q %s %d}, want {%q %s %d}",
				want.id, n.Label, n.Type, n.Layer, want.label, want.typ, want.layer)
		}
		if g.Nodes()[i].ID != want.id {
			t.Errorf("insertion order[%d] = %s, want %s", i, g.Nodes()[i].ID, want.id)
		}
	}

	wantEdges := map[string]string{
		"AV->SR":  "defines",
		"SR->FR":  "includes",
		"SR->NFR": "includes",
		"FR->SC":  "imposes",
		"FR->PC":  "imposes",
		"FR->SAF": "imposes",
		"SC->VM":  "validates",
		"PC->VM":  "validates",
		"SAF->VM": "validates",
		"VM->TR":  "generates",
		"TR->VC":  "defines",
	}
	got := edgeSet(g)
	if len(got) != len(wantEdges) {
		t.Errorf("edge count = %d, want %d", len(got), len(wantEdges))
	}
	for k, label := range wantEdges {
		if got[k] != label {
			t.Errorf("edge %s label = %q, want %q", k, got[k], label)
		}
	}
}

func TestBackboneIsAcyclic(t *testing.T) {
	for _, p := range detect.DefaultRules {
		g := mustBuild(t, "", classify.NewCategoryMap(), p.Profile, Options{})
		if err := g.CheckAcyclic(); err != nil {
			t.Errorf("%s backbone: %v", p.Profile.IDCode, err)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("%s backbone: %v", p.Profile.IDCode, err)
		}
	}
}

func TestBuildVerifyAndSafeScenario(t *testing.T) {
	cats := classify.NewCategoryMap()
	cats[classify.Verification] = []string{"The rover shall verify its position every cycle."}
	cats[classify.Safety] = []string{"Operators must stay safe near the arm."}

	g := mustBuild(t, "", cats, av, Options{})

	leaves := dag.NodeIDs(g.NodesInLayer(4))
	if !slices.Equal(leaves, []string{"saf_0", "ver_0"}) {
		t.Fatalf("leaves = %v, want [saf_0 ver_0]", leaves)
	}
	edges := edgeSet(g)
	if edges["SAF->saf_0"] != "specifies" {
		t.Errorf("saf_0 edge = %q", edges["SAF->saf_0"])
	}
	if edges["VM->ver_0"] != "implements" {
		t.Errorf("ver_0 edge = %q", edges["VM->ver_0"])
	}
	if g.NodeCount() != 12 || g.EdgeCount() != 13 {
		t.Errorf("counts = %d nodes, %d edges; want 12, 13", g.NodeCount(), g.EdgeCount())
	}
}

func TestBuildLeafWiring(t *testing.T) {
	cats := classify.CategoryMap{
		classify.Performance:  {"Response time under 10ms.", "High throughput."},
		classify.Stability:    {"Stay in control."},
		classify.Safety:       {"Emergency stop."},
		classify.Verification: {"Run a simulation.", "Audit logs.", "Monitor drift."},
	}
	g := mustBuild(t, "", cats, av, Options{})

	tests := []struct {
		leaf, parent, label, category string
	}{
		{"per_0", "PC", "specifies", "performance"},
		{"per_1", "PC", "specifies", "performance"},
		{"sta_0", "SC", "specifies", "stability"},
		{"saf_0", "SAF", "specifies", "safety"},
		{"ver_0", "VM", "implements", "verification"},
		{"ver_2", "VM", "implements", "verification"},
	}
	edges := edgeSet(g)
	for _, tt := range tests {
		if got := edges[tt.parent+"->"+tt.leaf]; got != tt.label {
			t.Errorf("%s -> %s label = %q, want %q", tt.parent, tt.leaf, got, tt.label)
		}
		n, _ := g.Node(tt.leaf)
		if n.Meta[MetaCategory] != tt.category {
			t.Errorf("%s category = %v, want %s", tt.leaf, n.Meta[MetaCategory], tt.category)
		}
	}

	want := []string{"per_0", "per_1", "sta_0", "saf_0", "ver_0", "ver_1", "ver_2"}
	if got := dag.NodeIDs(g.NodesInLayer(4)); !slices.Equal(got, want) {
		t.Errorf("leaf order = %v, want %v", got, want)
	}
	if g.NodeCount() != 10+cats.Total() || g.EdgeCount() != 11+cats.Total() {
		t.Errorf("counts = %d/%d", g.NodeCount(), g.EdgeCount())
	}
}

func TestParentOfIsExhaustive(t *testing.T) {
	for _, c := range classify.Categories() {
		id, label, ok := ParentOf(c.Prefix())
		if !ok || id == "" || label == "" {
			t.Errorf("category %s (prefix %q) has no parent", c, c.Prefix())
		}
	}
	if _, _, ok := ParentOf("xyz"); ok {
		t.Error("unknown prefix should not resolve")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"short", "short"},
		{strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{strings.Repeat("é", 40), strings.Repeat("é", 30) + "..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, LabelLimit); got != tt.want {
			t.Errorf("Truncate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLeafLabelTruncated(t *testing.T) {
	sentence := "The vehicle must verify every sensor reading before acting on it."
	cats := classify.NewCategoryMap()
	cats[classify.Verification] = []string{sentence}

	g := mustBuild(t, sentence, cats, av, Options{})
	n, _ := g.Node("ver_0")
	if n.Label != "The vehicle must verify every ..." {
		t.Errorf("label = %q", n.Label)
	}
	if n.Meta[MetaSentence] != sentence {
		t.Errorf("sentence metadata = %v", n.Meta[MetaSentence])
	}
}

func TestBuildSchema(t *testing.T) {
	snap := schema.Snapshot{
		"sensors": {"id": "integer", "value": "real"},
		"alarms":  {"level": "text"},
		"users":   {"name": "text"},
	}
	text := "Store every reading in SENSORS and raise alarms on faults."

	g := mustBuild(t, text, classify.NewCategoryMap(), av, Options{Schema: snap})

	db, ok := g.Node(DatabaseNode)
	if !ok || db.Type != dag.TypeExternal || db.Layer != 1 || db.Label != "Database Tables" {
		t.Fatalf("database node = %+v", db)
	}
	tables := dag.NodeIDs(g.NodesOfType(dag.TypeExternal))
	if !slices.Equal(tables, []string{"DB", "DB_alarms", "DB_sensors", "DB_users"}) {
		t.Errorf("external nodes = %v", tables)
	}

	edges := edgeSet(g)
	for _, tbl := range []string{"alarms", "sensors", "users"} {
		if edges["DB->DB_"+tbl] != "contains" {
			t.Errorf("missing contains edge for %s", tbl)
		}
	}
	if edges["SR->DB_sensors"] != "references" || edges["SR->DB_alarms"] != "references" {
		t.Errorf("missing references edges: %v", edges)
	}
	if _, ok := edges["SR->DB_users"]; ok {
		t.Error("users is not mentioned and should not be referenced")
	}
	n, _ := g.Node("DB_sensors")
	if cols, _ := n.Meta[MetaColumns].([]string); !slices.Equal(cols, []string{"id", "value"}) {
		t.Errorf("columns = %v", n.Meta[MetaColumns])
	}
}

func TestBuildPDF(t *testing.T) {
	g := mustBuild(t, "", classify.NewCategoryMap(), av, Options{HasPDF: true})

	n, ok := g.Node(PDFNode)
	if !ok || n.Layer != 2 || n.Type != dag.TypeExternal {
		t.Fatalf("pdf node = %+v", n)
	}
	if edgeSet(g)["SR->PDF"] != "details in" {
		t.Error("missing SR -> PDF edge")
	}
}

func TestBuildErrors(t *testing.T) {
	full := classify.NewCategoryMap()
	partial := classify.CategoryMap{classify.Performance: nil}

	tests := []struct {
		name    string
		cats    classify.CategoryMap
		profile detect.Profile
		code    errors.Code
	}{
		{"empty type name", full, detect.Profile{IDCode: "AV"}, errors.ErrCodeMalformedProfile},
		{"empty id code", full, detect.Profile{TypeName: "X"}, errors.ErrCodeMalformedProfile},
		{"id code with space", full, detect.Profile{TypeName: "X", IDCode: "A V"}, errors.ErrCodeMalformedProfile},
		{"id code collides", full, detect.Profile{TypeName: "X", IDCode: "SR"}, errors.ErrCodeMalformedProfile},
		{"nil classification", nil, av, errors.ErrCodeMalformedProfile},
		{"missing categories", partial, av, errors.ErrCodeMalformedProfile},
		{"leaf id collision", full, detect.Profile{TypeName: "X", IDCode: "per_0"}, errors.ErrCodeDuplicateNodeID},
	}
	full[classify.Performance] = []string{"fast response"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build("", tt.cats, tt.profile, Options{})
			if err == nil {
				t.Fatal("Build() error = nil")
			}
			if g != nil {
				t.Error("Build() returned a partial graph")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() code = %v, want %v", errors.GetCode(err), tt.code)
			}
			if !errors.IsConstruction(err) {
				t.Errorf("IsConstruction(%v) = false", err)
			}
		})
	}
}

// Randomized classifications must never produce dangling edges or leave
// a leaf unattached.
func TestBuildRandomizedNoDanglingEdges(t *testing.T) {
	words := []string{"speed", "balance", "safe", "verify", "the", "robot", "audit",
		"time", "backup", "control", "monitor", "shall", "ünïcode", "table", "sensors"}
	rng := rand.New(rand.NewPCG(1, 2))
	snap := schema.Snapshot{"sensors": {"id": "int"}}

	for iter := 0; iter < 200; iter++ {
		var sentences []string
		for range rng.IntN(12) {
			var w []string
			for range 1 + rng.IntN(15) {
				w = append(w, words[rng.IntN(len(words))])
			}
			sentences = append(sentences, strings.Join(w, " ")+".")
		}
		text := strings.Join(sentences, " ")
		c := classify.NewWithSegmenter(classify.SegmenterFunc(func(string) []string { return sentences }))
		cats := c.Classify(text)
		profile := detect.DetectSystemType(text)

		g, err := Build(text, cats, profile, Options{Schema: snap, HasPDF: iter%2 == 0})
		if err != nil {
			t.Fatalf("iteration %d: Build() error: %v", iter, err)
		}
		if err := g.Validate(); err != nil {
			t.Fatalf("iteration %d: %v", iter, err)
		}
		for _, leaf := range g.NodesInLayer(4) {
			if g.InDegree(leaf.ID) != 1 {
				t.Fatalf("iteration %d: leaf %s has %d parents", iter, leaf.ID, g.InDegree(leaf.ID))
			}
		}
		if len(g.NodesInLayer(4)) != cats.Total() {
			t.Fatalf("iteration %d: %d leaves for %d matches", iter, len(g.NodesInLayer(4)), cats.Total())
		}
	}
}

func ExampleBuild() {
	cats := classify.NewCategoryMap()
	cats[classify.Safety] = []string{"Operators must stay safe near the arm."}

	g, err := Build("", cats, detect.Profile{TypeName: "Robotic System", IDCode: "ROB"}, Options{})
	if err != nil {
		panic(err)
	}
	fmt.Println(g.NodeCount(), g.EdgeCount())
	for _, n := range g.NodesInLayer(4) {
		fmt.Printf("%s %q <- %v\n", n.ID, n.Label, g.Parents(n.ID))
	}
	// Output:
	// 11 12
	// saf_0 "Operators must stay safe near ..." <- [SAF]
}
