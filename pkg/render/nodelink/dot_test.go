package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/layout"
	"github.com/matzehuels/reqtrace/pkg/render/palette"
	"github.com/matzehuels/reqtrace/pkg/trace"
)

func sampleGraph(t *testing.T) (*dag.DAG, layout.Coordinates) {
	t.Helper()
	cats := classify.NewCategoryMap()
	cats[classify.Safety] = []string{"Emergency stop within 2 seconds of any fault."}
	cats[classify.Verification] = []string{"Verify the brakes."}
	p := detect.Profile{TypeName: "Autonomous Vehicle", IDCode: "AV"}
	g, err := trace.Build("", cats, p, trace.Options{HasPDF: true})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g, layout.Compute(g)
}

func TestToDOTPreservesTopology(t *testing.T) {
	g, coords := sampleGraph(t)
	dot := ToDOT(g, coords, palette.Builtin["AV"], Options{Title: "AV Flow"})

	for _, n := range g.Nodes() {
		if !strings.Contains(dot, `"`+n.ID+`" [label=`) {
			t.Errorf("DOT missing node %s", n.ID)
		}
	}
	for _, e := range g.Edges() {
		want := `"` + e.From + `" -> "` + e.To + `" [label="` + e.Label + `"]`
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing edge %s", want)
		}
	}
	if !strings.Contains(dot, `label="AV Flow"`) {
		t.Error("DOT missing title")
	}
}

func TestToDOTColorsAndPositions(t *testing.T) {
	g, coords := sampleGraph(t)
	dot := ToDOT(g, coords, palette.Builtin["AV"], Options{})

	wants := []string{
		`"AV" [label="Autonomous Vehicle", fillcolor="#F08080", pos="7.00,9.00!"]`,
		`fillcolor="#DDA0DD"`,
		`"PDF" [label="PDF Document", fillcolor="#D3D3D3", style="rounded,filled,dashed"`,
		`"saf_0" [label="Emergency stop within 2 second...", fillcolor="#DDA0DD", shape=ellipse`,
	}
	for _, want := range wants {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
}

func TestToDOTCanvasInPixels(t *testing.T) {
	g, coords := sampleGraph(t)
	tests := []struct {
		name          string
		width, height float64
		wantSize      string
		wantPos       string
	}{
		{"defaults", 0, 0, `size="14.00,10.00"`, `pos="7.00,9.00!"`},
		{"pixels", 960, 480, `size="10.00,5.00"`, `pos="5.00,4.50!"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(g, coords, palette.Builtin["AV"], Options{Width: tt.width, Height: tt.height})
			if !strings.Contains(dot, tt.wantSize) {
				t.Errorf("DOT missing %s", tt.wantSize)
			}
			if !strings.Contains(dot, `"AV" [label="Autonomous Vehicle", fillcolor="#F08080", `+tt.wantPos) {
				t.Errorf("core node not pinned at %s", tt.wantPos)
			}
		})
	}
}

func TestToDOTDetailedSkipsSentence(t *testing.T) {
	g, coords := sampleGraph(t)
	dot := ToDOT(g, coords, palette.Default, Options{Detailed: true})

	if !strings.Contains(dot, `category: safety`) {
		t.Error("detailed label missing category")
	}
	if strings.Contains(dot, "sentence:") {
		t.Error("detailed label should not repeat the sentence")
	}
}

func TestToDOTWithoutCoordinates(t *testing.T) {
	g, _ := sampleGraph(t)
	dot := ToDOT(g, nil, palette.Default, Options{})
	if strings.Contains(dot, "pos=") {
		t.Error("nodes without coordinates should not be pinned")
	}
}

func TestRenderSVG(t *testing.T) {
	g, coords := sampleGraph(t)
	svg, err := RenderSVG(context.Background(), ToDOT(g, coords, palette.Default, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("viewBox=")) {
		t.Errorf("RenderSVG() did not produce SVG: %.200s", svg)
	}
}

func TestRenderPNG(t *testing.T) {
	g, coords := sampleGraph(t)
	png, err := RenderPNG(context.Background(), ToDOT(g, coords, palette.Default, Options{}))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("RenderPNG() did not produce a PNG")
	}
}
