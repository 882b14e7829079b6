package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/config"
	"github.com/matzehuels/reqtrace/pkg/graph"
	"github.com/matzehuels/reqtrace/pkg/llm"
	"github.com/matzehuels/reqtrace/pkg/prompts"
)

const requirements = "The autonomous vehicle must keep response time low. " +
	"It shall stay safe near pedestrians. " +
	"Every release passes a simulation test."

// newTestCLI returns a CLI with a deterministic segmenter, a config file
// that disables caching and a stub model counting its calls.
func newTestCLI(t *testing.T) (*CLI, *atomic.Int32) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndisabled = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	c := New(io.Discard, LogInfo)
	c.configPath = cfgPath
	c.newClassifier = func() (*classify.Classifier, error) {
		return classify.NewWithSegmenter(classify.SegmenterFunc(func(text string) []string {
			return strings.SplitAfter(text, ".")
		})), nil
	}
	c.newModel = func(context.Context, *config.Config) (llm.Generator, error) {
		return llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
			calls.Add(1)
			return "generated text", nil
		}), nil
	}
	return c, &calls
}

// run executes the root command with args and returns what the command
// wrote to its output stream. Status lines on stdout are discarded.
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	old := stdout
	stdout = io.Discard
	defer func() { stdout = old }()

	// Registering --config resets configPath, so pass it as a flag.
	if c.configPath != "" {
		args = append([]string{"--config", c.configPath}, args...)
	}

	var out bytes.Buffer
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClassifyCommandJSON(t *testing.T) {
	c, _ := newTestCLI(t)
	out, err := run(t, c, "classify", "--json", requirements)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}

	var got map[string][]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 4 {
		t.Errorf("got %d categories, want 4", len(got))
	}
	if len(got["performance"]) != 1 || len(got["safety"]) != 1 || len(got["verification"]) != 1 {
		t.Errorf("categories = %v", got)
	}
}

func TestClassifyCommandText(t *testing.T) {
	c, _ := newTestCLI(t)
	out, err := run(t, c, "classify", requirements)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"per_0", "saf_0", "ver_0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestDetectCommandJSON(t *testing.T) {
	c, _ := newTestCLI(t)
	out, err := run(t, c, "detect", "--json", requirements)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	var got struct {
		Profile struct {
			IDCode string `json:"id_code"`
		} `json:"profile"`
		Keyword string `json:"keyword"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Profile.IDCode != "AV" || got.Keyword != "autonomous vehicle" {
		t.Errorf("detect = %+v", got)
	}
}

func TestGraphAndRenderCommands(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	base := filepath.Join(dir, "trace")

	if _, err := run(t, c, "graph", "--format", "dot,json", "-o", base, requirements); err != nil {
		t.Fatalf("graph: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.Contains(string(dot), "digraph") || !strings.Contains(string(dot), "per_0") {
		t.Errorf("dot output missing graph or leaf:\n%s", dot)
	}

	g, err := graph.ReadGraphFile(base + ".json")
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if _, ok := g.Node("AV"); !ok {
		t.Error("saved graph should have the AV root")
	}

	out := filepath.Join(dir, "again.dot")
	if _, err := run(t, c, "render", "--format", "dot", "-o", out, base+".json"); err != nil {
		t.Fatalf("render: %v", err)
	}
	again, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read re-rendered dot: %v", err)
	}
	if !strings.Contains(string(again), "per_0") {
		t.Errorf("re-rendered dot missing leaf:\n%s", again)
	}
}

func TestGraphCommandBase64(t *testing.T) {
	c, _ := newTestCLI(t)
	out, err := run(t, c, "graph", "--format", "dot", "--base64", "Keep it safe.")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if strings.TrimSpace(out) == "" || strings.Contains(out, "digraph") {
		t.Errorf("want base64 output, got %q", out)
	}

	if _, err := run(t, c, "graph", "--format", "dot,json", "--base64", "x"); err == nil {
		t.Error("--base64 with two formats should fail")
	}
}

func TestGraphCommandBadFormat(t *testing.T) {
	c, _ := newTestCLI(t)
	if _, err := run(t, c, "graph", "--format", "gif", "text"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestGenerateCommand(t *testing.T) {
	c, calls := newTestCLI(t)
	out, err := run(t, c, "generate", requirements)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if int(calls.Load()) != len(prompts.Kinds) {
		t.Errorf("model called %d times, want %d", calls.Load(), len(prompts.Kinds))
	}
	for _, k := range prompts.Kinds {
		if !strings.Contains(out, "=== "+k.Title()+" ===") {
			t.Errorf("output missing %q section", k.Title())
		}
	}
}

func TestGenerateCommandWritesFiles(t *testing.T) {
	c, calls := newTestCLI(t)
	dir := filepath.Join(t.TempDir(), "docs")
	if _, err := run(t, c, "generate", "--kind", "traceability", "-o", dir, requirements); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("model called %d times, want 1", calls.Load())
	}
	data, err := os.ReadFile(filepath.Join(dir, "traceability.md"))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.HasPrefix(string(data), "# "+prompts.Traceability.Title()) || !strings.Contains(string(data), "generated text") {
		t.Errorf("document = %q", data)
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no text", []string{"generate"}},
		{"unknown kind", []string{"generate", "--kind", "poem", requirements}},
		{"bad table", []string{"generate", "--table", "orders;drop", requirements}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestCLI(t)
			if _, err := run(t, c, tt.args...); err == nil {
				t.Error("expected an error")
			}
			if calls.Load() != 0 {
				t.Error("model should not be called")
			}
		})
	}
}

func TestCachePathCommand(t *testing.T) {
	c, _ := newTestCLI(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte("[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, c, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestGraphCommandSampleFiles(t *testing.T) {
	tests := []struct {
		file string
		root string
	}{
		{"autonomous_vehicle.txt", "AV"},
		{"energy_management.txt", "EMS"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			c, _ := newTestCLI(t)
			out := filepath.Join(t.TempDir(), "g.json")
			path := filepath.Join("..", "..", "examples", "requirements", tt.file)
			if _, err := run(t, c, "graph", "-f", path, "--format", "json", "-o", out); err != nil {
				t.Fatalf("graph: %v", err)
			}
			g, err := graph.ReadGraphFile(out)
			if err != nil {
				t.Fatalf("read graph: %v", err)
			}
			if _, ok := g.Node(tt.root); !ok {
				t.Errorf("graph has no %s root", tt.root)
			}
		})
	}
}
