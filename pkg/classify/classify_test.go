package classify

import (
	"slices"
	"strings"
	"testing"
)

// splitOnPeriod is a deliberately naive segmenter for deterministic tests.
var splitOnPeriod = SegmenterFunc(func(text string) []string {
	return strings.SplitAfter(text, ".")
})

func mustClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestClassifyEmpty(t *testing.T) {
	c := mustClassifier(t)
	for _, text := range []string{"", "   ", "\n\t"} {
		got := c.Classify(text)
		if len(got) != 4 {
			t.Fatalf("Classify(%q) has %d categories, want 4", text, len(got))
		}
		for _, cat := range Categories() {
			s, ok := got[cat]
			if !ok {
				t.Errorf("Classify(%q) missing category %s", text, cat)
			}
			if len(s) != 0 {
				t.Errorf("Classify(%q)[%s] = %v, want empty", text, cat, s)
			}
		}
	}
}

func TestClassifyVerifyAndSafe(t *testing.T) {
	c := mustClassifier(t)
	text := "The rover shall verify its position every cycle. Operators must stay safe near the arm."

	got := c.Classify(text)

	wantVer := []string{"The rover shall verify its position every cycle."}
	wantSaf := []string{"Operators must stay safe near the arm."}
	if !slices.Equal(got[Verification], wantVer) {
		t.Errorf("verification = %q, want %q", got[Verification], wantVer)
	}
	if !slices.Equal(got[Safety], wantSaf) {
		t.Errorf("safety = %q, want %q", got[Safety], wantSaf)
	}
	if len(got[Performance]) != 0 || len(got[Stability]) != 0 {
		t.Errorf("unexpected matches: performance=%q stability=%q", got[Performance], got[Stability])
	}
	if got.Total() != 2 {
		t.Errorf("Total() = %d, want 2", got.Total())
	}
}

func TestClassifyMultipleCategories(t *testing.T) {
	c := NewWithSegmenter(splitOnPeriod)
	sentence := "The controller must respond in real time and pass every test."

	got := c.Classify(sentence)

	for _, cat := range []Category{Performance, Stability, Verification} {
		if !slices.Equal(got[cat], []string{sentence}) {
			t.Errorf("%s = %q, want the sentence", cat, got[cat])
		}
	}
	if len(got[Safety]) != 0 {
		t.Errorf("safety = %q, want empty", got[Safety])
	}
}

func TestClassifyPreservesSourceOrder(t *testing.T) {
	c := NewWithSegmenter(splitOnPeriod)
	text := "First test run. Second audit pass. Third check."

	got := c.Classify(text)

	want := []string{"First test run.", "Second audit pass.", "Third check."}
	if !slices.Equal(got[Verification], want) {
		t.Errorf("verification = %q, want %q", got[Verification], want)
	}
}

func TestClassifyToleratesImperfectSplits(t *testing.T) {
	// A segmenter that never splits still classifies the whole text.
	c := NewWithSegmenter(SegmenterFunc(func(text string) []string { return []string{text} }))
	got := c.Classify("Keep it safe. Verify it")

	if len(got[Safety]) != 1 || len(got[Verification]) != 1 {
		t.Errorf("Classify() = %v, want one safety and one verification match", got)
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		sentence string
		want     []Category
	}{
		{"", nil},
		{"Nothing relevant here.", nil},
		{"MAXIMUM THROUGHPUT", []Category{Performance}},
		{"Robustness matters", []Category{Stability}},
		{"The pipeline is unsafe", []Category{Safety}},
		{"Run the simulation nightly", []Category{Verification}},
		{"Backup power keeps the balance", []Category{Stability, Safety}},
	}

	for _, tt := range tests {
		if got := Match(tt.sentence); !slices.Equal(got, tt.want) {
			t.Errorf("Match(%q) = %v, want %v", tt.sentence, got, tt.want)
		}
	}
}

func TestSentencesDropsBlank(t *testing.T) {
	c := NewWithSegmenter(SegmenterFunc(func(string) []string {
		return []string{"  one. ", "", "   ", "two."}
	}))
	got := c.Sentences("ignored")
	if !slices.Equal(got, []string{"one.", "two."}) {
		t.Errorf("Sentences() = %q", got)
	}
}

func TestPrefixes(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Categories() {
		p := c.Prefix()
		if len(p) != 3 {
			t.Errorf("%s.Prefix() = %q, want 3 letters", c, p)
		}
		if seen[p] {
			t.Errorf("prefix %q is shared by two categories", p)
		}
		seen[p] = true

		back, ok := ForPrefix(p)
		if !ok || back != c {
			t.Errorf("ForPrefix(%q) = %v, %v; want %v", p, back, ok, c)
		}
	}
	if _, ok := ForPrefix("xyz"); ok {
		t.Error("ForPrefix(xyz) should not resolve")
	}
	if Category("unknown").Prefix() != "" {
		t.Error("unknown category should have no prefix")
	}
}

func TestCategoryMapMissing(t *testing.T) {
	m := CategoryMap{Performance: nil, Safety: nil}
	got := m.Missing()
	if !slices.Equal(got, []Category{Stability, Verification}) {
		t.Errorf("Missing() = %v", got)
	}
	if len(NewCategoryMap().Missing()) != 0 {
		t.Error("NewCategoryMap() should not miss categories")
	}
}

func TestKeywordsReturnsCopy(t *testing.T) {
	kw := Keywords(Safety)
	kw[0] = "mutated"
	if Keywords(Safety)[0] != "safe" {
		t.Error("Keywords() should return a copy")
	}
	if Keywords(Category("nope")) != nil {
		t.Error("Keywords(unknown) should be nil")
	}
}
