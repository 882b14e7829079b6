package classify

import (
	"strings"

	"github.com/neurosnap/sentences/english"
)

// Category names a requirement category a sentence can be tagged with.
type Category string

const (
	Performance  Category = "performance"
	Stability    Category = "stability"
	Safety       Category = "safety"
	Verification Category = "verification"
)

// Categories returns the fixed categories in their canonical order. Leaf node
// indices and graph construction follow this order.
func Categories() []Category {
	return []Category{Performance, Stability, Safety, Verification}
}

// keywords holds the lower-case trigger terms for each category.
var keywords = map[Category][]string{
	Performance:  {"speed", "acceleration", "time", "performance", "efficiency", "throughput", "response"},
	Stability:    {"balance", "stability", "control", "reliability", "robustness", "consistent"},
	Safety:       {"safe", "emergency", "protect", "security", "privacy", "backup"},
	Verification: {"verify", "validate", "test", "simulation", "check", "audit", "monitor"},
}

// Keywords returns a copy of the trigger terms for c, or nil for an unknown category.
func Keywords(c Category) []string {
	kw, ok := keywords[c]
	if !ok {
		return nil
	}
	return append([]string(nil), kw...)
}

// prefixes is the exact, exhaustive category <-> leaf ID prefix table.
// The four prefixes are distinct; a new category needs its own tag rather
// than another three-letter truncation.
var prefixes = map[Category]string{
	Performance:  "per",
	Stability:    "sta",
	Safety:       "saf",
	Verification: "ver",
}

// Prefix returns the three-letter leaf ID prefix for c, or "" if c is unknown.
func (c Category) Prefix() string { return prefixes[c] }

// ForPrefix returns the category whose leaf prefix is p.
func ForPrefix(p string) (Category, bool) {
	for c, pre := range prefixes {
		if pre == p {
			return c, true
		}
	}
	return "", false
}

// CategoryMap maps each category to the matching sentences in source order.
// Maps produced by [Classifier.Classify] always contain all four categories.
type CategoryMap map[Category][]string

// NewCategoryMap returns a map with every category present and empty.
func NewCategoryMap() CategoryMap {
	m := make(CategoryMap, len(keywords))
	for _, c := range Categories() {
		m[c] = []string{}
	}
	return m
}

// Total returns the number of (category, sentence) matches, i.e. the number
// of leaf nodes the map will produce.
func (m CategoryMap) Total() int {
	n := 0
	for _, c := range Categories() {
		n += len(m[c])
	}
	return n
}

// Missing returns the categories absent from m, in canonical order.
func (m CategoryMap) Missing() []Category {
	var missing []Category
	for _, c := range Categories() {
		if _, ok := m[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}

// Segmenter splits text into sentences.
type Segmenter interface {
	Segment(text string) []string
}

// SegmenterFunc adapts an ordinary function to the Segmenter interface.
type SegmenterFunc func(text string) []string

// Segment calls f(text).
func (f SegmenterFunc) Segment(text string) []string { return f(text) }

// Classifier tags sentences with requirement categories by keyword membership.
// A Classifier is immutable after construction and safe for concurrent use
// as long as its Segmenter is.
type Classifier struct {
	segmenter Segmenter
}

// New returns a Classifier backed by the English Punkt sentence tokenizer.
// Loading the model is comparatively expensive; construct one Classifier at
// startup and pass it to the code that needs it.
func New() (*Classifier, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	seg := SegmenterFunc(func(text string) []string {
		var out []string
		for _, s := range tokenizer.Tokenize(text) {
			out = append(out, s.Text)
		}
		return out
	})
	return &Classifier{segmenter: seg}, nil
}

// NewWithSegmenter returns a Classifier that uses seg to split sentences.
func NewWithSegmenter(seg Segmenter) *Classifier {
	return &Classifier{segmenter: seg}
}

// Sentences splits text into trimmed, non-empty sentences.
func (c *Classifier) Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, s := range c.segmenter.Segment(text) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Classify splits text into sentences and tags each one with every category
// whose keyword set it contains (lower-case substring match). The result
// always contains all four categories; empty text yields four empty slices.
func (c *Classifier) Classify(text string) CategoryMap {
	result := NewCategoryMap()
	for _, sentence := range c.Sentences(text) {
		for _, cat := range Match(sentence) {
			result[cat] = append(result[cat], sentence)
		}
	}
	return result
}

// Match returns the categories a single sentence belongs to, in canonical order.
func Match(sentence string) []Category {
	lower := strings.ToLower(sentence)
	var cats []Category
	for _, cat := range Categories() {
		if containsAny(lower, keywords[cat]) {
			cats = append(cats, cat)
		}
	}
	return cats
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
