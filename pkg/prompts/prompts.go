// Package prompts builds the text sent to the generation model for the four
// requirements-engineering documents.
//
// Every prompt embeds caller-supplied [Examples] as structure references.
// Empty example fields fall back to [DefaultExamples].
package prompts

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// Kind names one of the generated documents.
type Kind string

const (
	SystemDesigns            Kind = "system_designs"
	VerificationRequirements Kind = "verification_requirements"
	Traceability             Kind = "traceability"
	VerificationConditions   Kind = "verification_conditions"
)

// Kinds lists the documents in presentation order.
var Kinds = []Kind{SystemDesigns, VerificationRequirements, Traceability, VerificationConditions}

// Title returns the section heading for k.
func (k Kind) Title() string {
	switch k {
	case SystemDesigns:
		return "System Design"
	case VerificationRequirements:
		return "Verification Requirements"
	case Traceability:
		return "Traceability"
	case VerificationConditions:
		return "Verification Conditions"
	}
	return string(k)
}

// Examples are reference documents shown to the model for structure only.
type Examples struct {
	SystemRequirements       string `json:"system_requirements,omitempty" toml:"system_requirements"`
	SystemDesigns            string `json:"system_designs,omitempty" toml:"system_designs"`
	VerificationRequirements string `json:"verification_requirements,omitempty" toml:"verification_requirements"`
}

// DefaultExamples returns the placeholders used when no examples are configured.
func DefaultExamples() Examples {
	return Examples{
		SystemRequirements:       "Example system requirements: [Default structured requirements].",
		SystemDesigns:            "Example system designs: [Detailed design example].",
		VerificationRequirements: "Example verification requirements: [Verification requirement structure].",
	}
}

// WithDefaults fills empty fields from DefaultExamples.
func (e Examples) WithDefaults() Examples {
	d := DefaultExamples()
	if strings.TrimSpace(e.SystemRequirements) == "" {
		e.SystemRequirements = d.SystemRequirements
	}
	if strings.TrimSpace(e.SystemDesigns) == "" {
		e.SystemDesigns = d.SystemDesigns
	}
	if strings.TrimSpace(e.VerificationRequirements) == "" {
		e.VerificationRequirements = d.VerificationRequirements
	}
	return e
}

// BriefWords is the word count below which requirements get a brevity note.
const BriefWords = 20

// BriefNote is appended to requirements shorter than BriefWords.
const BriefNote = "[Note: The input is brief; more detail may yield a richer design.]"

// Enhance appends the key concepts found in text and, for short input, a
// brevity note. Key concepts are the category keywords that occur in the
// classified sentences plus the detected system type.
func Enhance(text string, cats classify.CategoryMap, profile detect.Profile) string {
	out := strings.TrimSpace(text)
	if concepts := KeyConcepts(cats, profile); len(concepts) > 0 {
		out += "\nKey concepts: " + strings.Join(concepts, ", ")
	}
	if len(strings.Fields(text)) < BriefWords {
		out += "\n" + BriefNote
	}
	return out
}

// KeyConcepts returns the distinct keywords matched per category, in
// category order, followed by the system type unless it is the generic one.
func KeyConcepts(cats classify.CategoryMap, profile detect.Profile) []string {
	var concepts []string
	for _, c := range classify.Categories() {
		joined := strings.ToLower(strings.Join(cats[c], " "))
		if joined == "" {
			continue
		}
		for _, kw := range classify.Keywords(c) {
			if strings.Contains(joined, kw) && !slices.Contains(concepts, kw) {
				concepts = append(concepts, kw)
			}
		}
	}
	if profile.TypeName != "" && profile != detect.Generic {
		concepts = append(concepts, profile.TypeName)
	}
	return concepts
}

// Input carries everything a prompt may reference.
type Input struct {
	// Requirements is the (usually enhanced) requirement text.
	Requirements string
	Examples     Examples
	// Schema is rendered into the design prompt when non-empty.
	Schema schema.Snapshot
	// Sample holds rows of a table named in the requirements.
	Sample *schema.Rows
	// SampleTable is set when a table was named but yielded no rows.
	SampleTable string
	// Document is text extracted from an attached PDF.
	Document string
}

// Build renders the prompt for kind.
func Build(kind Kind, in Input) (string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}
	in.Examples = in.Examples.WithDefaults()

	var b strings.Builder
	if err := tmpl.Execute(&b, view{Input: in}); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return b.String(), nil
}

// view adds derived fields for the templates.
type view struct {
	Input
}

func (v view) SchemaText() string {
	if len(v.Schema) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range v.Schema.Tables() {
		fmt.Fprintf(&b, "%s(", t)
		for i, c := range v.Schema.Columns(t) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", c, v.Schema[t][c])
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (v view) SampleText() string {
	if text := v.Sample.Format(); text != "" {
		return strings.TrimRight(text, "\n")
	}
	if v.SampleTable != "" {
		return fmt.Sprintf("No data found for table '%s'.", v.SampleTable)
	}
	return ""
}

const rules = `IMPORTANT:
- Do NOT use any generic or fallback examples unless specified.
- Clearly label each section with headers.
- Format any DEFINED mathematical expressions in LaTeX.
- Keep the response self-contained and data-driven.`

var templates = map[Kind]*template.Template{
	SystemDesigns: template.Must(template.New("system_designs").Parse(`User Requirements (enhanced):
{{.Requirements}}
{{- if .Document}}
PDF data: {{.Document}}
{{- end}}

Reference Requirements:
{{.Examples.SystemRequirements}}

Reference Designs:
{{.Examples.SystemDesigns}}
{{- with .SchemaText}}

Database Structure:
{{.}}
{{- end}}
{{- with .SampleText}}

{{.}}
{{- end}}

Generate a concise system design document (500 words) that includes:
1. A mathematical description of the system requirements.
2. Acceptable system designs with formal proofs (using key properties and homomorphism).
3. Unacceptable designs with proofs outlining discrepancies.
4. Recommendations for improvement.
5. A formal proof of homomorphism demonstrating equivalence between requirements and designs.

` + rules + "\n")),

	VerificationRequirements: template.Must(template.New("verification_requirements").Parse(`Enhanced System Requirements:
{{.Requirements}}
{{- if .Document}}
PDF data: {{.Document}}
{{- end}}

Reference Requirements:
{{.Examples.SystemRequirements}}

Reference Verification Examples:
{{.Examples.VerificationRequirements}}

Reference Designs:
{{.Examples.SystemDesigns}}

Generate a concise verification requirements document (500 words) that includes:
1. Detailed verification problem spaces with proofs of morphism to the system requirements.
2. Verification models with proofs indicating adherence to these problem spaces.
3. A formal yes/no proof of homomorphism demonstrating equivalence between system designs and verification requirements.

` + rules + "\n")),

	Traceability: template.Must(template.New("traceability").Parse(`Generate traceability and proof based on the given system requirements. The provided example system designs and their corresponding system requirements are for structure reference only. Do not use the example content directly.

Example System Requirements (for structure reference only):
{{.Examples.SystemRequirements}}

Example System Designs (for structure reference only):
{{.Examples.SystemDesigns}}

System Requirements: {{.Requirements}}

Please provide your answer in clearly labeled sections. Include:
1. A traceability matrix formatted as a clean table, with the system requirements on one axis and the system designs on the other.
2. A proof of traceability explanation that follows the matrix table.

` + rules + "\n")),

	VerificationConditions: template.Must(template.New("verification_conditions").Parse(`Generate verification conditions based on the given system requirements. The provided example system requirements, verification requirements, and system designs are for structure reference only. Do not use the example content directly.

Example System Requirements (for structure reference only):
{{.Examples.SystemRequirements}}

Example Verification Requirements (for structure reference only):
{{.Examples.VerificationRequirements}}

Example System Designs (for structure reference only):
{{.Examples.SystemDesigns}}

System Requirements: {{.Requirements}}

Please provide your answer in clearly labeled sections. Include:
1. The type of homomorphism (homomorphism, isomorphism, identity isomorphism or parameter morphism) with an explanation.
2. A discussion of the verification requirement problem space with clear definitions.
3. A proof of the type of homomorphism and the verification requirement problem space.

` + rules + "\n")),
}
