package trace

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/reqtrace/pkg/classify"
	"github.com/matzehuels/reqtrace/pkg/dag"
	"github.com/matzehuels/reqtrace/pkg/detect"
	"github.com/matzehuels/reqtrace/pkg/errors"
	"github.com/matzehuels/reqtrace/pkg/schema"
)

// Backbone node IDs. The core node takes the profile's IDCode as its ID.
const (
	SystemReq       = "SR"
	FunctionalReq   = "FR"
	NonFunctional   = "NFR"
	StabilityCon    = "SC"
	PerformanceCon  = "PC"
	SafetyCon       = "SAF"
	MathModel       = "VM"
	TraceMatrix     = "TR"
	VerificationCon = "VC"

	DatabaseNode = "DB"
	PDFNode      = "PDF"
)

// Metadata keys set on nodes and on the graph.
const (
	MetaTitle    = "title"
	MetaProfile  = "profile"
	MetaCategory = "category"
	MetaSentence = "sentence"
	MetaColumns  = "columns"
)

// LabelLimit is the number of runes kept from a sentence in a leaf label.
const LabelLimit = 30

// Options carries the optional auxiliary inputs of a build.
type Options struct {
	// Schema adds a database node with one child per table.
	Schema schema.Snapshot
	// HasPDF adds a node for a supplied PDF document.
	HasPDF bool
}

type backboneNode struct {
	id     string
	suffix string
	typ    dag.NodeType
	layer  int
}

var backboneNodes = []backboneNode{
	{SystemReq, "System Requirements", dag.TypeRequirement, 1},
	{FunctionalReq, "Functional Requirements", dag.TypeRequirement, 1},
	{NonFunctional, "Non-Functional Requirements", dag.TypeRequirement, 1},
	{StabilityCon, "Stability Constraints", dag.TypeConstraint, 2},
	{PerformanceCon, "Performance Constraints", dag.TypeConstraint, 2},
	{SafetyCon, "Safety Constraints", dag.TypeConstraint, 2},
	{MathModel, "Mathematical Model", dag.TypeVerification, 3},
	{TraceMatrix, "Traceability Matrix", dag.TypeVerification, 3},
	{VerificationCon, "Verification Conditions", dag.TypeVerification, 3},
}

// coreID stands in for the profile's IDCode in backboneEdges.
const coreID = ""

var backboneEdges = []dag.Edge{
	{From: coreID, To: SystemReq, Label: "defines"},
	{From: SystemReq, To: FunctionalReq, Label: "includes"},
	{From: SystemReq, To: NonFunctional, Label: "includes"},
	{From: FunctionalReq, To: StabilityCon, Label: "imposes"},
	{From: FunctionalReq, To: PerformanceCon, Label: "imposes"},
	{From: FunctionalReq, To: SafetyCon, Label: "imposes"},
	{From: StabilityCon, To: MathModel, Label: "validates"},
	{From: PerformanceCon, To: MathModel, Label: "validates"},
	{From: SafetyCon, To: MathModel, Label: "validates"},
	{From: MathModel, To: TraceMatrix, Label: "generates"},
	{From: TraceMatrix, To: VerificationCon, Label: "defines"},
}

// BackboneNodeCount and BackboneEdgeCount describe the fixed part of every graph.
var (
	BackboneNodeCount = len(backboneNodes) + 1
	BackboneEdgeCount = len(backboneEdges)
)

type leafParent struct {
	id    string
	label string
}

// leafParents maps each leaf prefix to the backbone node it hangs from.
var leafParents = map[string]leafParent{
	"per": {PerformanceCon, "specifies"},
	"sta": {StabilityCon, "specifies"},
	"saf": {SafetyCon, "specifies"},
	"ver": {MathModel, "implements"},
}

// ParentOf returns the backbone node and edge label a leaf with the given ID
// prefix attaches to.
func ParentOf(prefix string) (id, label string, ok bool) {
	p, ok := leafParents[prefix]
	return p.id, p.label, ok
}

// Title returns the diagram title for a profile.
func Title(p detect.Profile) string {
	return p.TypeName + " Architecture and Requirements Flow"
}

// Build constructs the traceability graph for text.
//
// The profile must carry a type name and a valid ID code, and categories must
// contain all four classification categories (possibly empty); otherwise
// Build returns a MALFORMED_PROFILE error. Errors from graph insertion are
// reported as DUPLICATE_NODE_ID or DANGLING_EDGE. No graph is returned on
// error.
func Build(text string, categories classify.CategoryMap, profile detect.Profile, opts Options) (*dag.DAG, error) {
	if err := checkInputs(categories, profile); err != nil {
		return nil, err
	}

	g := dag.New(dag.Metadata{
		MetaTitle:   Title(profile),
		MetaProfile: profile,
	})
	b := &builder{g: g, profile: profile}

	b.addBackbone()
	b.addLeaves(categories)
	if len(opts.Schema) > 0 {
		b.addSchema(text, opts.Schema)
	}
	if opts.HasPDF {
		b.addPDF()
	}

	if b.err != nil {
		return nil, b.err
	}
	return g, nil
}

func checkInputs(categories classify.CategoryMap, profile detect.Profile) error {
	if strings.TrimSpace(profile.TypeName) == "" {
		return errors.New(errors.ErrCodeMalformedProfile, "profile has no type name")
	}
	if err := errors.ValidateIDCode(profile.IDCode); err != nil {
		return err
	}
	for _, id := range reservedIDs {
		if profile.IDCode == id {
			return errors.New(errors.ErrCodeMalformedProfile, "id code %q collides with a backbone node", id)
		}
	}
	if categories == nil {
		return errors.New(errors.ErrCodeMalformedProfile, "classification is missing")
	}
	if missing := categories.Missing(); len(missing) > 0 {
		return errors.New(errors.ErrCodeMalformedProfile, "classification is missing categories %v", missing)
	}
	return nil
}

var reservedIDs = func() []string {
	ids := []string{DatabaseNode, PDFNode}
	for _, n := range backboneNodes {
		ids = append(ids, n.id)
	}
	return ids
}()

// builder accumulates the first insertion error so the build steps read
// linearly.
type builder struct {
	g       *dag.DAG
	profile detect.Profile
	err     error
}

func (b *builder) node(n dag.Node) {
	if b.err != nil {
		return
	}
	if err := b.g.AddNode(n); err != nil {
		b.err = wrapInsert(err, "add node %q", n.ID)
	}
}

func (b *builder) edge(from, to, label string) {
	if b.err != nil {
		return
	}
	if err := b.g.AddEdge(dag.Edge{From: from, To: to, Label: label}); err != nil {
		b.err = wrapInsert(err, "add edge %s -> %s", from, to)
	}
}

func wrapInsert(err error, format string, args ...any) error {
	switch {
	case stderrors.Is(err, dag.ErrDuplicateNodeID):
		return errors.Wrap(errors.ErrCodeDuplicateNodeID, err, format, args...)
	case stderrors.Is(err, dag.ErrUnknownSourceNode), stderrors.Is(err, dag.ErrUnknownTargetNode):
		return errors.Wrap(errors.ErrCodeDanglingEdge, err, format, args...)
	case stderrors.Is(err, dag.ErrInvalidLayer):
		return errors.Wrap(errors.ErrCodeInvalidLayer, err, format, args...)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, format, args...)
	}
}

func (b *builder) addBackbone() {
	code := b.profile.IDCode
	b.node(dag.Node{ID: code, Label: b.profile.TypeName, Type: dag.TypeCore, Layer: 0})
	for _, n := range backboneNodes {
		b.node(dag.Node{
			ID:    n.id,
			Label: code + " " + n.suffix,
			Type:  n.typ,
			Layer: n.layer,
		})
	}
	for _, e := range backboneEdges {
		from := e.From
		if from == coreID {
			from = code
		}
		b.edge(from, e.To, e.Label)
	}
}

func (b *builder) addLeaves(categories classify.CategoryMap) {
	for _, cat := range classify.Categories() {
		prefix := cat.Prefix()
		parent, ok := leafParents[prefix]
		if !ok {
			if b.err == nil {
				b.err = errors.New(errors.ErrCodeMalformedProfile, "category %q has no parent node", cat)
			}
			return
		}
		for i, sentence := range categories[cat] {
			id := fmt.Sprintf("%s_%d", prefix, i)
			b.node(dag.Node{
				ID:    id,
				Label: Truncate(sentence, LabelLimit),
				Type:  dag.TypeSpec,
				Layer: 4,
				Meta: dag.Metadata{
					MetaCategory: string(cat),
					MetaSentence: sentence,
				},
			})
			b.edge(parent.id, id, parent.label)
		}
	}
}

func (b *builder) addSchema(text string, snap schema.Snapshot) {
	b.node(dag.Node{ID: DatabaseNode, Label: "Database Tables", Type: dag.TypeExternal, Layer: 1})
	for _, table := range snap.Tables() {
		id := TableNodeID(table)
		b.node(dag.Node{
			ID:    id,
			Label: table,
			Type:  dag.TypeExternal,
			Layer: 2,
			Meta:  dag.Metadata{MetaColumns: snap.Columns(table)},
		})
		b.edge(DatabaseNode, id, "contains")
	}
	for _, table := range snap.Mentioned(text) {
		b.edge(SystemReq, TableNodeID(table), "references")
	}
}

func (b *builder) addPDF() {
	b.node(dag.Node{ID: PDFNode, Label: "PDF Document", Type: dag.TypeExternal, Layer: 2})
	b.edge(SystemReq, PDFNode, "details in")
}

// TableNodeID returns the node ID used for a database table.
func TableNodeID(table string) string { return DatabaseNode + "_" + table }

// Truncate shortens s to at most limit runes, appending "..." when it cut
// anything.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit]) + "..."
}
