// Package trace builds the traceability graph for a requirement text.
//
// [Build] assembles a fixed backbone of ten artifact nodes (core, three
// requirement groups, three constraint groups and three verification
// artifacts), attaches one leaf per classified sentence beneath the node its
// category refines, and optionally adds nodes for a database schema and a
// supplied PDF document.
//
// The result is a [dag.DAG] whose node insertion order is stable for a given
// input, so downstream layout is reproducible. Construction fails fast: a
// malformed profile, an incomplete classification, a duplicate node ID or an
// edge to a missing node returns an error and no graph.
package trace
