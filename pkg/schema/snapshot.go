// Package schema reads table structure and sample rows from PostgreSQL.
//
// The traceability graph consumes a [Snapshot] as a pre-resolved value; this
// package is the collaborator that produces it. [Introspector] queries
// information_schema through a pgx pool, and [DetectTableName] finds
// "table <name>" mentions in requirement text so callers know which table to
// sample.
package schema

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Snapshot maps table names to their column name -> data type mapping.
type Snapshot map[string]map[string]string

// Tables returns the table names in sorted order.
func (s Snapshot) Tables() []string {
	return slices.Sorted(maps.Keys(s))
}

// Columns returns the column names of table in sorted order.
func (s Snapshot) Columns(table string) []string {
	return slices.Sorted(maps.Keys(s[table]))
}

// Mentioned returns the tables whose name occurs in text, ignoring case.
func (s Snapshot) Mentioned(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, t := range s.Tables() {
		if strings.Contains(lower, strings.ToLower(t)) {
			out = append(out, t)
		}
	}
	return out
}

var tableMention = regexp.MustCompile(`(?i)\btable\s+([a-zA-Z0-9_]+)`)

// DetectTableName returns the identifier following the first "table" word in
// text, or "" when there is none.
func DetectTableName(text string) string {
	m := tableMention.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
