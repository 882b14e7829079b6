// Package palette maps node types to fill colors per system profile.
//
// Each profile ID code may have its own five-color [Entry] (core,
// requirement, constraint, verification, spec). Codes without an entry fall
// back to [Default]; [Table.Lookup] reports when that happens so callers can
// surface it. External nodes (database tables, documents) always use the
// neutral [External] color.
package palette

import (
	"fmt"
	"image/color"
	"maps"
	"strconv"
	"strings"

	"github.com/matzehuels/reqtrace/pkg/dag"
)

// External is the fill color of nodes describing auxiliary inputs.
const External = "#D3D3D3"

// Entry is the five-color scheme of one profile. Colors are "#RRGGBB".
type Entry struct {
	Core         string `json:"core" toml:"core"`
	Requirement  string `json:"requirement" toml:"requirement"`
	Constraint   string `json:"constraint" toml:"constraint"`
	Verification string `json:"verification" toml:"verification"`
	Spec         string `json:"spec" toml:"spec"`
}

// Color returns the fill color for a node type.
func (e Entry) Color(t dag.NodeType) string {
	switch t {
	case dag.TypeCore:
		return e.Core
	case dag.TypeRequirement:
		return e.Requirement
	case dag.TypeConstraint:
		return e.Constraint
	case dag.TypeVerification:
		return e.Verification
	case dag.TypeSpec:
		return e.Spec
	default:
		return External
	}
}

// Validate checks that every color is a #RRGGBB hex string.
func (e Entry) Validate() error {
	for name, c := range e.fields() {
		if _, err := ParseHex(c); err != nil {
			return fmt.Errorf("%s color: %w", name, err)
		}
	}
	return nil
}

// ValidateOverride checks the colors set in a partial entry. At least one
// color must be set.
func (e Entry) ValidateOverride() error {
	if e == (Entry{}) {
		return fmt.Errorf("override sets no colors")
	}
	for name, c := range e.fields() {
		if c == "" {
			continue
		}
		if _, err := ParseHex(c); err != nil {
			return fmt.Errorf("%s color: %w", name, err)
		}
	}
	return nil
}

func (e Entry) fields() map[string]string {
	return map[string]string{
		"core":         e.Core,
		"requirement":  e.Requirement,
		"constraint":   e.Constraint,
		"verification": e.Verification,
		"spec":         e.Spec,
	}
}

// Overlay returns e with every color set in o replacing its own.
func (e Entry) Overlay(o Entry) Entry {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&e.Core, o.Core)
	set(&e.Requirement, o.Requirement)
	set(&e.Constraint, o.Constraint)
	set(&e.Verification, o.Verification)
	set(&e.Spec, o.Spec)
	return e
}

// Default is used for ID codes without their own entry.
var Default = Entry{
	Core:         "#FF9999",
	Requirement:  "#99FF99",
	Constraint:   "#9999FF",
	Verification: "#FFFF99",
	Spec:         "#FF99FF",
}

// Table maps profile ID codes to color schemes.
type Table map[string]Entry

// Builtin holds the profiles that ship with their own colors.
var Builtin = Table{
	"AV": {
		Core:         "#F08080",
		Requirement:  "#90EE90",
		Constraint:   "#87CEFA",
		Verification: "#FFD700",
		Spec:         "#DDA0DD",
	},
	"SHS": {
		Core:         "#20B2AA",
		Requirement:  "#FFB6C1",
		Constraint:   "#B0C4DE",
		Verification: "#F0E68C",
		Spec:         "#D8BFD8",
	},
	"EMS": {
		Core:         "#3CB371",
		Requirement:  "#FFDAB9",
		Constraint:   "#ADD8E6",
		Verification: "#FFFACD",
		Spec:         "#E6E6FA",
	},
}

// Lookup returns the entry for idCode. The boolean is false when the code
// has no entry and Default was returned instead.
func (t Table) Lookup(idCode string) (Entry, bool) {
	if e, ok := t[idCode]; ok {
		return e, true
	}
	return Default, false
}

// Merge returns a new table with overrides laid over base color by color.
// An override for a code missing from base is laid over Default. Neither
// input is modified.
func Merge(base, overrides Table) Table {
	out := make(Table, len(base)+len(overrides))
	maps.Copy(out, base)
	for code, o := range overrides {
		under, ok := out[code]
		if !ok {
			under = Default
		}
		out[code] = under.Overlay(o)
	}
	return out
}

// ParseHex parses "#RRGGBB" into an opaque color.
func ParseHex(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
