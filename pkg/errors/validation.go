package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxTextLength bounds the requirement text accepted by the CLI and API.
const MaxTextLength = 1 << 20

// ValidateText validates free-form requirement text before it enters the
// pipeline. Empty text is valid: it yields the bare backbone graph.
//
// The validation rules are intentionally conservative:
//   - Maximum length of MaxTextLength bytes
//   - No null bytes
//   - No control characters other than tab, newline and carriage return
func ValidateText(text string) error {
	if len(text) > MaxTextLength {
		return New(ErrCodeInvalidInput, "text too long (max %d bytes)", MaxTextLength)
	}

	for _, r := range text {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "text contains invalid control characters")
		}
	}

	return nil
}

// tableNameRegex matches bare SQL identifiers (letters, digits, underscore).
var tableNameRegex = regexp.MustCompile(`^\w+$`)

// ValidateTableName validates a table name before it is interpolated into a
// sampling query. Only bare identifiers are accepted.
func ValidateTableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTable, "table name cannot be empty")
	}

	if len(name) > 63 {
		return New(ErrCodeInvalidTable, "table name too long (max 63 characters)")
	}

	if !tableNameRegex.MatchString(name) {
		return New(ErrCodeInvalidTable, "invalid table name format: %q", name)
	}

	return nil
}

// ValidateIDCode validates a system identifier code used to derive node IDs.
// Codes are short upper-case tokens such as "AV" or "SYS".
func ValidateIDCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return New(ErrCodeMalformedProfile, "profile id code cannot be empty")
	}

	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return New(ErrCodeMalformedProfile, "profile id code contains invalid characters: %q", code)
		}
	}

	return nil
}
