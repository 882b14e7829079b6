package errors

import (
	"strings"
	"testing"
)

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"plain sentence", "The rover must verify its position.", false},
		{"multi line", "Line one.\nLine two.\r\n\tIndented.", false},
		{"unicode", "Die Anlage muss sicher sein. Ünïcödé.", false},

		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"too long", strings.Repeat("a", MaxTextLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateText(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateText() code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "sensors", false},
		{"underscore", "system_requirements", false},
		{"digits", "readings2024", false},

		{"empty", "", true},
		{"space", "drop table", true},
		{"semicolon", "users;--", true},
		{"quote", "users'", true},
		{"dot", "public.users", true},
		{"too long", strings.Repeat("t", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTableName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTableName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIDCode(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"AV", false},
		{"SYS", false},
		{"IOT", false},
		{"", true},
		{"  ", true},
		{"A V", true},
		{"A-V", true},
	}

	for _, tt := range tests {
		err := ValidateIDCode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateIDCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeMalformedProfile) {
			t.Errorf("ValidateIDCode(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeMalformedProfile)
		}
	}
}
