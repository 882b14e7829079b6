package pdftext

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/reqtrace/pkg/errors"
)

// minimalPDF builds a single-page PDF showing text in Helvetica, with a
// correct cross-reference table.
func minimalPDF(text string) []byte {
	stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractBytes(t *testing.T) {
	text, err := ExtractBytes(minimalPDF("The rover must verify sensors"))
	if err != nil {
		t.Fatalf("ExtractBytes() error: %v", err)
	}
	if !strings.Contains(text, "verify") {
		t.Errorf("ExtractBytes() = %q", text)
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a pdf", []byte("hello world, definitely not a PDF")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractBytes(tt.data)
			if err == nil {
				t.Fatal("ExtractBytes() error = nil")
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("code = %v", errors.GetCode(err))
			}
		})
	}
}

func TestCombine(t *testing.T) {
	tests := []struct {
		req, doc, want string
	}{
		{"req", "", "req"},
		{"req", "  ", "req"},
		{"", "doc", "doc"},
		{"req", "doc\n", "req\n\ndoc"},
	}
	for _, tt := range tests {
		if got := Combine(tt.req, tt.doc); got != tt.want {
			t.Errorf("Combine(%q, %q) = %q, want %q", tt.req, tt.doc, got, tt.want)
		}
	}
}
