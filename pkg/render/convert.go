package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// pdfConverter is the external tool used for SVG to PDF conversion.
var pdfConverter = "rsvg-convert"

// ToPDF converts an SVG document to PDF with rsvg-convert from librsvg
// (apt install librsvg2-bin, brew install librsvg).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	if !HasPDFSupport() {
		return nil, fmt.Errorf("pdf output needs %s on PATH (librsvg)", pdfConverter)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pdfConverter, "--format", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", pdfConverter, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", pdfConverter, err)
	}
	return stdout.Bytes(), nil
}

// HasPDFSupport reports whether the pdf format can be rendered here.
func HasPDFSupport() bool {
	_, err := exec.LookPath(pdfConverter)
	return err == nil
}
