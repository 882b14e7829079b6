// Package pdftext extracts plain text from PDF documents.
//
// The traceability builder never reads documents itself; callers extract the
// text here, append it to the requirement text, and tell the builder a PDF
// was supplied.
package pdftext

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matzehuels/reqtrace/pkg/errors"
)

// MaxSize is the largest document Extract accepts.
const MaxSize = 32 << 20

// Extract returns the text of every page of the PDF in r, pages separated by
// a newline. size is the document length in bytes.
func Extract(r io.ReaderAt, size int64) (text string, err error) {
	if size <= 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "empty PDF document")
	}
	if size > MaxSize {
		return "", errors.New(errors.ErrCodeInvalidInput, "PDF document too large (%d bytes, max %d)", size, MaxSize)
	}

	// The parser panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", errors.New(errors.ErrCodeInvalidInput, "malformed PDF: %v", p)
		}
	}()

	doc, err := pdf.NewReader(r, size)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open PDF")
	}

	var b strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read page %d", i)
		}
		content = strings.TrimSpace(content)
		if content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(content)
	}
	return b.String(), nil
}

// ExtractBytes is Extract over an in-memory document.
func ExtractBytes(data []byte) (string, error) {
	return Extract(bytes.NewReader(data), int64(len(data)))
}

// ReadAll reads a document from r (up to MaxSize) and extracts its text.
func ReadAll(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read PDF: %w", err)
	}
	return ExtractBytes(data)
}

// Combine appends extracted document text to the requirement text the way
// the builder and prompts expect it.
func Combine(requirements, document string) string {
	document = strings.TrimSpace(document)
	if document == "" {
		return requirements
	}
	if strings.TrimSpace(requirements) == "" {
		return document
	}
	return requirements + "\n\n" + document
}
