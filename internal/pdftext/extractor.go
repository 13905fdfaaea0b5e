// Package pdftext pulls the plain-text layer out of PDF documents.
//
// It uses ledongthuc/pdf (pure Go, no CGO) so extraction works without
// external tooling.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

// Page holds the plain text of a single PDF page.
type Page struct {
	Number int
	Text   string
}

// Document is the extraction result for one PDF.
type Document struct {
	Pages     []Page
	PageCount int
}

// Text joins all page texts in order, separated by blank lines.
func (d Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// Extractor reads PDF bytes page by page.
type Extractor struct{}

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses the PDF and returns per-page plain text. Pages whose text
// cannot be decoded are skipped; a document with no readable text at all is
// an extraction failure (scanned or image-only PDFs).
func (e *Extractor) Extract(content []byte) (doc Document, err error) {
	if len(content) == 0 {
		return Document{}, fmt.Errorf("%w: empty input", domain.ErrExtraction)
	}
	// The parser panics on some malformed files instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			doc = Document{}
			err = fmt.Errorf("%w: malformed pdf: %v", domain.ErrExtraction, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return Document{}, fmt.Errorf("%w: open reader: %v", domain.ErrExtraction, err)
	}
	doc = Document{PageCount: r.NumPage()}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip pages that fail to decode
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}
	if len(doc.Pages) == 0 {
		return Document{}, fmt.Errorf("%w: no extractable text layer, the document may be scanned or image-based", domain.ErrExtraction)
	}
	return doc, nil
}
