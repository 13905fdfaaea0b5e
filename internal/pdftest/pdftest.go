// Package pdftest renders small PDF fixtures for tests.
package pdftest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
)

// Bytes renders one page per entry and returns the document bytes. Newlines
// within an entry become separate lines on the page. Extraction can join
// adjacent lines without whitespace, so fixture lines should end with
// punctuation when word boundaries matter.
func Bytes(t *testing.T, pages ...string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(false)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", 12)
	for _, page := range pages {
		doc.AddPage()
		for _, line := range strings.Split(page, "\n") {
			doc.Cell(0, 6, line)
			doc.Ln(6)
		}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render fixture pdf: %v", err)
	}
	return buf.Bytes()
}
