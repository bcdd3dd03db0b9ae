package export

import "strings"

// Document is an HTML fragment to be exported as a standalone file.
type Document struct {
	Title string
	Body  string
}

// HTMLExporter wraps fragments into a minimal UTF-8 HTML page.
type HTMLExporter struct{}

// NewHTMLExporter constructs an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{}
}

// Render returns the page bytes. The wrapper carries no title so the exported
// file contains exactly the captured content.
func (e *HTMLExporter) Render(doc Document) []byte {
	var b strings.Builder
	b.Grow(len(doc.Body) + 96)
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>`)
	b.WriteString(doc.Body)
	b.WriteString(`</body></html>`)
	return []byte(b.String())
}
