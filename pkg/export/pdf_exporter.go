package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/net/html"
)

// PDFExporter renders HTML fragments into a simple flowing PDF. Only bold,
// italic, underline, links and line breaks survive; everything else becomes
// plain text.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title followed by the body.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Helvetica", "B", 14)
		pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "", 11)
	basic := pdf.HTMLBasicNew()
	basic.Write(5.5, tr(basicMarkup(doc.Body)))

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var inlineTags = map[string]string{
	"b": "b", "strong": "b",
	"i": "i", "em": "i",
	"u": "u",
}

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true,
}

// basicMarkup reduces HTML to the tag subset understood by gofpdf's HTMLBasic writer.
func basicMarkup(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			b.WriteString(strings.NewReplacer("<", "‹", ">", "›").Replace(tok.Data))
		case html.StartTagToken, html.SelfClosingTagToken:
			if tok.Data == "br" {
				b.WriteString("<br>")
			} else if mapped, ok := inlineTags[tok.Data]; ok {
				b.WriteString("<" + mapped + ">")
			} else if tok.Data == "a" {
				for _, attr := range tok.Attr {
					if attr.Key == "href" {
						b.WriteString(`<a href="` + attr.Val + `">`)
					}
				}
			}
		case html.EndTagToken:
			if mapped, ok := inlineTags[tok.Data]; ok {
				b.WriteString("</" + mapped + ">")
			} else if tok.Data == "a" {
				b.WriteString("</a>")
			} else if blockTags[tok.Data] {
				b.WriteString("<br>")
			}
		}
	}
}
