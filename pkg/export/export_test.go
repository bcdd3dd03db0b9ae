package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLExporterWrapsBody(t *testing.T) {
	out := NewHTMLExporter().Render(Document{Title: "ignored", Body: "<p>hi</p>"})
	assert.Equal(t, `<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body><p>hi</p></body></html>`, string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Document{Title: "Forum posts", Body: "<p>Café <strong>bold</strong></p><p>second</p>"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPDFExporterTitleAddsBoldHeading(t *testing.T) {
	body := "<p>same body</p>"
	plain, err := NewPDFExporter().Render(Document{Body: body})
	require.NoError(t, err)
	titled, err := NewPDFExporter().Render(Document{Title: "Forum submission", Body: body})
	require.NoError(t, err)

	assert.NotContains(t, string(plain), "Helvetica-Bold")
	assert.Contains(t, string(titled), "Helvetica-Bold")
}

func TestBasicMarkup(t *testing.T) {
	got := basicMarkup(`<div><p>a &lt; b <em>x</em></p><img src="y.png"><a href="http://z">z</a><span>s</span></div>`)
	assert.Equal(t, "a ‹ b <i>x</i><br><a href=\"http://z\">z</a>s<br>", got)
}
