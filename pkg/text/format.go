package text

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

// Message formats as stored alongside post bodies.
const (
	FormatMoodle   = 0
	FormatHTML     = 1
	FormatPlain    = 2
	FormatMarkdown = 4
)

// PluginFileMarker is the placeholder stored in place of a file area base URL.
const PluginFileMarker = "@@PLUGINFILE@@/"

var ugcPolicy = bluemonday.UGCPolicy()

// FormatOptions tunes FormatText.
type FormatOptions struct {
	// Trusted skips sanitising HTML produced by the format.
	Trusted bool
}

// FormatText converts a stored message body into display HTML.
func FormatText(body string, format int, opts FormatOptions) string {
	switch format {
	case FormatPlain:
		return textToHTML(html.EscapeString(body))
	case FormatMarkdown:
		return clean(string(blackfriday.Run([]byte(body))), opts)
	case FormatMoodle:
		return textToHTML(clean(body, opts))
	default:
		return clean(body, opts)
	}
}

func clean(body string, opts FormatOptions) string {
	if opts.Trusted {
		return body
	}
	return ugcPolicy.Sanitize(body)
}

func textToHTML(body string) string {
	return `<div class="text_to_html">` + nl2br(body) + `</div>`
}

// RewritePluginFileURLs points every file area placeholder at baseURL.
func RewritePluginFileURLs(body, baseURL string) string {
	return strings.ReplaceAll(body, PluginFileMarker, strings.TrimRight(baseURL, "/")+"/")
}

// RelativePluginFileURLs drops the file area placeholder so links resolve
// against the directory the document is exported into.
func RelativePluginFileURLs(body string) string {
	return strings.ReplaceAll(body, PluginFileMarker, "")
}

func nl2br(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br />\n")
}
