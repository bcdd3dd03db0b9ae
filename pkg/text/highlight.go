package text

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Highlight wraps every case-insensitive occurrence of the search terms found in
// the text content of s with a highlight span. Markup is never modified. Terms
// prefixed with "-" are exclusions and are not highlighted.
func Highlight(search, s string) string {
	re := termPattern(search)
	if re == nil {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		if tt != html.TextToken {
			b.Write(z.Raw())
			continue
		}

		content := string(z.Text())
		last := 0
		for _, loc := range re.FindAllStringIndex(content, -1) {
			b.WriteString(html.EscapeString(content[last:loc[0]]))
			b.WriteString(`<span class="highlight">`)
			b.WriteString(html.EscapeString(content[loc[0]:loc[1]]))
			b.WriteString(`</span>`)
			last = loc[1]
		}
		b.WriteString(html.EscapeString(content[last:]))
	}
}

func termPattern(search string) *regexp.Regexp {
	var terms []string
	for _, field := range strings.Fields(search) {
		if strings.HasPrefix(field, "-") {
			continue
		}
		field = strings.Trim(field, `+"'`)
		if field == "" {
			continue
		}
		terms = append(terms, regexp.QuoteMeta(field))
	}
	if len(terms) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)` + strings.Join(terms, "|"))
}
