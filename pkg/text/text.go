// Package text holds the HTML text helpers shared by the post renderer and the
// submission plugin: tag stripping, word counting, tag-aware shortening,
// search-term highlighting and message formatting.
package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Ellipsis is appended to shortened text.
const Ellipsis = "..."

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true,
	"source": true, "track": true, "wbr": true,
}

// StripTags returns the text content of an HTML fragment with entities decoded.
func StripTags(s string) string {
	return collectText(s, "")
}

// CountWords counts whitespace separated words in the text content of s. Tags
// act as word boundaries so "<p>one</p><p>two</p>" counts as two words.
func CountWords(s string) int {
	return len(strings.Fields(collectText(s, " ")))
}

func collectText(s, tagSeparator string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			b.WriteString(tagSeparator)
		}
	}
}

// ShortenHTML truncates the text content of s to about ideal characters,
// preferring a word boundary, keeps the markup balanced and appends Ellipsis.
// Fragments whose text already fits are returned unchanged.
func ShortenHTML(s string, ideal int) string {
	if ideal < 0 {
		ideal = 0
	}
	if utf8.RuneCountInString(StripTags(s)) <= ideal {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	var open []string
	remaining := ideal

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return b.String()
		}
		raw := string(z.Raw())

		switch tt {
		case html.StartTagToken:
			name, _ := z.TagName()
			b.WriteString(raw)
			if !voidElements[string(name)] {
				open = append(open, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			b.WriteString(raw)
			open = popTag(open, string(name))
		case html.TextToken:
			runes := []rune(string(z.Text()))
			if len(runes) <= remaining {
				b.WriteString(html.EscapeString(string(runes)))
				remaining -= len(runes)
				continue
			}
			b.WriteString(html.EscapeString(cutAtWord(runes, remaining)))
			b.WriteString(Ellipsis)
			for i := len(open) - 1; i >= 0; i-- {
				b.WriteString("</" + open[i] + ">")
			}
			return b.String()
		default:
			b.WriteString(raw)
		}
	}
}

func cutAtWord(runes []rune, limit int) string {
	cut := runes[:limit]
	if limit < len(runes) && !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > 0; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

func popTag(open []string, name string) []string {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == name {
			return open[:i]
		}
	}
	return open
}
