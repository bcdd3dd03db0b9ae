// Package render turns resolved post data into HTML fragments. Templates are
// parsed once at start-up and are safe for concurrent use.
package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// Link is an anchor with an optional note. Commands render the note as the
// link title; other links render it next to the anchor.
type Link struct {
	URL   string
	Label string
	Note  string
}

// Picture is an image reference.
type Picture struct {
	URL string
	Alt string
}

// Attachment is a downloadable or inline file of a post.
type Attachment struct {
	Name string
	URL  string
}

// PostView is the fully resolved data of a visible post. Read is nil when read
// tracking is off for the viewer.
type PostView struct {
	ID        int64
	FirstPost bool
	Read      *bool
	AriaLabel string
	Subject   string
	Byline    template.HTML
	Picture   Picture
	Groups    []Picture

	Body      template.HTML
	Shortened bool
	ReadMore  *Link
	WordCount string

	Attachments []Attachment
	Images      []Attachment

	Rating   string
	Commands []Link
	Discuss  *Link
	Footer   template.HTML
}

// HiddenView is the placeholder shown instead of a post the viewer cannot see.
type HiddenView struct {
	ID        int64
	Reply     bool
	AriaLabel string
	Subject   string
	Author    string
	Body      string
}

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"readClass": readClass,
	"unread":    func(read *bool) bool { return read != nil && !*read },
}).Parse(postTemplate + hiddenTemplate))

// Post renders a visible post fragment.
func Post(v PostView) (string, error) {
	return execute("post", v)
}

// Hidden renders the hidden-post placeholder fragment.
func Hidden(v HiddenView) (string, error) {
	return execute("hidden", v)
}

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func readClass(read *bool) string {
	switch {
	case read == nil:
		return ""
	case *read:
		return " read"
	default:
		return " unread"
	}
}
