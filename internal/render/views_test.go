package render

import (
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostEscapesSubjectAndKeepsBody(t *testing.T) {
	read := false
	out, err := Post(PostView{
		ID:        12,
		FirstPost: true,
		Read:      &read,
		AriaLabel: "Hello by Ada",
		Subject:   "<b>Hello</b>",
		Byline:    template.HTML(`by <a href="/user/5">Ada</a> - Monday`),
		Body:      template.HTML("<p>body</p>"),
		Commands: []Link{
			{URL: "/post.php?reply=12", Label: "Reply"},
			{URL: "/post.php?edit=12", Label: "Edit"},
		},
		Discuss: &Link{URL: "/discuss.php?d=3", Label: "Discuss this topic", Note: "2 replies so far"},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<a name="unread"></a><a id="p12"></a>`))
	assert.Contains(t, out, `class="forumpost clearfix unread firstpost starter"`)
	assert.Contains(t, out, "&lt;b&gt;Hello&lt;/b&gt;")
	assert.Contains(t, out, `<div class="posting fullpost"><p>body</p>`)
	assert.Contains(t, out, `<a href="/post.php?reply=12">Reply</a> | <a href="/post.php?edit=12">Edit</a>`)
	assert.Contains(t, out, "Discuss this topic</a>&nbsp;(2 replies so far)")
	assert.NotContains(t, out, "attachments")
}

func TestPostShortened(t *testing.T) {
	out, err := Post(PostView{
		ID:        3,
		Shortened: true,
		Body:      template.HTML("<p>start...</p>"),
		ReadMore:  &Link{URL: "/discuss.php?d=1", Label: "Read the rest of this topic", Note: "(700 words)"},
		Images:    []Attachment{{Name: "cat.png", URL: "/files/cat.png"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, `class="posting shortenedpost"`)
	assert.Contains(t, out, `Read the rest of this topic</a><div class="post-word-count">(700 words)</div>`)
	assert.NotContains(t, out, "attachedimages")
	assert.NotContains(t, out, " read\"")
	assert.Contains(t, out, `<div class="grouppictures">&nbsp;</div>`)
}

func TestHidden(t *testing.T) {
	out, err := Hidden(HiddenView{ID: 9, Reply: true, AriaLabel: "Hidden forum post", Subject: "Subject (hidden)", Author: "Author (hidden)", Body: "no"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<a id="p9"></a>`))
	assert.Contains(t, out, `<div class="topic">`)
	assert.Contains(t, out, `<div class="left side">&nbsp;</div><div class="content">no</div>`)
}
