package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/forum-submission-api/internal/models"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
)

func viewerWith(userID int64, caps ...models.Capability) *models.Viewer {
	set := make(map[models.Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return &models.Viewer{UserID: userID, FullName: "Viewer", Capabilities: set}
}

func samplePost() models.Post {
	return models.Post{
		ID:            11,
		Discussion:    3,
		UserID:        5,
		Created:       testNow.Add(-time.Hour).Unix(),
		Modified:      testNow.Add(-time.Hour).Unix(),
		Subject:       "Hello <b>",
		Message:       "<p>Body text</p>",
		MessageFormat: 1,
		Forum:         7,
		AuthorName:    "Ada Lovelace",
	}
}

func renderFixture() (*forumRepoStub, *PostRenderer, PostContext) {
	repo := newForumRepoStub()
	repo.discussions[3] = models.Discussion{ID: 3, Forum: 7, Course: 2, Name: "Week 1", FirstPost: 10, UserID: 8}
	renderer := NewPostRenderer(repo, testForumConfig(), nil, nil)
	forum := repo.forums[7]
	d := repo.discussions[3]
	cm := repo.modules[7]
	course := repo.courses[2]
	return repo, renderer, PostContext{Forum: &forum, Discussion: &d, CourseModule: &cm, Course: &course}
}

func TestRenderAllPostsEmptyReturnsDefaultText(t *testing.T) {
	_, renderer, pc := renderFixture()

	out, err := renderer.RenderAllPosts(context.Background(), nil, pc.Forum, viewerWith(9), testNow)
	require.NoError(t, err)
	assert.Equal(t, "You have not posted in the required forum yet.", out)
}

func TestRenderPostVisibleMarksRead(t *testing.T) {
	repo, renderer, pc := renderFixture()
	post := samplePost()

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<a name="unread"></a><a id="p11"></a>`))
	assert.Contains(t, out, `aria-label="Hello &lt;b&gt; by Ada Lovelace"`)
	assert.Contains(t, out, `<div class="subject" role="heading" aria-level="2">Hello &lt;b&gt;</div>`)
	assert.Contains(t, out, `by <a href="https://lms.example/user/view.php?id=5&amp;course=2">Ada Lovelace</a> - Monday, 4 March 2024, 9:00 AM`)
	assert.Contains(t, out, `<div class="posting fullpost"><p>Body text</p>`)
	assert.Contains(t, out, `<div class="commands"></div>`)
	assert.NotContains(t, out, `class="link"`)
	require.Len(t, repo.marked, 1)
	assert.Equal(t, markedRead{userID: 9, postID: 11}, repo.marked[0])
}

func TestRenderPostReadPostIsNotMarkedAgain(t *testing.T) {
	repo, renderer, pc := renderFixture()
	repo.read[11] = true
	post := samplePost()

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `class="forumpost clearfix read firstpost starter"`)
	assert.NotContains(t, out, `name="unread"`)
	assert.Empty(t, repo.marked)
}

func TestRenderPostHiddenWithoutViewCapability(t *testing.T) {
	_, renderer, pc := renderFixture()
	post := samplePost()

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `aria-label="Hidden forum post"`)
	assert.Contains(t, out, "Subject (hidden)")
	assert.Contains(t, out, "Author (hidden)")
	assert.NotContains(t, out, "Body text")

	opts := CaptureOptions()
	opts.DummyIfCantSee = false
	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(9), testNow, opts)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRenderPostTimedDiscussion(t *testing.T) {
	_, renderer, pc := renderFixture()
	pc.Discussion.TimeStart = testNow.Add(time.Hour).Unix()
	post := samplePost()

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Subject (hidden)")

	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(5, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Body text")

	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion, models.CapForumViewHiddenTimedPosts), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Body text")
}

func TestRenderPostQAndARequiresParticipation(t *testing.T) {
	repo, renderer, pc := renderFixture()
	pc.Forum.Type = models.ForumTypeQAndA
	post := samplePost()
	post.Parent = 10

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Subject (hidden)")

	repo.firstPosted[9] = testNow.Add(-10 * time.Minute).Unix()
	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Subject (hidden)")

	repo.firstPosted[9] = testNow.Add(-2 * time.Hour).Unix()
	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Body text")
}

func TestRenderPostSeparateGroups(t *testing.T) {
	repo, renderer, pc := renderFixture()
	pc.CourseModule.GroupMode = models.GroupModeSeparate
	pc.Discussion.GroupID = 3
	post := samplePost()

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Subject (hidden)")

	repo.groups[9] = []models.Group{{ID: 3, CourseID: 2, Name: "Red"}}
	repo.groups[5] = []models.Group{{ID: 3, CourseID: 2, Name: "Red", Picture: 1}}
	out, err = renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "Body text")
	assert.Contains(t, out, `alt="Group image: Red"`)
}

func TestRenderPostCommandsRespectEditWindow(t *testing.T) {
	_, renderer, pc := renderFixture()
	notTracked := false
	opts := RenderOptions{OwnPost: true, Edit: true, Delete: true, Reply: true, DummyIfCantSee: true, IsTracked: &notTracked}
	viewer := viewerWith(5, models.CapForumViewDiscussion, models.CapForumDeleteOwnPost)

	post := samplePost()
	post.Created = testNow.Add(-10 * time.Minute).Unix()
	out, err := renderer.RenderPost(context.Background(), &post, pc, viewer, testNow, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="commands">`+
		`<a href="https://lms.example/mod/forum/post.php?edit=11">Edit</a> | `+
		`<a href="https://lms.example/mod/forum/post.php?delete=11">Delete</a> | `+
		`<a href="https://lms.example/mod/forum/post.php?reply=11#mformforum">Reply</a></div>`)

	post.Created = testNow.Add(-2 * time.Hour).Unix()
	out, err = renderer.RenderPost(context.Background(), &post, pc, viewer, testNow, opts)
	require.NoError(t, err)
	assert.NotContains(t, out, "Edit</a>")
	assert.NotContains(t, out, "Delete</a>")
	assert.Contains(t, out, `<div class="commands"><a href="https://lms.example/mod/forum/post.php?reply=11#mformforum">Reply</a></div>`)
}

func TestRenderPostParentAndMarkReadCommands(t *testing.T) {
	repo := newForumRepoStub()
	repo.discussions[3] = models.Discussion{ID: 3, Forum: 7, Course: 2, FirstPost: 10}
	cfg := testForumConfig()
	cfg.UserMarksRead = true
	renderer := NewPostRenderer(repo, cfg, nil, nil)
	forum, d, cm, course := repo.forums[7], repo.discussions[3], repo.modules[7], repo.courses[2]
	pc := PostContext{Forum: &forum, Discussion: &d, CourseModule: &cm, Course: &course}

	post := samplePost()
	post.Parent = 10
	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, "mark=read#p11")
	assert.Contains(t, out, ">Mark read</a> | <a href=\"https://lms.example/mod/forum/discuss.php?d=3#p10\">Show parent</a>")
	assert.Empty(t, repo.marked)
}

func TestRenderPostLinkModeShortensLongPosts(t *testing.T) {
	repo, renderer, pc := renderFixture()
	repo.replies[3] = 2
	post := samplePost()
	post.Message = "<p>" + strings.Repeat("word ", 200) + "</p>"

	opts := CaptureOptions()
	opts.Link = true
	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion, models.CapForumReplyPost), testNow, opts)
	require.NoError(t, err)
	assert.Contains(t, out, `class="posting shortenedpost"`)
	assert.Contains(t, out, `<a href="https://lms.example/mod/forum/discuss.php?d=3">Read the rest of this topic</a><div class="post-word-count">(200 words)</div>`)
	assert.Contains(t, out, `Discuss this topic</a>&nbsp;(2 replies so far)`)
	assert.NotContains(t, out, "attachedimages")
}

func TestRenderPostWordCountAttachmentsAndRating(t *testing.T) {
	repo, renderer, pc := renderFixture()
	pc.Forum.DisplayWordCount = true
	pc.Forum.Assessed = 1
	repo.ratings[11] = models.RatingAggregate{Count: 2, Average: 4.5}
	repo.attachments[11] = []models.Attachment{
		{ID: 1, PostID: 11, FileName: "cat.png", MimeType: "image/png"},
		{ID: 2, PostID: 11, FileName: "notes final.pdf", MimeType: "application/pdf"},
	}
	post := samplePost()
	post.Attachment = true
	post.Message = `<p>Two words <img src="@@PLUGINFILE@@/inline.png" alt="x"></p>`

	out, err := renderer.RenderPost(context.Background(), &post, pc, viewerWith(9, models.CapForumViewDiscussion, models.CapForumViewAnyRating), testNow, CaptureOptions())
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="post-word-count">(2 words)</div>`)
	assert.Contains(t, out, `src="https://lms.example/pluginfile.php/40/mod_forum/post/11/inline.png"`)
	assert.Contains(t, out, `<div class="attachedimages"><img src="https://lms.example/pluginfile.php/40/mod_forum/attachment/11/cat.png" alt="cat.png"><br></div>`)
	assert.Contains(t, out, `<div class="attachments"><a href="https://lms.example/pluginfile.php/40/mod_forum/attachment/11/notes%20final.pdf">notes final.pdf</a><br></div>`)
	assert.Contains(t, out, `<div class="forum-post-rating">Rating: 4.5 (2)</div>`)
}

func TestRenderAllPostsRequiresDiscussion(t *testing.T) {
	repo, renderer, pc := renderFixture()
	post := samplePost()
	post.Discussion = 99

	_, err := renderer.RenderAllPosts(context.Background(), []models.Post{post}, pc.Forum, viewerWith(9, models.CapForumViewDiscussion), testNow)
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)

	delete(repo.modules, 7)
	_, err = renderer.RenderAllPosts(context.Background(), []models.Post{samplePost()}, pc.Forum, viewerWith(9), testNow)
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
}

func TestRenderAllPostsKeepsCollectionOrder(t *testing.T) {
	repo, renderer, pc := renderFixture()
	repo.discussions[4] = models.Discussion{ID: 4, Forum: 7, Course: 2, FirstPost: 20}
	first := samplePost()
	first.Discussion = 4
	first.ID = 20
	second := samplePost()

	out, err := renderer.RenderAllPosts(context.Background(), []models.Post{first, second}, pc.Forum, viewerWith(9, models.CapForumViewDiscussion), testNow)
	require.NoError(t, err)
	i20 := strings.Index(out, `<a id="p20"></a>`)
	i11 := strings.Index(out, `<a id="p11"></a>`)
	require.True(t, i20 >= 0 && i11 >= 0, fmt.Sprintf("missing anchors in %q", out))
	assert.Less(t, i20, i11)
}
