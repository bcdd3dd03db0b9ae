package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"html"
	"html/template"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/render"
	"github.com/noah-isme/forum-submission-api/pkg/config"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/i18n"
	"github.com/noah-isme/forum-submission-api/pkg/text"
)

// PostDateLayout formats post modification times in bylines.
const PostDateLayout = "Monday, 2 January 2006, 3:04 PM"

type forumReader interface {
	FindCourse(ctx context.Context, id int64) (*models.Course, error)
	FindCourseModule(ctx context.Context, forumID int64) (*models.CourseModule, error)
	FindDiscussion(ctx context.Context, id int64) (*models.Discussion, error)
	ListAttachments(ctx context.Context, postID int64) ([]models.Attachment, error)
	RatingAggregate(ctx context.Context, postID int64) (*models.RatingAggregate, error)
	IsPostRead(ctx context.Context, userID, postID int64) (bool, error)
	MarkPostRead(ctx context.Context, userID int64, post *models.Post, at time.Time) error
	UserFirstPostTime(ctx context.Context, discussionID, userID int64) (int64, error)
	CountReplies(ctx context.Context, discussionID int64) (int, error)
	ListUserGroups(ctx context.Context, courseID, userID, groupingID int64) ([]models.Group, error)
}

// RenderOptions switches the optional parts of a rendered post. Nil PostIsRead
// and IsTracked are looked up.
type RenderOptions struct {
	OwnPost        bool
	Reply          bool
	Edit           bool
	Delete         bool
	Split          bool
	Export         bool
	Link           bool
	Footer         string
	Highlight      string
	PostIsRead     *bool
	DummyIfCantSee bool
	IsTracked      *bool
}

// CaptureOptions is the option set used when posts are captured into a
// submission: no commands, no shortening, placeholders for hidden posts.
func CaptureOptions() RenderOptions {
	return RenderOptions{DummyIfCantSee: true}
}

// PostContext is the forum structure a post belongs to.
type PostContext struct {
	Forum        *models.Forum
	Discussion   *models.Discussion
	CourseModule *models.CourseModule
	Course       *models.Course
}

// postLabels holds the fixed strings of the post layout, resolved once.
type postLabels struct {
	edit, delete, reply, parent string
	prune, pruneHeading         string
	markRead, markUnread        string
	hiddenPost, hiddenSubject   string
	hiddenAuthor, hiddenBody    string
	readTheRest, discussTopic   string
	addToPortfolio, rating      string
	defaultPost                 string
}

func newPostLabels(c *i18n.Catalog) postLabels {
	return postLabels{
		edit:           c.Get(i18n.KeyEdit),
		delete:         c.Get(i18n.KeyDelete),
		reply:          c.Get(i18n.KeyReply),
		parent:         c.Get(i18n.KeyParent),
		prune:          c.Get(i18n.KeyPrune),
		pruneHeading:   c.Get(i18n.KeyPruneHeading),
		markRead:       c.Get(i18n.KeyMarkRead),
		markUnread:     c.Get(i18n.KeyMarkUnread),
		hiddenPost:     c.Get(i18n.KeyHiddenForumPost),
		hiddenSubject:  c.Get(i18n.KeySubjectHidden),
		hiddenAuthor:   c.Get(i18n.KeyAuthorHidden),
		hiddenBody:     c.Get(i18n.KeyBodyHidden),
		readTheRest:    c.Get(i18n.KeyReadTheRest),
		discussTopic:   c.Get(i18n.KeyDiscussThisTopic),
		addToPortfolio: c.Get(i18n.KeyAddToPortfolio),
		rating:         c.Get(i18n.KeyRating),
		defaultPost:    c.Get(i18n.KeyDefaultPost),
	}
}

// PostRenderer turns forum posts into HTML fragments for a given viewer.
type PostRenderer struct {
	repo    forumReader
	cfg     config.ForumConfig
	strings *i18n.Catalog
	labels  postLabels
	logger  *zap.Logger
}

// NewPostRenderer constructs a renderer.
func NewPostRenderer(repo forumReader, cfg config.ForumConfig, catalog *i18n.Catalog, logger *zap.Logger) *PostRenderer {
	if catalog == nil {
		catalog = i18n.MustNew()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostRenderer{
		repo:    repo,
		cfg:     cfg,
		strings: catalog,
		labels:  newPostLabels(catalog),
		logger:  logger,
	}
}

// RenderAllPosts renders posts in order with capture options. The forum's
// course, course module and each post's discussion must exist. No posts yields
// the default placeholder text.
func (r *PostRenderer) RenderAllPosts(ctx context.Context, posts []models.Post, forum *models.Forum, viewer *models.Viewer, now time.Time) (string, error) {
	if len(posts) == 0 {
		return r.labels.defaultPost, nil
	}

	course, err := r.repo.FindCourse(ctx, forum.Course)
	if err != nil {
		return "", mustExist(err, "course")
	}
	cm, err := r.repo.FindCourseModule(ctx, forum.ID)
	if err != nil {
		return "", mustExist(err, "course module")
	}

	discussions := make(map[int64]*models.Discussion)
	var b strings.Builder
	for i := range posts {
		post := &posts[i]
		discussion, ok := discussions[post.Discussion]
		if !ok {
			discussion, err = r.repo.FindDiscussion(ctx, post.Discussion)
			if err != nil {
				return "", mustExist(err, "discussion")
			}
			discussions[post.Discussion] = discussion
		}
		fragment, err := r.RenderPost(ctx, post, PostContext{Forum: forum, Discussion: discussion, CourseModule: cm, Course: course}, viewer, now, CaptureOptions())
		if err != nil {
			return "", err
		}
		b.WriteString(fragment)
	}
	return b.String(), nil
}

// RenderPost renders one post. Posts the viewer may not see render as a
// placeholder, or as nothing when DummyIfCantSee is false.
func (r *PostRenderer) RenderPost(ctx context.Context, post *models.Post, pc PostContext, viewer *models.Viewer, now time.Time, opts RenderOptions) (string, error) {
	canSee, err := r.canSeePost(ctx, post, pc, viewer, now)
	if err != nil {
		return "", err
	}
	if !canSee {
		if !opts.DummyIfCantSee {
			return "", nil
		}
		return render.Hidden(render.HiddenView{
			ID:        post.ID,
			Reply:     post.Parent != 0,
			AriaLabel: r.labels.hiddenPost,
			Subject:   r.labels.hiddenSubject,
			Author:    r.labels.hiddenAuthor,
			Body:      r.labels.hiddenBody,
		})
	}

	tracked := r.isTracked(pc.Forum, viewer)
	if opts.IsTracked != nil {
		tracked = *opts.IsTracked
	}
	var read *bool
	if tracked {
		isRead := false
		if opts.PostIsRead != nil {
			isRead = *opts.PostIsRead
		} else if isRead, err = r.repo.IsPostRead(ctx, viewer.UserID, post.ID); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load read state")
		}
		read = &isRead
	}

	view := render.PostView{
		ID:        post.ID,
		FirstPost: post.Parent == 0,
		Read:      read,
		AriaLabel: r.strings.Get(i18n.KeyPostByUser, post.Subject, post.AuthorName),
		Subject:   post.Subject,
		Byline:    r.byline(post, pc.Course),
		Picture:   r.userPicture(post),
		Footer:    template.HTML(opts.Footer),
	}

	if view.Groups, err = r.groupPictures(ctx, post, pc); err != nil {
		return "", err
	}

	message := text.RewritePluginFileURLs(post.Message, r.postFileBase(pc.CourseModule, post))
	formatted := text.FormatText(message, post.MessageFormat, text.FormatOptions{Trusted: post.MessageTrust})
	words := text.CountWords(message)
	discussURL := r.discussURL(pc.Discussion)

	if opts.Link && len(text.StripTags(message)) > r.cfg.LongPost {
		view.Shortened = true
		view.Body = template.HTML(text.ShortenHTML(formatted, r.cfg.ShortPost))
		view.ReadMore = &render.Link{
			URL:   discussURL,
			Label: r.labels.readTheRest,
			Note:  "(" + r.strings.Get(i18n.KeyNumWords, fmt.Sprint(words)) + ")",
		}
	} else {
		if opts.Highlight != "" {
			formatted = text.Highlight(opts.Highlight, formatted)
		}
		view.Body = template.HTML(formatted)
		if pc.Forum.DisplayWordCount {
			view.WordCount = "(" + r.strings.Get(i18n.KeyNumWords, fmt.Sprint(words)) + ")"
		}
	}

	if post.Attachment {
		if err := r.attachments(ctx, post, pc.CourseModule, &view); err != nil {
			return "", err
		}
	}

	if view.Rating, err = r.rating(ctx, post, pc.Forum, viewer); err != nil {
		return "", err
	}

	view.Commands = r.commands(post, pc, viewer, now, opts, tracked, read)

	if opts.Link && r.canPost(pc.Forum, viewer) {
		replies, err := r.repo.CountReplies(ctx, pc.Discussion.ID)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count replies")
		}
		view.Discuss = &render.Link{URL: discussURL, Label: r.labels.discussTopic, Note: r.strings.Count(i18n.KeyRepliesSoFar, replies)}
	}

	fragment, err := render.Post(view)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render post")
	}

	if tracked && !r.cfg.UserMarksRead && read != nil && !*read && viewer.LoggedIn() {
		if err := r.repo.MarkPostRead(ctx, viewer.UserID, post, now); err != nil {
			r.logger.Warn("mark post read failed", zap.Int64("post_id", post.ID), zap.Int64("user_id", viewer.UserID), zap.Error(err))
		}
	}

	return fragment, nil
}

func (r *PostRenderer) canSeePost(ctx context.Context, post *models.Post, pc PostContext, viewer *models.Viewer, now time.Time) (bool, error) {
	if !viewer.Can(models.CapForumViewDiscussion) {
		return false, nil
	}
	if !pc.CourseModule.Visible && !viewer.Can(models.CapCourseViewHiddenActivities) {
		return false, nil
	}

	d := pc.Discussion
	if r.cfg.EnableTimedPosts && d.Timed() && !d.OpenAt(now) &&
		post.UserID != viewer.UserID && d.UserID != viewer.UserID &&
		!viewer.Can(models.CapForumViewHiddenTimedPosts) {
		return false, nil
	}

	if pc.Forum.Type == models.ForumTypeQAndA && !viewer.Can(models.CapForumViewQAndAWithoutPosting) {
		if post.ID != d.FirstPost && post.UserID != viewer.UserID && d.UserID != viewer.UserID {
			firstPosted, err := r.repo.UserFirstPostTime(ctx, d.ID, viewer.UserID)
			if err != nil {
				return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check discussion participation")
			}
			if firstPosted == 0 || now.Sub(time.Unix(firstPosted, 0)) < r.cfg.MaxEditingTime {
				return false, nil
			}
		}
	}

	if pc.CourseModule.GroupMode == models.GroupModeSeparate && d.GroupID > 0 &&
		post.UserID != viewer.UserID && !viewer.Can(models.CapSiteAccessAllGroups) {
		groups, err := r.repo.ListUserGroups(ctx, pc.Course.ID, viewer.UserID, pc.CourseModule.GroupingID)
		if err != nil {
			return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load viewer groups")
		}
		for _, g := range groups {
			if g.ID == d.GroupID {
				return true, nil
			}
		}
		return false, nil
	}

	return true, nil
}

func (r *PostRenderer) isTracked(forum *models.Forum, viewer *models.Viewer) bool {
	if !r.cfg.TrackReadingPosts || !viewer.LoggedIn() {
		return false
	}
	return forum.TrackingType != models.TrackingOff
}

func (r *PostRenderer) commands(post *models.Post, pc PostContext, viewer *models.Viewer, now time.Time, opts RenderOptions, tracked bool, read *bool) []render.Link {
	var cmds []render.Link
	d := pc.Discussion
	threaded := r.cfg.DisplayMode == config.DisplayModeThreaded

	if tracked && r.cfg.UserMarksRead && viewer.LoggedIn() {
		mark, label := "read", r.labels.markRead
		if read != nil && *read {
			mark, label = "unread", r.labels.markUnread
		}
		link := fmt.Sprintf("%s/mod/forum/discuss.php?d=%d&postid=%d&mark=%s", r.cfg.WWWRoot, d.ID, post.ID, mark)
		if threaded {
			link += fmt.Sprintf("&parent=%d", post.Parent)
		} else {
			link += fmt.Sprintf("#p%d", post.ID)
		}
		cmds = append(cmds, render.Link{URL: link, Label: label})
	}

	if post.Parent != 0 {
		link := fmt.Sprintf("%s/mod/forum/discuss.php?d=%d", r.cfg.WWWRoot, d.ID)
		if threaded {
			link += fmt.Sprintf("&parent=%d", post.Parent)
		} else {
			link += fmt.Sprintf("#p%d", post.Parent)
		}
		cmds = append(cmds, render.Link{URL: link, Label: r.labels.parent})
	}

	age := now.Sub(post.CreatedAt())
	if pc.Forum.Type == models.ForumTypeNews && post.Parent == 0 && d.TimeStart > now.Unix() {
		age = 0
	}
	withinEditWindow := opts.OwnPost && age < r.cfg.MaxEditingTime

	if pc.Forum.Type == models.ForumTypeSingle && d.FirstPost == post.ID {
		if opts.Edit && viewer.Can(models.CapCourseManageActivities) {
			cmds = append(cmds, render.Link{
				URL:   fmt.Sprintf("%s/course/modedit.php?update=%d&return=1", r.cfg.WWWRoot, pc.CourseModule.ID),
				Label: r.labels.edit,
			})
		}
	} else if opts.Edit && (withinEditWindow || viewer.Can(models.CapForumEditAnyPost)) {
		cmds = append(cmds, render.Link{URL: r.postURL("edit", post.ID), Label: r.labels.edit})
	}

	if opts.Split && viewer.Can(models.CapForumSplitDiscussions) && post.Parent != 0 && pc.Forum.Type != models.ForumTypeSingle {
		cmds = append(cmds, render.Link{URL: r.postURL("prune", post.ID), Label: r.labels.prune, Note: r.labels.pruneHeading})
	}

	if opts.Delete && ((withinEditWindow && viewer.Can(models.CapForumDeleteOwnPost)) || viewer.Can(models.CapForumDeleteAnyPost)) {
		cmds = append(cmds, render.Link{URL: r.postURL("delete", post.ID), Label: r.labels.delete})
	}

	if opts.Reply {
		cmds = append(cmds, render.Link{URL: r.postURL("reply", post.ID) + "#mformforum", Label: r.labels.reply})
	}

	if opts.Export && r.cfg.EnablePortfolios &&
		(viewer.Can(models.CapForumExportPost) || (opts.OwnPost && viewer.Can(models.CapForumExportOwnPost))) {
		cmds = append(cmds, render.Link{
			URL:   fmt.Sprintf("%s/portfolio/add.php?ca_postid=%d&callbackcomponent=mod_forum", r.cfg.WWWRoot, post.ID),
			Label: r.labels.addToPortfolio,
		})
	}

	return cmds
}

func (r *PostRenderer) canPost(forum *models.Forum, viewer *models.Viewer) bool {
	if !viewer.LoggedIn() || !viewer.Can(models.CapForumReplyPost) {
		return false
	}
	return forum.Type != models.ForumTypeNews || viewer.Can(models.CapForumEditAnyPost)
}

func (r *PostRenderer) attachments(ctx context.Context, post *models.Post, cm *models.CourseModule, view *render.PostView) error {
	files, err := r.repo.ListAttachments(ctx, post.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attachments")
	}
	for i := range files {
		f := &files[i]
		item := render.Attachment{
			Name: f.FileName,
			URL:  fmt.Sprintf("%s/pluginfile.php/%d/mod_forum/attachment/%d/%s", r.cfg.WWWRoot, cm.ID, post.ID, url.PathEscape(f.FileName)),
		}
		if f.IsImage() {
			view.Images = append(view.Images, item)
		} else {
			view.Attachments = append(view.Attachments, item)
		}
	}
	return nil
}

func (r *PostRenderer) rating(ctx context.Context, post *models.Post, forum *models.Forum, viewer *models.Viewer) (string, error) {
	if forum.Assessed == 0 {
		return "", nil
	}
	if post.UserID != viewer.UserID && !viewer.Can(models.CapForumViewAnyRating) {
		return "", nil
	}
	agg, err := r.repo.RatingAggregate(ctx, post.ID)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rating")
	}
	if agg.Count == 0 {
		return "", nil
	}
	return fmt.Sprintf("%s: %.1f (%d)", r.labels.rating, agg.Average, agg.Count), nil
}

func (r *PostRenderer) groupPictures(ctx context.Context, post *models.Post, pc PostContext) ([]render.Picture, error) {
	if pc.CourseModule.GroupMode == models.GroupModeNone {
		return nil, nil
	}
	groups, err := r.repo.ListUserGroups(ctx, pc.Course.ID, post.UserID, pc.CourseModule.GroupingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load author groups")
	}
	var pictures []render.Picture
	for _, g := range groups {
		if g.Picture == 0 || g.HidePicture {
			continue
		}
		pictures = append(pictures, render.Picture{
			URL: fmt.Sprintf("%s/pluginfile.php/%d/group/icon/%d/f1", r.cfg.WWWRoot, pc.Course.ID, g.ID),
			Alt: r.strings.Get(i18n.KeyGroupPictureAlt, g.Name),
		})
	}
	return pictures, nil
}

func (r *PostRenderer) userPicture(post *models.Post) render.Picture {
	alt := post.AuthorImageAlt
	if alt == "" {
		alt = r.strings.Get(i18n.KeyPictureOf, post.AuthorName)
	}
	pic := render.Picture{URL: r.cfg.WWWRoot + "/pix/u/f2.png", Alt: alt}
	if post.AuthorPicture > 0 {
		pic.URL = fmt.Sprintf("%s/pluginfile.php/%d/user/icon/f2", r.cfg.WWWRoot, post.UserID)
	}
	return pic
}

func (r *PostRenderer) byline(post *models.Post, course *models.Course) template.HTML {
	profile := fmt.Sprintf(`<a href="%s/user/view.php?id=%d&amp;course=%d">%s</a>`,
		html.EscapeString(r.cfg.WWWRoot), post.UserID, course.ID, html.EscapeString(post.AuthorName))
	date := html.EscapeString(post.ModifiedAt().UTC().Format(PostDateLayout))
	return template.HTML(r.strings.Get(i18n.KeyByNameOnDate, profile, date))
}

func (r *PostRenderer) discussURL(d *models.Discussion) string {
	return fmt.Sprintf("%s/mod/forum/discuss.php?d=%d", r.cfg.WWWRoot, d.ID)
}

func (r *PostRenderer) postURL(action string, postID int64) string {
	return fmt.Sprintf("%s/mod/forum/post.php?%s=%d", r.cfg.WWWRoot, action, postID)
}

func (r *PostRenderer) postFileBase(cm *models.CourseModule, post *models.Post) string {
	return fmt.Sprintf("%s/pluginfile.php/%d/mod_forum/post/%d/", r.cfg.WWWRoot, cm.ID, post.ID)
}

func mustExist(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
}
