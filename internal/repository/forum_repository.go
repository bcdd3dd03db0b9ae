package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/forum-submission-api/internal/models"
)

// PostQuery selects the posts of one user in one forum.
type PostQuery struct {
	ForumID int64
	UserID  int64
	// TimedWindow limits results to discussions whose display window contains Now.
	TimedWindow bool
	Now         time.Time
}

// ForumRepository reads forum structure and posts. Read tracking is the only write.
type ForumRepository struct {
	db *sqlx.DB
}

// NewForumRepository constructs the repository.
func NewForumRepository(db *sqlx.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

const forumColumns = `id, course, type, name, assessed, displaywordcount, trackingtype`

// FindForum returns a forum or sql.ErrNoRows.
func (r *ForumRepository) FindForum(ctx context.Context, id int64) (*models.Forum, error) {
	query := `SELECT ` + forumColumns + ` FROM forums WHERE id = $1`
	var forum models.Forum
	if err := r.db.GetContext(ctx, &forum, query, id); err != nil {
		return nil, err
	}
	return &forum, nil
}

// ListForumsByCourse returns the forums of a course except those of excludeType, ordered by id.
func (r *ForumRepository) ListForumsByCourse(ctx context.Context, courseID int64, excludeType models.ForumType) ([]models.Forum, error) {
	query := `SELECT ` + forumColumns + ` FROM forums WHERE course = $1 AND type <> $2 ORDER BY id ASC`
	var forums []models.Forum
	if err := r.db.SelectContext(ctx, &forums, query, courseID, excludeType); err != nil {
		return nil, fmt.Errorf("list course forums: %w", err)
	}
	return forums, nil
}

// FindCourse returns a course or sql.ErrNoRows.
func (r *ForumRepository) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	const query = `SELECT id, shortname, fullname FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindCourseModule returns the course module of a forum instance or sql.ErrNoRows.
func (r *ForumRepository) FindCourseModule(ctx context.Context, forumID int64) (*models.CourseModule, error) {
	const query = `SELECT id, course, instance, modname, visible, groupmode, groupingid
FROM course_modules WHERE modname = 'forum' AND instance = $1`
	var cm models.CourseModule
	if err := r.db.GetContext(ctx, &cm, query, forumID); err != nil {
		return nil, err
	}
	return &cm, nil
}

// FindDiscussion returns a discussion or sql.ErrNoRows.
func (r *ForumRepository) FindDiscussion(ctx context.Context, id int64) (*models.Discussion, error) {
	const query = `SELECT id, forum, course, name, firstpost, userid, groupid, timestart, timeend
FROM forum_discussions WHERE id = $1`
	var d models.Discussion
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListUserPosts returns the user's posts in the forum, newest discussion first and
// oldest post first within a discussion.
func (r *ForumRepository) ListUserPosts(ctx context.Context, q PostQuery) ([]models.Post, error) {
	query := `SELECT p.id, p.discussion, p.parent, p.userid, p.created, p.modified, p.subject, p.message,
       p.messageformat, p.messagetrust, p.attachment, d.forum,
       u.full_name, u.email, u.picture, u.image_alt
FROM forums f
JOIN forum_discussions d ON d.forum = f.id
JOIN forum_posts p ON p.discussion = d.id
JOIN users u ON u.id = p.userid
WHERE f.id = $1 AND p.userid = $2`
	args := []interface{}{q.ForumID, q.UserID}
	if q.TimedWindow {
		now := q.Now.Unix()
		query += ` AND (d.timestart < $3 AND (d.timeend = 0 OR d.timeend > $4))`
		args = append(args, now, now)
	}
	query += ` ORDER BY p.discussion DESC, p.id ASC`

	posts := make([]models.Post, 0)
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return posts, nil
}

// ListAttachments returns the files attached to a post.
func (r *ForumRepository) ListAttachments(ctx context.Context, postID int64) ([]models.Attachment, error) {
	const query = `SELECT id, post_id, filename, mimetype, filesize FROM forum_post_attachments
WHERE post_id = $1 ORDER BY filename ASC`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, postID); err != nil {
		return nil, fmt.Errorf("list post attachments: %w", err)
	}
	return attachments, nil
}

// RatingAggregate returns rating count and average for a post. Unrated posts
// return a zero aggregate.
func (r *ForumRepository) RatingAggregate(ctx context.Context, postID int64) (*models.RatingAggregate, error) {
	const query = `SELECT $1::bigint AS post_id, COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average
FROM forum_ratings WHERE post_id = $1`
	var agg models.RatingAggregate
	if err := r.db.GetContext(ctx, &agg, query, postID); err != nil {
		return nil, fmt.Errorf("rating aggregate: %w", err)
	}
	return &agg, nil
}

// IsPostRead reports whether userID has read postID.
func (r *ForumRepository) IsPostRead(ctx context.Context, userID, postID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM forum_read WHERE userid = $1 AND postid = $2)`
	var read bool
	if err := r.db.GetContext(ctx, &read, query, userID, postID); err != nil {
		return false, fmt.Errorf("check post read: %w", err)
	}
	return read, nil
}

// MarkPostRead records that userID read the post.
func (r *ForumRepository) MarkPostRead(ctx context.Context, userID int64, post *models.Post, at time.Time) error {
	const query = `INSERT INTO forum_read (userid, forumid, discussionid, postid, firstread, lastread)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (userid, postid) DO UPDATE SET lastread = EXCLUDED.lastread`
	if _, err := r.db.ExecContext(ctx, query, userID, post.Forum, post.Discussion, post.ID, at.Unix()); err != nil {
		return fmt.Errorf("mark post read: %w", err)
	}
	return nil
}

// UserFirstPostTime returns when userID first posted in the discussion, or 0
// when they never did.
func (r *ForumRepository) UserFirstPostTime(ctx context.Context, discussionID, userID int64) (int64, error) {
	const query = `SELECT COALESCE(MIN(created), 0) FROM forum_posts WHERE discussion = $1 AND userid = $2`
	var created int64
	if err := r.db.GetContext(ctx, &created, query, discussionID, userID); err != nil {
		return 0, fmt.Errorf("user first post time: %w", err)
	}
	return created, nil
}

// CountReplies counts the non-root posts of a discussion.
func (r *ForumRepository) CountReplies(ctx context.Context, discussionID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM forum_posts WHERE discussion = $1 AND parent <> 0`
	var count int
	if err := r.db.GetContext(ctx, &count, query, discussionID); err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return count, nil
}

// ListUserGroups returns the groups userID belongs to in a course, limited to a
// grouping when groupingID is non-zero.
func (r *ForumRepository) ListUserGroups(ctx context.Context, courseID, userID, groupingID int64) ([]models.Group, error) {
	query := `SELECT g.id, g.courseid, g.name, g.picture, g.hidepicture
FROM groups g
JOIN groups_members gm ON gm.groupid = g.id
WHERE g.courseid = $1 AND gm.userid = $2`
	args := []interface{}{courseID, userID}
	if groupingID > 0 {
		query += ` AND g.id IN (SELECT gg.groupid FROM groupings_groups gg WHERE gg.groupingid = $3)`
		args = append(args, groupingID)
	}
	query += ` ORDER BY g.id ASC`

	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}
	return groups, nil
}
