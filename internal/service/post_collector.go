package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/repository"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
)

type postLister interface {
	ListUserPosts(ctx context.Context, q repository.PostQuery) ([]models.Post, error)
}

// PostCollector gathers the posts a user wrote in one forum.
type PostCollector struct {
	posts      postLister
	timedPosts bool
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewPostCollector constructs a collector. enableTimedPosts mirrors the site
// setting that lets discussions carry a display window.
func NewPostCollector(posts postLister, enableTimedPosts bool, metrics *MetricsService, logger *zap.Logger) *PostCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostCollector{posts: posts, timedPosts: enableTimedPosts, metrics: metrics, logger: logger}
}

// CollectPosts returns every post by userID in forumID ordered by discussion
// (newest first) then post id. Discussions outside their display window are
// skipped unless the viewer may see hidden timed posts.
func (c *PostCollector) CollectPosts(ctx context.Context, forumID, userID int64, viewer *models.Viewer, now time.Time) ([]models.Post, error) {
	q := repository.PostQuery{
		ForumID:     forumID,
		UserID:      userID,
		TimedWindow: c.timedPosts && !viewer.Can(models.CapForumViewHiddenTimedPosts),
		Now:         now,
	}
	start := time.Now()
	posts, err := c.posts.ListUserPosts(ctx, q)
	c.metrics.ObserveDBQuery("list_user_posts", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect forum posts")
	}
	c.logger.Debug("forum posts collected",
		zap.Int64("forum_id", forumID),
		zap.Int64("user_id", userID),
		zap.Bool("timed_window", q.TimedWindow),
		zap.Int("count", len(posts)),
	)
	return posts, nil
}
