package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/forum-submission-api/internal/dto"
	"github.com/noah-isme/forum-submission-api/internal/models"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/i18n"
)

type pluginConfigRepository interface {
	Get(ctx context.Context, assignmentID int64, name string) (*models.PluginConfig, error)
	ListByAssignment(ctx context.Context, assignmentID int64) ([]models.PluginConfig, error)
	Upsert(ctx context.Context, cfg *models.PluginConfig) error
	BulkUpsert(ctx context.Context, cfgs []models.PluginConfig) error
}

type forumLookup interface {
	FindForum(ctx context.Context, id int64) (*models.Forum, error)
	ListForumsByCourse(ctx context.Context, courseID int64, excludeType models.ForumType) ([]models.Forum, error)
}

// ForumConfigService reads and writes the per-assignment plugin settings.
type ForumConfigService struct {
	repo      pluginConfigRepository
	forums    forumLookup
	strings   *i18n.Catalog
	validator *validator.Validate
	logger    *zap.Logger
}

// NewForumConfigService constructs the settings service.
func NewForumConfigService(repo pluginConfigRepository, forums forumLookup, catalog *i18n.Catalog, validate *validator.Validate, logger *zap.Logger) *ForumConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = i18n.MustNew()
	}
	return &ForumConfigService{repo: repo, forums: forums, strings: catalog, validator: validate, logger: logger}
}

// GetConfiguredForum returns the id of the forum configured for the assignment.
func (s *ForumConfigService) GetConfiguredForum(ctx context.Context, assignmentID int64) (int64, error) {
	forum, err := s.ResolveForum(ctx, assignmentID)
	if err != nil {
		return 0, err
	}
	return forum.ID, nil
}

// ResolveForum loads the configured forum. A missing setting, an unusable value
// and a forum that no longer exists all yield ErrForumNotConfigured.
func (s *ForumConfigService) ResolveForum(ctx context.Context, assignmentID int64) (*models.Forum, error) {
	cfg, err := s.repo.Get(ctx, assignmentID, models.ConfigForumID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrForumNotConfigured
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forum setting")
	}
	forumID, err := strconv.ParseInt(strings.TrimSpace(cfg.Value), 10, 64)
	if err != nil || forumID <= 0 {
		return nil, appErrors.ErrForumNotConfigured
	}
	forum, err := s.forums.FindForum(ctx, forumID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("configured forum missing", zap.Int64("assignment_id", assignmentID), zap.Int64("forum_id", forumID))
			return nil, appErrors.ErrForumNotConfigured
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forum")
	}
	return forum, nil
}

// SaveConfiguredForum stores the forum selection after checking the forum exists.
func (s *ForumConfigService) SaveConfiguredForum(ctx context.Context, assignmentID, forumID int64) error {
	if _, err := s.existingForum(ctx, forumID); err != nil {
		return err
	}
	if err := s.repo.Upsert(ctx, &models.PluginConfig{
		Assignment: assignmentID,
		Name:       models.ConfigForumID,
		Value:      strconv.FormatInt(forumID, 10),
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save forum setting")
	}
	return nil
}

// GetSettings builds the settings form state. News forums are never offered,
// and a stored forum is only selected while it is still an option.
func (s *ForumConfigService) GetSettings(ctx context.Context, assignment *models.Assignment) (*dto.ForumSettingsResponse, error) {
	forums, err := s.forums.ListForumsByCourse(ctx, assignment.Course, models.ForumTypeNews)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list forums")
	}
	values, err := s.values(ctx, assignment.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ForumSettingsResponse{
		AssignmentID:     assignment.ID,
		Enabled:          parseBool(values[models.ConfigEnabled]),
		Options:          make([]dto.ForumOption, 0, len(forums)),
		WordLimitEnabled: parseBool(values[models.ConfigWordLimitEnabled]),
		Labels: map[string]dto.SettingLabel{
			models.ConfigEnabled:   {Label: s.strings.Get(i18n.KeyEnabled), Help: s.strings.Get(i18n.KeyEnabledHelp)},
			models.ConfigForumID:   {Label: s.strings.Get(i18n.KeyForumToEval), Help: s.strings.Get(i18n.KeyForumToEvalHelp)},
			models.ConfigWordLimit: {Label: s.strings.Get(i18n.KeyWordLimit)},
		},
	}
	resp.WordLimit, _ = strconv.Atoi(strings.TrimSpace(values[models.ConfigWordLimit]))

	stored, _ := strconv.ParseInt(strings.TrimSpace(values[models.ConfigForumID]), 10, 64)
	for _, f := range forums {
		resp.Options = append(resp.Options, dto.ForumOption{ID: f.ID, Name: f.Name})
		if f.ID == stored {
			id := f.ID
			resp.ForumID = &id
		}
	}

	resp.ForumsAvailable = len(resp.Options) > 0
	if !resp.ForumsAvailable {
		resp.Enabled = false
		resp.Notice = s.strings.Get(i18n.KeyNoForums)
	}
	return resp, nil
}

// SaveSettings validates and stores all plugin settings in one transaction.
func (s *ForumConfigService) SaveSettings(ctx context.Context, assignment *models.Assignment, req dto.UpdateForumSettingsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid forum settings")
	}
	if req.WordLimitEnabled && req.WordLimit <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "word limit must be positive when enabled")
	}

	cfgs := []models.PluginConfig{
		{Assignment: assignment.ID, Name: models.ConfigEnabled, Value: formatBool(req.Enabled)},
		{Assignment: assignment.ID, Name: models.ConfigWordLimitEnabled, Value: formatBool(req.WordLimitEnabled)},
		{Assignment: assignment.ID, Name: models.ConfigWordLimit, Value: strconv.Itoa(req.WordLimit)},
	}
	if req.ForumID > 0 {
		forum, err := s.existingForum(ctx, req.ForumID)
		if err != nil {
			return err
		}
		if forum.Course != assignment.Course || forum.Type == models.ForumTypeNews {
			return appErrors.Clone(appErrors.ErrValidation, "forum cannot be used for submissions")
		}
		cfgs = append(cfgs, models.PluginConfig{Assignment: assignment.ID, Name: models.ConfigForumID, Value: strconv.FormatInt(req.ForumID, 10)})
	}

	if err := s.repo.BulkUpsert(ctx, cfgs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save forum settings")
	}
	s.logger.Info("forum settings saved", zap.Int64("assignment_id", assignment.ID), zap.Int64("forum_id", req.ForumID), zap.Bool("enabled", req.Enabled))
	return nil
}

// WordLimit returns whether a word limit applies and its value.
func (s *ForumConfigService) WordLimit(ctx context.Context, assignmentID int64) (bool, int, error) {
	values, err := s.values(ctx, assignmentID)
	if err != nil {
		return false, 0, err
	}
	limit, _ := strconv.Atoi(strings.TrimSpace(values[models.ConfigWordLimit]))
	return parseBool(values[models.ConfigWordLimitEnabled]), limit, nil
}

func (s *ForumConfigService) values(ctx context.Context, assignmentID int64) (map[string]string, error) {
	cfgs, err := s.repo.ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plugin settings")
	}
	values := make(map[string]string, len(cfgs))
	for _, cfg := range cfgs {
		values[cfg.Name] = cfg.Value
	}
	return values, nil
}

func (s *ForumConfigService) existingForum(ctx context.Context, forumID int64) (*models.Forum, error) {
	forum, err := s.forums.FindForum(ctx, forumID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "forum not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forum")
	}
	return forum, nil
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func formatBool(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
