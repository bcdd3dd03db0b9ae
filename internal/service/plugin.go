package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/forum-submission-api/internal/dto"
	"github.com/noah-isme/forum-submission-api/internal/models"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/i18n"
	"github.com/noah-isme/forum-submission-api/pkg/text"
)

// SummaryLength is the size of the grading-table summary.
const SummaryLength = 140

// PluginContext is the explicit per-call environment of a plugin operation.
type PluginContext struct {
	Assignment *models.Assignment
	Viewer     *models.Viewer
	Now        time.Time
}

// SubmissionPlugin is the contract the assignment framework drives.
type SubmissionPlugin interface {
	Name() string
	GetSettings(ctx context.Context, pc *PluginContext) (*dto.ForumSettingsResponse, error)
	SaveSettings(ctx context.Context, pc *PluginContext, req dto.UpdateForumSettingsRequest) error
	GetFormElements(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.FormElementsResponse, error)
	Save(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.SaveSubmissionResponse, error)
	View(ctx context.Context, pc *PluginContext, submission *models.Submission) (string, error)
	ViewSummary(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.SubmissionSummaryResponse, error)
	GetFiles(ctx context.Context, pc *PluginContext, submission *models.Submission) ([]ExportedFile, error)
	IsEmpty(ctx context.Context, pc *PluginContext, submission *models.Submission) (bool, error)
	CopySubmission(ctx context.Context, pc *PluginContext, source, destination *models.Submission) error
	DeleteInstance(ctx context.Context, pc *PluginContext) (int64, error)
	CheckWordCount(ctx context.Context, pc *PluginContext, submissionText string) (*models.WordLimitViolation, error)
	EditorFields() map[string]string
	EditorText(ctx context.Context, field string, submissionID int64) (string, error)
	EditorFormat(ctx context.Context, field string, submissionID int64) (int, error)
	CanUpgrade(kind string, version int) bool
}

type forumSubmissionRepository interface {
	FindBySubmission(ctx context.Context, submissionID int64) (*models.ForumSubmission, error)
	Insert(ctx context.Context, rec *models.ForumSubmission) (int64, error)
	Update(ctx context.Context, rec *models.ForumSubmission) error
	DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error)
}

type assignmentReader interface {
	FindAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	FindSubmission(ctx context.Context, id int64) (*models.Submission, error)
}

// PluginDeps groups the collaborators of ForumSubmissionPlugin.
type PluginDeps struct {
	Records     forumSubmissionRepository
	Assignments assignmentReader
	Config      *ForumConfigService
	Collector   *PostCollector
	Renderer    *PostRenderer
	Exports     *ExportService
	Cache       *CacheService
	Metrics     *MetricsService
	Strings     *i18n.Catalog
	Logger      *zap.Logger
	WWWRoot     string
	SummaryTTL  time.Duration
}

// ForumSubmissionPlugin captures a student's forum posts as assignment
// submission text.
type ForumSubmissionPlugin struct {
	records     forumSubmissionRepository
	assignments assignmentReader
	config      *ForumConfigService
	collector   *PostCollector
	renderer    *PostRenderer
	exports     *ExportService
	cache       *CacheService
	metrics     *MetricsService
	strings     *i18n.Catalog
	logger      *zap.Logger
	wwwroot     string
	summaryTTL  time.Duration
}

var _ SubmissionPlugin = (*ForumSubmissionPlugin)(nil)

// NewForumSubmissionPlugin constructs the plugin.
func NewForumSubmissionPlugin(deps PluginDeps) *ForumSubmissionPlugin {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Strings == nil {
		deps.Strings = i18n.MustNew()
	}
	return &ForumSubmissionPlugin{
		records:     deps.Records,
		assignments: deps.Assignments,
		config:      deps.Config,
		collector:   deps.Collector,
		renderer:    deps.Renderer,
		exports:     deps.Exports,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		strings:     deps.Strings,
		logger:      deps.Logger,
		wwwroot:     strings.TrimRight(deps.WWWRoot, "/"),
		summaryTTL:  deps.SummaryTTL,
	}
}

// Name returns the localized plugin name.
func (p *ForumSubmissionPlugin) Name() string {
	return p.strings.Get(i18n.KeyPluginName)
}

// LoadAssignment returns the assignment or a not-found error.
func (p *ForumSubmissionPlugin) LoadAssignment(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	assignment, err := p.assignments.FindAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// LoadSubmission returns a submission that belongs to the assignment.
func (p *ForumSubmissionPlugin) LoadSubmission(ctx context.Context, assignment *models.Assignment, submissionID int64) (*models.Submission, error) {
	submission, err := p.assignments.FindSubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if submission.Assignment != assignment.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return submission, nil
}

// GetSettings returns the assignment settings form state.
func (p *ForumSubmissionPlugin) GetSettings(ctx context.Context, pc *PluginContext) (*dto.ForumSettingsResponse, error) {
	return p.config.GetSettings(ctx, pc.Assignment)
}

// SaveSettings stores the assignment settings.
func (p *ForumSubmissionPlugin) SaveSettings(ctx context.Context, pc *PluginContext, req dto.UpdateForumSettingsRequest) error {
	return p.config.SaveSettings(ctx, pc.Assignment, req)
}

// Capture collects and renders the submission owner's posts as seen by the viewer.
func (p *ForumSubmissionPlugin) Capture(ctx context.Context, pc *PluginContext, submission *models.Submission) (string, error) {
	forum, err := p.config.ResolveForum(ctx, pc.Assignment.ID)
	if err != nil {
		p.metrics.ObserveCapture(CaptureOutcomeFailed, 0, 0)
		return "", err
	}
	posts, err := p.collector.CollectPosts(ctx, forum.ID, submission.UserID, pc.Viewer, pc.Now)
	if err != nil {
		p.metrics.ObserveCapture(CaptureOutcomeFailed, 0, 0)
		return "", err
	}

	start := time.Now()
	html, err := p.renderer.RenderAllPosts(ctx, posts, forum, pc.Viewer, pc.Now)
	if err != nil {
		p.metrics.ObserveCapture(CaptureOutcomeFailed, 0, 0)
		return "", err
	}
	outcome := CaptureOutcomeCaptured
	if len(posts) == 0 {
		outcome = CaptureOutcomeEmpty
	}
	p.metrics.ObserveCapture(outcome, len(posts), time.Since(start))
	return html, nil
}

// GetFormElements renders the live capture and returns any stored content.
func (p *ForumSubmissionPlugin) GetFormElements(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.FormElementsResponse, error) {
	preview, err := p.Capture(ctx, pc, submission)
	if err != nil {
		return nil, err
	}
	resp := &dto.FormElementsResponse{
		Label:        p.strings.Get(i18n.KeyForum),
		Preview:      preview,
		EditorFields: p.EditorFields(),
	}
	rec, err := p.loadRecord(ctx, submission.ID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		resp.Text = &rec.Forum
		resp.Format = &rec.OnlineFormat
	}
	return resp, nil
}

// Save captures the posts and stores them as the submission text. Exceeding
// the word limit produces a warning; the text is stored regardless.
func (p *ForumSubmissionPlugin) Save(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.SaveSubmissionResponse, error) {
	captured, err := p.Capture(ctx, pc, submission)
	if err != nil {
		return nil, err
	}
	rec, err := p.saveRecord(ctx, pc.Assignment.ID, submission.ID, captured)
	if err != nil {
		return nil, err
	}
	p.dropSummary(ctx, pc.Assignment.ID, submission.ID)

	resp := &dto.SaveSubmissionResponse{Submission: toSubmissionResponse(rec)}
	violation, err := p.CheckWordCount(ctx, pc, captured)
	if err != nil {
		return nil, err
	}
	if violation != nil {
		resp.Warning = violation.Message
	}

	p.logger.Info("forum submission saved",
		zap.Int64("assignment_id", pc.Assignment.ID),
		zap.Int64("submission_id", submission.ID),
		zap.Int64("record_id", rec.ID),
		zap.Bool("word_limit_exceeded", violation != nil),
	)
	return resp, nil
}

// View renders the stored text with file links pointing at the submission file area.
func (p *ForumSubmissionPlugin) View(ctx context.Context, pc *PluginContext, submission *models.Submission) (string, error) {
	rec, err := p.loadRecord(ctx, submission.ID)
	if err != nil || rec == nil {
		return "", err
	}
	body := text.RewritePluginFileURLs(rec.Forum, p.fileAreaURL(pc.Assignment, submission.ID))
	return text.FormatText(body, rec.OnlineFormat, text.FormatOptions{Trusted: true}), nil
}

// ViewSummary returns the shortened text for grading tables. The full view is
// always offered.
func (p *ForumSubmissionPlugin) ViewSummary(ctx context.Context, pc *PluginContext, submission *models.Submission) (*dto.SubmissionSummaryResponse, error) {
	key := SummaryCacheKey(pc.Assignment.ID, submission.ID)
	var cached dto.SubmissionSummaryResponse
	if hit, err := p.cache.Get(ctx, key, &cached); err == nil && hit {
		cached.FromCache = true
		return &cached, nil
	}

	summary := &dto.SubmissionSummaryResponse{ShowViewLink: true}
	rec, err := p.loadRecord(ctx, submission.ID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		formatted := text.FormatText(rec.Forum, rec.OnlineFormat, text.FormatOptions{Trusted: true})
		summary.Summary = text.ShortenHTML(formatted, SummaryLength)
	}
	_ = p.cache.Set(ctx, key, summary, p.summaryTTL)
	return summary, nil
}

// GetFiles exports the stored text as forum.html and lists the submission file area.
func (p *ForumSubmissionPlugin) GetFiles(ctx context.Context, pc *PluginContext, submission *models.Submission) ([]ExportedFile, error) {
	rec, err := p.loadRecord(ctx, submission.ID)
	if err != nil {
		return nil, err
	}
	var files []ExportedFile
	if rec != nil {
		files, err = p.exports.ExportDocument(pc.Assignment.ID, submission.ID, p.strings.Get(i18n.KeyForumFilename), p.strings.Get(i18n.KeyPluginName), rec.Forum)
		if err != nil {
			return nil, err
		}
	}
	area, err := p.exports.SubmissionFiles(submission.ID)
	if err != nil {
		return nil, err
	}
	return append(files, area...), nil
}

// IsEmpty reports whether nothing has been captured.
func (p *ForumSubmissionPlugin) IsEmpty(ctx context.Context, pc *PluginContext, submission *models.Submission) (bool, error) {
	rec, err := p.loadRecord(ctx, submission.ID)
	if err != nil {
		return false, err
	}
	return rec == nil || strings.TrimSpace(rec.Forum) == "", nil
}

// CopySubmission copies the stored text to another submission. A source
// without a record is a no-op; a destination record is updated in place.
func (p *ForumSubmissionPlugin) CopySubmission(ctx context.Context, pc *PluginContext, source, destination *models.Submission) error {
	rec, err := p.loadRecord(ctx, source.ID)
	if err != nil || rec == nil {
		return err
	}
	if _, err := p.saveRecord(ctx, rec.Assignment, destination.ID, rec.Forum); err != nil {
		return err
	}
	p.dropSummary(ctx, rec.Assignment, destination.ID)
	p.logger.Info("forum submission copied", zap.Int64("source_submission_id", source.ID), zap.Int64("destination_submission_id", destination.ID))
	return nil
}

// DeleteInstance removes every record of the assignment.
func (p *ForumSubmissionPlugin) DeleteInstance(ctx context.Context, pc *PluginContext) (int64, error) {
	deleted, err := p.records.DeleteByAssignment(ctx, pc.Assignment.ID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete forum submissions")
	}
	_ = p.cache.Invalidate(ctx, SummaryCachePattern(pc.Assignment.ID))
	if err := p.exports.DeleteAssignmentExports(pc.Assignment.ID); err != nil {
		p.logger.Warn("failed to delete forum exports", zap.Int64("assignment_id", pc.Assignment.ID), zap.Error(err))
	}
	p.logger.Info("forum submissions deleted", zap.Int64("assignment_id", pc.Assignment.ID), zap.Int64("deleted", deleted))
	return deleted, nil
}

// CheckWordCount applies the assignment's word limit to submissionText.
func (p *ForumSubmissionPlugin) CheckWordCount(ctx context.Context, pc *PluginContext, submissionText string) (*models.WordLimitViolation, error) {
	enabled, limit, err := p.config.WordLimit(ctx, pc.Assignment.ID)
	if err != nil {
		return nil, err
	}
	return CheckWordLimit(p.strings, submissionText, enabled, limit), nil
}

// EditorFields names the editable text fields of the plugin.
func (p *ForumSubmissionPlugin) EditorFields() map[string]string {
	return map[string]string{models.PluginName: p.strings.Get(i18n.KeyForum)}
}

// EditorText returns the stored text of field.
func (p *ForumSubmissionPlugin) EditorText(ctx context.Context, field string, submissionID int64) (string, error) {
	if field != models.PluginName {
		return "", nil
	}
	rec, err := p.loadRecord(ctx, submissionID)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.Forum, nil
}

// EditorFormat returns the stored format of field, or 0 when nothing is stored.
func (p *ForumSubmissionPlugin) EditorFormat(ctx context.Context, field string, submissionID int64) (int, error) {
	if field != models.PluginName {
		return 0, nil
	}
	rec, err := p.loadRecord(ctx, submissionID)
	if err != nil || rec == nil {
		return 0, err
	}
	return rec.OnlineFormat, nil
}

// CanUpgrade reports that no legacy submission type converts into this one.
func (p *ForumSubmissionPlugin) CanUpgrade(kind string, version int) bool {
	return false
}

// CheckWordLimit returns a violation when the limit is enabled and the text
// has more words than allowed. Markup does not count as words.
func CheckWordLimit(catalog *i18n.Catalog, submissionText string, enabled bool, limit int) *models.WordLimitViolation {
	if !enabled {
		return nil
	}
	count := text.CountWords(submissionText)
	if count <= limit {
		return nil
	}
	return &models.WordLimitViolation{
		Count:   count,
		Limit:   limit,
		Message: catalog.Get(i18n.KeyWordLimitExceeded, strconv.Itoa(limit), strconv.Itoa(count)),
	}
}

func (p *ForumSubmissionPlugin) loadRecord(ctx context.Context, submissionID int64) (*models.ForumSubmission, error) {
	rec, err := p.records.FindBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load forum submission")
	}
	return rec, nil
}

// saveRecord writes one record per submission, inserting or updating as needed.
func (p *ForumSubmissionPlugin) saveRecord(ctx context.Context, assignmentID, submissionID int64, body string) (*models.ForumSubmission, error) {
	rec, err := p.loadRecord(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		rec.Forum = body
		rec.OnlineFormat = models.ForumSubmissionFormat
		if err := p.records.Update(ctx, rec); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update forum submission")
		}
		return rec, nil
	}

	rec = &models.ForumSubmission{
		Assignment:   assignmentID,
		Submission:   submissionID,
		Forum:        body,
		OnlineFormat: models.ForumSubmissionFormat,
	}
	id, err := p.records.Insert(ctx, rec)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to insert forum submission")
	}
	if id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrInternal, "forum submission insert returned no id")
	}
	rec.ID = id
	return rec, nil
}

func (p *ForumSubmissionPlugin) dropSummary(ctx context.Context, assignmentID, submissionID int64) {
	_ = p.cache.Delete(ctx, SummaryCacheKey(assignmentID, submissionID))
}

func (p *ForumSubmissionPlugin) fileAreaURL(assignment *models.Assignment, submissionID int64) string {
	return fmt.Sprintf("%s/pluginfile.php/%d/assignsubmission_forum/%s/", p.wwwroot, assignment.CourseModule, SubmissionFileArea(submissionID))
}

func toSubmissionResponse(rec *models.ForumSubmission) dto.ForumSubmissionResponse {
	return dto.ForumSubmissionResponse{
		ID:           rec.ID,
		AssignmentID: rec.Assignment,
		SubmissionID: rec.Submission,
		Text:         rec.Forum,
		Format:       rec.OnlineFormat,
	}
}
