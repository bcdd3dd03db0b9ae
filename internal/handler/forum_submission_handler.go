package handler

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/forum-submission-api/internal/dto"
	"github.com/noah-isme/forum-submission-api/internal/middleware"
	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/service"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/response"
	"github.com/noah-isme/forum-submission-api/pkg/text"
)

type forumSubmissionPlugin interface {
	LoadAssignment(ctx context.Context, assignmentID int64) (*models.Assignment, error)
	LoadSubmission(ctx context.Context, assignment *models.Assignment, submissionID int64) (*models.Submission, error)
	GetSettings(ctx context.Context, pc *service.PluginContext) (*dto.ForumSettingsResponse, error)
	SaveSettings(ctx context.Context, pc *service.PluginContext, req dto.UpdateForumSettingsRequest) error
	GetFormElements(ctx context.Context, pc *service.PluginContext, submission *models.Submission) (*dto.FormElementsResponse, error)
	Save(ctx context.Context, pc *service.PluginContext, submission *models.Submission) (*dto.SaveSubmissionResponse, error)
	View(ctx context.Context, pc *service.PluginContext, submission *models.Submission) (string, error)
	ViewSummary(ctx context.Context, pc *service.PluginContext, submission *models.Submission) (*dto.SubmissionSummaryResponse, error)
	GetFiles(ctx context.Context, pc *service.PluginContext, submission *models.Submission) ([]service.ExportedFile, error)
	IsEmpty(ctx context.Context, pc *service.PluginContext, submission *models.Submission) (bool, error)
	CopySubmission(ctx context.Context, pc *service.PluginContext, source, destination *models.Submission) error
	DeleteInstance(ctx context.Context, pc *service.PluginContext) (int64, error)
	CheckWordCount(ctx context.Context, pc *service.PluginContext, submissionText string) (*models.WordLimitViolation, error)
}

type exportOpener interface {
	Open(token string) (*os.File, string, error)
}

// submissionAccess describes who may act on a single submission.
type submissionAccess int

const (
	// accessRead admits the owner and graders.
	accessRead submissionAccess = iota
	// accessWrite admits an owner who may submit, or anyone editing other submissions.
	accessWrite
	// accessOwnerWrite admits only an owner who may submit.
	accessOwnerWrite
)

// ForumSubmissionHandler exposes the forum submission plugin over HTTP.
type ForumSubmissionHandler struct {
	plugin    forumSubmissionPlugin
	exports   exportOpener
	validator *validator.Validate
	now       func() time.Time
}

// NewForumSubmissionHandler builds a new handler.
func NewForumSubmissionHandler(plugin forumSubmissionPlugin, exports exportOpener, validate *validator.Validate) *ForumSubmissionHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ForumSubmissionHandler{plugin: plugin, exports: exports, validator: validate, now: time.Now}
}

// GetSettings godoc
// @Summary Get forum submission settings of an assignment
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /assignments/{id}/forum/settings [get]
func (h *ForumSubmissionHandler) GetSettings(c *gin.Context) {
	pc, ok := h.pluginContext(c)
	if !ok {
		return
	}
	settings, err := h.plugin.GetSettings(c.Request.Context(), pc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateSettings godoc
// @Summary Update forum submission settings of an assignment
// @Tags ForumSubmission
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param payload body dto.UpdateForumSettingsRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assignments/{id}/forum/settings [put]
func (h *ForumSubmissionHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateForumSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid settings payload"))
		return
	}
	pc, ok := h.pluginContext(c)
	if !ok {
		return
	}
	if err := h.plugin.SaveSettings(c.Request.Context(), pc, req); err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.plugin.GetSettings(c.Request.Context(), pc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// FormElements godoc
// @Summary Preview the forum posts that would be captured
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum/form [get]
func (h *ForumSubmissionHandler) FormElements(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessRead)
	if !ok {
		return
	}
	form, err := h.plugin.GetFormElements(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, form)
}

// Save godoc
// @Summary Capture the student's forum posts into the submission
// @Description Exceeding the word limit still saves and reports a warning.
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum [post]
func (h *ForumSubmissionHandler) Save(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessWrite)
	if !ok {
		return
	}
	saved, err := h.plugin.Save(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, saved, middleware.ExtractMeta(c))
}

// View godoc
// @Summary Show the captured text
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum [get]
func (h *ForumSubmissionHandler) View(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessRead)
	if !ok {
		return
	}
	html, err := h.plugin.View(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SubmissionViewResponse{HTML: html})
}

// Summary godoc
// @Summary Show the shortened captured text
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum/summary [get]
func (h *ForumSubmissionHandler) Summary(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessRead)
	if !ok {
		return
	}
	summary, err := h.plugin.ViewSummary(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, summary.FromCache)
	response.OK(c, summary, middleware.ExtractMeta(c))
}

// Files godoc
// @Summary List downloadable files of the submission
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum/files [get]
func (h *ForumSubmissionHandler) Files(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessRead)
	if !ok {
		return
	}
	exported, err := h.plugin.GetFiles(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	files := make([]dto.SubmissionFile, 0, len(exported))
	for _, f := range exported {
		files = append(files, dto.SubmissionFile{Name: f.Name, Size: f.Size, URL: f.URL, ExpiresAt: f.ExpiresAt})
	}
	response.OK(c, dto.SubmissionFilesResponse{Files: files})
}

// Empty godoc
// @Summary Report whether the submission captured nothing
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum/empty [get]
func (h *ForumSubmissionHandler) Empty(c *gin.Context) {
	pc, submission, ok := h.submissionContext(c, accessRead)
	if !ok {
		return
	}
	empty, err := h.plugin.IsEmpty(c.Request.Context(), pc, submission)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.SubmissionEmptyResponse{Empty: empty})
}

// Copy godoc
// @Summary Copy the captured text into another submission of the same assignment
// @Tags ForumSubmission
// @Accept json
// @Produce json
// @Param id path int true "Assignment ID"
// @Param submissionId path int true "Source submission ID"
// @Param payload body dto.CopySubmissionRequest true "Destination"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /assignments/{id}/submissions/{submissionId}/forum/copy [post]
func (h *ForumSubmissionHandler) Copy(c *gin.Context) {
	var req dto.CopySubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid copy payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "destination_submission_id is required"))
		return
	}
	pc, source, ok := h.submissionContext(c, accessOwnerWrite)
	if !ok {
		return
	}
	destination, err := h.plugin.LoadSubmission(c.Request.Context(), pc.Assignment, req.DestinationSubmissionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if destination.UserID != source.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "destination belongs to another user"))
		return
	}
	if err := h.plugin.CopySubmission(c.Request.Context(), pc, source, destination); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteInstance godoc
// @Summary Remove all forum submissions of an assignment
// @Tags ForumSubmission
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id}/forum [delete]
func (h *ForumSubmissionHandler) DeleteInstance(c *gin.Context) {
	pc, ok := h.pluginContext(c)
	if !ok {
		return
	}
	deleted, err := h.plugin.DeleteInstance(c.Request.Context(), pc)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.DeleteInstanceResponse{Deleted: deleted})
}

// CheckWordLimit godoc
// @Summary Check text against an assignment's word limit
// @Tags ForumSubmission
// @Accept json
// @Produce json
// @Param payload body dto.WordLimitCheckRequest true "Text to check"
// @Success 200 {object} response.Envelope
// @Router /forum/word-limit/check [post]
func (h *ForumSubmissionHandler) CheckWordLimit(c *gin.Context) {
	var req dto.WordLimitCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid word limit payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "assignment_id is required"))
		return
	}
	assignment, err := h.plugin.LoadAssignment(c.Request.Context(), req.AssignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	pc := &service.PluginContext{Assignment: assignment, Viewer: middleware.ViewerFromContext(c), Now: h.now()}
	violation, err := h.plugin.CheckWordCount(c.Request.Context(), pc, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	if violation == nil {
		response.OK(c, dto.WordLimitCheckResponse{Count: text.CountWords(req.Text)})
		return
	}
	response.OK(c, dto.WordLimitCheckResponse{
		Count:    violation.Count,
		Limit:    violation.Limit,
		Exceeded: true,
		Message:  violation.Message,
	})
}

// Download godoc
// @Summary Download an exported or submitted file
// @Tags ForumSubmission
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /forum/exports/download [get]
func (h *ForumSubmissionHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	f, name, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	})
}

func (h *ForumSubmissionHandler) pluginContext(c *gin.Context) (*service.PluginContext, bool) {
	assignmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || assignmentID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment id"))
		return nil, false
	}
	assignment, err := h.plugin.LoadAssignment(c.Request.Context(), assignmentID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return &service.PluginContext{Assignment: assignment, Viewer: middleware.ViewerFromContext(c), Now: h.now()}, true
}

func (h *ForumSubmissionHandler) submissionContext(c *gin.Context, access submissionAccess) (*service.PluginContext, *models.Submission, bool) {
	submissionID, err := strconv.ParseInt(c.Param("submissionId"), 10, 64)
	if err != nil || submissionID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid submission id"))
		return nil, nil, false
	}
	pc, ok := h.pluginContext(c)
	if !ok {
		return nil, nil, false
	}
	submission, err := h.plugin.LoadSubmission(c.Request.Context(), pc.Assignment, submissionID)
	if err != nil {
		response.Error(c, err)
		return nil, nil, false
	}
	if !canAccess(pc.Viewer, submission, access) {
		response.Error(c, appErrors.ErrForbidden)
		return nil, nil, false
	}
	return pc, submission, true
}

func canAccess(viewer *models.Viewer, submission *models.Submission, access submissionAccess) bool {
	if !viewer.LoggedIn() {
		return false
	}
	owner := submission.UserID == viewer.UserID
	switch access {
	case accessRead:
		return owner || viewer.Can(models.CapAssignGrade)
	case accessWrite:
		return (owner && viewer.Can(models.CapAssignSubmit)) || viewer.Can(models.CapAssignEditOtherSubmission)
	case accessOwnerWrite:
		return owner && viewer.Can(models.CapAssignSubmit)
	}
	return false
}
