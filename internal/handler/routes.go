package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-submission-api/internal/middleware"
	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/service"
)

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RouteDeps bundles what RegisterRoutes wires onto the API group.
type RouteDeps struct {
	Forum        *ForumSubmissionHandler
	Tokens       *service.TokenService
	Capabilities *service.CapabilityService
	Audit        auditRepository
}

// RegisterRoutes mounts the forum submission endpoints on api.
func RegisterRoutes(api *gin.RouterGroup, deps RouteDeps) {
	h := deps.Forum
	canManage := middleware.RequireCapability(models.CapAssignAddInstance)

	api.GET("/forum/exports/download", h.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.Tokens, deps.Capabilities))
	secured.POST("/forum/word-limit/check", h.CheckWordLimit)

	assignments := secured.Group("/assignments/:id")
	assignments.GET("/forum/settings", canManage, h.GetSettings)
	assignments.PUT("/forum/settings", canManage, middleware.Audit(deps.Audit, models.AuditActionSettingsUpdate, "assignment"), h.UpdateSettings)
	assignments.DELETE("/forum", canManage, middleware.Audit(deps.Audit, models.AuditActionInstanceDelete, "assignment"), h.DeleteInstance)

	submissions := assignments.Group("/submissions/:submissionId/forum")
	submissions.GET("", h.View)
	submissions.POST("", middleware.Audit(deps.Audit, models.AuditActionSubmissionSave, "forum_submission"), h.Save)
	submissions.GET("/form", h.FormElements)
	submissions.GET("/summary", h.Summary)
	submissions.GET("/files", h.Files)
	submissions.GET("/empty", h.Empty)
	submissions.POST("/copy", middleware.Audit(deps.Audit, models.AuditActionSubmissionCopy, "forum_submission"), h.Copy)
}
