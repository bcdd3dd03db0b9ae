package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/service"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/response"
)

const (
	// ContextUserKey is the gin context key storing JWT claims.
	ContextUserKey = "currentUser"
	// ContextViewerKey stores the *models.Viewer resolved from the claims.
	ContextViewerKey = "currentViewer"
)

// JWT protects routes by requiring a valid access token. The resolved viewer,
// with its capability set, is attached alongside the claims.
func JWT(tokens *service.TokenService, capabilities *service.CapabilityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Set(ContextViewerKey, capabilities.ViewerFor(claims))
		c.Next()
	}
}

// ViewerFromContext returns the viewer attached by JWT, or nil.
func ViewerFromContext(c *gin.Context) *models.Viewer {
	value, exists := c.Get(ContextViewerKey)
	if !exists {
		return nil
	}
	viewer, _ := value.(*models.Viewer)
	return viewer
}
