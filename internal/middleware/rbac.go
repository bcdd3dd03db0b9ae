package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/forum-submission-api/internal/models"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
	"github.com/noah-isme/forum-submission-api/pkg/response"
)

// RequireCapability lets the request through when the viewer holds any of the
// listed capabilities.
func RequireCapability(allowed ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := ViewerFromContext(c)
		if !viewer.LoggedIn() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, capability := range allowed {
			if viewer.Can(capability) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
