package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/forum-submission-api/internal/models"
)

func TestCapabilityServiceViewerFor(t *testing.T) {
	svc := NewCapabilityService()

	student := svc.ViewerFor(&models.JWTClaims{UserID: 5, Role: models.RoleStudent, FullName: "Ada"})
	assert.Equal(t, int64(5), student.UserID)
	assert.True(t, student.Can(models.CapAssignSubmit))
	assert.True(t, student.Can(models.CapForumViewDiscussion))
	assert.False(t, student.Can(models.CapAssignGrade))
	assert.False(t, student.Can(models.CapForumViewHiddenTimedPosts))

	teacher := svc.ViewerFor(&models.JWTClaims{UserID: 2, Role: models.RoleTeacher})
	assert.True(t, teacher.Can(models.CapAssignAddInstance))
	assert.True(t, teacher.Can(models.CapSiteAccessAllGroups))
	assert.True(t, teacher.Can(models.CapForumViewDiscussion))

	student.Capabilities[models.CapAssignGrade] = true
	again := svc.ViewerFor(&models.JWTClaims{UserID: 6, Role: models.RoleStudent})
	assert.False(t, again.Can(models.CapAssignGrade))

	unknown := svc.ViewerFor(&models.JWTClaims{UserID: 7, Role: "GUEST"})
	assert.Empty(t, unknown.Capabilities)
	assert.False(t, svc.ViewerFor(nil).LoggedIn())
}
