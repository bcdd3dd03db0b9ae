package service

import (
	"github.com/noah-isme/forum-submission-api/internal/models"
)

var studentCapabilities = []models.Capability{
	models.CapAssignSubmit,
	models.CapForumViewDiscussion,
	models.CapForumReplyPost,
	models.CapForumDeleteOwnPost,
	models.CapForumExportOwnPost,
}

var teacherCapabilities = append([]models.Capability{
	models.CapAssignAddInstance,
	models.CapAssignGrade,
	models.CapAssignEditOtherSubmission,
	models.CapForumViewHiddenTimedPosts,
	models.CapForumViewQAndAWithoutPosting,
	models.CapForumEditAnyPost,
	models.CapForumDeleteAnyPost,
	models.CapForumSplitDiscussions,
	models.CapForumExportPost,
	models.CapForumViewAnyRating,
	models.CapCourseManageActivities,
	models.CapCourseViewHiddenActivities,
	models.CapSiteAccessAllGroups,
}, studentCapabilities...)

// CapabilityService maps roles to capability sets. The table is built once and
// never mutated.
type CapabilityService struct {
	grants map[models.UserRole]map[models.Capability]bool
}

// NewCapabilityService builds the default role table.
func NewCapabilityService() *CapabilityService {
	return &CapabilityService{grants: map[models.UserRole]map[models.Capability]bool{
		models.RoleSuperAdmin: toSet(teacherCapabilities),
		models.RoleAdmin:      toSet(teacherCapabilities),
		models.RoleTeacher:    toSet(teacherCapabilities),
		models.RoleStudent:    toSet(studentCapabilities),
	}}
}

// ViewerFor resolves the viewer of a request from validated token claims.
func (s *CapabilityService) ViewerFor(claims *models.JWTClaims) *models.Viewer {
	if claims == nil {
		return &models.Viewer{Capabilities: map[models.Capability]bool{}}
	}
	caps := make(map[models.Capability]bool, len(s.grants[claims.Role]))
	for capability := range s.grants[claims.Role] {
		caps[capability] = true
	}
	return &models.Viewer{
		UserID:       claims.UserID,
		FullName:     claims.FullName,
		Role:         claims.Role,
		Capabilities: caps,
	}
}

func toSet(caps []models.Capability) map[models.Capability]bool {
	set := make(map[models.Capability]bool, len(caps))
	for _, c := range caps {
		set[c] = true
	}
	return set
}
