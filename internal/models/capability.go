package models

// Capability names a permission checked against the viewer.
type Capability string

const (
	CapAssignAddInstance         Capability = "mod/assign:addinstance"
	CapAssignSubmit              Capability = "mod/assign:submit"
	CapAssignGrade               Capability = "mod/assign:grade"
	CapAssignEditOtherSubmission Capability = "mod/assign:editothersubmission"

	CapForumViewDiscussion          Capability = "mod/forum:viewdiscussion"
	CapForumViewHiddenTimedPosts    Capability = "mod/forum:viewhiddentimedposts"
	CapForumViewQAndAWithoutPosting Capability = "mod/forum:viewqandawithoutposting"
	CapForumReplyPost               Capability = "mod/forum:replypost"
	CapForumEditAnyPost             Capability = "mod/forum:editanypost"
	CapForumDeleteOwnPost           Capability = "mod/forum:deleteownpost"
	CapForumDeleteAnyPost           Capability = "mod/forum:deleteanypost"
	CapForumSplitDiscussions        Capability = "mod/forum:splitdiscussions"
	CapForumExportPost              Capability = "mod/forum:exportpost"
	CapForumExportOwnPost           Capability = "mod/forum:exportownpost"
	CapForumViewAnyRating           Capability = "mod/forum:viewanyrating"

	CapCourseManageActivities     Capability = "moodle/course:manageactivities"
	CapCourseViewHiddenActivities Capability = "moodle/course:viewhiddenactivities"
	CapSiteAccessAllGroups        Capability = "moodle/site:accessallgroups"
)

// Viewer is the user on whose behalf a request runs, with capabilities resolved
// once per request.
type Viewer struct {
	UserID       int64
	FullName     string
	Role         UserRole
	Capabilities map[Capability]bool
}

// Can reports whether the viewer holds capability.
func (v *Viewer) Can(capability Capability) bool {
	if v == nil {
		return false
	}
	return v.Capabilities[capability]
}

// LoggedIn reports whether the viewer is an authenticated user.
func (v *Viewer) LoggedIn() bool {
	return v != nil && v.UserID > 0
}
