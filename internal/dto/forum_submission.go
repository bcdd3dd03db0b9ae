package dto

import "time"

// ForumOption is one selectable forum in the assignment settings form.
type ForumOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SettingLabel carries the localized label and help text of a settings field.
type SettingLabel struct {
	Label string `json:"label"`
	Help  string `json:"help,omitempty"`
}

// ForumSettingsResponse describes the plugin settings of one assignment.
type ForumSettingsResponse struct {
	AssignmentID     int64                   `json:"assignment_id"`
	Enabled          bool                    `json:"enabled"`
	ForumsAvailable  bool                    `json:"forums_available"`
	ForumID          *int64                  `json:"forum_id"`
	Options          []ForumOption           `json:"options"`
	WordLimitEnabled bool                    `json:"word_limit_enabled"`
	WordLimit        int                     `json:"word_limit"`
	Notice           string                  `json:"notice,omitempty"`
	Labels           map[string]SettingLabel `json:"labels"`
}

// UpdateForumSettingsRequest is the payload for saving plugin settings.
type UpdateForumSettingsRequest struct {
	Enabled          bool  `json:"enabled"`
	ForumID          int64 `json:"forum_id" validate:"required_if=Enabled true,omitempty,gt=0"`
	WordLimitEnabled bool  `json:"word_limit_enabled"`
	WordLimit        int   `json:"word_limit" validate:"gte=0"`
}

// ForumSubmissionResponse is a stored submission record.
type ForumSubmissionResponse struct {
	ID           int64  `json:"id"`
	AssignmentID int64  `json:"assignment_id"`
	SubmissionID int64  `json:"submission_id"`
	Text         string `json:"text"`
	Format       int    `json:"format"`
}

// SaveSubmissionResponse is returned after capturing posts. Warning is set
// when the captured text exceeds the word limit; the capture is still stored.
type SaveSubmissionResponse struct {
	Submission ForumSubmissionResponse `json:"submission"`
	Warning    string                  `json:"warning,omitempty"`
}

// FormElementsResponse carries the live preview and any stored content.
type FormElementsResponse struct {
	Label        string            `json:"label"`
	Preview      string            `json:"preview"`
	Text         *string           `json:"text,omitempty"`
	Format       *int              `json:"format,omitempty"`
	EditorFields map[string]string `json:"editor_fields"`
}

// SubmissionViewResponse carries rendered submission HTML.
type SubmissionViewResponse struct {
	HTML string `json:"html"`
}

// SubmissionSummaryResponse is the short form shown in grading tables.
type SubmissionSummaryResponse struct {
	Summary      string `json:"summary"`
	ShowViewLink bool   `json:"show_view_link"`
	// FromCache is reported through response meta, not the payload.
	FromCache bool `json:"-"`
}

// SubmissionFile is one downloadable file of a submission.
type SubmissionFile struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmissionFilesResponse lists the files of a submission.
type SubmissionFilesResponse struct {
	Files []SubmissionFile `json:"files"`
}

// SubmissionEmptyResponse reports whether nothing was captured.
type SubmissionEmptyResponse struct {
	Empty bool `json:"empty"`
}

// CopySubmissionRequest names the submission that receives the copy.
type CopySubmissionRequest struct {
	DestinationSubmissionID int64 `json:"destination_submission_id" validate:"required,gt=0"`
}

// WordLimitCheckRequest asks whether text fits an assignment's word limit.
type WordLimitCheckRequest struct {
	AssignmentID int64  `json:"assignment_id" validate:"required,gt=0"`
	Text         string `json:"text"`
}

// WordLimitCheckResponse is the outcome of a word limit check.
type WordLimitCheckResponse struct {
	Count    int    `json:"count"`
	Limit    int    `json:"limit"`
	Exceeded bool   `json:"exceeded"`
	Message  string `json:"message,omitempty"`
}

// DeleteInstanceResponse reports removed records.
type DeleteInstanceResponse struct {
	Deleted int64 `json:"deleted"`
}
