package models

// ForumSubmissionFormat is the text format marker written on every record.
const ForumSubmissionFormat = 1

// Assignment is the host assignment instance.
type Assignment struct {
	ID           int64  `db:"id" json:"id"`
	Course       int64  `db:"course" json:"course"`
	CourseModule int64  `db:"cmid" json:"cmid"`
	Name         string `db:"name" json:"name"`
}

// Submission is one attempt by a student.
type Submission struct {
	ID            int64  `db:"id" json:"id"`
	Assignment    int64  `db:"assignment" json:"assignment"`
	UserID        int64  `db:"userid" json:"user_id"`
	Status        string `db:"status" json:"status"`
	AttemptNumber int    `db:"attemptnumber" json:"attempt_number"`
}

// ForumSubmission holds the captured forum content of one submission. At most
// one row exists per submission.
type ForumSubmission struct {
	ID           int64  `db:"id" json:"id"`
	Assignment   int64  `db:"assignment" json:"assignment"`
	Submission   int64  `db:"submission" json:"submission"`
	Forum        string `db:"forum" json:"forum"`
	OnlineFormat int    `db:"onlineformat" json:"onlineformat"`
}

// WordLimitViolation reports text exceeding the configured word limit.
type WordLimitViolation struct {
	Count   int    `json:"count"`
	Limit   int    `json:"limit"`
	Message string `json:"message"`
}
