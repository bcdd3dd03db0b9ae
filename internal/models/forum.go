package models

import (
	"strings"
	"time"
)

// ForumType is the forum flavour stored on the forums table.
type ForumType string

const (
	ForumTypeGeneral  ForumType = "general"
	ForumTypeNews     ForumType = "news"
	ForumTypeSingle   ForumType = "single"
	ForumTypeQAndA    ForumType = "qanda"
	ForumTypeEachUser ForumType = "eachuser"
	ForumTypeBlog     ForumType = "blog"
)

// Forum tracking types.
const (
	TrackingOff      = 0
	TrackingOptional = 1
	TrackingForced   = 2
)

// Course module group modes.
const (
	GroupModeNone     = 0
	GroupModeSeparate = 1
	GroupModeVisible  = 2
)

// Forum represents a discussion forum.
type Forum struct {
	ID               int64     `db:"id" json:"id"`
	Course           int64     `db:"course" json:"course"`
	Type             ForumType `db:"type" json:"type"`
	Name             string    `db:"name" json:"name"`
	Assessed         int       `db:"assessed" json:"assessed"`
	DisplayWordCount bool      `db:"displaywordcount" json:"display_word_count"`
	TrackingType     int       `db:"trackingtype" json:"tracking_type"`
}

// Discussion represents a forum discussion thread. TimeEnd of zero means the
// discussion never closes; GroupID of -1 means all participants.
type Discussion struct {
	ID        int64  `db:"id" json:"id"`
	Forum     int64  `db:"forum" json:"forum"`
	Course    int64  `db:"course" json:"course"`
	Name      string `db:"name" json:"name"`
	FirstPost int64  `db:"firstpost" json:"first_post"`
	UserID    int64  `db:"userid" json:"user_id"`
	GroupID   int64  `db:"groupid" json:"group_id"`
	TimeStart int64  `db:"timestart" json:"time_start"`
	TimeEnd   int64  `db:"timeend" json:"time_end"`
}

// Timed reports whether the discussion has a display window.
func (d *Discussion) Timed() bool {
	return d.TimeStart > 0 || d.TimeEnd > 0
}

// OpenAt reports whether now falls inside the display window.
func (d *Discussion) OpenAt(now time.Time) bool {
	ts := now.Unix()
	if d.TimeStart > 0 && d.TimeStart > ts {
		return false
	}
	return d.TimeEnd == 0 || d.TimeEnd > ts
}

// Post is a forum post joined with its author.
type Post struct {
	ID            int64  `db:"id" json:"id"`
	Discussion    int64  `db:"discussion" json:"discussion"`
	Parent        int64  `db:"parent" json:"parent"`
	UserID        int64  `db:"userid" json:"user_id"`
	Created       int64  `db:"created" json:"created"`
	Modified      int64  `db:"modified" json:"modified"`
	Subject       string `db:"subject" json:"subject"`
	Message       string `db:"message" json:"message"`
	MessageFormat int    `db:"messageformat" json:"message_format"`
	MessageTrust  bool   `db:"messagetrust" json:"message_trust"`
	Attachment    bool   `db:"attachment" json:"attachment"`
	Forum         int64  `db:"forum" json:"forum"`

	AuthorName     string `db:"full_name" json:"author_name"`
	AuthorEmail    string `db:"email" json:"-"`
	AuthorPicture  int64  `db:"picture" json:"-"`
	AuthorImageAlt string `db:"image_alt" json:"-"`
}

// CreatedAt returns the creation time.
func (p *Post) CreatedAt() time.Time {
	return time.Unix(p.Created, 0)
}

// ModifiedAt returns the last modification time.
func (p *Post) ModifiedAt() time.Time {
	return time.Unix(p.Modified, 0)
}

// Course is the container of forums and assignments.
type Course struct {
	ID        int64  `db:"id" json:"id"`
	ShortName string `db:"shortname" json:"short_name"`
	FullName  string `db:"fullname" json:"full_name"`
}

// CourseModule places an activity instance in a course.
type CourseModule struct {
	ID         int64  `db:"id" json:"id"`
	Course     int64  `db:"course" json:"course"`
	Instance   int64  `db:"instance" json:"instance"`
	ModName    string `db:"modname" json:"mod_name"`
	Visible    bool   `db:"visible" json:"visible"`
	GroupMode  int    `db:"groupmode" json:"group_mode"`
	GroupingID int64  `db:"groupingid" json:"grouping_id"`
}

// Attachment is a file attached to a post.
type Attachment struct {
	ID       int64  `db:"id" json:"id"`
	PostID   int64  `db:"post_id" json:"post_id"`
	FileName string `db:"filename" json:"filename"`
	MimeType string `db:"mimetype" json:"mimetype"`
	FileSize int64  `db:"filesize" json:"filesize"`
}

// IsImage reports whether the attachment is rendered inline.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}

// RatingAggregate summarises the ratings of one post.
type RatingAggregate struct {
	PostID  int64   `db:"post_id" json:"post_id"`
	Count   int     `db:"count" json:"count"`
	Average float64 `db:"average" json:"average"`
}

// Group is a course group.
type Group struct {
	ID          int64  `db:"id" json:"id"`
	CourseID    int64  `db:"courseid" json:"course_id"`
	Name        string `db:"name" json:"name"`
	Picture     int64  `db:"picture" json:"picture"`
	HidePicture bool   `db:"hidepicture" json:"hide_picture"`
}
