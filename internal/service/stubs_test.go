package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/forum-submission-api/internal/models"
	"github.com/noah-isme/forum-submission-api/internal/repository"
	"github.com/noah-isme/forum-submission-api/pkg/config"
	appErrors "github.com/noah-isme/forum-submission-api/pkg/errors"
)

var testNow = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func testForumConfig() config.ForumConfig {
	return config.ForumConfig{
		WWWRoot:           "https://lms.example",
		EnableTimedPosts:  true,
		LongPost:          600,
		ShortPost:         300,
		DisplayMode:       config.DisplayModeNested,
		MaxEditingTime:    30 * time.Minute,
		TrackReadingPosts: true,
	}
}

type markedRead struct {
	userID, postID int64
}

type forumRepoStub struct {
	forums      map[int64]models.Forum
	courses     map[int64]models.Course
	modules     map[int64]models.CourseModule
	discussions map[int64]models.Discussion
	posts       []models.Post
	attachments map[int64][]models.Attachment
	ratings     map[int64]models.RatingAggregate
	read        map[int64]bool
	firstPosted map[int64]int64
	replies     map[int64]int
	groups      map[int64][]models.Group

	lastQuery repository.PostQuery
	marked    []markedRead
	err       error
}

func newForumRepoStub() *forumRepoStub {
	return &forumRepoStub{
		forums: map[int64]models.Forum{
			7: {ID: 7, Course: 2, Type: models.ForumTypeGeneral, Name: "Discussion board", TrackingType: models.TrackingOptional},
		},
		courses:     map[int64]models.Course{2: {ID: 2, ShortName: "BIO", FullName: "Biology"}},
		modules:     map[int64]models.CourseModule{7: {ID: 40, Course: 2, Instance: 7, ModName: "forum", Visible: true}},
		discussions: map[int64]models.Discussion{},
		attachments: map[int64][]models.Attachment{},
		ratings:     map[int64]models.RatingAggregate{},
		read:        map[int64]bool{},
		firstPosted: map[int64]int64{},
		replies:     map[int64]int{},
		groups:      map[int64][]models.Group{},
	}
}

func (s *forumRepoStub) FindForum(ctx context.Context, id int64) (*models.Forum, error) {
	if s.err != nil {
		return nil, s.err
	}
	f, ok := s.forums[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &f, nil
}

func (s *forumRepoStub) ListForumsByCourse(ctx context.Context, courseID int64, excludeType models.ForumType) ([]models.Forum, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Forum{}
	for _, f := range s.forums {
		if f.Course == courseID && f.Type != excludeType {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *forumRepoStub) FindCourse(ctx context.Context, id int64) (*models.Course, error) {
	c, ok := s.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (s *forumRepoStub) FindCourseModule(ctx context.Context, forumID int64) (*models.CourseModule, error) {
	cm, ok := s.modules[forumID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &cm, nil
}

func (s *forumRepoStub) FindDiscussion(ctx context.Context, id int64) (*models.Discussion, error) {
	d, ok := s.discussions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &d, nil
}

func (s *forumRepoStub) ListUserPosts(ctx context.Context, q repository.PostQuery) ([]models.Post, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Post{}
	for _, p := range s.posts {
		if p.Forum == q.ForumID && p.UserID == q.UserID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (s *forumRepoStub) ListAttachments(ctx context.Context, postID int64) ([]models.Attachment, error) {
	return s.attachments[postID], nil
}

func (s *forumRepoStub) RatingAggregate(ctx context.Context, postID int64) (*models.RatingAggregate, error) {
	agg := s.ratings[postID]
	agg.PostID = postID
	return &agg, nil
}

func (s *forumRepoStub) IsPostRead(ctx context.Context, userID, postID int64) (bool, error) {
	return s.read[postID], nil
}

func (s *forumRepoStub) MarkPostRead(ctx context.Context, userID int64, post *models.Post, at time.Time) error {
	s.marked = append(s.marked, markedRead{userID: userID, postID: post.ID})
	return nil
}

func (s *forumRepoStub) UserFirstPostTime(ctx context.Context, discussionID, userID int64) (int64, error) {
	return s.firstPosted[userID], nil
}

func (s *forumRepoStub) CountReplies(ctx context.Context, discussionID int64) (int, error) {
	return s.replies[discussionID], nil
}

func (s *forumRepoStub) ListUserGroups(ctx context.Context, courseID, userID, groupingID int64) ([]models.Group, error) {
	return s.groups[userID], nil
}

type pluginConfigRepoStub struct {
	items map[int64]map[string]string
	err   error
}

func newPluginConfigRepoStub() *pluginConfigRepoStub {
	return &pluginConfigRepoStub{items: map[int64]map[string]string{}}
}

func (s *pluginConfigRepoStub) set(assignmentID int64, name, value string) {
	if s.items[assignmentID] == nil {
		s.items[assignmentID] = map[string]string{}
	}
	s.items[assignmentID][name] = value
}

func (s *pluginConfigRepoStub) Get(ctx context.Context, assignmentID int64, name string) (*models.PluginConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	value, ok := s.items[assignmentID][name]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.PluginConfig{Assignment: assignmentID, Plugin: models.PluginName, Subtype: models.PluginSubtype, Name: name, Value: value}, nil
}

func (s *pluginConfigRepoStub) ListByAssignment(ctx context.Context, assignmentID int64) ([]models.PluginConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []models.PluginConfig{}
	for name, value := range s.items[assignmentID] {
		result = append(result, models.PluginConfig{Assignment: assignmentID, Name: name, Value: value})
	}
	return result, nil
}

func (s *pluginConfigRepoStub) Upsert(ctx context.Context, cfg *models.PluginConfig) error {
	if s.err != nil {
		return s.err
	}
	s.set(cfg.Assignment, cfg.Name, cfg.Value)
	return nil
}

func (s *pluginConfigRepoStub) BulkUpsert(ctx context.Context, cfgs []models.PluginConfig) error {
	if s.err != nil {
		return s.err
	}
	for _, cfg := range cfgs {
		s.set(cfg.Assignment, cfg.Name, cfg.Value)
	}
	return nil
}

type submissionRecordStub struct {
	records map[int64]models.ForumSubmission
	nextID  int64
	inserts int
	updates int
}

func newSubmissionRecordStub() *submissionRecordStub {
	return &submissionRecordStub{records: map[int64]models.ForumSubmission{}, nextID: 100}
}

func (s *submissionRecordStub) FindBySubmission(ctx context.Context, submissionID int64) (*models.ForumSubmission, error) {
	rec, ok := s.records[submissionID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &rec, nil
}

func (s *submissionRecordStub) Insert(ctx context.Context, rec *models.ForumSubmission) (int64, error) {
	s.inserts++
	s.nextID++
	rec.ID = s.nextID
	s.records[rec.Submission] = *rec
	return rec.ID, nil
}

func (s *submissionRecordStub) Update(ctx context.Context, rec *models.ForumSubmission) error {
	s.updates++
	s.records[rec.Submission] = *rec
	return nil
}

func (s *submissionRecordStub) DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	var deleted int64
	for id, rec := range s.records {
		if rec.Assignment == assignmentID {
			delete(s.records, id)
			deleted++
		}
	}
	return deleted, nil
}

type assignmentReaderStub struct {
	assignments map[int64]models.Assignment
	submissions map[int64]models.Submission
}

func (s *assignmentReaderStub) FindAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	a, ok := s.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (s *assignmentReaderStub) FindSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	sub, ok := s.submissions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sub, nil
}

type memoryCacheRepo struct {
	values  map[string][]byte
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	value, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(value, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = payload
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}
