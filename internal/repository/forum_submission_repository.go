package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/forum-submission-api/internal/models"
)

// ForumSubmissionRepository persists captured forum content per submission.
type ForumSubmissionRepository struct {
	db *sqlx.DB
}

// NewForumSubmissionRepository constructs the repository.
func NewForumSubmissionRepository(db *sqlx.DB) *ForumSubmissionRepository {
	return &ForumSubmissionRepository{db: db}
}

// FindBySubmission returns the record of a submission or sql.ErrNoRows.
func (r *ForumSubmissionRepository) FindBySubmission(ctx context.Context, submissionID int64) (*models.ForumSubmission, error) {
	const query = `SELECT id, assignment, submission, forum, onlineformat FROM assignsubmission_forum WHERE submission = $1`
	var rec models.ForumSubmission
	if err := r.db.GetContext(ctx, &rec, query, submissionID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert stores a new record and returns its id.
func (r *ForumSubmissionRepository) Insert(ctx context.Context, rec *models.ForumSubmission) (int64, error) {
	const query = `INSERT INTO assignsubmission_forum (assignment, submission, forum, onlineformat)
VALUES ($1, $2, $3, $4) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, rec.Assignment, rec.Submission, rec.Forum, rec.OnlineFormat).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert forum submission: %w", err)
	}
	rec.ID = id
	return id, nil
}

// Update replaces the text and format of an existing record.
func (r *ForumSubmissionRepository) Update(ctx context.Context, rec *models.ForumSubmission) error {
	const query = `UPDATE assignsubmission_forum SET forum = $2, onlineformat = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.Forum, rec.OnlineFormat); err != nil {
		return fmt.Errorf("update forum submission: %w", err)
	}
	return nil
}

// DeleteByAssignment removes every record of an assignment.
func (r *ForumSubmissionRepository) DeleteByAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	const query = `DELETE FROM assignsubmission_forum WHERE assignment = $1`
	res, err := r.db.ExecContext(ctx, query, assignmentID)
	if err != nil {
		return 0, fmt.Errorf("delete forum submissions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete forum submissions: %w", err)
	}
	return affected, nil
}
