package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/forum-submission-api/internal/models"
)

// AssignmentRepository reads the host assignment records the plugin is attached to.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindAssignment returns an assignment with its course module id or sql.ErrNoRows.
func (r *AssignmentRepository) FindAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	const query = `SELECT a.id, a.course, a.name, cm.id AS cmid
FROM assignments a
JOIN course_modules cm ON cm.modname = 'assign' AND cm.instance = a.id
WHERE a.id = $1`
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindSubmission returns a submission or sql.ErrNoRows.
func (r *AssignmentRepository) FindSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	const query = `SELECT id, assignment, userid, status, attemptnumber FROM assign_submission WHERE id = $1`
	var s models.Submission
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}
