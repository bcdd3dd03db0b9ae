package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRepositoryFindAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN course_modules cm ON cm.modname = 'assign' AND cm.instance = a.id")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course", "name", "cmid"}).AddRow(7, 8, "Reflection", 31))

	a, err := repo.FindAssignment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(31), a.CourseModule)
	assert.Equal(t, int64(8), a.Course)
}

func TestAssignmentRepositoryFindSubmissionMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery("FROM assign_submission").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "assignment", "userid", "status", "attemptnumber"}))

	_, err := repo.FindSubmission(context.Background(), 42)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
