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

	"github.com/noah-isme/forum-submission-api/internal/models"
)

func TestForumSubmissionRepositoryFindBySubmission(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignsubmission_forum WHERE submission = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "assignment", "submission", "forum", "onlineformat"}).
			AddRow(5, 7, 42, "<p>hi</p>", 1))

	rec, err := repo.FindBySubmission(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.ID)
	assert.Equal(t, "<p>hi</p>", rec.Forum)
	assert.Equal(t, models.ForumSubmissionFormat, rec.OnlineFormat)

	mock.ExpectQuery("FROM assignsubmission_forum").
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err = repo.FindBySubmission(context.Background(), 43)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForumSubmissionRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignsubmission_forum")).
		WithArgs(int64(7), int64(42), "<p>hi</p>", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

	rec := &models.ForumSubmission{Assignment: 7, Submission: 42, Forum: "<p>hi</p>", OnlineFormat: 1}
	id, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	assert.Equal(t, int64(9), rec.ID)
}

func TestForumSubmissionRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignsubmission_forum SET forum = $2, onlineformat = $3 WHERE id = $1")).
		WithArgs(int64(9), "new", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), &models.ForumSubmission{ID: 9, Forum: "new", OnlineFormat: 1}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestForumSubmissionRepositoryDeleteByAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewForumSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignsubmission_forum WHERE assignment = $1")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteByAssignment(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
