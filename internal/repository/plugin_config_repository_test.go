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

var pluginConfigColumns = []string{"id", "assignment", "plugin", "subtype", "name", "value"}

func TestPluginConfigRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, assignment, plugin, subtype, name, value FROM assign_plugin_config")).
		WithArgs(int64(7), "forum", "assignsubmission", "forumid").
		WillReturnRows(sqlmock.NewRows(pluginConfigColumns).AddRow(1, 7, "forum", "assignsubmission", "forumid", "12"))

	cfg, err := repo.Get(context.Background(), 7, models.ConfigForumID)
	require.NoError(t, err)
	assert.Equal(t, "12", cfg.Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPluginConfigRepositoryGetMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	mock.ExpectQuery("FROM assign_plugin_config").
		WillReturnRows(sqlmock.NewRows(pluginConfigColumns))

	_, err := repo.Get(context.Background(), 7, models.ConfigForumID)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestPluginConfigRepositoryListByAssignment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	rows := sqlmock.NewRows(pluginConfigColumns).
		AddRow(1, 7, "forum", "assignsubmission", "enabled", "1").
		AddRow(2, 7, "forum", "assignsubmission", "forumid", "12")
	mock.ExpectQuery("ORDER BY name ASC").WithArgs(int64(7), "forum", "assignsubmission").WillReturnRows(rows)

	configs, err := repo.ListByAssignment(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "enabled", configs[0].Name)
}

func TestPluginConfigRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assign_plugin_config")).
		WithArgs(int64(7), "forum", "assignsubmission", "forumid", "12").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assign_plugin_config")).
		WithArgs(int64(7), "forum", "assignsubmission", "wordlimit", "500").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	items := []models.PluginConfig{
		{Assignment: 7, Name: models.ConfigForumID, Value: "12"},
		{Assignment: 7, Name: models.ConfigWordLimit, Value: "500"},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), items))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPluginConfigRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assign_plugin_config").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.PluginConfig{{Assignment: 7, Name: "enabled", Value: "1"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPluginConfigRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPluginConfigRepository(db)

	mock.ExpectExec("ON CONFLICT").
		WithArgs(int64(3), "forum", "assignsubmission", "enabled", "0").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Upsert(context.Background(), &models.PluginConfig{Assignment: 3, Name: "enabled", Value: "0"}))
}
