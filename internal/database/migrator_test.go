package database_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"joyex-backend/internal/database"
)

func TestMigrations_AreOrdered(t *testing.T) {
	names, err := database.Migrations()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_jobs.sql", "002_job_events.sql"}, names)
}

func TestMigrator_AppliesPendingOnly(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	countQuery := regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations WHERE name = $1")
	insert := regexp.QuoteMeta("INSERT INTO schema_migrations (name, applied_at) VALUES ($1, NOW())")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(countQuery).WithArgs("001_jobs.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery(countQuery).WithArgs("002_job_events.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS job_events").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insert).WithArgs("002_job_events.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := database.NewMigratorFromDB(db, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrator_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT").WithArgs("001_jobs.sql").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS jobs").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := database.NewMigratorFromDB(db, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "001_jobs.sql")
	assert.Equal(t, 0, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
