package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Priya8975/newsletter-subscription-service/migrations"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_AppliesPendingInOrder(t *testing.T) {
	s, mock := setupMockStore(t)

	fsys := fstest.MapFS{
		"002_add_index.up.sql":      {Data: []byte("CREATE INDEX idx_users_username ON users")},
		"001_create_users.up.sql":   {Data: []byte("CREATE TABLE users")},
		"001_create_users.down.sql": {Data: []byte("DROP TABLE users")},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	// 001 already applied
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("001_create_users.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("002_add_index.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx_users_username ON users")).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs("002_add_index.up.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, s.RunMigrations(context.Background(), fsys))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_FailedMigrationRollsBack(t *testing.T) {
	s, mock := setupMockStore(t)

	fsys := fstest.MapFS{
		"001_broken.up.sql": {Data: []byte("CREATE TABLEE users")},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("001_broken.up.sql").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLEE users")).
		WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := s.RunMigrations(context.Background(), fsys)
	assert.ErrorContains(t, err, "executing migration 001_broken.up.sql")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmbeddedMigrations_Present(t *testing.T) {
	for _, name := range []string{
		"001_create_users_newsletters.up.sql",
		"002_create_subscriptions.up.sql",
	} {
		data, err := migrations.FS.ReadFile(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	data, err := migrations.FS.ReadFile("002_create_subscriptions.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "UNIQUE (user_id, newsletter_id)")
}

func TestSeedDemoData_EmptyDatabase(t *testing.T) {
	s, mock := setupMockStore(t)
	today := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM newsletters")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i, n := range []string{"0", "1"} {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO newsletters")).
			WithArgs("Newsletter "+n, "Content of Newsletter "+n, "2024-03-10").
			WillReturnRows(pgxmock.NewRows([]string{"newsletter_id", "title", "content", "publication_date"}).
				AddRow(int64(i+1), "Newsletter "+n, "Content of Newsletter "+n, "2024-03-10"))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("User" + n).
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).AddRow(int64(i+1), "User"+n))
	}
	mock.ExpectCommit()

	seeded, err := s.SeedDemoData(context.Background(), 2, today)
	require.NoError(t, err)
	assert.True(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDemoData_InsertFailureRollsBack(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM newsletters")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO newsletters")).
		WithArgs("Newsletter 0", "Content of Newsletter 0", "2024-03-10").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	seeded, err := s.SeedDemoData(context.Background(), 1, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.ErrorContains(t, err, "seeding newsletter 0")
	assert.False(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedDemoData_SkipsPopulatedDatabase(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM newsletters")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	seeded, err := s.SeedDemoData(context.Background(), 5, time.Now())
	require.NoError(t, err)
	assert.False(t, seeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, username FROM users")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "username"}).AddRow(int64(1), "User0"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, username FROM users")).
		WithArgs(int64(2)).
		WillReturnError(pgx.ErrNoRows)

	u, err := s.GetUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "User0", u.Username)

	missing, err := s.GetUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListNewsletters(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT newsletter_id, title, content, publication_date")).
		WillReturnRows(pgxmock.NewRows([]string{"newsletter_id", "title", "content", "publication_date"}).
			AddRow(int64(1), "Newsletter 0", "Content of Newsletter 0", "2024-03-10").
			AddRow(int64(2), "Newsletter 1", "Content of Newsletter 1", "2024-03-10"))

	list, err := s.ListNewsletters(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newsletter 1", list[1].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNewsletter_NotFound(t *testing.T) {
	s, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM newsletters WHERE newsletter_id = $1")).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	n, err := s.GetNewsletter(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
