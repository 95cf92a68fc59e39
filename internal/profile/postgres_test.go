// internal/profile/postgres_test.go
package profile

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-workers/internal/common/database"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
)

var profileRowColumns = []string{
	"user_id", "highest_degree", "university", "gpa", "percentage",
	"naac_grade", "test_type", "test_score", "work_experience_years",
	"backlogs", "preferred_countries", "budget_range", "intake_term",
	"intake_year",
}

func newMockStore(t *testing.T, withCache bool) (*PostgresStore, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var cache *database.RedisClient
	var mr *miniredis.Miniredis
	if withCache {
		mr = miniredis.RunT(t)
		cache = &database.RedisClient{
			Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		}
	}

	store := NewPostgresStore(
		&database.PostgresClient{DB: db},
		cache,
		10*time.Minute,
		logger.NewTestLogger(t),
	)
	return store, mock, mr
}

func profileRow() *sqlmock.Rows {
	return sqlmock.NewRows(profileRowColumns).
		AddRow("user-1", "BTech", "Test University", 3.5, nil,
			nil, "IELTS", 7.0, 2.0, 0, []byte(`["US","UK"]`), "20000-30000", "Fall", 2026)
}

func TestFetchProfile_FromDatabase(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	mock.ExpectQuery(`SELECT (.+) FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRow())

	profile, err := store.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", profile.UserID)
	require.NotNil(t, profile.GPA)
	assert.Equal(t, 3.5, *profile.GPA)
	assert.Nil(t, profile.Percentage)
	assert.Equal(t, "IELTS", profile.TestType)
	assert.Equal(t, []string{"US", "UK"}, profile.PreferredCountries)
	assert.Equal(t, "20000-30000", profile.BudgetRange)
	assert.Equal(t, 2026, profile.IntakeYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProfile_NotFound(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	mock.ExpectQuery(`SELECT (.+) FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.FetchProfile(context.Background(), "user-missing")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileNotFound))
}

func TestFetchProfile_DatabaseErrorIsFetchFailed(t *testing.T) {
	store, mock, _ := newMockStore(t, false)

	mock.ExpectQuery(`SELECT (.+) FROM student_profiles`).
		WillReturnError(assert.AnError)

	_, err := store.FetchProfile(context.Background(), "user-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileFetchFailed))
}

func TestFetchProfile_SecondReadServedFromCache(t *testing.T) {
	store, mock, mr := newMockStore(t, true)

	// Only one database read expected; the second fetch must hit the cache.
	mock.ExpectQuery(`SELECT (.+) FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRow())

	first, err := store.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("profile:user-1"))

	second, err := store.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchProfile_UndecodableCacheEntryFallsBackToDatabase(t *testing.T) {
	store, mock, mr := newMockStore(t, true)
	require.NoError(t, mr.Set("profile:user-1", "{not json"))

	mock.ExpectQuery(`SELECT (.+) FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRow())

	profile, err := store.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.UserID)
}

func TestInvalidateProfile(t *testing.T) {
	store, mock, mr := newMockStore(t, true)

	mock.ExpectQuery(`SELECT (.+) FROM student_profiles WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(profileRow())

	_, err := store.FetchProfile(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, mr.Exists("profile:user-1"))

	require.NoError(t, store.InvalidateProfile(context.Background(), "user-1"))
	assert.False(t, mr.Exists("profile:user-1"))
}
