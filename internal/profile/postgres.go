// internal/profile/postgres.go
package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"admissions-workers/internal/common/database"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/models"
)

// PostgresStore reads profiles from PostgreSQL with a Redis cache in front.
// Profiles change rarely relative to how often matching runs, so a short
// TTL keeps the hot path off the database without serving stale data for
// long. The cache is optional: a nil redis client disables it.
type PostgresStore struct {
	db       *database.PostgresClient
	cache    *database.RedisClient
	cacheTTL time.Duration
	logger   logger.Logger
}

// NewPostgresStore creates a profile store. cache may be nil.
func NewPostgresStore(
	db *database.PostgresClient,
	cache *database.RedisClient,
	cacheTTL time.Duration,
	log logger.Logger,
) *PostgresStore {
	return &PostgresStore{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func cacheKey(userID string) string {
	return "profile:" + userID
}

// FetchProfile returns the raw profile for a user, consulting the cache
// first. Cache failures degrade to a database read, never to a request
// failure.
func (s *PostgresStore) FetchProfile(ctx context.Context, userID string) (*models.RawProfile, error) {
	if cached := s.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	profile, err := s.fromDatabase(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.toCache(ctx, profile)
	return profile, nil
}

// InvalidateProfile drops the cached copy after a profile update.
func (s *PostgresStore) InvalidateProfile(ctx context.Context, userID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, cacheKey(userID))
}

func (s *PostgresStore) fromCache(ctx context.Context, userID string) *models.RawProfile {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, cacheKey(userID))
	if err != nil {
		if err != redis.Nil {
			s.logger.WithError(err).Warn("Profile cache read failed", map[string]interface{}{
				"userId": userID,
			})
		}
		return nil
	}

	var profile models.RawProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.logger.WithError(err).Warn("Dropping undecodable cached profile", map[string]interface{}{
			"userId": userID,
		})
		_ = s.cache.Del(ctx, cacheKey(userID))
		return nil
	}
	return &profile
}

func (s *PostgresStore) toCache(ctx context.Context, profile *models.RawProfile) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(profile.UserID), payload, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Profile cache write failed", map[string]interface{}{
			"userId": profile.UserID,
		})
	}
}

func (s *PostgresStore) fromDatabase(ctx context.Context, userID string) (*models.RawProfile, error) {
	const query = `SELECT user_id, highest_degree, university, gpa, percentage,
		naac_grade, test_type, test_score, work_experience_years, backlogs,
		preferred_countries, budget_range, intake_term, intake_year
		FROM student_profiles WHERE user_id = $1`

	var (
		profile    models.RawProfile
		degree     sql.NullString
		university sql.NullString
		gpa        sql.NullFloat64
		percentage sql.NullFloat64
		naacGrade  sql.NullString
		testType   sql.NullString
		testScore  sql.NullFloat64
		workExp    sql.NullFloat64
		backlogs   sql.NullInt64
		countries  []byte
		budget     sql.NullString
		intakeTerm sql.NullString
		intakeYear sql.NullInt64
	)

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&degree,
		&university,
		&gpa,
		&percentage,
		&naacGrade,
		&testType,
		&testScore,
		&workExp,
		&backlogs,
		&countries,
		&budget,
		&intakeTerm,
		&intakeYear,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewProfileNotFoundError(userID)
	}
	if err != nil {
		return nil, errors.NewProfileFetchFailedError(err)
	}

	profile.HighestDegree = degree.String
	profile.University = university.String
	if gpa.Valid {
		v := gpa.Float64
		profile.GPA = &v
	}
	if percentage.Valid {
		v := percentage.Float64
		profile.Percentage = &v
	}
	profile.NAACGrade = naacGrade.String
	profile.TestType = testType.String
	if testScore.Valid {
		v := testScore.Float64
		profile.TestScore = &v
	}
	if workExp.Valid {
		v := workExp.Float64
		profile.WorkExperienceYears = &v
	}
	if backlogs.Valid {
		v := int(backlogs.Int64)
		profile.Backlogs = &v
	}
	if len(countries) > 0 {
		if err := json.Unmarshal(countries, &profile.PreferredCountries); err != nil {
			return nil, errors.NewProfileFetchFailedError(
				fmt.Errorf("malformed preferred_countries for user %s: %w", userID, err))
		}
	}
	profile.BudgetRange = budget.String
	profile.IntakeTerm = intakeTerm.String
	profile.IntakeYear = int(intakeYear.Int64)

	return &profile, nil
}
