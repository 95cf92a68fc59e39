// internal/profile/store.go

// Package profile fetches raw student profiles for the matching workers.
package profile

import (
	"context"

	"admissions-workers/internal/models"
)

// Store fetches the raw student profile for a user. Implementations return
// a PROFILE_NOT_FOUND error when no profile exists and a
// PROFILE_FETCH_FAILED error for storage failures.
type Store interface {
	FetchProfile(ctx context.Context, userID string) (*models.RawProfile, error)
}
