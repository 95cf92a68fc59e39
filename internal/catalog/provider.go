// internal/catalog/provider.go

// Package catalog loads read-only program records for matching requests.
// The matching engine never mutates a record; providers return fresh
// slices per call.
package catalog

import (
	"context"

	"admissions-workers/internal/models"
)

// Filters narrows a catalog fetch. Zero values mean "no filter".
type Filters struct {
	Countries  []string // country codes, already upper-cased
	MaxPrice   float64  // discounted price ceiling; 0 = no ceiling
	IntakeTerm string   // e.g. "Fall"
	Limit      int      // 0 = provider default
}

// Provider fetches program records from the external catalog.
type Provider interface {
	FetchPrograms(ctx context.Context, filters Filters) ([]models.ProgramRecord, error)
	FetchProgram(ctx context.Context, programID string) (*models.ProgramRecord, error)
}
