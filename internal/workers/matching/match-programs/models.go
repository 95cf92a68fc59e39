// internal/workers/matching/match-programs/models.go
package matchprograms

import "admissions-workers/internal/models"

type Input struct {
	UserID   string       `json:"userId"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Filters  *FilterInput `json:"filters,omitempty"`
}

// FilterInput narrows the catalog slice before evaluation.
type FilterInput struct {
	Countries  []string `json:"countries,omitempty"`
	MaxPrice   float64  `json:"maxPrice,omitempty"`
	IntakeTerm string   `json:"intakeTerm,omitempty"`
}

type Output struct {
	MatchResults  []models.MatchResult `json:"matchResults"`
	TotalEligible int                  `json:"totalEligible"`
	TotalPrograms int                  `json:"totalPrograms"`
	Page          int                  `json:"page"`
	PageSize      int                  `json:"pageSize"`
	Truncated     bool                 `json:"truncated"`
}
