// internal/workers/matching/check-eligibility/models.go
package checkeligibility

import "admissions-workers/internal/models"

type Input struct {
	UserID     string   `json:"userId"`
	ProgramIDs []string `json:"programIds"`
}

type Output struct {
	Verdicts      []models.EligibilityVerdict `json:"verdicts"`
	EligibleCount int                         `json:"eligibleCount"`
	TotalChecked  int                         `json:"totalChecked"`
	Truncated     bool                        `json:"truncated"`
}
