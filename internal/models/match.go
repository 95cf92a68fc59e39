// internal/models/match.go
package models

// Criterion names used in eligibility verdicts.
const (
	CriterionGPA            = "gpa"
	CriterionWorkExperience = "workExperience"
	CriterionBacklogs       = "backlogs"
	CriterionLanguageTest   = "languageTest"
)

// CriterionResult records one failed eligibility check: what was required on
// the program's scale and what the student actually has.
type CriterionResult struct {
	Criterion string  `json:"criterion"`
	Required  float64 `json:"required"`
	Actual    float64 `json:"actual"`
}

// EligibilityVerdict is the outcome of evaluating one program against one
// profile. FailedCriteria lists every violated constraint in evaluation
// order, not just the first.
type EligibilityVerdict struct {
	ProgramID      string            `json:"programId"`
	Passed         bool              `json:"passed"`
	FailedCriteria []CriterionResult `json:"failedCriteria,omitempty"`
}

// Fail marks the verdict as failed and appends the violated criterion.
func (v *EligibilityVerdict) Fail(criterion string, required, actual float64) {
	v.Passed = false
	v.FailedCriteria = append(v.FailedCriteria, CriterionResult{
		Criterion: criterion,
		Required:  required,
		Actual:    actual,
	})
}

// MatchResult is one eligible program with its fit score and a
// human-readable explanation per scoring dimension.
type MatchResult struct {
	Program   ProgramRecord `json:"program"`
	Score     float64       `json:"score"` // [0,1]
	Rationale []string      `json:"rationale"`
}

// MatchResponse is the paginated result of one matching request.
// TotalPrograms is the size of the catalog slice considered, so callers can
// surface the drop rate; Truncated marks a partial result after an early
// deadline abort.
type MatchResponse struct {
	Results       []MatchResult `json:"results"`
	TotalEligible int           `json:"totalEligible"`
	TotalPrograms int           `json:"totalPrograms"`
	Page          int           `json:"page"`
	PageSize      int           `json:"pageSize"`
	Truncated     bool          `json:"truncated"`
}
