// internal/models/profile.go
package models

// TestType identifies a supported English language test.
type TestType string

const (
	TestTypeIELTS TestType = "IELTS"
	TestTypeTOEFL TestType = "TOEFL"
	TestTypePTE   TestType = "PTE"
)

// TestScore is a test type together with its overall band/score.
type TestScore struct {
	Type    TestType `json:"type"`
	Overall float64  `json:"overall"`
}

// BudgetRange is the student's spending range in USD. Unbounded means the
// student declared no upper limit ("N+" in the raw form).
type BudgetRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Unbounded bool    `json:"unbounded"`
}

// Contains reports whether a price is affordable within the range.
// With an unbounded max, any price clears the budget.
func (b BudgetRange) Contains(price float64) bool {
	if b.Unbounded {
		return true
	}
	return price <= b.Max
}

// IntakePeriod is the term and year the student is targeting.
type IntakePeriod struct {
	Term string `json:"term"`
	Year int    `json:"year"`
}

// RawProfile is the loosely typed student profile as stored by the platform.
// Optional numeric fields are pointers so "absent" and "zero" stay distinct.
type RawProfile struct {
	UserID              string   `json:"userId"`
	HighestDegree       string   `json:"highestDegree"`
	University          string   `json:"university"`
	GPA                 *float64 `json:"gpa,omitempty"`        // 4.0 scale
	Percentage          *float64 `json:"percentage,omitempty"` // 0-100
	NAACGrade           string   `json:"naacGrade,omitempty"`
	TestType            string   `json:"testType,omitempty"`
	TestScore           *float64 `json:"testScore,omitempty"`
	WorkExperienceYears *float64 `json:"workExperienceYears,omitempty"`
	Backlogs            *int     `json:"backlogs,omitempty"`
	PreferredCountries  []string `json:"preferredCountries,omitempty"`
	BudgetRange         string   `json:"budgetRange,omitempty"` // "min-max" or "N+"
	IntakeTerm          string   `json:"intakeTerm,omitempty"`
	IntakeYear          int      `json:"intakeYear,omitempty"`
}

// CanonicalProfile is the normalized, fully validated representation used by
// the matching engine. Built once per request; treated as immutable.
type CanonicalProfile struct {
	UserID              string       `json:"userId"`
	GPAOn4Scale         float64      `json:"gpaOn4Scale"`
	Test                TestScore    `json:"test"`
	WorkExperienceYears float64      `json:"workExperienceYears"`
	Backlogs            int          `json:"backlogs"`
	PreferredCountries  []string     `json:"preferredCountries"` // upper-cased, deduplicated
	Budget              BudgetRange  `json:"budget"`
	TargetIntake        IntakePeriod `json:"targetIntake"`
}

// PrefersCountry reports whether the country code is in the preferred set.
func (p *CanonicalProfile) PrefersCountry(code string) bool {
	for _, c := range p.PreferredCountries {
		if c == code {
			return true
		}
	}
	return false
}
