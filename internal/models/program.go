// internal/models/program.go
package models

// GPAScale identifies the scale a program's minimum GPA is expressed on.
type GPAScale string

const (
	GPAScale4Point     GPAScale = "4.0"
	GPAScalePercentage GPAScale = "percentage"
	GPAScaleNAAC       GPAScale = "naac"
)

// ProgramRecord is a read-only catalog entry. Threshold fields are pointers:
// a nil threshold means the program imposes no constraint on that dimension,
// it never means "fails".
type ProgramRecord struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	University string `json:"university"`

	MinGPA          *float64             `json:"minGpa,omitempty"`
	GPAScaleType    GPAScale             `json:"gpaType,omitempty"`
	MinWorkExpYears *float64             `json:"minWorkExpYears,omitempty"`
	MaxBacklogs     *int                 `json:"maxBacklogs,omitempty"`
	TestMinimums    map[TestType]float64 `json:"testMinimums,omitempty"`

	ListPrice       float64 `json:"listPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
	Location        string  `json:"location"` // country code

	GlobalRank *int `json:"globalRank,omitempty"` // lower is better

	IntakeTerms []string `json:"intakeTerms,omitempty"`
}
