// internal/matching/normalizer.go
package matching

import (
	"strconv"
	"strings"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/models"
)

// naacGradeToGPA maps NAAC accreditation grades to a 4.0-scale equivalent.
// Values confirmed with the counselling team (2025 conversion sheet).
var naacGradeToGPA = map[string]float64{
	"A++": 3.9,
	"A+":  3.7,
	"A":   3.5,
	"B++": 3.2,
	"B+":  3.0,
	"B":   2.8,
	"C":   2.5,
}

// Normalize converts a raw, loosely typed profile into the canonical
// representation used by the matching engine. It is a pure function: it
// either returns a fully validated profile or a PROFILE_INCOMPLETE /
// INVALID_BUDGET_FORMAT error, never a partial result.
//
// GPA reconciliation order: explicit 4.0-scale GPA, then percentage
// (linear percentage/100*4 approximation), then NAAC grade. A value that
// is present but out of range is treated the same as an absent one, so a
// profile with gpa=7.5 and percentage=82 still normalizes.
func Normalize(raw models.RawProfile) (*models.CanonicalProfile, error) {
	var missing []string

	if strings.TrimSpace(raw.HighestDegree) == "" {
		missing = append(missing, "highestDegree")
	}
	if strings.TrimSpace(raw.University) == "" {
		missing = append(missing, "university")
	}

	gpa, gpaOK := reconcileGPA(raw)
	if !gpaOK {
		missing = append(missing, "gpa")
	}

	test, testOK := normalizeTest(raw)
	if !testOK {
		missing = append(missing, "testScore")
	}

	countries := normalizeCountries(raw.PreferredCountries)
	if len(countries) == 0 {
		missing = append(missing, "preferredCountries")
	}

	if strings.TrimSpace(raw.IntakeTerm) == "" || raw.IntakeYear == 0 {
		missing = append(missing, "targetIntake")
	}

	if strings.TrimSpace(raw.BudgetRange) == "" {
		missing = append(missing, "budgetRange")
	}

	if len(missing) > 0 {
		return nil, errors.NewProfileIncompleteError(missing)
	}

	budget, err := ParseBudgetRange(raw.BudgetRange)
	if err != nil {
		return nil, err
	}

	workExp := 0.0
	if raw.WorkExperienceYears != nil && *raw.WorkExperienceYears > 0 {
		workExp = *raw.WorkExperienceYears
	}

	backlogs := 0
	if raw.Backlogs != nil && *raw.Backlogs > 0 {
		backlogs = *raw.Backlogs
	}

	return &models.CanonicalProfile{
		UserID:              raw.UserID,
		GPAOn4Scale:         gpa,
		Test:                test,
		WorkExperienceYears: workExp,
		Backlogs:            backlogs,
		PreferredCountries:  countries,
		Budget:              budget,
		TargetIntake: models.IntakePeriod{
			Term: strings.TrimSpace(raw.IntakeTerm),
			Year: raw.IntakeYear,
		},
	}, nil
}

func reconcileGPA(raw models.RawProfile) (float64, bool) {
	if raw.GPA != nil && *raw.GPA >= 0 && *raw.GPA <= 4 {
		return *raw.GPA, true
	}
	if raw.Percentage != nil && *raw.Percentage >= 0 && *raw.Percentage <= 100 {
		return *raw.Percentage / 100 * 4, true
	}
	if grade := strings.ToUpper(strings.TrimSpace(raw.NAACGrade)); grade != "" {
		if gpa, ok := naacGradeToGPA[grade]; ok {
			return gpa, true
		}
	}
	return 0, false
}

func normalizeTest(raw models.RawProfile) (models.TestScore, bool) {
	if raw.TestScore == nil {
		return models.TestScore{}, false
	}

	switch models.TestType(strings.ToUpper(strings.TrimSpace(raw.TestType))) {
	case models.TestTypeIELTS:
		return models.TestScore{Type: models.TestTypeIELTS, Overall: *raw.TestScore}, true
	case models.TestTypeTOEFL:
		return models.TestScore{Type: models.TestTypeTOEFL, Overall: *raw.TestScore}, true
	case models.TestTypePTE:
		return models.TestScore{Type: models.TestTypePTE, Overall: *raw.TestScore}, true
	default:
		return models.TestScore{}, false
	}
}

// normalizeCountries upper-cases, trims and deduplicates while preserving
// the student's stated preference order.
func normalizeCountries(countries []string) []string {
	seen := make(map[string]struct{}, len(countries))
	out := make([]string, 0, len(countries))
	for _, c := range countries {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// ParseBudgetRange parses the stored budget string. Two forms are accepted:
// "min-max" with numeric bounds, and "N+" where N is the minimum and the
// maximum is unbounded.
func ParseBudgetRange(raw string) (models.BudgetRange, error) {
	s := strings.TrimSpace(raw)

	if strings.HasSuffix(s, "+") {
		min, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "+")), 64)
		if err != nil || min < 0 {
			return models.BudgetRange{}, errors.NewInvalidBudgetFormatError(raw)
		}
		return models.BudgetRange{Min: min, Unbounded: true}, nil
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return models.BudgetRange{}, errors.NewInvalidBudgetFormatError(raw)
	}

	min, errMin := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	max, errMax := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errMin != nil || errMax != nil || min < 0 || max < min {
		return models.BudgetRange{}, errors.NewInvalidBudgetFormatError(raw)
	}

	return models.BudgetRange{Min: min, Max: max}, nil
}

// FormatBudgetRange renders a budget back into its stored string form. It
// is the inverse of ParseBudgetRange for every range it can produce.
func FormatBudgetRange(b models.BudgetRange) string {
	if b.Unbounded {
		return strconv.FormatFloat(b.Min, 'f', -1, 64) + "+"
	}
	return strconv.FormatFloat(b.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(b.Max, 'f', -1, 64)
}
