// internal/matching/normalizer_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func completeRawProfile() models.RawProfile {
	return models.RawProfile{
		UserID:              "user-1",
		HighestDegree:       "BTech",
		University:          "Test University",
		GPA:                 floatPtr(3.5),
		TestType:            "IELTS",
		TestScore:           floatPtr(7.0),
		WorkExperienceYears: floatPtr(2),
		Backlogs:            intPtr(0),
		PreferredCountries:  []string{"US"},
		BudgetRange:         "20000-30000",
		IntakeTerm:          "Fall",
		IntakeYear:          2026,
	}
}

func TestNormalize_CompleteProfile(t *testing.T) {
	profile, err := Normalize(completeRawProfile())
	require.NoError(t, err)

	assert.Equal(t, "user-1", profile.UserID)
	assert.Equal(t, 3.5, profile.GPAOn4Scale)
	assert.Equal(t, models.TestTypeIELTS, profile.Test.Type)
	assert.Equal(t, 7.0, profile.Test.Overall)
	assert.Equal(t, 2.0, profile.WorkExperienceYears)
	assert.Equal(t, 0, profile.Backlogs)
	assert.Equal(t, []string{"US"}, profile.PreferredCountries)
	assert.Equal(t, 20000.0, profile.Budget.Min)
	assert.Equal(t, 30000.0, profile.Budget.Max)
	assert.False(t, profile.Budget.Unbounded)
	assert.Equal(t, models.IntakePeriod{Term: "Fall", Year: 2026}, profile.TargetIntake)
}

func TestNormalize_GPAReconciliation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*models.RawProfile)
		expectedGPA float64
	}{
		{
			name:        "explicit gpa wins",
			mutate:      func(p *models.RawProfile) { p.GPA = floatPtr(3.2); p.Percentage = floatPtr(90) },
			expectedGPA: 3.2,
		},
		{
			name:        "percentage converts linearly",
			mutate:      func(p *models.RawProfile) { p.GPA = nil; p.Percentage = floatPtr(85) },
			expectedGPA: 3.4,
		},
		{
			name:        "naac grade maps via lookup",
			mutate:      func(p *models.RawProfile) { p.GPA = nil; p.NAACGrade = "A+" },
			expectedGPA: 3.7,
		},
		{
			name:        "naac grade is case insensitive",
			mutate:      func(p *models.RawProfile) { p.GPA = nil; p.NAACGrade = "a++" },
			expectedGPA: 3.9,
		},
		{
			name:        "out of range gpa falls through to percentage",
			mutate:      func(p *models.RawProfile) { p.GPA = floatPtr(7.5); p.Percentage = floatPtr(80) },
			expectedGPA: 3.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := completeRawProfile()
			tt.mutate(&raw)

			profile, err := Normalize(raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.expectedGPA, profile.GPAOn4Scale, 1e-9)
		})
	}
}

func TestNormalize_MissingFields(t *testing.T) {
	raw := completeRawProfile()
	raw.GPA = nil
	raw.University = ""
	raw.PreferredCountries = nil

	_, err := Normalize(raw)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileIncomplete))

	stdErr := err.(*errors.StandardError)
	missing := stdErr.Metadata["missingFields"].([]string)
	assert.ElementsMatch(t, []string{"university", "gpa", "preferredCountries"}, missing)
}

func TestNormalize_UnknownTestType(t *testing.T) {
	raw := completeRawProfile()
	raw.TestType = "GRE"

	_, err := Normalize(raw)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileIncomplete))
}

func TestNormalize_CountryDeduplication(t *testing.T) {
	raw := completeRawProfile()
	raw.PreferredCountries = []string{"us", " UK ", "US", "ca", "UK"}

	profile, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "UK", "CA"}, profile.PreferredCountries)
}

func TestParseBudgetRange(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.BudgetRange
		wantErr  bool
	}{
		{name: "min-max", input: "20000-30000", expected: models.BudgetRange{Min: 20000, Max: 30000}},
		{name: "unbounded", input: "20000+", expected: models.BudgetRange{Min: 20000, Unbounded: true}},
		{name: "whitespace tolerated", input: " 15000 - 25000 ", expected: models.BudgetRange{Min: 15000, Max: 25000}},
		{name: "inverted bounds", input: "30000-20000", wantErr: true},
		{name: "not numeric", input: "cheap-expensive", wantErr: true},
		{name: "single number", input: "25000", wantErr: true},
		{name: "negative min", input: "-5000+", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBudgetRange(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidBudgetFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// Normalizing a profile rebuilt from canonical fields must yield an
// equivalent canonical profile.
func TestNormalize_RoundTrip(t *testing.T) {
	first, err := Normalize(completeRawProfile())
	require.NoError(t, err)

	rebuilt := models.RawProfile{
		UserID:              first.UserID,
		HighestDegree:       "BTech",
		University:          "Test University",
		GPA:                 floatPtr(first.GPAOn4Scale),
		TestType:            string(first.Test.Type),
		TestScore:           floatPtr(first.Test.Overall),
		WorkExperienceYears: floatPtr(first.WorkExperienceYears),
		Backlogs:            intPtr(first.Backlogs),
		PreferredCountries:  first.PreferredCountries,
		BudgetRange:         FormatBudgetRange(first.Budget),
		IntakeTerm:          first.TargetIntake.Term,
		IntakeYear:          first.TargetIntake.Year,
	}

	second, err := Normalize(rebuilt)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFormatBudgetRange(t *testing.T) {
	assert.Equal(t, "20000-30000", FormatBudgetRange(models.BudgetRange{Min: 20000, Max: 30000}))
	assert.Equal(t, "20000+", FormatBudgetRange(models.BudgetRange{Min: 20000, Unbounded: true}))
}
