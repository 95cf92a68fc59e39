// internal/matching/rules_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/models"
)

func testProfile() *models.CanonicalProfile {
	return &models.CanonicalProfile{
		UserID:              "user-1",
		GPAOn4Scale:         3.5,
		Test:                models.TestScore{Type: models.TestTypeIELTS, Overall: 7.0},
		WorkExperienceYears: 2,
		Backlogs:            0,
		PreferredCountries:  []string{"US"},
		Budget:              models.BudgetRange{Min: 20000, Max: 30000},
	}
}

func testProgram() models.ProgramRecord {
	return models.ProgramRecord{
		ID:              "prog-1",
		MinGPA:          floatPtr(3.0),
		GPAScaleType:    models.GPAScale4Point,
		MinWorkExpYears: floatPtr(1),
		MaxBacklogs:     intPtr(1),
		TestMinimums:    map[models.TestType]float64{models.TestTypeIELTS: 6.5},
		ListPrice:       25000,
		DiscountedPrice: 25000,
		Location:        "US",
		GlobalRank:      intPtr(50),
	}
}

func TestEvaluate_AllCriteriaPass(t *testing.T) {
	program := testProgram()
	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)

	assert.True(t, verdict.Passed)
	assert.Equal(t, "prog-1", verdict.ProgramID)
	assert.Empty(t, verdict.FailedCriteria)
}

func TestEvaluate_GPAFailureRecordsRequiredAndActual(t *testing.T) {
	program := testProgram()
	program.MinGPA = floatPtr(3.8)

	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)

	assert.False(t, verdict.Passed)
	require.Len(t, verdict.FailedCriteria, 1)
	assert.Equal(t, models.CriterionGPA, verdict.FailedCriteria[0].Criterion)
	assert.Equal(t, 3.8, verdict.FailedCriteria[0].Required)
	assert.Equal(t, 3.5, verdict.FailedCriteria[0].Actual)
}

func TestEvaluate_GPABoundaryIsInclusive(t *testing.T) {
	program := testProgram()
	program.MinGPA = floatPtr(3.5)

	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluate_GPAComparedOnProgramScale(t *testing.T) {
	program := testProgram()
	program.GPAScaleType = models.GPAScalePercentage
	program.MinGPA = floatPtr(85)

	// 3.5 on the 4.0 scale is 87.5%: passes an 85% threshold.
	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)
	assert.True(t, verdict.Passed)

	program.MinGPA = floatPtr(90)
	verdict, err = Evaluate(testProfile(), &program)
	require.NoError(t, err)
	assert.False(t, verdict.Passed)
	require.Len(t, verdict.FailedCriteria, 1)
	assert.Equal(t, 87.5, verdict.FailedCriteria[0].Actual)
}

func TestEvaluate_AbsentThresholdsNeverFail(t *testing.T) {
	program := models.ProgramRecord{ID: "prog-open", Location: "US"}

	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluate_OtherTestTypeMinimumIsIndeterminatePass(t *testing.T) {
	program := testProgram()
	// Program only gates on TOEFL; the profile holds an IELTS score.
	program.TestMinimums = map[models.TestType]float64{models.TestTypeTOEFL: 100}

	verdict, err := Evaluate(testProfile(), &program)
	require.NoError(t, err)
	assert.True(t, verdict.Passed)
}

func TestEvaluate_RecordsEveryFailure(t *testing.T) {
	profile := testProfile()
	profile.GPAOn4Scale = 2.0
	profile.WorkExperienceYears = 0
	profile.Backlogs = 5
	profile.Test.Overall = 5.0

	program := testProgram()
	verdict, err := Evaluate(profile, &program)
	require.NoError(t, err)

	assert.False(t, verdict.Passed)
	require.Len(t, verdict.FailedCriteria, 4)

	criteria := make([]string, len(verdict.FailedCriteria))
	for i, c := range verdict.FailedCriteria {
		criteria[i] = c.Criterion
	}
	assert.Equal(t, []string{
		models.CriterionGPA,
		models.CriterionWorkExperience,
		models.CriterionBacklogs,
		models.CriterionLanguageTest,
	}, criteria)
}

func TestEvaluate_MalformedProgramIsDataIntegrityError(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ProgramRecord)
	}{
		{name: "missing id", mutate: func(p *models.ProgramRecord) { p.ID = "" }},
		{name: "negative min gpa", mutate: func(p *models.ProgramRecord) { p.MinGPA = floatPtr(-1) }},
		{name: "negative work exp", mutate: func(p *models.ProgramRecord) { p.MinWorkExpYears = floatPtr(-2) }},
		{name: "negative backlog ceiling", mutate: func(p *models.ProgramRecord) { p.MaxBacklogs = intPtr(-1) }},
		{name: "negative test minimum", mutate: func(p *models.ProgramRecord) {
			p.TestMinimums = map[models.TestType]float64{models.TestTypeIELTS: -6}
		}},
		{name: "negative price", mutate: func(p *models.ProgramRecord) { p.DiscountedPrice = -100 }},
		{name: "zero rank", mutate: func(p *models.ProgramRecord) { p.GlobalRank = intPtr(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := testProgram()
			tt.mutate(&program)

			_, err := Evaluate(testProfile(), &program)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeDataIntegrity))
		})
	}
}

// Relaxing constraints can never turn an eligible profile ineligible: if a
// profile passes the stricter program it must pass the looser one.
func TestEvaluate_MonotonicityOfConstraintRelaxation(t *testing.T) {
	strict := testProgram()
	strict.ID = "prog-strict"
	strict.MinGPA = floatPtr(3.4)
	strict.MinWorkExpYears = floatPtr(2)
	strict.MaxBacklogs = intPtr(0)

	relaxed := testProgram()
	relaxed.ID = "prog-relaxed"
	relaxed.MinGPA = floatPtr(3.0)
	relaxed.MinWorkExpYears = nil
	relaxed.MaxBacklogs = nil
	relaxed.TestMinimums = nil

	profiles := []*models.CanonicalProfile{testProfile()}
	weak := testProfile()
	weak.GPAOn4Scale = 3.4
	weak.WorkExperienceYears = 2
	profiles = append(profiles, weak)

	for _, profile := range profiles {
		strictVerdict, err := Evaluate(profile, &strict)
		require.NoError(t, err)
		relaxedVerdict, err := Evaluate(profile, &relaxed)
		require.NoError(t, err)

		if strictVerdict.Passed {
			assert.True(t, relaxedVerdict.Passed)
		}
	}
}
