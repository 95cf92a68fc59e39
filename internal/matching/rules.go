// internal/matching/rules.go
package matching

import (
	"fmt"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/models"
)

// Evaluate checks one program's eligibility rules against a normalized
// profile. Criteria are conjunctive: any violated constraint fails the
// program. An absent threshold never fails; a missing catalog field means
// "no constraint here", not "constraint unknown".
//
// Every violated criterion is recorded, in a fixed evaluation order
// (gpa, workExperience, backlogs, languageTest), so the caller can show
// the student everything standing between them and the program. There is
// no short-circuit.
//
// Only a malformed program record returns an error (DATA_INTEGRITY);
// business-rule failure is a verdict, not an error.
func Evaluate(profile *models.CanonicalProfile, program *models.ProgramRecord) (models.EligibilityVerdict, error) {
	if err := validateProgram(program); err != nil {
		return models.EligibilityVerdict{}, err
	}

	verdict := models.EligibilityVerdict{
		ProgramID: program.ID,
		Passed:    true,
	}

	if program.MinGPA != nil {
		actual := gpaOnProgramScale(profile.GPAOn4Scale, program.GPAScaleType)
		if actual < *program.MinGPA {
			verdict.Fail(models.CriterionGPA, *program.MinGPA, actual)
		}
	}

	if program.MinWorkExpYears != nil && profile.WorkExperienceYears < *program.MinWorkExpYears {
		verdict.Fail(models.CriterionWorkExperience, *program.MinWorkExpYears, profile.WorkExperienceYears)
	}

	if program.MaxBacklogs != nil && profile.Backlogs > *program.MaxBacklogs {
		verdict.Fail(models.CriterionBacklogs, float64(*program.MaxBacklogs), float64(profile.Backlogs))
	}

	// A program that only lists minimums for other test types does not gate
	// on the student's test: indeterminate passes.
	if required, ok := program.TestMinimums[profile.Test.Type]; ok {
		if profile.Test.Overall < required {
			verdict.Fail(models.CriterionLanguageTest, required, profile.Test.Overall)
		}
	}

	return verdict, nil
}

// gpaOnProgramScale converts the profile's 4.0-scale GPA onto the scale the
// program expressed its threshold in. Converting the profile to the program
// (and not the reverse) keeps the comparison free of scale-mismatch bias.
// NAAC-typed thresholds are stored as their 4.0-scale equivalents, so they
// compare directly.
func gpaOnProgramScale(gpaOn4 float64, scale models.GPAScale) float64 {
	switch scale {
	case models.GPAScalePercentage:
		return gpaOn4 / 4 * 100
	default:
		return gpaOn4
	}
}

func validateProgram(program *models.ProgramRecord) error {
	if program.ID == "" {
		return errors.NewDataIntegrityError("", "id", "program record has no id")
	}
	if program.MinGPA != nil && *program.MinGPA < 0 {
		return errors.NewDataIntegrityError(program.ID, "minGpa",
			fmt.Sprintf("negative threshold: %v", *program.MinGPA))
	}
	if program.MinWorkExpYears != nil && *program.MinWorkExpYears < 0 {
		return errors.NewDataIntegrityError(program.ID, "minWorkExpYears",
			fmt.Sprintf("negative threshold: %v", *program.MinWorkExpYears))
	}
	if program.MaxBacklogs != nil && *program.MaxBacklogs < 0 {
		return errors.NewDataIntegrityError(program.ID, "maxBacklogs",
			fmt.Sprintf("negative threshold: %v", *program.MaxBacklogs))
	}
	for testType, min := range program.TestMinimums {
		if min < 0 {
			return errors.NewDataIntegrityError(program.ID, "testMinimums",
				fmt.Sprintf("negative minimum for %s: %v", testType, min))
		}
	}
	if program.ListPrice < 0 || program.DiscountedPrice < 0 {
		return errors.NewDataIntegrityError(program.ID, "price",
			fmt.Sprintf("negative price: list=%v discounted=%v", program.ListPrice, program.DiscountedPrice))
	}
	if program.GlobalRank != nil && *program.GlobalRank < 1 {
		return errors.NewDataIntegrityError(program.ID, "globalRank",
			fmt.Sprintf("rank must be positive: %d", *program.GlobalRank))
	}
	return nil
}
