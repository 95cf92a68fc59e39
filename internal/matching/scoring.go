// internal/matching/scoring.go
package matching

import (
	"fmt"

	"admissions-workers/internal/models"
)

// Weights are the relative contributions of each scoring dimension. They
// must sum to 1.0; config validation enforces this at startup.
type Weights struct {
	BudgetFit   float64
	LocationFit float64
	PrestigeFit float64
}

// DefaultWeights reflect counselling priorities: affordability first, then
// destination preference, then institutional prestige. Tunable via config.
var DefaultWeights = Weights{
	BudgetFit:   0.40,
	LocationFit: 0.35,
	PrestigeFit: 0.25,
}

// budgetOverrunTolerance is how far past the budget ceiling a price can go
// before its budget fit decays to zero (50% over).
const budgetOverrunTolerance = 0.5

// Scorer computes fit scores for programs that already passed eligibility.
// The rank ceiling is the worst global rank seen in the current catalog
// slice, recomputed per query because rank distributions shift as the
// catalog changes.
type Scorer struct {
	weights     Weights
	rankCeiling int
}

// NewScorer builds a scorer for one catalog slice.
func NewScorer(weights Weights, catalog []models.ProgramRecord) *Scorer {
	ceiling := 0
	for i := range catalog {
		if r := catalog[i].GlobalRank; r != nil && *r > ceiling {
			ceiling = *r
		}
	}
	return &Scorer{weights: weights, rankCeiling: ceiling}
}

// RankCeiling returns the worst rank observed across the catalog slice.
func (s *Scorer) RankCeiling() int {
	return s.rankCeiling
}

// Score returns a fit score in [0,1] plus one rationale line per scoring
// dimension, in the fixed order budget, location, prestige. Summation
// follows the same fixed order so scores are exactly reproducible.
func (s *Scorer) Score(profile *models.CanonicalProfile, program *models.ProgramRecord) (float64, []string) {
	rationale := make([]string, 0, 3)

	budgetFit, budgetWhy := s.budgetFit(profile, program)
	rationale = append(rationale, budgetWhy)

	locationFit, locationWhy := s.locationFit(profile, program)
	rationale = append(rationale, locationWhy)

	prestigeFit, prestigeWhy := s.prestigeFit(program)
	rationale = append(rationale, prestigeWhy)

	score := s.weights.BudgetFit*budgetFit +
		s.weights.LocationFit*locationFit +
		s.weights.PrestigeFit*prestigeFit

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, rationale
}

// budgetFit is 1.0 for any price the budget covers, decays linearly while
// the overrun stays within tolerance of the ceiling, and is 0 beyond that.
func (s *Scorer) budgetFit(profile *models.CanonicalProfile, program *models.ProgramRecord) (float64, string) {
	price := effectivePrice(program)

	if profile.Budget.Contains(price) {
		if profile.Budget.Unbounded {
			return 1.0, fmt.Sprintf("within your budget ($%.0f, no upper limit set)", price)
		}
		return 1.0, fmt.Sprintf("within your budget by $%.0f", profile.Budget.Max-price)
	}

	overrun := price - profile.Budget.Max
	allowed := profile.Budget.Max * budgetOverrunTolerance
	if allowed <= 0 || overrun >= allowed {
		return 0, fmt.Sprintf("exceeds your budget by $%.0f", overrun)
	}
	return 1 - overrun/allowed, fmt.Sprintf("exceeds your budget by $%.0f", overrun)
}

func (s *Scorer) locationFit(profile *models.CanonicalProfile, program *models.ProgramRecord) (float64, string) {
	if profile.PrefersCountry(program.Location) {
		return 1.0, fmt.Sprintf("matches preferred country: %s", program.Location)
	}
	return 0, fmt.Sprintf("outside your preferred countries (%s)", program.Location)
}

func (s *Scorer) prestigeFit(program *models.ProgramRecord) (float64, string) {
	if program.GlobalRank == nil || s.rankCeiling == 0 {
		return 0, "unranked globally"
	}
	rank := *program.GlobalRank
	if rank > s.rankCeiling {
		rank = s.rankCeiling
	}
	fit := 1 - float64(rank)/float64(s.rankCeiling)
	return fit, fmt.Sprintf("ranked #%d globally", *program.GlobalRank)
}

// effectivePrice prefers the discounted price when one is set.
func effectivePrice(program *models.ProgramRecord) float64 {
	if program.DiscountedPrice > 0 {
		return program.DiscountedPrice
	}
	return program.ListPrice
}
