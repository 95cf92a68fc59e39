// internal/matching/scoring_test.go
package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-workers/internal/models"
)

func TestScorer_PerfectFit(t *testing.T) {
	program := testProgram()
	program.GlobalRank = intPtr(1)
	other := testProgram()
	other.ID = "prog-2"
	other.GlobalRank = intPtr(100)

	scorer := NewScorer(DefaultWeights, []models.ProgramRecord{program, other})
	score, rationale := scorer.Score(testProfile(), &program)

	// budget 1.0, location 1.0, prestige 1 - 1/100 = 0.99
	expected := 0.40*1.0 + 0.35*1.0 + 0.25*0.99
	assert.InDelta(t, expected, score, 1e-9)
	require.Len(t, rationale, 3)
	assert.Contains(t, rationale[0], "within your budget")
	assert.Contains(t, rationale[1], "matches preferred country: US")
	assert.Contains(t, rationale[2], "ranked #1")
}

func TestScorer_BudgetFit(t *testing.T) {
	profile := testProfile() // budget 20000-30000

	tests := []struct {
		name     string
		price    float64
		expected float64
	}{
		{name: "below min still affordable", price: 15000, expected: 1.0},
		{name: "at max", price: 30000, expected: 1.0},
		{name: "25 percent over decays linearly", price: 37500, expected: 0.5},
		{name: "at 50 percent over", price: 45000, expected: 0.0},
		{name: "beyond tolerance", price: 90000, expected: 0.0},
	}

	weights := Weights{BudgetFit: 1}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program := testProgram()
			program.DiscountedPrice = tt.price
			scorer := NewScorer(weights, []models.ProgramRecord{program})

			score, _ := scorer.Score(profile, &program)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestScorer_UnboundedBudgetAlwaysFits(t *testing.T) {
	profile := testProfile()
	profile.Budget = models.BudgetRange{Min: 20000, Unbounded: true}

	program := testProgram()
	program.DiscountedPrice = 100000

	scorer := NewScorer(Weights{BudgetFit: 1}, []models.ProgramRecord{program})
	score, _ := scorer.Score(profile, &program)
	assert.Equal(t, 1.0, score)
}

func TestScorer_LocationFitIsBinary(t *testing.T) {
	program := testProgram()
	program.Location = "DE"

	scorer := NewScorer(Weights{LocationFit: 1}, []models.ProgramRecord{program})
	score, rationale := scorer.Score(testProfile(), &program)

	assert.Equal(t, 0.0, score)
	assert.Contains(t, rationale[1], "outside your preferred countries")
}

func TestScorer_PrestigeFit(t *testing.T) {
	best := testProgram()
	best.ID = "prog-best"
	best.GlobalRank = intPtr(10)
	worst := testProgram()
	worst.ID = "prog-worst"
	worst.GlobalRank = intPtr(200)
	unranked := testProgram()
	unranked.ID = "prog-unranked"
	unranked.GlobalRank = nil

	catalog := []models.ProgramRecord{best, worst, unranked}
	scorer := NewScorer(Weights{PrestigeFit: 1}, catalog)
	assert.Equal(t, 200, scorer.RankCeiling())

	bestScore, _ := scorer.Score(testProfile(), &best)
	assert.InDelta(t, 1-10.0/200.0, bestScore, 1e-9)

	worstScore, _ := scorer.Score(testProfile(), &worst)
	assert.Equal(t, 0.0, worstScore)

	unrankedScore, rationale := scorer.Score(testProfile(), &unranked)
	assert.Equal(t, 0.0, unrankedScore)
	assert.Contains(t, rationale[2], "unranked")
}

func TestScorer_AllUnrankedCatalog(t *testing.T) {
	program := testProgram()
	program.GlobalRank = nil

	scorer := NewScorer(Weights{PrestigeFit: 1}, []models.ProgramRecord{program})
	assert.Equal(t, 0, scorer.RankCeiling())

	score, _ := scorer.Score(testProfile(), &program)
	assert.Equal(t, 0.0, score)
}

func TestScorer_PrefersDiscountedPrice(t *testing.T) {
	profile := testProfile()
	program := testProgram()
	program.ListPrice = 60000
	program.DiscountedPrice = 28000

	scorer := NewScorer(Weights{BudgetFit: 1}, []models.ProgramRecord{program})
	score, _ := scorer.Score(profile, &program)
	assert.Equal(t, 1.0, score)
}

func TestScorer_Deterministic(t *testing.T) {
	program := testProgram()
	catalog := []models.ProgramRecord{program}
	scorer := NewScorer(DefaultWeights, catalog)

	first, firstWhy := scorer.Score(testProfile(), &program)
	for i := 0; i < 50; i++ {
		again, againWhy := scorer.Score(testProfile(), &program)
		assert.Equal(t, first, again)
		assert.Equal(t, firstWhy, againWhy)
	}
}
