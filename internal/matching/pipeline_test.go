// internal/matching/pipeline_test.go
package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/models"
)

func newTestPipeline(t *testing.T, workers int) *Pipeline {
	return NewPipeline(DefaultWeights, workers, logger.NewTestLogger(t))
}

func testCatalog() []models.ProgramRecord {
	affordable := testProgram()
	affordable.ID = "prog-affordable"
	affordable.GlobalRank = intPtr(20)

	pricey := testProgram()
	pricey.ID = "prog-pricey"
	pricey.DiscountedPrice = 37500
	pricey.GlobalRank = intPtr(10)

	tooStrict := testProgram()
	tooStrict.ID = "prog-strict"
	tooStrict.MinGPA = floatPtr(3.9)

	elsewhere := testProgram()
	elsewhere.ID = "prog-elsewhere"
	elsewhere.Location = "DE"
	elsewhere.GlobalRank = intPtr(5)

	return []models.ProgramRecord{affordable, pricey, tooStrict, elsewhere}
}

func TestPipeline_Match(t *testing.T) {
	p := newTestPipeline(t, 4)

	resp, err := p.Match(context.Background(), completeRawProfile(), testCatalog(), 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalPrograms)
	assert.Equal(t, 3, resp.TotalEligible)
	assert.False(t, resp.Truncated)
	require.Len(t, resp.Results, 3)

	// prog-strict fails on GPA; the rest rank by score.
	assert.Equal(t, "prog-affordable", resp.Results[0].Program.ID)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}
	for _, r := range resp.Results {
		assert.NotEqual(t, "prog-strict", r.Program.ID)
		assert.Len(t, r.Rationale, 3)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
}

func TestPipeline_EmptyCatalog(t *testing.T) {
	p := newTestPipeline(t, 4)

	resp, err := p.Match(context.Background(), completeRawProfile(), nil, 1, 10)
	require.NoError(t, err)

	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalEligible)
	assert.Equal(t, 0, resp.TotalPrograms)
	assert.False(t, resp.Truncated)
}

func TestPipeline_InvalidPagination(t *testing.T) {
	p := newTestPipeline(t, 1)

	for _, args := range [][2]int{{0, 10}, {-1, 10}, {1, 0}, {1, -5}} {
		_, err := p.Match(context.Background(), completeRawProfile(), testCatalog(), args[0], args[1])
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidPagination))
	}
}

func TestPipeline_IncompleteProfileFailsBeforeEvaluation(t *testing.T) {
	p := newTestPipeline(t, 4)
	raw := completeRawProfile()
	raw.GPA = nil

	_, err := p.Match(context.Background(), raw, testCatalog(), 1, 10)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileIncomplete))
}

func TestPipeline_Pagination(t *testing.T) {
	p := newTestPipeline(t, 4)
	catalog := testCatalog()

	page1, err := p.Match(context.Background(), completeRawProfile(), catalog, 1, 2)
	require.NoError(t, err)
	page2, err := p.Match(context.Background(), completeRawProfile(), catalog, 2, 2)
	require.NoError(t, err)
	beyond, err := p.Match(context.Background(), completeRawProfile(), catalog, 5, 2)
	require.NoError(t, err)

	assert.Len(t, page1.Results, 2)
	assert.Len(t, page2.Results, 1)
	assert.Empty(t, beyond.Results)
	assert.Equal(t, 3, beyond.TotalEligible)
	assert.NotEqual(t, page1.Results[0].Program.ID, page2.Results[0].Program.ID)
}

func TestPipeline_MalformedRecordExcludedBatchContinues(t *testing.T) {
	catalog := testCatalog()
	bad := testProgram()
	bad.ID = "prog-bad"
	bad.MinGPA = floatPtr(-1)
	catalog = append(catalog, bad)

	p := newTestPipeline(t, 4)
	resp, err := p.Match(context.Background(), completeRawProfile(), catalog, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, 5, resp.TotalPrograms)
	assert.Equal(t, 3, resp.TotalEligible)
	for _, r := range resp.Results {
		assert.NotEqual(t, "prog-bad", r.Program.ID)
	}
}

// Parallelism must never affect output ordering. Run the same request
// across worker counts and against a sequential baseline.
func TestPipeline_DeterministicAcrossWorkerCounts(t *testing.T) {
	catalog := make([]models.ProgramRecord, 0, 60)
	for i := 0; i < 60; i++ {
		prog := testProgram()
		prog.ID = fmt.Sprintf("prog-%03d", i)
		prog.GlobalRank = intPtr(i%7 + 1)
		prog.DiscountedPrice = 20000 + float64(i%5)*3000
		catalog = append(catalog, prog)
	}

	baseline, err := newTestPipeline(t, 1).Match(context.Background(), completeRawProfile(), catalog, 1, 60)
	require.NoError(t, err)

	for _, workers := range []int{2, 8, 32} {
		resp, err := newTestPipeline(t, workers).Match(context.Background(), completeRawProfile(), catalog, 1, 60)
		require.NoError(t, err)
		assert.Equal(t, baseline.Results, resp.Results, "workers=%d", workers)
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	p := newTestPipeline(t, 8)
	catalog := testCatalog()

	first, err := p.Match(context.Background(), completeRawProfile(), catalog, 1, 10)
	require.NoError(t, err)
	second, err := p.Match(context.Background(), completeRawProfile(), catalog, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_CancelledContextTruncates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(t, 4)
	resp, err := p.Match(ctx, completeRawProfile(), testCatalog(), 1, 10)
	require.NoError(t, err)

	assert.True(t, resp.Truncated)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalEligible)
}

func TestPipeline_EvaluateAll(t *testing.T) {
	p := newTestPipeline(t, 4)

	verdicts, truncated, err := p.EvaluateAll(context.Background(), completeRawProfile(), testCatalog())
	require.NoError(t, err)
	assert.False(t, truncated)
	require.Len(t, verdicts, 4)

	byID := make(map[string]models.EligibilityVerdict, len(verdicts))
	for _, v := range verdicts {
		byID[v.ProgramID] = v
	}
	assert.True(t, byID["prog-affordable"].Passed)
	assert.True(t, byID["prog-elsewhere"].Passed)
	assert.False(t, byID["prog-strict"].Passed)
	require.Len(t, byID["prog-strict"].FailedCriteria, 1)
	assert.Equal(t, models.CriterionGPA, byID["prog-strict"].FailedCriteria[0].Criterion)
}
