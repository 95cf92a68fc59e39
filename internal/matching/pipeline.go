// internal/matching/pipeline.go
package matching

import (
	"context"
	"sort"
	"sync"
	"time"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/common/metrics"
	"admissions-workers/internal/models"
)

// Pipeline orchestrates a full matching request: normalize the profile,
// evaluate every program in the catalog slice, score the eligible ones,
// then sort and paginate. It holds no per-request state, so a single
// Pipeline is safe for concurrent requests.
type Pipeline struct {
	weights     Weights
	evalWorkers int
	logger      logger.Logger
}

// NewPipeline builds a pipeline. evalWorkers bounds the per-request
// evaluation concurrency; values below 1 are clamped to 1.
func NewPipeline(weights Weights, evalWorkers int, log logger.Logger) *Pipeline {
	if evalWorkers < 1 {
		evalWorkers = 1
	}
	return &Pipeline{
		weights:     weights,
		evalWorkers: evalWorkers,
		logger:      log,
	}
}

// outcome holds the result of evaluating one catalog index. Outcomes are
// written into a slice positionally so worker scheduling can never change
// the final ordering, only throughput.
type outcome struct {
	done      bool
	excluded  bool
	verdict   models.EligibilityVerdict
	score     float64
	rationale []string
}

// Match runs the full pipeline over one catalog slice.
//
// Programs are evaluated concurrently by a bounded worker pool. The
// context is checked between dispatches: on cancellation the remaining
// programs are skipped and the response is marked Truncated rather than
// returning an inconsistent result. Malformed program records are logged
// and excluded without aborting the batch.
func (p *Pipeline) Match(
	ctx context.Context,
	raw models.RawProfile,
	catalog []models.ProgramRecord,
	page, pageSize int,
) (*models.MatchResponse, error) {
	start := time.Now()
	resp, err := p.match(ctx, raw, catalog, page, pageSize)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case resp.Truncated:
		outcome = "truncated"
	}
	metrics.MatchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.MatchRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return resp, err
}

func (p *Pipeline) match(
	ctx context.Context,
	raw models.RawProfile,
	catalog []models.ProgramRecord,
	page, pageSize int,
) (*models.MatchResponse, error) {
	if page < 1 || pageSize <= 0 {
		return nil, errors.NewInvalidPaginationError(page, pageSize)
	}

	profile, err := Normalize(raw)
	if err != nil {
		return nil, err
	}

	resp := &models.MatchResponse{
		Results:       []models.MatchResult{},
		TotalPrograms: len(catalog),
		Page:          page,
		PageSize:      pageSize,
	}
	if len(catalog) == 0 {
		return resp, nil
	}

	scorer := NewScorer(p.weights, catalog)
	outcomes := make([]outcome, len(catalog))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := p.evalWorkers
	if workers > len(catalog) {
		workers = len(catalog)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p.evaluateOne(profile, scorer, &catalog[i], &outcomes[i])
			}
		}()
	}

dispatch:
	for i := range catalog {
		if ctx.Err() != nil {
			resp.Truncated = true
			break dispatch
		}
		select {
		case <-ctx.Done():
			resp.Truncated = true
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	results := make([]models.MatchResult, 0, len(catalog))
	for i := range outcomes {
		o := &outcomes[i]
		if !o.done || o.excluded {
			continue
		}
		if o.verdict.Passed {
			resp.TotalEligible++
			results = append(results, models.MatchResult{
				Program:   catalog[i],
				Score:     o.score,
				Rationale: o.rationale,
			})
			metrics.ProgramsEvaluated.WithLabelValues("eligible").Inc()
		} else {
			metrics.ProgramsEvaluated.WithLabelValues("ineligible").Inc()
		}
	}

	sortResults(results)

	resp.Results = paginate(results, page, pageSize)
	return resp, nil
}

// EvaluateAll returns every verdict for the catalog slice, eligible or not,
// preserving catalog order. Used by the eligibility check worker, which
// reports diagnostics instead of a ranked list.
func (p *Pipeline) EvaluateAll(
	ctx context.Context,
	raw models.RawProfile,
	catalog []models.ProgramRecord,
) ([]models.EligibilityVerdict, bool, error) {
	profile, err := Normalize(raw)
	if err != nil {
		return nil, false, err
	}

	verdicts := make([]models.EligibilityVerdict, 0, len(catalog))
	truncated := false
	for i := range catalog {
		select {
		case <-ctx.Done():
			truncated = true
			return verdicts, truncated, nil
		default:
		}

		verdict, err := Evaluate(profile, &catalog[i])
		if err != nil {
			p.logExcluded(catalog[i].ID, err)
			continue
		}
		verdicts = append(verdicts, verdict)
	}
	return verdicts, truncated, nil
}

func (p *Pipeline) evaluateOne(
	profile *models.CanonicalProfile,
	scorer *Scorer,
	program *models.ProgramRecord,
	out *outcome,
) {
	out.done = true

	verdict, err := Evaluate(profile, program)
	if err != nil {
		out.excluded = true
		p.logExcluded(program.ID, err)
		return
	}

	out.verdict = verdict
	if verdict.Passed {
		out.score, out.rationale = scorer.Score(profile, program)
	}
}

func (p *Pipeline) logExcluded(programID string, err error) {
	metrics.ProgramsExcluded.WithLabelValues("data_integrity").Inc()
	p.logger.WithError(err).Warn("Excluding malformed program record", map[string]interface{}{
		"programId": programID,
	})
}

// sortResults orders by score descending, then ascending global rank
// (unranked programs last), then ascending program id as the final,
// fully deterministic tie-break.
func sortResults(results []models.MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		ar, br := a.Program.GlobalRank, b.Program.GlobalRank
		switch {
		case ar != nil && br != nil && *ar != *br:
			return *ar < *br
		case ar != nil && br == nil:
			return true
		case ar == nil && br != nil:
			return false
		}
		return a.Program.ID < b.Program.ID
	})
}

// paginate is pure slicing; pages past the end are empty, not errors.
func paginate(results []models.MatchResult, page, pageSize int) []models.MatchResult {
	start := (page - 1) * pageSize
	if start >= len(results) {
		return []models.MatchResult{}
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
