// internal/workers/matching/match-programs/handler.go
package matchprograms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"admissions-workers/internal/catalog"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/common/metrics"
	"admissions-workers/internal/matching"
	"admissions-workers/internal/profile"
	"admissions-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "match-programs"
)

type Handler struct {
	config       *Config
	profiles     profile.Store
	catalog      catalog.Provider
	pipeline     *matching.Pipeline
	activity     *registry.Activity
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the worker handler. activity may be nil, which skips
// registry input validation.
func NewHandler(
	config *Config,
	profiles profile.Store,
	catalogProvider catalog.Provider,
	pipeline *matching.Pipeline,
	activity *registry.Activity,
	log logger.Logger,
) *Handler {
	workerLogger := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		profiles:     profiles,
		catalog:      catalogProvider,
		pipeline:     pipeline,
		activity:     activity,
		errorHandler: errors.NewErrorHandler(workerLogger),
		logger:       workerLogger,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := h.validateInput(job.Variables); err != nil {
		h.failJob(ctx, client, job, err)
		return nil
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, fmt.Errorf("parse input: %w", err))
		return nil
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(ctx, client, job, err)
		return nil
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	return nil
}

// validateInput checks the raw job variables against the activity's
// registered input schema before they are parsed into typed input.
func (h *Handler) validateInput(variables string) error {
	if h.activity == nil {
		return nil
	}

	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(variables), &vars); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	violations, err := h.activity.ValidateInput(vars)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return errors.NewInvalidInputError(TaskType, violations)
	}
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	page, pageSize := h.normalizePagination(input.Page, input.PageSize)

	rawProfile, err := h.profiles.FetchProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	programs, err := h.catalog.FetchPrograms(ctx, h.buildFilters(input))
	if err != nil {
		return nil, err
	}

	resp, err := h.pipeline.Match(ctx, *rawProfile, programs, page, pageSize)
	if err != nil {
		return nil, err
	}

	h.logger.Info("matching completed", map[string]interface{}{
		"userId":        input.UserID,
		"totalPrograms": resp.TotalPrograms,
		"totalEligible": resp.TotalEligible,
		"returned":      len(resp.Results),
		"truncated":     resp.Truncated,
	})

	return &Output{
		MatchResults:  resp.Results,
		TotalEligible: resp.TotalEligible,
		TotalPrograms: resp.TotalPrograms,
		Page:          resp.Page,
		PageSize:      resp.PageSize,
		Truncated:     resp.Truncated,
	}, nil
}

// normalizePagination applies defaults for omitted values. Explicitly
// invalid values pass through so the pipeline rejects them.
func (h *Handler) normalizePagination(page, pageSize int) (int, int) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = h.config.DefaultPageSize
	}
	if h.config.MaxPageSize > 0 && pageSize > h.config.MaxPageSize {
		pageSize = h.config.MaxPageSize
	}
	return page, pageSize
}

func (h *Handler) buildFilters(input *Input) catalog.Filters {
	filters := catalog.Filters{Limit: h.config.CatalogLimit}
	if input.Filters == nil {
		return filters
	}

	for _, c := range input.Filters.Countries {
		if code := strings.ToUpper(strings.TrimSpace(c)); code != "" {
			filters.Countries = append(filters.Countries, code)
		}
	}
	filters.MaxPrice = input.Filters.MaxPrice
	filters.IntakeTerm = input.Filters.IntakeTerm
	return filters
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCodeLabel(err)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func errorCodeLabel(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "INTERNAL_ERROR"
}

// Execute exposes the business logic for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
