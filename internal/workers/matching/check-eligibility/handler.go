// internal/workers/matching/check-eligibility/handler.go

// Worker for the "why don't I qualify" flow: evaluates the named programs
// against the student's profile and reports every verdict, failed criteria
// included, instead of a ranked list.
package checkeligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"admissions-workers/internal/catalog"
	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/common/metrics"
	"admissions-workers/internal/matching"
	"admissions-workers/internal/models"
	"admissions-workers/internal/profile"
	"admissions-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-eligibility"
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
	rawProfile, err := h.profiles.FetchProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	programs, err := h.loadPrograms(ctx, input.ProgramIDs)
	if err != nil {
		return nil, err
	}

	verdicts, truncated, err := h.pipeline.EvaluateAll(ctx, *rawProfile, programs)
	if err != nil {
		return nil, err
	}

	eligible := 0
	for _, v := range verdicts {
		if v.Passed {
			eligible++
		}
	}

	h.logger.Info("eligibility check completed", map[string]interface{}{
		"userId":        input.UserID,
		"totalChecked":  len(verdicts),
		"eligibleCount": eligible,
		"truncated":     truncated,
	})

	return &Output{
		Verdicts:      verdicts,
		EligibleCount: eligible,
		TotalChecked:  len(verdicts),
		Truncated:     truncated,
	}, nil
}

// loadPrograms fetches the named programs, or the full catalog slice when
// none are named. A missing program id fails the whole job; the student
// asked about that exact program.
func (h *Handler) loadPrograms(ctx context.Context, programIDs []string) ([]models.ProgramRecord, error) {
	if len(programIDs) == 0 {
		return h.catalog.FetchPrograms(ctx, catalog.Filters{})
	}

	programs := make([]models.ProgramRecord, 0, len(programIDs))
	for _, id := range programIDs {
		program, err := h.catalog.FetchProgram(ctx, id)
		if err != nil {
			return nil, err
		}
		programs = append(programs, *program)
	}
	return programs, nil
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
	code := "INTERNAL_ERROR"
	if stdErr, ok := err.(*errors.StandardError); ok {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

// Execute exposes the business logic for direct invocation in tests.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
