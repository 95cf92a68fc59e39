// internal/workers/matching/notify-match-results/handler.go

// Worker that delivers match results to the student: an email digest of
// the top programs via SES, plus an SMS nudge via SNS when the best match
// clears the configured score threshold.
package notifymatchresults

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"admissions-workers/internal/common/errors"
	"admissions-workers/internal/common/logger"
	"admissions-workers/internal/common/metrics"
	"admissions-workers/pkg/registry"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-match-results"

	maxEmailMatches = 5
)

// EmailSender is satisfied by the common SES wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by the common SNS wrapper.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config       *Config
	email        EmailSender
	sms          SMSSender
	activity     *registry.Activity
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the worker handler. activity may be nil, which skips
// registry input validation.
func NewHandler(config *Config, email EmailSender, sms SMSSender, activity *registry.Activity, log logger.Logger) *Handler {
	workerLogger := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		email:        email,
		sms:          sms,
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
	output := &Output{NotificationID: uuid.NewString()}

	if h.config.EmailEnabled && input.Email != "" {
		if err := h.sendEmail(ctx, input); err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
		output.EmailSent = true
	}

	if h.shouldSendSMS(input) {
		if err := h.sendSMS(ctx, input); err != nil {
			// Email already went out; a failed SMS nudge is not worth a
			// retry loop that would duplicate the email.
			h.logger.WithError(err).Warn("SMS nudge failed", map[string]interface{}{
				"userId": input.UserID,
			})
		} else {
			output.SMSSent = true
		}
	}

	h.logger.Info("notification dispatched", map[string]interface{}{
		"userId":         input.UserID,
		"notificationId": output.NotificationID,
		"emailSent":      output.EmailSent,
		"smsSent":        output.SMSSent,
	})
	return output, nil
}

func (h *Handler) shouldSendSMS(input *Input) bool {
	if !h.config.SMSEnabled || input.PhoneNumber == "" || len(input.TopMatches) == 0 {
		return false
	}
	return input.TopMatches[0].Score >= h.config.SMSScoreThreshold
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	subject := fmt.Sprintf("Your program matches: %d eligible programs", input.TotalEligible)
	body := h.buildEmailBody(input)

	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{input.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) buildEmailBody(input *Input) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hi,\n\nWe found %d programs you qualify for.", input.TotalEligible)

	matches := input.TopMatches
	if len(matches) > maxEmailMatches {
		matches = matches[:maxEmailMatches]
	}
	if len(matches) > 0 {
		sb.WriteString(" Your top matches:\n\n")
		for i, m := range matches {
			fmt.Fprintf(&sb, "%d. %s at %s (fit score %.0f%%)\n",
				i+1, m.ProgramName, m.University, m.Score*100)
		}
	}

	sb.WriteString("\nLog in to see the full list and why each program fits.\n")
	return sb.String()
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	best := input.TopMatches[0]
	message := fmt.Sprintf("Great news! %s at %s is a %.0f%% fit for you. Check your email for details.",
		best.ProgramName, best.University, best.Score*100)

	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.PhoneNumber),
		Message:     aws.String(message),
	})
	return err
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
