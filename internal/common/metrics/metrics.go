// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of matching requests by outcome",
		},
		[]string{"outcome"},
	)

	MatchRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "match_request_duration_seconds",
			Help: "Duration of one matching pipeline invocation in seconds",
		},
		[]string{"outcome"},
	)

	ProgramsEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programs_evaluated_total",
			Help: "Total number of program eligibility evaluations",
		},
		[]string{"verdict"},
	)

	ProgramsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programs_excluded_total",
			Help: "Total number of programs excluded from a batch",
		},
		[]string{"reason"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)
)
