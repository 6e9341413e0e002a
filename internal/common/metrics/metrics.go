// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WizardStepTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_step_transitions_total",
			Help: "Total number of wizard navigation attempts",
		},
		[]string{"action", "outcome"},
	)

	WizardValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wizard_validation_failures_total",
			Help: "Total number of blocked step validations",
		},
		[]string{"step"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_submissions_total",
			Help: "Total number of application submissions",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "application_submission_duration_seconds",
			Help:    "Duration of the multipart submission call in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	DraftStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draft_store_errors_total",
			Help: "Total number of failed draft store operations",
		},
		[]string{"operation", "key"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wizard_sessions_active",
			Help: "Number of open wizard sessions",
		},
	)
)
