// Package metrics exposes the Prometheus instrumentation for the workflow
// pipeline and the external collaborator calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StepCompletions counts completed workflow steps by step name.
	StepCompletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmatch_workflow_step_completions_total",
		Help: "Number of workflow steps completed, by step.",
	}, []string{"step"})

	// CollaboratorDuration observes the wall time of external AI calls.
	CollaboratorDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobmatch_collaborator_duration_seconds",
		Help:    "Duration of external collaborator calls.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"collaborator"})

	// CollaboratorFailures counts failed external AI calls by kind.
	CollaboratorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobmatch_collaborator_failures_total",
		Help: "Number of failed external collaborator calls, by collaborator and failure kind.",
	}, []string{"collaborator", "kind"})

	// GenerationsSaved counts persisted generations.
	GenerationsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobmatch_generations_saved_total",
		Help: "Number of generations persisted.",
	})
)

// ObserveCollaborator records one collaborator call outcome.
func ObserveCollaborator(name string, start time.Time, failureKind string) {
	CollaboratorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if failureKind != "" {
		CollaboratorFailures.WithLabelValues(name, failureKind).Inc()
	}
}
