// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of orchestration runs by terminal outcome",
		},
		[]string{"outcome"},
	)

	PipelineStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_step_duration_seconds",
			Help: "Duration of each pipeline step in seconds",
		},
		[]string{"step"},
	)

	Decisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_decisions_total",
			Help: "Total number of underwriting decisions by outcome",
		},
		[]string{"decision"},
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sink_append_failures_total",
			Help: "Total number of swallowed audit/metrics sink failures",
		},
		[]string{"sink"},
	)

	DocumentsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanction_letters_total",
			Help: "Total number of sanction letter render attempts",
		},
		[]string{"status"},
	)
)
