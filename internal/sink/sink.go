// internal/sink/sink.go
// Package sink holds the append-only audit and metrics trails. Appends are
// best-effort at every call site: a sink failure is logged and counted but
// never aborts a pipeline run.
package sink

import (
	"context"
	"strings"

	"loan-orchestrator/internal/models"
)

// AuditSink records what happened to whom. ReadRecent returns newest-first,
// optionally filtered by action tag.
type AuditSink interface {
	Append(ctx context.Context, rec models.AuditRecord) error
	ReadRecent(ctx context.Context, limit int, action string) ([]models.AuditRecord, error)
}

// MetricsSink mirrors underwriting outcomes for dashboards.
type MetricsSink interface {
	Append(ctx context.Context, rec models.MetricsRecord) error
	ReadRecent(ctx context.Context, limit int) ([]models.MetricsRecord, error)
}

// AuditSummary aggregates rows by action tag and by the decision embedded in
// the tag (apply_approve, orchestrate_kyc_fail, ...).
type AuditSummary struct {
	ByAction       map[string]int `json:"summary_by_action"`
	DecisionCounts map[string]int `json:"decision_counts"`
}

// SummarizeAudit computes counts over a full row set.
func SummarizeAudit(rows []models.AuditRecord) AuditSummary {
	summary := AuditSummary{
		ByAction:       make(map[string]int),
		DecisionCounts: map[string]int{"APPROVE": 0, "REFER": 0, "REJECT": 0},
	}
	for _, r := range rows {
		summary.ByAction[r.Action]++
		action := strings.ToLower(r.Action)
		switch {
		case strings.Contains(action, "approve"):
			summary.DecisionCounts["APPROVE"]++
		case strings.Contains(action, "refer"):
			summary.DecisionCounts["REFER"]++
		case strings.Contains(action, "reject"):
			summary.DecisionCounts["REJECT"]++
		}
	}
	return summary
}

// SummarizeDecisions counts metrics rows per decision.
func SummarizeDecisions(rows []models.MetricsRecord) map[string]int {
	summary := make(map[string]int)
	for _, r := range rows {
		d := string(r.Decision)
		if d == "" {
			d = "UNKNOWN"
		}
		summary[d]++
	}
	return summary
}
