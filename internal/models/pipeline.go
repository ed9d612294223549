// internal/models/pipeline.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PipelineState tracks one orchestration run through its steps.
type PipelineState string

const (
	StateStarted             PipelineState = "STARTED"
	StateKycRunning          PipelineState = "KYC_RUNNING"
	StateKycFailed           PipelineState = "KYC_FAILED"
	StateKycPassed           PipelineState = "KYC_PASSED"
	StateUnderwritingRunning PipelineState = "UNDERWRITING_RUNNING"
	StateUnderwritingDone    PipelineState = "UNDERWRITING_DONE"
	StateRenderingRunning    PipelineState = "RENDERING_RUNNING"
	StateRendered            PipelineState = "RENDERED"
	StateRenderFailed        PipelineState = "RENDER_FAILED"
	StateComplete            PipelineState = "COMPLETE"
	StateError               PipelineState = "ERROR"
)

// DocumentHandle references a rendered sanction letter.
type DocumentHandle struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

// OrchestrationResult is the terminal artifact of one pipeline run. Never
// mutated after construction.
type OrchestrationResult struct {
	RunID      string     `json:"run_id"`
	CustomerID string     `json:"customer_id"`
	Kyc        *KycResult `json:"kyc"`
	// Decision is nil when KYC short-circuited; ShortCircuit then carries the
	// REFER marker with its reason.
	Decision     *UnderwritingDecision `json:"decision,omitempty"`
	ShortCircuit *ShortCircuitDecision `json:"short_circuit,omitempty"`
	Document     *DocumentHandle       `json:"document,omitempty"`
	State        PipelineState         `json:"state"`
}

// ShortCircuitDecision marks a run that never reached underwriting. KYC
// failure deliberately lands on REFER, never REJECT: "cannot evaluate" is a
// human-review outcome, not a decline.
type ShortCircuitDecision struct {
	Decision Decision `json:"decision"`
	Reasons  []string `json:"reasons"`
}

// FinalDecision returns the decision visible to callers regardless of how
// the run terminated.
func (r *OrchestrationResult) FinalDecision() Decision {
	if r.Decision != nil {
		return r.Decision.Decision
	}
	if r.ShortCircuit != nil {
		return r.ShortCircuit.Decision
	}
	return ""
}

// AuditRecord is one append-only audit row: what happened, to whom, when.
type AuditRecord struct {
	Timestamp  time.Time `json:"ts"`
	CustomerID string    `json:"customer_id"`
	Action     string    `json:"action"`
	Data       string    `json:"data"`
}

// MetricsRecord mirrors one underwriting outcome for dashboards.
type MetricsRecord struct {
	Timestamp    time.Time       `json:"ts"`
	CustomerID   string          `json:"customer_id"`
	Decision     Decision        `json:"decision"`
	EMI          decimal.Decimal `json:"emi"`
	DTI          string          `json:"dti"` // empty when unknown
	CreditScore  int             `json:"credit_score"`
	LoanAmount   decimal.Decimal `json:"loan_amount"`
	TenureMonths int             `json:"tenure_months"`
}

// NewMetricsRecord flattens an UnderwritingDecision into its metrics row.
func NewMetricsRecord(d *UnderwritingDecision) MetricsRecord {
	rec := MetricsRecord{
		Timestamp:    time.Now().UTC(),
		CustomerID:   d.CustomerID,
		Decision:     d.Decision,
		EMI:          d.EMI,
		CreditScore:  d.CreditScore,
		LoanAmount:   d.LoanRequest.LoanAmount,
		TenureMonths: d.LoanRequest.TenureMonths,
	}
	if d.DTIKnown {
		rec.DTI = d.DTI.String()
	}
	return rec
}
