// internal/models/loan.go
package models

import (
	"github.com/shopspring/decimal"
)

// Decision is the tri-state outcome of underwriting.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionRefer   Decision = "REFER"
	DecisionReject  Decision = "REJECT"
)

// LoanRequest is one application attempt. Immutable once validated.
type LoanRequest struct {
	CustomerID          string          `json:"customer_id"`
	LoanAmount          decimal.Decimal `json:"loan_amount"`
	TenureMonths        int             `json:"tenure_months"`
	ExistingMonthlyDebt decimal.Decimal `json:"existing_monthly_debt"`
}

// ValidationError describes why a LoanRequest was rejected at the boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Validate enforces the input contract: customer id present, amount and
// tenure strictly positive, existing debt non-negative. Invalid values are a
// rejected request, never a crashed pipeline.
func (r *LoanRequest) Validate() error {
	if r.CustomerID == "" {
		return &ValidationError{Field: "customer_id", Message: "missing customer_id in payload"}
	}
	if !r.LoanAmount.IsPositive() {
		return &ValidationError{Field: "loan_amount", Message: "loan_amount must be > 0"}
	}
	if r.TenureMonths <= 0 {
		return &ValidationError{Field: "tenure_months", Message: "tenure_months must be > 0"}
	}
	if r.ExistingMonthlyDebt.IsNegative() {
		return &ValidationError{Field: "existing_monthly_debt", Message: "existing_monthly_debt must be >= 0"}
	}
	return nil
}

// UnderwritingDecision is the product of the decision engine for one request.
// Immutable; consumed by the renderer and the audit/metrics sinks.
type UnderwritingDecision struct {
	CustomerID  string          `json:"customer_id"`
	LoanRequest LoanRequest     `json:"loan_request"`
	EMI         decimal.Decimal `json:"emi"`
	// DTI is meaningful only when DTIKnown is true. An unknown DTI is never
	// zero: missing income is a reject-leaning signal, not a free pass.
	DTI         decimal.Decimal `json:"dti"`
	DTIKnown    bool            `json:"dti_known"`
	CreditScore int             `json:"credit_score"`
	Decision    Decision        `json:"decision"`
	Reasons     []string        `json:"reasons"`
}
