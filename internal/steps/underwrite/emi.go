// internal/steps/underwrite/emi.go
package underwrite

import (
	"errors"

	"github.com/shopspring/decimal"

	"loan-orchestrator/internal/models"
)

// ErrInvalidTerms rejects non-positive principal or tenure before any
// arithmetic runs.
var ErrInvalidTerms = errors.New("loan terms must be positive")

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// ComputeEMI returns the unrounded monthly installment for the standard
// amortization formula. A zero rate degrades to straight-line principal/n.
func ComputeEMI(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if principal.LessThanOrEqual(decimal.Zero) || tenureMonths <= 0 {
		return decimal.Zero, ErrInvalidTerms
	}

	n := decimal.NewFromInt(int64(tenureMonths))
	r := annualRatePercent.Div(twelve).Div(hundred)
	if r.IsZero() {
		return principal.Div(n), nil
	}

	pow := one.Add(r).Pow(n)
	numerator := principal.Mul(r).Mul(pow)
	denominator := pow.Sub(one)
	return numerator.Div(denominator), nil
}

// RoundMoney applies the decisioning rounding policy, two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundQuote applies the conversational rounding policy, whole currency units.
func RoundQuote(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// EMIOptions quotes whole-unit installments for each tenure choice. Tenures
// that fail validation are skipped rather than aborting the quote.
func EMIOptions(principal, annualRatePercent decimal.Decimal, tenures []int) []EMIOption {
	options := make([]EMIOption, 0, len(tenures))
	for _, months := range tenures {
		emi, err := ComputeEMI(principal, annualRatePercent, months)
		if err != nil {
			continue
		}
		options = append(options, EMIOption{
			TenureMonths: months,
			EMI:          RoundQuote(emi),
		})
	}
	return options
}

// ComputeDTI returns the debt-to-income ratio at three decimal places. The
// second return is false when income is unknown or non-positive; an unknown
// ratio must never be read as zero downstream.
func ComputeDTI(existingMonthlyDebt, emi, incomeMonthly decimal.Decimal) (decimal.Decimal, bool) {
	if incomeMonthly.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, false
	}
	return existingMonthlyDebt.Add(emi).Div(incomeMonthly).Round(3), true
}

var (
	approveDTICeiling = decimal.NewFromFloat(0.50)
	referDTICeiling   = decimal.NewFromFloat(0.65)
	lowScoreDTILimit  = decimal.NewFromFloat(0.60)
)

// Decide maps a credit score and debt-to-income ratio onto a tri-state
// decision with ordered human-readable reasons. The reasons list is never
// empty.
func Decide(creditScore int, dti decimal.Decimal, dtiKnown bool) (models.Decision, []string) {
	var reasons []string
	decision := models.DecisionReject

	switch {
	case creditScore >= 700 && dtiKnown && dti.LessThanOrEqual(approveDTICeiling):
		decision = models.DecisionApprove
		reasons = append(reasons, "Good credit score and acceptable DTI")
	case (creditScore >= 650 && dtiKnown && dti.LessThanOrEqual(referDTICeiling)) ||
		(creditScore >= 600 && dtiKnown && dti.LessThanOrEqual(lowScoreDTILimit)):
		decision = models.DecisionRefer
		if creditScore < 700 {
			reasons = append(reasons, "Credit score below ideal threshold")
		}
		if dtiKnown && dti.GreaterThan(approveDTICeiling) {
			reasons = append(reasons, "DTI slightly high — manual review")
		}
	default:
		if creditScore < 600 {
			reasons = append(reasons, "Low credit score")
		}
		if !dtiKnown {
			reasons = append(reasons, "Missing or zero income")
		} else if dti.GreaterThan(referDTICeiling) {
			reasons = append(reasons, "High DTI")
		}
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "No specific reasons (default)")
	}
	return decision, reasons
}
