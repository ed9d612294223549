// internal/steps/underwrite/handler.go
package underwrite

import (
	"context"
	"fmt"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/crm"
	"loan-orchestrator/internal/models"
)

const (
	StepName = "underwrite"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"step": StepName}),
	}
}

// Execute computes EMI and DTI from the request and profile, then maps both
// onto a decision. The EMI carried on the decision uses the two-decimal
// policy; conversational quoting rounds separately via EMIOptions.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Request == nil {
		return nil, fmt.Errorf("underwriting input requires a loan request")
	}
	if input.Profile == nil {
		return nil, fmt.Errorf("underwriting input requires a customer profile")
	}
	req := input.Request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rawEMI, err := ComputeEMI(req.LoanAmount, h.config.AnnualRatePercent, req.TenureMonths)
	if err != nil {
		return nil, fmt.Errorf("emi calculation failed: %w", err)
	}
	emi := RoundMoney(rawEMI)

	income, incomeKnown := crm.IncomeMonthly(input.Profile)
	score := crm.CreditScore(input.Profile)

	dti, dtiKnown := ComputeDTI(req.ExistingMonthlyDebt, emi, income)
	if !incomeKnown {
		dtiKnown = false
	}

	decision, reasons := Decide(score, dti, dtiKnown)

	h.logger.Info("underwriting decision computed", map[string]interface{}{
		"customerId":  req.CustomerID,
		"emi":         emi.String(),
		"dtiKnown":    dtiKnown,
		"creditScore": score,
		"decision":    string(decision),
	})

	return &Output{
		Decision: &models.UnderwritingDecision{
			CustomerID:  req.CustomerID,
			LoanRequest: *req,
			EMI:         emi,
			DTI:         dti,
			DTIKnown:    dtiKnown,
			CreditScore: score,
			Decision:    decision,
			Reasons:     reasons,
		},
	}, nil
}
