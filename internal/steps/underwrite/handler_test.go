// internal/steps/underwrite/handler_test.go
package underwrite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

func TestExecute_ApprovesStrongApplicant(t *testing.T) {
	h := NewHandler(nil, logger.NewNop())

	out, err := h.Execute(context.Background(), &Input{
		Request: &models.LoanRequest{
			CustomerID:          "CUST001",
			LoanAmount:          d("400000"),
			TenureMonths:        36,
			ExistingMonthlyDebt: d("5000"),
		},
		Profile: &models.CustomerProfile{
			CustomerID:    "CUST001",
			Name:          "Asha Verma",
			IncomeMonthly: "60000",
			CreditScore:   "720",
		},
	})
	require.NoError(t, err)

	dec := out.Decision
	assert.Equal(t, "13285.72", dec.EMI.StringFixed(2))
	assert.True(t, dec.DTIKnown)
	assert.Equal(t, "0.305", dec.DTI.StringFixed(3))
	assert.Equal(t, 720, dec.CreditScore)
	assert.Equal(t, models.DecisionApprove, dec.Decision)
	assert.Equal(t, []string{"Good credit score and acceptable DTI"}, dec.Reasons)
}

func TestExecute_UnknownIncomeRejects(t *testing.T) {
	h := NewHandler(nil, logger.NewNop())

	out, err := h.Execute(context.Background(), &Input{
		Request: &models.LoanRequest{
			CustomerID:   "CUST002",
			LoanAmount:   d("400000"),
			TenureMonths: 36,
		},
		Profile: &models.CustomerProfile{
			CustomerID:  "CUST002",
			Name:        "Ravi Kumar",
			CreditScore: "750",
		},
	})
	require.NoError(t, err)

	dec := out.Decision
	assert.False(t, dec.DTIKnown)
	assert.Equal(t, models.DecisionReject, dec.Decision)
	assert.Contains(t, dec.Reasons, "Missing or zero income")
}

func TestExecute_DerivesScoreWhenUnrecorded(t *testing.T) {
	h := NewHandler(nil, logger.NewNop())

	// income 15000 derives 15 * 40 = 600, inside the refer band
	out, err := h.Execute(context.Background(), &Input{
		Request: &models.LoanRequest{
			CustomerID:   "CUST003",
			LoanAmount:   d("100000"),
			TenureMonths: 36,
		},
		Profile: &models.CustomerProfile{
			CustomerID:    "CUST003",
			Name:          "Meena Iyer",
			IncomeMonthly: "15000",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 600, out.Decision.CreditScore)
}

func TestExecute_InvalidRequestRejected(t *testing.T) {
	h := NewHandler(nil, logger.NewNop())

	_, err := h.Execute(context.Background(), &Input{
		Request: &models.LoanRequest{
			CustomerID:   "CUST001",
			LoanAmount:   d("-100"),
			TenureMonths: 36,
		},
		Profile: &models.CustomerProfile{CustomerID: "CUST001"},
	})
	require.Error(t, err)

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExecute_MissingInputs(t *testing.T) {
	h := NewHandler(nil, logger.NewNop())

	_, err := h.Execute(context.Background(), &Input{Profile: &models.CustomerProfile{}})
	assert.Error(t, err)

	_, err = h.Execute(context.Background(), &Input{Request: &models.LoanRequest{}})
	assert.Error(t, err)
}
