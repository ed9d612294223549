// internal/steps/render-letter/handler_test.go
package renderletter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

func approvedDecision() *models.UnderwritingDecision {
	return &models.UnderwritingDecision{
		CustomerID: "CUST001",
		LoanRequest: models.LoanRequest{
			CustomerID:   "CUST001",
			LoanAmount:   decimal.NewFromInt(400000),
			TenureMonths: 36,
		},
		EMI:         decimal.RequireFromString("13285.72"),
		DTI:         decimal.RequireFromString("0.305"),
		DTIKnown:    true,
		CreditScore: 720,
		Decision:    models.DecisionApprove,
		Reasons:     []string{"Good credit score and acceptable DTI"},
	}
}

func TestExecute_WritesLetter(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(&Config{OutputDir: dir, BaseURL: "/pdf"}, logger.NewNop())
	h.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	out, err := h.Execute(context.Background(), &Input{
		Decision: approvedDecision(),
		Profile: &models.CustomerProfile{
			CustomerID: "CUST001",
			Name:       "Asha Verma",
			Phone:      "9876543210",
			Email:      "asha@example.com",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "sanction_CUST001_20250314T093000Z.pdf", out.Document.Filename)
	assert.Equal(t, "/pdf/sanction_CUST001_20250314T093000Z.pdf", out.Document.URL)
	assert.NotEmpty(t, out.Document.ID)

	data, err := os.ReadFile(filepath.Join(dir, out.Document.Filename))
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExecute_MissingCustomerIDStillRenders(t *testing.T) {
	dir := t.TempDir()
	h := NewHandler(&Config{OutputDir: dir, BaseURL: "/pdf"}, logger.NewNop())

	dec := approvedDecision()
	dec.CustomerID = ""

	out, err := h.Execute(context.Background(), &Input{Decision: dec})
	require.NoError(t, err)
	assert.Contains(t, out.Document.Filename, "sanction_UNKNOWN_")
}

func TestExecute_NilDecision(t *testing.T) {
	h := NewHandler(&Config{OutputDir: t.TempDir()}, logger.NewNop())

	_, err := h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}

func TestExecute_UnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	// output dir path collides with an existing file, MkdirAll must fail
	h := NewHandler(&Config{OutputDir: blocked, BaseURL: "/pdf"}, logger.NewNop())

	_, err := h.Execute(context.Background(), &Input{Decision: approvedDecision()})
	assert.Error(t, err)
}
