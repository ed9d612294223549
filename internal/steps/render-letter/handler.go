// internal/steps/render-letter/handler.go
package renderletter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

const (
	StepName = "render-letter"

	filenameTimeLayout = "20060102T150405Z"
)

type Handler struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"step": StepName}),
		now:    time.Now,
	}
}

// Execute renders an A4 sanction letter for an approved decision and returns
// a handle the caller can serve back to the customer.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Decision == nil {
		return nil, fmt.Errorf("render input requires an underwriting decision")
	}
	dec := input.Decision

	customerID := dec.CustomerID
	if customerID == "" {
		customerID = "UNKNOWN"
	}

	now := h.now().UTC()
	filename := fmt.Sprintf("sanction_%s_%s.pdf", customerID, now.Format(filenameTimeLayout))

	if err := os.MkdirAll(h.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(h.config.OutputDir, filename)

	if err := h.writePDF(path, dec, input.Profile, now); err != nil {
		return nil, fmt.Errorf("pdf generation failed: %w", err)
	}

	h.logger.Info("sanction letter rendered", map[string]interface{}{
		"customerId": customerID,
		"filename":   filename,
	})

	return &Output{
		Document: models.DocumentHandle{
			ID:       uuid.New().String(),
			Filename: filename,
			URL:      h.config.BaseURL + "/" + filename,
		},
	}, nil
}

func (h *Handler) writePDF(path string, dec *models.UnderwritingDecision, profile *models.CustomerProfile, issuedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 12, "Sanction Letter", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 8, "Issue Date (UTC): "+issuedAt.Format(time.RFC3339), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	var name, phone, email string
	if profile != nil {
		name = profile.Name
		phone = profile.Phone
		email = profile.Email
	}

	lines := []string{
		"Customer ID: " + dec.CustomerID,
		"Name: " + name,
		"Phone: " + phone,
		"Email: " + email,
		"",
		"Loan Details:",
		"  - Loan Amount: " + dec.LoanRequest.LoanAmount.String(),
		fmt.Sprintf("  - Tenure (months): %d", dec.LoanRequest.TenureMonths),
		"  - EMI: " + dec.EMI.StringFixed(2),
		"  - Decision: " + string(dec.Decision),
		"",
		"Notes:",
	}
	for _, reason := range dec.Reasons {
		lines = append(lines, "  - "+reason)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range lines {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.CellFormat(0, 5, "Authorized Signatory", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "________________________", "", 1, "L", false, 0, "")

	return pdf.OutputFileAndClose(path)
}
