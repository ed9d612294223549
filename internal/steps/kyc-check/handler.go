// internal/steps/kyc-check/handler.go
package kyccheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

const (
	StepName = "kyc-check"
)

var (
	panPattern = regexp.MustCompile(`^[A-Za-z]{5}[0-9]{4}[A-Za-z]$`)
	nonDigit   = regexp.MustCompile(`\D`)
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

// Execute runs identity checks against the customer profile. Absent optional
// documents (PAN, Aadhaar) are not flagged; present but malformed ones are.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.Profile == nil {
		return nil, fmt.Errorf("kyc input requires a profile")
	}
	p := input.Profile

	var missing []string
	var issues []string

	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}

	phone := strings.TrimSpace(p.Phone)
	if phone == "" {
		missing = append(missing, "phone")
	} else if len(nonDigit.ReplaceAllString(phone, "")) != h.config.PhoneDigits {
		issues = append(issues, "phone format invalid")
	}

	if pan := strings.TrimSpace(p.PAN); pan != "" && !panPattern.MatchString(pan) {
		issues = append(issues, "pan format suspicious")
	}

	if aadhaar := strings.TrimSpace(p.Aadhaar); aadhaar != "" {
		digits := nonDigit.ReplaceAllString(aadhaar, "")
		if len(digits) != h.config.AadhaarDigits || digits != aadhaar {
			issues = append(issues, "aadhaar format suspicious")
		}
	}

	status := models.KycPass
	if len(missing) > 0 || len(issues) > 0 {
		status = models.KycFail
	}

	result := models.KycResult{
		Status:        status,
		MissingFields: missing,
		Issues:        issues,
	}

	h.logger.Info("kyc check completed", map[string]interface{}{
		"customerId": p.CustomerID,
		"status":     string(status),
		"missing":    missing,
		"issues":     issues,
	})

	return &Output{Result: result}, nil
}
