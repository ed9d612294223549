// internal/steps/underwrite/models.go
package underwrite

import (
	"github.com/shopspring/decimal"

	"loan-orchestrator/internal/models"
)

type Input struct {
	Request *models.LoanRequest     `json:"request"`
	Profile *models.CustomerProfile `json:"profile"`
}

type Output struct {
	Decision *models.UnderwritingDecision `json:"decision"`
}

// EMIOption is one tenure choice quoted during a conversation. The installment
// is rounded to a whole currency unit for display.
type EMIOption struct {
	TenureMonths int             `json:"tenure_months"`
	EMI          decimal.Decimal `json:"emi"`
}
