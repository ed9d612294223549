// internal/crm/credit.go
package crm

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"loan-orchestrator/internal/models"
)

const (
	creditScoreFloor    = 300
	creditScoreCeiling  = 900
	creditScoreFallback = 650
	assumedIncome       = 30000
)

// SafeFloat parses free-form numeric cells (commas, whitespace) with a
// default. CSV-backed profiles carry whatever the operator typed in.
func SafeFloat(raw string, def float64) float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return def
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	return v
}

// SafeInt parses like SafeFloat and truncates.
func SafeInt(raw string, def int) int {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return def
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return def
	}
	return int(v)
}

// CreditScore resolves a profile's score. A recorded score wins; otherwise
// the demo derives one from income, clamped to the 300-900 bureau range.
// An empty income cell assumes a baseline income; a non-empty cell that
// fails to parse falls back to 650 instead of deriving anything.
func CreditScore(p *models.CustomerProfile) int {
	if strings.TrimSpace(p.CreditScore) != "" {
		return SafeInt(p.CreditScore, creditScoreFallback)
	}

	income := float64(assumedIncome)
	if cleaned := strings.TrimSpace(strings.ReplaceAll(p.IncomeMonthly, ",", "")); cleaned != "" {
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return creditScoreFallback
		}
		income = v
	}
	if income <= 0 {
		return creditScoreFallback
	}

	derived := int(income / 1000 * 40)
	if derived < creditScoreFloor {
		return creditScoreFloor
	}
	if derived > creditScoreCeiling {
		return creditScoreCeiling
	}
	return derived
}

// IncomeMonthly parses the profile income. ok is false when income is
// missing or non-positive; the decision engine must see that as unknown,
// never as zero.
func IncomeMonthly(p *models.CustomerProfile) (decimal.Decimal, bool) {
	income := SafeFloat(p.IncomeMonthly, 0)
	if income <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(income), true
}
