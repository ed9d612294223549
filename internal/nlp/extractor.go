// internal/nlp/extractor.go
// Package nlp pulls loan fields out of free-form chat text. Everything here
// is best-effort with no invariants of its own; ambiguous or missing fields
// stay unset and the caller decides what to ask next.
package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PartialLoanRequest carries whatever the extractor could recognize. Nil
// pointer fields mean "not found in the text".
type PartialLoanRequest struct {
	CustomerID          string
	Amount              *decimal.Decimal
	TenureMonths        *int
	IncomeMonthly       *decimal.Decimal
	ExistingMonthlyDebt *decimal.Decimal
	Purpose             string
	Hesitation          bool
}

var (
	lakhPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:lakh|lakhs|lac|lacs|l)\b`)
	groupedPattern = regexp.MustCompile(`\d{1,3}(?:[ ]?\d{2,3}){1,3}`)
	kPattern       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*k\b`)
	barePattern    = regexp.MustCompile(`\b(\d{4,})\b`)
	yearsPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:year|years|yr|yrs)\b`)
	monthsPattern  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:month|months|mo|mos)\b`)
	incomePattern  = regexp.MustCompile(`(?:income|salary|earn)\D{0,15}(\d+)`)
	debtPattern    = regexp.MustCompile(`(?:debt|obligation|existing emi)\D{0,15}(\d+)`)
	custIDPattern  = regexp.MustCompile(`\b(cust[a-z]*\d+)\b`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

var hesitationPhrases = []string{
	"too high", "too expensive", "expensive", "can't afford", "cant afford", "costly",
}

var purposeKeywords = []string{
	"wedding", "marriage", "medical", "education", "business", "home", "car", "travel",
}

// ExtractLoanFields scans the message for an amount, tenure, purpose and
// related figures. Amount recognition tries Indian formats in order: "4 lakh",
// grouped digits ("4,00,000"), "50k", then any bare number of four or more
// digits.
func ExtractLoanFields(text string) PartialLoanRequest {
	var out PartialLoanRequest

	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.ReplaceAll(s, "₹", " ")
	s = strings.ReplaceAll(s, ",", " ")
	s = spacePattern.ReplaceAllString(s, " ")

	for _, phrase := range hesitationPhrases {
		if strings.Contains(s, phrase) {
			out.Hesitation = true
			break
		}
	}

	out.Amount = extractAmount(s)
	out.TenureMonths = extractTenure(s)

	if m := incomePattern.FindStringSubmatch(s); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			out.IncomeMonthly = &v
		}
	}
	if m := debtPattern.FindStringSubmatch(s); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			out.ExistingMonthlyDebt = &v
		}
	}
	if m := custIDPattern.FindStringSubmatch(s); m != nil {
		out.CustomerID = strings.ToUpper(m[1])
	}

	for _, word := range purposeKeywords {
		if strings.Contains(s, word) {
			out.Purpose = word
			break
		}
	}

	return out
}

func extractAmount(s string) *decimal.Decimal {
	if m := lakhPattern.FindStringSubmatch(s); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			amount := v.Mul(decimal.NewFromInt(100000))
			return &amount
		}
	}

	if m := groupedPattern.FindString(s); m != "" {
		cleaned := strings.ReplaceAll(m, " ", "")
		if v, err := decimal.NewFromString(cleaned); err == nil {
			return &v
		}
	}

	if m := kPattern.FindStringSubmatch(s); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			amount := v.Mul(decimal.NewFromInt(1000))
			return &amount
		}
	}

	if m := barePattern.FindStringSubmatch(s); m != nil {
		if v, err := decimal.NewFromString(m[1]); err == nil {
			return &v
		}
	}

	return nil
}

func extractTenure(s string) *int {
	if m := yearsPattern.FindStringSubmatch(s); m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			months := int(years * 12)
			return &months
		}
	}
	if m := monthsPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			months := int(v)
			return &months
		}
	}
	return nil
}
