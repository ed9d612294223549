// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// loanRequestSchema guards the orchestrate/apply payload shape before any
// decoding. Business-rule checks (positive amounts etc.) stay in
// LoanRequest.Validate; this only rejects structurally broken JSON.
const loanRequestSchema = `{
	"type": "object",
	"properties": {
		"customer_id": {"type": "string", "minLength": 1},
		"loan_amount": {"type": "number"},
		"tenure_months": {"type": "integer"},
		"existing_monthly_debt": {"type": "number"}
	},
	"required": ["customer_id", "loan_amount", "tenure_months"],
	"additionalProperties": true
}`

var loanRequestLoader = gojsonschema.NewStringLoader(loanRequestSchema)

// ValidateLoanRequestJSON checks a raw request body against the schema and
// returns a single flattened message listing every violation.
func ValidateLoanRequestJSON(body []byte) error {
	result, err := gojsonschema.Validate(loanRequestLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("invalid payload: %s", strings.Join(msgs, "; "))
}
