// internal/models/customer.go
package models

// CustomerProfile is the read-only CRM snapshot fetched per run. Numeric
// fields stay string-typed at the edge because the backing stores (CSV most
// of all) carry free-form cells; parsing happens in the credit helpers.
type CustomerProfile struct {
	CustomerID       string `json:"customer_id"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	IncomeMonthly    string `json:"income_monthly"`
	CreditScore      string `json:"credit_score,omitempty"`
	PAN              string `json:"pan,omitempty"`
	Aadhaar          string `json:"aadhaar,omitempty"`
	PreApprovedLimit string `json:"pre_approved_limit,omitempty"`
}
