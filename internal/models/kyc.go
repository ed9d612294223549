// internal/models/kyc.go
package models

// KycStatus is the binary outcome of a KYC run.
type KycStatus string

const (
	KycPass KycStatus = "PASS"
	KycFail KycStatus = "FAIL"
)

// KycResult is derived fresh from a profile snapshot on every run. It has no
// independent lifecycle and is never cached as authoritative state.
type KycResult struct {
	Status        KycStatus `json:"status"`
	MissingFields []string  `json:"missing"`
	Issues        []string  `json:"issues"`
}

// Failed reports whether any check flagged the profile.
func (k *KycResult) Failed() bool {
	return k.Status == KycFail
}
