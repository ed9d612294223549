// internal/steps/kyc-check/models.go
package kyccheck

import "loan-orchestrator/internal/models"

type Input struct {
	Profile *models.CustomerProfile `json:"profile"`
}

type Output struct {
	Result models.KycResult `json:"kyc"`
}
