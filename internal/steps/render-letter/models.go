// internal/steps/render-letter/models.go
package renderletter

import "loan-orchestrator/internal/models"

type Input struct {
	Decision *models.UnderwritingDecision `json:"decision"`
	Profile  *models.CustomerProfile      `json:"profile"`
}

type Output struct {
	Document models.DocumentHandle `json:"document"`
}
