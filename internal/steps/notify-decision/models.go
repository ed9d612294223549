// internal/steps/notify-decision/models.go
package notifydecision

import "loan-orchestrator/internal/models"

const (
	StatusSent     = "SENT"
	StatusFailed   = "FAILED"
	StatusDisabled = "DISABLED"
)

type Input struct {
	Decision *models.UnderwritingDecision `json:"decision"`
	Profile  *models.CustomerProfile      `json:"profile"`
	Document *models.DocumentHandle       `json:"document,omitempty"`
}

type Output struct {
	NotificationID string `json:"notification_id"`
	Status         string `json:"status"`
	SentAt         string `json:"sent_at"`
}
