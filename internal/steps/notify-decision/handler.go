// internal/steps/notify-decision/handler.go
package notifydecision

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

const (
	StepName = "notify-decision"
)

// SESService and SNSService exist so tests can substitute fakes for the AWS
// clients.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	if config == nil {
		config = DefaultConfig()
	}

	h := &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"step": StepName}),
	}

	// Only touch AWS credentials when a channel is actually enabled.
	if config.EmailEnabled || config.SMSEnabled {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(config.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		h.sesClient = ses.NewFromConfig(awsCfg)
		h.snsClient = sns.NewFromConfig(awsCfg)
	}

	return h, nil
}

// NewHandlerWithClients wires explicit service clients. Used in tests.
func NewHandlerWithClients(config *Config, log logger.Logger, sesClient SESService, snsClient SNSService) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"step": StepName}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

// Execute delivers the decision over enabled channels. It never returns an
// error for delivery failures; notification is best-effort and the status
// field says what happened.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Decision == nil {
		return nil, fmt.Errorf("notify input requires an underwriting decision")
	}

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	var email, phone string
	if input.Profile != nil {
		email = strings.TrimSpace(input.Profile.Email)
		phone = strings.TrimSpace(input.Profile.Phone)
	}

	subject, body := h.composeMessage(input)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && email != "" {
		if err := h.sendEmail(ctx, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error":      err,
				"customerId": input.Decision.CustomerID,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		emailSent = true
	}

	if h.config.SMSEnabled && phone != "" {
		if err := h.sendSMS(ctx, phone, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error":      err,
				"customerId": input.Decision.CustomerID,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		smsSent = true
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) composeMessage(input *Input) (string, string) {
	dec := input.Decision

	subject := fmt.Sprintf("Loan application update for %s", dec.CustomerID)

	var b strings.Builder
	switch dec.Decision {
	case models.DecisionApprove:
		fmt.Fprintf(&b, "Your loan application has been approved. EMI: %s per month for %d months.",
			dec.EMI.StringFixed(2), dec.LoanRequest.TenureMonths)
		if input.Document != nil {
			fmt.Fprintf(&b, " Your sanction letter is available at %s.", input.Document.URL)
		}
	case models.DecisionRefer:
		b.WriteString("Your loan application needs manual review. Our team will contact you.")
	default:
		b.WriteString("Your loan application could not be approved at this time.")
	}
	if len(dec.Reasons) > 0 {
		b.WriteString(" Notes: " + strings.Join(dec.Reasons, "; "))
	}

	return subject, b.String()
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
