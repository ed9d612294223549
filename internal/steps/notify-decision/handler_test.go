// internal/steps/notify-decision/handler_test.go
package notifydecision

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-orchestrator/internal/common/logger"
	"loan-orchestrator/internal/models"
)

type fakeSES struct {
	calls int
	err   error
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSNS struct {
	calls int
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func notifyInput() *Input {
	return &Input{
		Decision: &models.UnderwritingDecision{
			CustomerID: "CUST001",
			LoanRequest: models.LoanRequest{
				CustomerID:   "CUST001",
				TenureMonths: 36,
			},
			EMI:      decimal.RequireFromString("13285.72"),
			Decision: models.DecisionApprove,
			Reasons:  []string{"Good credit score and acceptable DTI"},
		},
		Profile: &models.CustomerProfile{
			CustomerID: "CUST001",
			Email:      "asha@example.com",
			Phone:      "9876543210",
		},
	}
}

func TestExecute_DisabledByDefault(t *testing.T) {
	sesFake := &fakeSES{}
	snsFake := &fakeSNS{}
	h := NewHandlerWithClients(DefaultConfig(), logger.NewNop(), sesFake, snsFake)

	out, err := h.Execute(context.Background(), notifyInput())
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, out.Status)
	assert.Zero(t, sesFake.calls)
	assert.Zero(t, snsFake.calls)
}

func TestExecute_EmailSent(t *testing.T) {
	sesFake := &fakeSES{}
	cfg := &Config{EmailEnabled: true, FromEmail: "loans@example.com"}
	h := NewHandlerWithClients(cfg, logger.NewNop(), sesFake, &fakeSNS{})

	out, err := h.Execute(context.Background(), notifyInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, 1, sesFake.calls)
	require.NotNil(t, sesFake.input)
	assert.Equal(t, []string{"asha@example.com"}, sesFake.input.Destination.ToAddresses)
}

func TestExecute_EmailFailureIsReportedNotRaised(t *testing.T) {
	sesFake := &fakeSES{err: errors.New("ses unavailable")}
	cfg := &Config{EmailEnabled: true, FromEmail: "loans@example.com"}
	h := NewHandlerWithClients(cfg, logger.NewNop(), sesFake, &fakeSNS{})

	out, err := h.Execute(context.Background(), notifyInput())
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, out.Status)
}

func TestExecute_SMSOnly(t *testing.T) {
	snsFake := &fakeSNS{}
	cfg := &Config{SMSEnabled: true}
	h := NewHandlerWithClients(cfg, logger.NewNop(), &fakeSES{}, snsFake)

	out, err := h.Execute(context.Background(), notifyInput())
	require.NoError(t, err)

	assert.Equal(t, StatusSent, out.Status)
	assert.Equal(t, 1, snsFake.calls)
}

func TestExecute_NoContactDetails(t *testing.T) {
	cfg := &Config{EmailEnabled: true, SMSEnabled: true}
	sesFake := &fakeSES{}
	h := NewHandlerWithClients(cfg, logger.NewNop(), sesFake, &fakeSNS{})

	input := notifyInput()
	input.Profile = &models.CustomerProfile{CustomerID: "CUST001"}

	out, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, StatusDisabled, out.Status)
	assert.Zero(t, sesFake.calls)
}

func TestExecute_NilDecision(t *testing.T) {
	h := NewHandlerWithClients(nil, logger.NewNop(), &fakeSES{}, &fakeSNS{})

	_, err := h.Execute(context.Background(), &Input{})
	assert.Error(t, err)
}
