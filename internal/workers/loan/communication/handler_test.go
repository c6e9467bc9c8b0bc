package communication

import (
	"context"
	"errors"
	"testing"

	"loan-workers/internal/common/logger"
	"loan-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailSender struct {
	to      []string
	subject string
	body    string
	err     error
}

func (f *fakeEmailSender) SendEmail(_ context.Context, to, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to = append(f.to, to)
	f.subject = subject
	f.body = body
	return "msg-email-1", nil
}

type fakeSMSSender struct {
	phones  []string
	message string
	err     error
}

func (f *fakeSMSSender) SendSMS(_ context.Context, phone, message string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.phones = append(f.phones, phone)
	f.message = message
	return "msg-sms-1", nil
}

func createTestInput() *Input {
	return &Input{
		ApplicationID: "LN-test-0001",
		CustomerName:  "Asha Verma",
		Email:         "asha.verma@example.com",
		Contact:       "+919876543210",
		Decision: models.Decision{
			Outcome:   models.DecisionApproved,
			Rationale: "All stages passed.",
		},
		OfferSummary: &OfferSummary{
			ApprovedAmount: 4_000_000,
			InterestRate:   8.5,
			TenureMonths:   240,
			EMI:            34_713,
			ValidUntil:     "2025-07-01",
		},
	}
}

func TestExecute_DeliversApprovalOnBothChannels(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	h := NewHandler(LoadConfig(), email, sms, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 2, output.Delivered)
	require.Len(t, output.Notifications, 2)
	assert.Equal(t, "SENT", output.Notifications[0].Status)
	assert.Equal(t, "SENT", output.Notifications[1].Status)

	assert.Contains(t, email.subject, "approved")
	assert.Contains(t, email.body, "Congratulations")
	assert.Contains(t, email.body, "8.50%")
	assert.Contains(t, email.body, "2025-07-01")
	assert.Contains(t, sms.message, "approved")
}

func TestExecute_ComposesRejectionNotice(t *testing.T) {
	input := createTestInput()
	input.Decision = models.Decision{
		Outcome:   models.DecisionDeclined,
		Rationale: "Combined score below the referral floor.",
	}
	input.OfferSummary = nil

	email := &fakeEmailSender{}
	h := NewHandler(LoadConfig(), email, &fakeSMSSender{}, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Contains(t, email.body, "could not be approved")
	assert.Contains(t, email.body, input.Decision.Rationale)
}

func TestExecute_ComposesReferralNotice(t *testing.T) {
	input := createTestInput()
	input.Decision.Outcome = models.DecisionReferred
	input.OfferSummary = nil

	email := &fakeEmailSender{}
	h := NewHandler(LoadConfig(), email, nil, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, 1, output.Delivered)
	assert.Contains(t, email.body, "manual review")
}

func TestExecute_RecordsPartialFailure(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("ses throttled")}
	sms := &fakeSMSSender{}
	h := NewHandler(LoadConfig(), email, sms, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), createTestInput())

	require.NoError(t, err)
	assert.Equal(t, 1, output.Delivered)
	assert.Equal(t, "FAILED", output.Notifications[0].Status)
	assert.Contains(t, output.Notifications[0].Error, "ses throttled")
	assert.Equal(t, "SENT", output.Notifications[1].Status)
}

func TestExecute_FailsWhenNoChannelDelivers(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("ses down")}
	sms := &fakeSMSSender{err: errors.New("sns down")}
	h := NewHandler(LoadConfig(), email, sms, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), createTestInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTIFICATION_SEND_FAILED")
}

func TestExecute_SkipsMissingContactDetails(t *testing.T) {
	input := createTestInput()
	input.Email = ""
	input.Contact = ""

	h := NewHandler(LoadConfig(), &fakeEmailSender{}, &fakeSMSSender{}, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Empty(t, output.Notifications)
	assert.Zero(t, output.Delivered)
}
