package communication

import (
	"context"

	"loan-workers/internal/common/aws"
)

// EmailSender delivers a notification over email.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (messageID string, err error)
}

// SMSSender delivers a notification over SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (messageID string, err error)
}

type sesSender struct {
	client *aws.SESClient
	from   string
}

// NewSESSender adapts an SES client to the EmailSender interface.
func NewSESSender(client *aws.SESClient, from string) EmailSender {
	return &sesSender{client: client, from: from}
}

func (s *sesSender) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	return s.client.SendTextEmail(ctx, s.from, to, subject, body)
}

type snsSender struct {
	client   *aws.SNSClient
	senderID string
}

// NewSNSSender adapts an SNS client to the SMSSender interface.
func NewSNSSender(client *aws.SNSClient, senderID string) SMSSender {
	return &snsSender{client: client, senderID: senderID}
}

func (s *snsSender) SendSMS(ctx context.Context, phone, message string) (string, error) {
	return s.client.PublishSMS(ctx, phone, message, s.senderID)
}
