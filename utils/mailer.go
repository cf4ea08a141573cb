package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESSender is the part of the SES client the mailer uses.
type SESSender interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Mailer sends plain-text mail from one verified address.
type Mailer struct {
	ses  SESSender
	from string
}

func NewMailer(client SESSender, from string) *Mailer {
	return &Mailer{ses: client, from: from}
}

// generic SES sender
func (m *Mailer) Send(ctx context.Context, to []string, subject, body string) error {
	if m.from == "" {
		return errors.New("SES_EMAIL not set")
	}
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(body),
					Charset: aws.String("UTF-8"),
				},
			},
		},
		Source: aws.String(m.from),
	}

	if _, err := m.ses.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	return nil
}
