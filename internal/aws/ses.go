package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/wildhaven/parkops-backend/internal/config"
)

// SESService delivers OTP codes and notification emails.
type SESService struct {
	client *ses.Client
	sender string
}

func NewSESService(ctx context.Context, cfg config.AWSConfig) (*SESService, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// override endpoint if provided (for localstack)
	client := ses.NewFromConfig(awsCfg, func(o *ses.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	})

	return &SESService{
		client: client,
		sender: cfg.FromEmail,
	}, nil
}

func (s *SESService) SendEmail(ctx context.Context, to string, subject string, body string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(body),
				},
			},
			Subject: &types.Content{
				Data: aws.String(subject),
			},
		},
		Source: aws.String(s.sender),
	}

	_, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendHTMLEmail carries both HTML and plain-text parts.
func (s *SESService) SendHTMLEmail(ctx context.Context, to string, subject string, htmlBody string, textBody string) error {
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
			Subject: &types.Content{
				Data: aws.String(subject),
			},
		},
		Source: aws.String(s.sender),
	}

	_, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// VerifyEmailIdentity registers the sender address. Needed once for
// localstack and sandboxed SES accounts.
func (s *SESService) VerifyEmailIdentity(ctx context.Context) error {
	_, err := s.client.VerifyEmailIdentity(ctx, &ses.VerifyEmailIdentityInput{
		EmailAddress: aws.String(s.sender),
	})
	if err != nil {
		return fmt.Errorf("failed to verify email identity: %w", err)
	}
	return nil
}

func (s *SESService) Client() *ses.Client {
	return s.client
}

func (s *SESService) Sender() string {
	return s.sender
}
