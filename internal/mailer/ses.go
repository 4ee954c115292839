package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// SESMailer sends emails through AWS SES using the SDK v2.
type SESMailer struct {
	client *sesv2.Client
	logger *slog.Logger
}

// SESConfig holds the credentials and region for the SES client
type SESConfig struct {
	AccessKey string
	SecretKey string
	Region    string
}

// NewSESMailer creates an SES mailer. Static credentials are optional; the
// default AWS credential chain is used when they are absent.
func NewSESMailer(cfg SESConfig, logger *slog.Logger) (*SESMailer, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client: sesv2.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

// Send delivers a single email through SES. Attachment references are
// appended to the body as download links: SES simple content carries no
// file parts, and the stored artifacts are plain URLs anyway.
func (m *SESMailer) Send(ctx context.Context, msg *Message) error {
	from := msg.FromEmail
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)
	}

	html := msg.HTML
	if len(msg.Attachments) > 0 {
		html += attachmentFooter(msg.Attachments)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(html), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	if msg.CampaignID != "" {
		input.EmailTags = append(input.EmailTags, types.MessageTag{
			Name:  aws.String("campaign_id"),
			Value: aws.String(msg.CampaignID),
		})
	}
	if msg.DeliveryID != "" {
		input.EmailTags = append(input.EmailTags, types.MessageTag{
			Name:  aws.String("delivery_id"),
			Value: aws.String(msg.DeliveryID),
		})
	}

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}

	m.logger.Debug("email sent via SES",
		slog.String("to", msg.To),
		slog.String("message_id", messageID),
	)

	return nil
}

// attachmentFooter renders attachment references as a download-link block
func attachmentFooter(attachments []models.Attachment) string {
	var b strings.Builder
	b.WriteString(`<div style="margin-top:16px">`)
	for _, att := range attachments {
		name := att.Name
		if name == "" {
			name = att.URL
		}
		fmt.Fprintf(&b, `<p><a href="%s">%s</a></p>`, att.URL, name)
	}
	b.WriteString(`</div>`)
	return b.String()
}
