package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"preschoolfees/internal/logger"
)

// sesClient is the part of the SES API the email service uses
type sesClient interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client    sesClient
	limiter   *RateLimiter
	fromEmail string
	fromName  string
	enabled   bool
}

// NewEmailService creates a new email service sending at most sendRate
// messages per second. An empty fromEmail gives a disabled service that logs
// and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, sendRate int) (*EmailService, error) {
	if fromEmail == "" {
		logger.Warn().Msg("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info().Str("from", fromEmail).Str("region", awsRegion).Msg("email service enabled")
	svc := newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName)
	svc.limiter = NewRateLimiter(sendRate, time.Second)
	return svc, nil
}

func newEmailService(client sesClient, fromEmail, fromName string) *EmailService {
	return &EmailService{
		client:    client,
		limiter:   NewRateLimiter(1000, time.Second),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendFeeStatement mails a family's fee report to every address on the family.
// It returns the number of messages sent.
func (s *EmailService) SendFeeStatement(ctx context.Context, report FamilyFeeReport, on time.Time) (int, error) {
	if len(report.Emails) == 0 {
		logger.Warn().Int64("family_id", report.FamilyID).Msg("no email address, statement not sent")
		return 0, nil
	}
	if !s.enabled {
		logger.Info().Int64("family_id", report.FamilyID).Msg("skipping fee statement (email service disabled)")
		return 0, nil
	}

	subject, htmlBody, textBody := renderStatement(report, on)
	sent := 0
	for _, to := range report.Emails {
		if err := s.sendEmail(ctx, to, subject, htmlBody, textBody); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

var swedish = message.NewPrinter(language.Swedish)

const freeWeekNote = " (15 timmar avgiftsfritt)"

func formatKronor(amount float64, decimals int) string {
	if decimals == 0 {
		return swedish.Sprintf("%.0f kr", amount)
	}
	return swedish.Sprintf("%.2f kr", amount)
}

func renderStatement(report FamilyFeeReport, on time.Time) (subject, htmlBody, textBody string) {
	period := on.Format("2006-01")
	subject = fmt.Sprintf("Förskoleavgift %s", period)

	var text strings.Builder
	fmt.Fprintf(&text, "Hej %s,\n\n", report.Name)
	fmt.Fprintf(&text, "Avgiften för %s är %s.\n\n", period, formatKronor(report.TotalFee, 0))
	for _, line := range report.Kids {
		fmt.Fprintf(&text, "- %s: %s", line.Name, formatKronor(line.Fee, 2))
		if line.FreeWeek {
			text.WriteString(freeWeekNote)
		}
		text.WriteString("\n")
	}
	fmt.Fprintf(&text, "\nBeräknad på inkomst %s per månad.\n", formatKronor(float64(report.RelevantIncome), 0))

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Hej %s,</p>\n", html.EscapeString(report.Name))
	fmt.Fprintf(&body, "<p>Avgiften för %s är <strong>%s</strong>.</p>\n<ul>\n", period, formatKronor(report.TotalFee, 0))
	for _, line := range report.Kids {
		fmt.Fprintf(&body, "<li>%s: %s", html.EscapeString(line.Name), formatKronor(line.Fee, 2))
		if line.FreeWeek {
			body.WriteString(freeWeekNote)
		}
		body.WriteString("</li>\n")
	}
	fmt.Fprintf(&body, "</ul>\n<p>Beräknad på inkomst %s per månad.</p>\n", formatKronor(float64(report.RelevantIncome), 0))

	return subject, body.String(), text.String()
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	event := logger.Info().Str("to", toEmail).Str("subject", subject)
	if result != nil && result.MessageId != nil {
		event = event.Str("message_id", *result.MessageId)
	}
	event.Msg("email sent")
	return nil
}
