package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"nutriquest/internal/models"
)

// EmailSender is the part of the SES client the email service uses
type EmailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends session summaries to parents via Amazon SES
type EmailService struct {
	client     EmailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. An empty fromEmail gives a
// disabled service that skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return NewEmailServiceWithClient(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

// NewEmailServiceWithClient creates an enabled email service on top of an
// existing client
func NewEmailServiceWithClient(client EmailSender, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendSessionSummary tells a parent how a finished session went
func (s *EmailService) SendSessionSummary(ctx context.Context, contact models.PlayerContact, reflection models.Reflection) error {
	if !s.enabled {
		if s.debug {
			log.Printf("[DEBUG] Skipping session summary to %s (service disabled)", contact.ParentEmail)
		}
		return nil
	}

	res := reflection.Result
	name := contact.DisplayName
	if name == "" {
		name = "Your child"
	}
	title := gameTitle(res.GameID)
	historyLink := fmt.Sprintf("%s/results", s.appBaseURL)

	subject := fmt.Sprintf("%s finished %s", name, title)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #3aa55d; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
			<p>%s just played <strong>%s</strong>.</p>
			<ul>
				<li>Score: %d</li>
				<li>Correct: %d of %d (%d%%)</li>
				<li>Best streak: %d</li>
			</ul>
			<p>%s</p>
			<p><a href="%s">See all results</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from NutriQuest. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(reflection.Headline), html.EscapeString(name), html.EscapeString(title),
		res.Score, res.CorrectAnswers, res.TotalQuestions, reflection.Accuracy, res.Streak,
		html.EscapeString(reflection.Message), historyLink)

	textBody := fmt.Sprintf(`%s

%s just played %s.

Score: %d
Correct: %d of %d (%d%%)
Best streak: %d

%s

See all results: %s

---
This is an automated email from NutriQuest. Please do not reply.
`, reflection.Headline, name, title, res.Score, res.CorrectAnswers, res.TotalQuestions,
		reflection.Accuracy, res.Streak, reflection.Message, historyLink)

	return s.sendEmail(ctx, contact.ParentEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: from=%s to=%s subject=%s", fromAddress, toEmail, subject)
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

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
