package services

import (
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

// ResetMailer is the slice of the email service the password reset flow
// needs; it exists so the reset controller can be tested without Resend.
type ResetMailer interface {
	SendPasswordResetEmail(toEmail string, resetLink string) error
}

type EmailService struct {
	client *resend.Client
}

var emailService *EmailService

// InitEmailService initializes the email service with Resend API
func InitEmailService() {
	apiKey := os.Getenv("RESEND_API_KEY")

	if apiKey == "" {
		log.Println("WARNING: RESEND_API_KEY not set. Email service will not be available.")
		return
	}

	emailService = &EmailService{
		client: resend.NewClient(apiKey),
	}

	log.Println("Email service initialized successfully with Resend")
}

// GetEmailService returns the singleton email service instance
func GetEmailService() *EmailService {
	return emailService
}

const emailStyle = `
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #d64541;
        }
        .header h1 {
            color: #d64541;
            margin: 0;
        }
        .content {
            padding: 30px 0;
        }
        .button {
            display: inline-block;
            background-color: #d64541;
            color: #ffffff;
            padding: 14px 28px;
            border-radius: 6px;
            text-decoration: none;
            font-weight: bold;
        }
        .warning {
            background-color: #fff3cd;
            border: 1px solid #ffc107;
            border-radius: 4px;
            padding: 15px;
            margin: 20px 0;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
`

// SendPasswordResetEmail sends a password reset email with a reset link.
// The link is only valid for 5 minutes.
func (s *EmailService) SendPasswordResetEmail(toEmail string, resetLink string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>%s</style>
</head>
<body>
    <div class="header">
        <h1>Defendu</h1>
    </div>

    <div class="content">
        <h2>Password Reset Request</h2>

        <p>We received a request to reset your Defendu password. Click the button below to choose a new one:</p>

        <p style="text-align: center; margin: 30px 0;">
            <a class="button" href="%s">Reset Password</a>
        </p>

        <p><strong>This link will expire in 5 minutes.</strong></p>

        <div class="warning">
            <p><strong>Security Notice:</strong></p>
            <p>If you didn't request a password reset, please ignore this email. Your password will remain unchanged.</p>
        </div>

        <p>Stay strong,<br>The Defendu Team</p>
    </div>

    <div class="footer">
        <p>&copy; 2025 Defendu. All rights reserved.</p>
        <p>This is an automated message, please do not reply directly to this email.</p>
    </div>
</body>
</html>
`, emailStyle, resetLink)

	textBody := fmt.Sprintf(`
Password Reset Request

We received a request to reset your Defendu password. Open the link below to choose a new one:

%s

This link will expire in 5 minutes.

Security Notice:
If you didn't request a password reset, please ignore this email. Your password will remain unchanged.

Stay strong,
The Defendu Team
`, resetLink)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: "Reset Your Defendu Password",
		Html:    htmlBody,
		Text:    textBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send password reset email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent password reset email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(toEmail string, firstName string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>%s</style>
</head>
<body>
    <div class="header">
        <h1>Welcome to Defendu</h1>
    </div>

    <div class="content">
        <h2>Welcome, %s!</h2>

        <p>Thank you for joining Defendu. Your training starts now.</p>

        <p>With Defendu, you can:</p>
        <ul>
            <li>Follow training modules built by certified trainers</li>
            <li>Track your progress through every session</li>
            <li>Apply to become a trainer and publish your own modules</li>
        </ul>

        <p>Stay strong,<br>The Defendu Team</p>
    </div>

    <div class="footer">
        <p>&copy; 2025 Defendu. All rights reserved.</p>
    </div>
</body>
</html>
`, emailStyle, firstName)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: "Welcome to Defendu!",
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send welcome email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent welcome email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}

// SendTrainerApplicationDecisionEmail notifies an applicant of the review outcome
func (s *EmailService) SendTrainerApplicationDecisionEmail(toEmail string, firstName string, approved bool, reviewNotes string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	decision := "rejected"
	heading := "Application Update"
	body := "Unfortunately, your trainer application was not approved at this time. You are welcome to apply again once you have addressed the feedback below."
	if approved {
		decision = "approved"
		heading = "You're a Defendu Trainer!"
		body = "Congratulations! Your trainer application has been approved. You can now create training modules and submit them for publication."
	}

	notesSection := ""
	if reviewNotes != "" {
		notesSection = fmt.Sprintf("<p><strong>Reviewer notes:</strong> %s</p>", reviewNotes)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>%s</style>
</head>
<body>
    <div class="header">
        <h1>Defendu</h1>
    </div>

    <div class="content">
        <h2>%s</h2>

        <p>Hi %s,</p>

        <p>%s</p>

        %s

        <p>Stay strong,<br>The Defendu Team</p>
    </div>

    <div class="footer">
        <p>&copy; 2025 Defendu. All rights reserved.</p>
    </div>
</body>
</html>
`, emailStyle, heading, firstName, body, notesSection)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Your trainer application was %s", decision),
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send application decision email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent application decision email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}

// SendModuleReviewEmail notifies a trainer that their module was published or rejected
func (s *EmailService) SendModuleReviewEmail(toEmail string, firstName string, moduleTitle string, published bool, feedback string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("email service not initialized")
	}

	outcome := "was not approved"
	body := "A reviewer looked at your module and it needs some changes before it can be published. You can edit it and submit it again."
	if published {
		outcome = "is now live"
		body = "Great news! Your module passed review and is now available to every Defendu member."
	}

	feedbackSection := ""
	if feedback != "" {
		feedbackSection = fmt.Sprintf("<p><strong>Reviewer feedback:</strong> %s</p>", feedback)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>%s</style>
</head>
<body>
    <div class="header">
        <h1>Defendu</h1>
    </div>

    <div class="content">
        <h2>Module Review Complete</h2>

        <p>Hi %s,</p>

        <p>Your training module <strong>"%s"</strong> %s.</p>

        <p>%s</p>

        %s

        <p>Stay strong,<br>The Defendu Team</p>
    </div>

    <div class="footer">
        <p>&copy; 2025 Defendu. All rights reserved.</p>
    </div>
</body>
</html>
`, emailStyle, firstName, moduleTitle, outcome, body, feedbackSection)

	params := &resend.SendEmailRequest{
		From:    os.Getenv("RESEND_FROM_EMAIL"),
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Review complete: \"%s\"", moduleTitle),
		Html:    htmlBody,
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		log.Printf("Failed to send module review email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("Successfully sent module review email to %s. Email ID: %s", toEmail, sent.Id)
	return nil
}
