// Package mail delivers outbound application mail over SMTP. The reset flow
// fires mail without awaiting delivery, so failures here are logged by the
// caller, never surfaced to clients.
package mail

import (
	"bytes"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"

	"github.com/user/entreflow-go/config"
)

// Mailer sends a single HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer implements Mailer with a gomail dialer.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
}

// NewSMTPMailer creates a Mailer from SMTP configuration.
func NewSMTPMailer(cfg *config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
	}
}

// Send dials the SMTP server and delivers one message.
func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

var resetCodeTemplate = template.Must(template.New("resetCode").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Get Code</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 20px; text-align: center;">
    <div style="max-width: 500px; background-color: #ffffff; padding: 20px; border-radius: 10px; box-shadow: 0px 0px 10px rgba(0, 0, 0, 0.1); margin: auto;">
        <h2 style="color: #333;">Get Code</h2>
        <p style="color: #555;">We received a request to get code for your account.</p>
        <p style="font-size: 16px; font-weight: bold; color: #ff5733;">Your reset code:
            <span style="background-color: #f8d7da; padding: 5px 10px; border-radius: 5px;">{{.Code}}</span>
        </p>
        <p style="color: #555; margin-top: 20px;">Do not share this email with anyone.</p>
        <p style="font-size: 14px; color: #777;">If you did not request this password reset, you can ignore this email.</p>
        <hr style="margin: 20px 0; border: none; border-top: 1px solid #ddd;">
        <p style="font-size: 12px; color: #777;">&copy; 2025 EntreFlow. All Rights Reserved.</p>
    </div>
</body>
</html>`))

// ResetCodeBody renders the HTML body for a password-reset code message.
func ResetCodeBody(code int) (string, error) {
	var buf bytes.Buffer
	if err := resetCodeTemplate.Execute(&buf, struct{ Code int }{Code: code}); err != nil {
		return "", fmt.Errorf("failed to render reset code mail: %w", err)
	}
	return buf.String(), nil
}

// ResetCodeSubject is the subject line for reset-code mail.
const ResetCodeSubject = "Get Your Code"
