package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer delivers messages through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

// NewSMTPMailer builds a mailer for host:port. Auth is enabled only when a
// username is configured, so local dev relays work without credentials.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{addr: host + ":" + port, auth: auth, from: from}
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, to, name, link string) error {
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nWelcome! Please verify your email address by opening the link below:\r\n\r\n%s\r\n\r\nThe link expires in 24 hours. If you did not sign up, ignore this message.\r\n",
		name, link)
	return m.send(to, "Verify your email address", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, to, link string) error {
	body := fmt.Sprintf(
		"Hi,\r\n\r\nWe received a request to reset your password. Open the link below to choose a new one:\r\n\r\n%s\r\n\r\nThe link expires in 60 minutes. If you did not request this, ignore this message.\r\n",
		link)
	return m.send(to, "Reset your password", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := sendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
