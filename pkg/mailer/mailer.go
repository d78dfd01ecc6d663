package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"
)

// Mailer defines the interface for sending transactional email
type Mailer interface {
	// SendPasswordReset sends the password-reset link to the user's
	// registered address. The raw token is embedded in the URL and is
	// never persisted by the caller.
	SendPasswordReset(to, resetURL string) error

	// GetName returns the name of the mailer implementation
	GetName() string
}

// SMTPMailer sends mail through a plain SMTP relay
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// SMTPConfig holds configuration for the SMTP mailer
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     config.Host,
		port:     config.Port,
		username: config.Username,
		password: config.Password,
		from:     config.From,
	}
}

// GetName returns the mailer name
func (m *SMTPMailer) GetName() string {
	return "smtp"
}

// SendPasswordReset sends the password-reset email
func (m *SMTPMailer) SendPasswordReset(to, resetURL string) error {
	subject := "Password Reset Request"
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>You have requested a password reset for your CampusCruz account.</p>
<p>Please click the link below to reset your password:</p>
<a href="%s">%s</a>
<p>This link will expire in 10 minutes.</p>
<p>If you did not request this, please ignore this email.</p>`, resetURL, resetURL)

	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

// LogMailer logs mail instead of sending it. Used in development mode so the
// reset flow can be exercised without an SMTP relay.
type LogMailer struct {
	logger *logrus.Logger
}

// NewLogMailer creates a mailer that only logs
func NewLogMailer(logger *logrus.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// GetName returns the mailer name
func (m *LogMailer) GetName() string {
	return "log"
}

// SendPasswordReset logs the reset URL instead of emailing it
func (m *LogMailer) SendPasswordReset(to, resetURL string) error {
	m.logger.WithFields(logrus.Fields{
		"to":        to,
		"reset_url": resetURL,
	}).Info("Password reset email (development mode, not sent)")
	return nil
}
