package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/courseforge/backend/internal/config"
)

// Mailer sends transactional email over SMTP. Sends are fire-and-forget:
// delivery failure is logged and never fails the triggering request.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	appURL string
	logger *zap.Logger
}

// New creates a mailer from SMTP configuration
func New(cfg config.SMTPConfig, appURL string, logger *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		appURL: appURL,
		logger: logger,
	}
}

func (m *Mailer) send(to, subject, body string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	go func() {
		if err := m.dialer.DialAndSend(msg); err != nil {
			m.logger.Error("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

// SendVerification sends the email-verification link
func (m *Mailer) SendVerification(to, token string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.appURL, token)
	body := `<h1>Welcome to Courseforge!</h1>
		<p>Please verify your email address by clicking the link below:</p>
		<a href="` + link + `">Verify Email</a>`

	m.send(to, "Verify your email", body)
}

// SendPasswordReset sends the password-reset link
func (m *Mailer) SendPasswordReset(to, token string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token)
	body := `<h1>Password Reset Request</h1>
		<p>You requested a password reset. Click the link below to set a new password:</p>
		<a href="` + link + `">Reset Password</a>
		<p>If you did not request this, please ignore this email.</p>`

	m.send(to, "Reset your password", body)
}

// SendWelcome sends the post-registration welcome mail
func (m *Mailer) SendWelcome(to, firstName string) {
	body := `<h1>Hi ` + firstName + `!</h1>
		<p>Your Courseforge account is ready. Browse courses and start learning.</p>`

	m.send(to, "Welcome to Courseforge", body)
}
