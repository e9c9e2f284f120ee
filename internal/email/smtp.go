// Package email delivers transactional mail over SMTP.
package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// SMTPMailer sends store emails through an SMTP relay.
type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

// NewSMTPMailer creates an SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendDownloadLink emails the purchaser their download link after payment.
func (m *SMTPMailer) SendDownloadLink(to, templateName, downloadURL string, expiresAt time.Time) error {
	subject := fmt.Sprintf("Your download link for %s", templateName)
	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thanks for your purchase!</h2>
			<p>Your copy of <strong>%s</strong> is ready. Download it here:</p>
			<p><a href="%s">Download template</a></p>
			<p>Or copy and paste this URL into your browser:</p>
			<p>%s</p>
			<p>This link expires on %s. If it has expired, reply to this
			email and we will issue a new one.</p>
		</body>
		</html>
	`, templateName, downloadURL, downloadURL, expiresAt.Format("2 Jan 2006 15:04 MST"))

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send download link to %s: %w", to, err)
	}
	return nil
}
