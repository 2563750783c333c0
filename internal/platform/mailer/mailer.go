// Package mailer delivers transactional email. Delivery is a collaborator
// concern: verification tokens are also returned by the API, so send
// failures never fail the originating operation.
package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/harborcrest/pms/pkg/logger"
)

type Service interface {
	SendVerification(toEmail, toName, token string) error
	SendPreCheckinLink(toEmail, toName, bookingNumber, token string) error
}

type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromEmail string) *MailerSend {
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: "Harborcrest", Email: fromEmail},
	}
}

func (m *MailerSend) SendVerification(toEmail, toName, token string) error {
	subject := "Verify your Harborcrest account"
	text := fmt.Sprintf("Your verification token is %s. It expires in 24 hours.", token)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your verification token is <b>%s</b>. It expires in 24 hours.</p>", toName, token)
	return m.send(toEmail, toName, subject, text, html)
}

func (m *MailerSend) SendPreCheckinLink(toEmail, toName, bookingNumber, token string) error {
	subject := fmt.Sprintf("Pre-check-in for booking %s", bookingNumber)
	text := fmt.Sprintf("Use this token to complete pre-check-in: %s. It expires in 48 hours.", token)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Use token <b>%s</b> to complete pre-check-in for booking %s.</p>", toName, token, bookingNumber)
	return m.send(toEmail, toName, subject, text, html)
}

func (m *MailerSend) send(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Dev prints emails to the log instead of sending.
type Dev struct{}

func (Dev) SendVerification(toEmail, toName, token string) error {
	logger.Info("dev mail: verification", "to", toEmail, "token", token)
	return nil
}

func (Dev) SendPreCheckinLink(toEmail, toName, bookingNumber, token string) error {
	logger.Info("dev mail: pre-checkin", "to", toEmail, "booking", bookingNumber, "token", token)
	return nil
}

// New picks an implementation from config values. An SMTP host wins in
// dev mode (Mailpit), then MailerSend, then log-only.
func New(apiKey, fromEmail, smtpHost string, smtpPort int, devMode bool) Service {
	if devMode && smtpHost != "" {
		return NewSMTP(smtpHost, smtpPort, fromEmail)
	}
	if devMode || apiKey == "" {
		return Dev{}
	}
	return NewMailerSend(apiKey, fromEmail)
}
