package mailer

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTP delivers through a plain SMTP relay. No auth, no TLS; meant for
// Mailpit on 1025 during local development.
type SMTP struct {
	Host string
	Port int
	From string
}

func NewSMTP(host string, port int, from string) *SMTP {
	return &SMTP{
		Host: strings.TrimSpace(host),
		Port: port,
		From: strings.TrimSpace(from),
	}
}

func (s *SMTP) SendVerification(toEmail, toName, token string) error {
	subject := "Verify your Harborcrest account"
	text := fmt.Sprintf("Your verification token is %s. It expires in 24 hours.", token)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Your verification token is <b>%s</b>. It expires in 24 hours.</p>", toName, token)
	return s.send(toEmail, subject, text, html)
}

func (s *SMTP) SendPreCheckinLink(toEmail, toName, bookingNumber, token string) error {
	subject := fmt.Sprintf("Pre-check-in for booking %s", bookingNumber)
	text := fmt.Sprintf("Use this token to complete pre-check-in: %s. It expires in 48 hours.", token)
	html := fmt.Sprintf("<p>Hi %s,</p><p>Use token <b>%s</b> to complete pre-check-in for booking %s.</p>", toName, token, bookingNumber)
	return s.send(toEmail, subject, text, html)
}

func (s *SMTP) send(toEmail, subject, text, html string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	var buf bytes.Buffer
	boundary := "mixed-boundary"
	fmt.Fprintf(&buf, "From: %s\r\n", s.From)
	fmt.Fprintf(&buf, "To: %s\r\n", toEmail)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", text)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", html)

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	return smtp.SendMail(addr, nil, s.From, []string{toEmail}, buf.Bytes())
}
