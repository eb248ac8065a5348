// Package mailer provides domain.Mailer implementations.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
)

// SMTP sends verification emails through a plain SMTP relay.
type SMTP struct {
	addr    string // host:port
	from    string
	auth    smtp.Auth
	baseURL string // public base URL used to build verification links
}

// NewSMTP creates an SMTP mailer. username may be empty for relays that do
// not require authentication.
func NewSMTP(addr, username, password, from, baseURL string) *SMTP {
	var auth smtp.Auth
	if username != "" {
		host := addr
		if i := strings.LastIndex(addr, ":"); i >= 0 {
			host = addr[:i]
		}
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTP{
		addr:    addr,
		from:    from,
		auth:    auth,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SendVerificationEmail emails a verification link containing the token.
func (m *SMTP) SendVerificationEmail(ctx context.Context, email, token string) error {
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", m.baseURL, url.QueryEscape(token))

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", email)
	b.WriteString("Subject: Verify your email address\r\n")
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString("Welcome! Please confirm your email address by opening the link below.\r\n\r\n")
	b.WriteString(link + "\r\n\r\n")
	b.WriteString("The link expires in 24 hours. After verification your account still\r\n")
	b.WriteString("needs to be approved by an administrator before you can sign in.\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{email}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
