// Package mail delivers account emails: OTP verification codes and
// enforcement notices. Delivery goes through SMTP when configured; otherwise
// a log-only sender is used so local development needs no mail server.
package mail

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"incognichat/internal/pkg/logx"
)

// Mailer sends account emails. Implementations must be safe for concurrent
// use.
type Mailer interface {
	// SendOTP delivers a verification code to a newly registered user.
	SendOTP(to, code string) error
	// SendAccountAction notifies a user about an enforcement action on
	// their account, such as a block or deletion.
	SendAccountAction(to, subject, body string) error
}

// SMTPMailer sends mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a mailer for the given relay. Username and password
// may be empty for relays that accept unauthenticated submission.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) SendOTP(to, code string) error {
	body := fmt.Sprintf(
		"Your IncogniChat verification code is: %s\r\n\r\n"+
			"The code expires in 10 minutes. If you did not register, ignore this email.\r\n",
		code,
	)
	return m.send(to, "IncogniChat verification code", body)
}

func (m *SMTPMailer) SendAccountAction(to, subject, body string) error {
	return m.send(to, subject, body+"\r\n")
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer writes mail to the application log instead of sending it. It is
// the fallback when SMTP is not configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer() *LogMailer {
	return &LogMailer{
		logger: logx.Logger().With().Str("component", "Mail").Logger(),
	}
}

func (m *LogMailer) SendOTP(to, code string) error {
	m.logger.Info().
		Str("to", to).
		Str("code", code).
		Msg("SMTP not configured, logging OTP instead of sending.")
	return nil
}

func (m *LogMailer) SendAccountAction(to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("SMTP not configured, logging account notice instead of sending.")
	return nil
}
