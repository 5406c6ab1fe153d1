package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
)

// OTPMailer delivers one-time signup codes. Delivery is an external
// collaborator; the auth service only depends on this interface.
type OTPMailer interface {
	SendOTP(ctx context.Context, email, name, otp string) error
}

// SMTPMailer sends OTP mails through a plain SMTP relay.
type SMTPMailer struct {
	addr string // host:port
	host string
	user string
	pass string
	from string
}

// NewSMTPMailer creates a mailer for the given relay. user and pass may be
// empty for an unauthenticated relay.
func NewSMTPMailer(host, port, user, pass, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: host + ":" + port,
		host: host,
		user: user,
		pass: pass,
		from: from,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, email, name, otp string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\nHi %s,\r\n\r\nYour verification code is %s. It expires in 10 minutes.\r\n",
		m.from, email, name, otp)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{email}, []byte(msg)); err != nil {
		return fmt.Errorf("send otp mail: %w", err)
	}
	return nil
}

// LogMailer logs codes instead of sending mail. Used in development when no
// SMTP relay is configured.
type LogMailer struct{}

func (LogMailer) SendOTP(ctx context.Context, email, name, otp string) error {
	slog.Info("otp mail (log mailer)", "email", email, "otp", otp)
	return nil
}
