package hrauth

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
)

// SMTPMailer delivers reset codes over implicit-TLS SMTP (port 465 style).
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a Mailer over a TLS SMTP endpoint.
func NewSMTPMailer(host, port, username, password, from string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// SendResetCode sends the one-time code. The ctx bounds the dial; SMTP
// itself has no partial results, the message is either accepted or not.
func (m *SMTPMailer) SendResetCode(ctx context.Context, toEmail, code string) error {
	body := fmt.Sprintf(
		"Your password reset code is %s. It expires in a few minutes. "+
			"If you did not request a reset, you can ignore this message.",
		code,
	)

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.from) +
			fmt.Sprintf("To: %s\r\n", toEmail) +
			"Subject: Password reset code\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
			"\r\n" +
			body,
	)

	serverAddr := m.host + ":" + m.port

	dialer := &tls.Dialer{Config: &tls.Config{ServerName: m.host}}
	rawConn, err := dialer.DialContext(ctx, "tcp", serverAddr)
	if err != nil {
		return err
	}
	defer rawConn.Close()

	client, err := smtp.NewClient(rawConn, m.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(toEmail); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}

	return w.Close()
}

// LogMailer writes codes to the log instead of the wire. Used when SMTP is
// not configured, e.g. local development.
type LogMailer struct {
	logger Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer builds a Mailer that only logs.
func NewLogMailer(logger Logger) *LogMailer {
	if logger == nil {
		logger = defLogger{}
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendResetCode(_ context.Context, toEmail, code string) error {
	m.logger.Info("password reset code issued", "email", toEmail, "code", code)
	return nil
}
