// Package mailer transmits outreach emails over authenticated, TLS-secured
// SMTP. Port 465 uses implicit TLS, everything else STARTTLS; plaintext
// transmission is never attempted.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Message is one outgoing email.
type Message struct {
	From     string
	To       string
	CC       []string
	Subject  string
	HTMLBody string
}

// Sender transmits a message. The dispatcher depends on this interface so
// tests can swap in a recording fake.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends through a configured SMTP endpoint.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewSMTPSender(host string, port int, username, password string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, Username: username, Password: password}
}

// buildMessage renders the RFC 5322 message bytes.
func buildMessage(msg Message) []byte {
	var sb strings.Builder
	sb.WriteString("From: " + msg.From + "\r\n")
	sb.WriteString("To: " + msg.To + "\r\n")
	if len(msg.CC) > 0 {
		sb.WriteString("Cc: " + strings.Join(msg.CC, ", ") + "\r\n")
	}
	sb.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", msg.Subject) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(msg.HTMLBody)
	return []byte(sb.String())
}

// Send transmits msg. The context bounds the whole SMTP conversation.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	tlsConfig := &tls.Config{ServerName: s.Host}

	dialer := &net.Dialer{Timeout: 30 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mailer: connect to %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// Implicit TLS on 465, STARTTLS otherwise.
	if s.Port == 465 {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: smtp handshake: %w", err)
	}
	defer client.Close()

	if s.Port != 465 {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("mailer: server %s does not support STARTTLS", s.Host)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("mailer: starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mailer: auth: %w", err)
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	recipients := append([]string{msg.To}, msg.CC...)
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := w.Write(buildMessage(msg)); err != nil {
		return fmt.Errorf("mailer: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: finish body: %w", err)
	}

	return client.Quit()
}

var _ Sender = (*SMTPSender)(nil)
