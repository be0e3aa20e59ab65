package provider

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SMTPDeliverer implements Deliverer by submitting messages to an SMTP
// relay with PLAIN authentication.
type SMTPDeliverer struct {
	addr string
	auth smtp.Auth

	// send is swappable for tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// SMTPConfig configures an SMTP delivery provider.
type SMTPConfig struct {
	// Host is the relay hostname.
	Host string

	// Port is the submission port, typically 587.
	Port int

	// Username and Password authenticate against the relay. Leave both
	// empty for an unauthenticated relay.
	Username string
	Password string
}

// NewSMTPDeliverer creates an SMTP-backed delivery provider.
func NewSMTPDeliverer(cfg SMTPConfig) (*SMTPDeliverer, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host cannot be empty")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPDeliverer{
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth: auth,
		send: smtp.SendMail,
	}, nil
}

// DeliverEmail implements Deliverer by building a MIME message and
// submitting it to the relay. The envelope recipient list is the union of
// To, Cc and Bcc; Bcc addresses never appear in the headers.
func (d *SMTPDeliverer) DeliverEmail(ctx context.Context, email Email) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if len(email.To) == 0 {
		return Receipt{}, errors.New("email has no recipients")
	}
	if email.SenderEmail == "" {
		return Receipt{}, errors.New("email has no sender")
	}

	messageID := fmt.Sprintf("<%s@mailflow>", uuid.New().String())
	sentAt := time.Now()

	msg := buildMIMEMessage(email, messageID, sentAt)

	envelope := make([]string, 0, len(email.To)+len(email.Cc)+len(email.Bcc))
	envelope = append(envelope, email.To...)
	envelope = append(envelope, email.Cc...)
	envelope = append(envelope, email.Bcc...)

	if err := d.send(d.addr, d.auth, email.SenderEmail, envelope, msg); err != nil {
		return Receipt{}, fmt.Errorf("smtp delivery failed: %w", err)
	}

	return Receipt{MessageID: messageID, SentAt: sentAt}, nil
}

// buildMIMEMessage renders an HTML email as a single-part MIME message.
func buildMIMEMessage(email Email, messageID string, sentAt time.Time) []byte {
	var sb strings.Builder

	from := email.SenderEmail
	if email.SenderName != "" {
		from = fmt.Sprintf("%s <%s>", email.SenderName, email.SenderEmail)
	}

	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", strings.Join(email.To, ", "))
	if len(email.Cc) > 0 {
		fmt.Fprintf(&sb, "Cc: %s\r\n", strings.Join(email.Cc, ", "))
	}
	fmt.Fprintf(&sb, "Subject: %s\r\n", email.Subject)
	fmt.Fprintf(&sb, "Message-ID: %s\r\n", messageID)
	fmt.Fprintf(&sb, "Date: %s\r\n", sentAt.Format(time.RFC1123Z))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(email.HTML)
	sb.WriteString("\r\n")

	return []byte(sb.String())
}
