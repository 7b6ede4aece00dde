package report

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/services"
)

// ErrDeliveryNotConfigured is returned when SMTP credentials are incomplete.
var ErrDeliveryNotConfigured = errors.New("email delivery not configured")

const (
	mailSubject = "Movie scrape results"
	mailBody    = "Find attached the latest movie scrape results."
	dialTimeout = 30 * time.Second
)

// SendFunc delivers a fully rendered message. It matches smtp.SendMail.
type SendFunc func(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends export files as attachments over SMTP.
type Mailer struct {
	cfg    config.SMTP
	send   SendFunc
	logger *slog.Logger
	now    func() time.Time
}

// MailerOption configures a Mailer.
type MailerOption func(*Mailer)

// WithSendFunc replaces the SMTP transport.
func WithSendFunc(fn SendFunc) MailerOption {
	return func(m *Mailer) {
		if fn != nil {
			m.send = fn
		}
	}
}

// WithMailerLogger attaches a logger.
func WithMailerLogger(logger *slog.Logger) MailerOption {
	return func(m *Mailer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMailer builds a mailer from SMTP settings. The sender defaults to the user
// and the port to 587.
func NewMailer(cfg config.SMTP, opts ...MailerOption) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		cfg.From = cfg.User
	}
	m := &Mailer{cfg: cfg, send: sendSMTP, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "mailer")
	return m
}

// Configured reports whether every value required for delivery is present.
func (m *Mailer) Configured() bool {
	c := m.cfg
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Password != "" && len(m.recipients()) > 0
}

// Send mails the given files as attachments. It returns
// ErrDeliveryNotConfigured without contacting any server when credentials are
// incomplete.
func (m *Mailer) Send(ctx context.Context, attachments ...string) error {
	if !m.Configured() {
		return ErrDeliveryNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before sending email: %w", err)
	}
	msg, err := m.buildMessage(attachments)
	if err != nil {
		return services.Wrap(services.ErrValidation, "mailer", "build message", "", err)
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	recipients := m.recipients()
	if err := m.send(ctx, addr, auth, m.cfg.From, recipients, msg); err != nil {
		return services.Wrap(services.ErrExternalTool, "mailer", "send", addr, err)
	}
	m.logger.Info("report emailed",
		logging.String("to", strings.Join(recipients, ",")),
		logging.Int("attachments", len(attachments)),
	)
	return nil
}

func (m *Mailer) recipients() []string {
	var out []string
	for _, addr := range strings.Split(m.cfg.To, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func (m *Mailer) buildMessage(attachments []string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	headers := []string{
		"From: " + m.cfg.From,
		"To: " + strings.Join(m.recipients(), ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", mailSubject),
		"Date: " + m.now().Format(time.RFC1123Z),
		"Message-ID: " + m.messageID(),
		"MIME-Version: 1.0",
		fmt.Sprintf("Content-Type: multipart/mixed; boundary=%q", writer.Boundary()),
	}
	buf.WriteString(strings.Join(headers, "\r\n"))
	buf.WriteString("\r\n\r\n")

	bodyPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"7bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := bodyPart.Write([]byte(mailBody + "\r\n")); err != nil {
		return nil, err
	}

	for _, path := range attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read attachment: %w", err)
		}
		name := filepath.Base(path)
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {attachmentType(name)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": name})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, data); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (m *Mailer) messageID() string {
	return fmt.Sprintf("<%d.marquee@%s>", m.now().UnixNano(), m.cfg.Host)
}

func attachmentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv; charset=UTF-8"
	case ".sqlite", ".sqlite3", ".db":
		return "application/vnd.sqlite3"
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// writeBase64Lines wraps encoded output at 76 characters per RFC 2045.
func writeBase64Lines(w interface{ Write([]byte) (int, error) }, data []byte) error {
	const lineLength = 76
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(lineLength, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// sendSMTP dials the server, upgrades to TLS when offered, authenticates, and
// submits the message.
func sendSMTP(ctx context.Context, addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("parse smtp address: %w", err)
	}
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return fmt.Errorf("SMTP authentication failed: %w", err)
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", addr, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
