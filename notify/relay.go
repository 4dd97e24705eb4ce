package notify

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/pharmamesh/logging"
)

// Message is a fully composed email ready for delivery. Text carries the
// plain body, HTML an optional alternative part.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Relay delivers composed messages. Implementations return a message ID on
// success.
type Relay interface {
	// Send delivers the message and returns its message ID.
	Send(ctx context.Context, msg Message) (string, error)

	// Validate checks that the relay is ready to deliver mail.
	Validate(ctx context.Context) error
}

// SMTPRelayOptions configures an SMTPRelay.
type SMTPRelayOptions struct {
	// Host is the SMTP server hostname.
	Host string

	// Port is the SMTP server port.
	Port int

	// Username authenticates against the server. Leave empty to skip auth.
	Username string

	// Password authenticates against the server.
	Password string

	// UseTLS upgrades the connection via STARTTLS before sending.
	UseTLS bool

	// Logger is the logger used by the relay.
	Logger logging.Logger
}

// SMTPRelay delivers messages over SMTP with optional STARTTLS and plain
// auth.
type SMTPRelay struct {
	opts SMTPRelayOptions
}

// NewSMTPRelay creates an SMTPRelay with the given options.
func NewSMTPRelay(optFns ...func(o *SMTPRelayOptions)) *SMTPRelay {
	opts := SMTPRelayOptions{
		Host:   "smtp.gmail.com",
		Port:   587,
		UseTLS: true,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &SMTPRelay{opts: opts}
}

// Send delivers the message and returns a generated message ID.
func (r *SMTPRelay) Send(ctx context.Context, msg Message) (string, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return "", err
	}

	defer func() { _ = client.Quit() }()

	if err := client.Mail(msg.From); err != nil {
		return "", fmt.Errorf("smtp mail from: %w", err)
	}

	if err := client.Rcpt(msg.To); err != nil {
		return "", fmt.Errorf("smtp rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("smtp data: %w", err)
	}

	if _, err := w.Write([]byte(encodeMIME(msg))); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("smtp write: %w", err)
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp close: %w", err)
	}

	r.opts.Logger.Info("Email sent via SMTP", "to", msg.To, "subject", msg.Subject)

	return fmt.Sprintf("smtp_%s@company.com", time.Now().Format("20060102_150405")), nil
}

// Validate dials the server and performs the auth handshake without sending
// mail.
func (r *SMTPRelay) Validate(ctx context.Context) error {
	if r.opts.Host == "" {
		return fmt.Errorf("smtp server not configured")
	}

	client, err := r.connect(ctx)
	if err != nil {
		return err
	}

	return client.Quit()
}

func (r *SMTPRelay) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(r.opts.Host, strconv.Itoa(r.opts.Port))

	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, r.opts.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if r.opts.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: r.opts.Host}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp starttls: %w", err)
		}
	}

	if r.opts.Username != "" && r.opts.Password != "" {
		auth := smtp.PlainAuth("", r.opts.Username, r.opts.Password, r.opts.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	return client, nil
}

// encodeMIME renders the message as a multipart/alternative MIME document
// with a plain text part and, when present, an HTML part.
func encodeMIME(msg Message) string {
	const boundary = "pharmamesh-alt"

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n",
		msg.From, msg.To, msg.Subject)

	if msg.HTML == "" {
		return headers + "Content-Type: text/plain; charset=utf-8\r\n\r\n" + msg.Text
	}

	body := headers
	body += fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	body += fmt.Sprintf("--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.Text)
	body += fmt.Sprintf("--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	body += fmt.Sprintf("--%s--\r\n", boundary)

	return body
}

// MockRelayOptions configures a MockRelay.
type MockRelayOptions struct {
	// LogPath, when set, appends one JSON line per delivered message.
	LogPath string

	// Logger is the logger used by the relay.
	Logger logging.Logger
}

// MockRelay records messages in memory instead of delivering them. It is the
// default relay so development runs never reach a real mail server.
type MockRelay struct {
	mu   sync.Mutex
	sent []Message
	opts MockRelayOptions
}

// NewMockRelay creates a MockRelay with the given options.
func NewMockRelay(optFns ...func(o *MockRelayOptions)) *MockRelay {
	opts := MockRelayOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &MockRelay{opts: opts}
}

// Send records the message and returns a mock message ID.
func (r *MockRelay) Send(_ context.Context, msg Message) (string, error) {
	r.mu.Lock()
	r.sent = append(r.sent, msg)
	r.mu.Unlock()

	messageID := fmt.Sprintf("mock_%s@company.com", time.Now().Format("20060102_150405"))

	r.opts.Logger.Info("Mock email recorded", "to", msg.To, "subject", msg.Subject, "message_id", messageID)

	if r.opts.LogPath != "" {
		if err := r.appendLog(msg, messageID); err != nil {
			r.opts.Logger.Warn("Failed to write mock email log", "error", err)
		}
	}

	return messageID, nil
}

// Validate always succeeds for the mock relay.
func (r *MockRelay) Validate(_ context.Context) error {
	return nil
}

// Sent returns a copy of all recorded messages.
func (r *MockRelay) Sent() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.sent))
	copy(out, r.sent)

	return out
}

func (r *MockRelay) appendLog(msg Message, messageID string) error {
	preview := msg.Text
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}

	entry := map[string]any{
		"timestamp":    time.Now().Format(time.RFC3339),
		"message_id":   messageID,
		"to":           msg.To,
		"from":         msg.From,
		"subject":      msg.Subject,
		"body_preview": preview,
		"html_present": msg.HTML != "",
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(r.opts.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}

	defer func() { _ = f.Close() }()

	_, err = f.Write(append(data, '\n'))

	return err
}
