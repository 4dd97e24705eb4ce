package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/pharmamesh/logging"
)

// NotifierOptions configures a Notifier.
type NotifierOptions struct {
	// Recipient is the default report recipient.
	Recipient string

	// Sender is the From address on outgoing mail.
	Sender string

	// Logger is the logger used by the notifier.
	Logger logging.Logger
}

// Receipt describes a delivered email.
type Receipt struct {
	MessageID string    `json:"message_id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	SentAt    time.Time `json:"sent_at"`
}

// Notifier composes analysis reports and hands them to a Relay for delivery.
type Notifier struct {
	relay Relay
	opts  NotifierOptions
}

// NewNotifier creates a Notifier backed by the given relay.
func NewNotifier(relay Relay, optFns ...func(o *NotifierOptions)) *Notifier {
	opts := NotifierOptions{
		Recipient: DefaultRecipient,
		Sender:    DefaultSender,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Notifier{relay: relay, opts: opts}
}

// SendReport composes the full analysis report and delivers it to the
// configured recipient.
func (n *Notifier) SendReport(ctx context.Context, data ReportData) (Receipt, error) {
	report, err := ComposeReport(data)
	if err != nil {
		return Receipt{}, err
	}

	n.opts.Logger.Info("Sending analysis report", "to", n.opts.Recipient, "subject", report.Subject)

	messageID, err := n.relay.Send(ctx, Message{
		From:    n.opts.Sender,
		To:      n.opts.Recipient,
		Subject: report.Subject,
		Text:    report.Text,
		HTML:    report.HTML,
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("send report: %w", err)
	}

	return Receipt{
		MessageID: messageID,
		Recipient: n.opts.Recipient,
		Subject:   report.Subject,
		SentAt:    time.Now().UTC(),
	}, nil
}

// SendNotification delivers a short plain notification. An empty recipient
// falls back to the configured default.
func (n *Notifier) SendNotification(ctx context.Context, recipient, subject, message string) (Receipt, error) {
	if recipient == "" {
		recipient = n.opts.Recipient
	}

	messageID, err := n.relay.Send(ctx, Message{
		From:    n.opts.Sender,
		To:      recipient,
		Subject: subject,
		Text:    message,
		HTML:    fmt.Sprintf("<p>%s</p>", strings.ReplaceAll(message, "\n", "<br>")),
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("send notification: %w", err)
	}

	return Receipt{
		MessageID: messageID,
		Recipient: recipient,
		Subject:   subject,
		SentAt:    time.Now().UTC(),
	}, nil
}
