package notify

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunNotifier sends plain-text mail through the Mailgun API.
type MailgunNotifier struct {
	mg   *mailgun.MailgunImpl
	from string
}

// NewMailgunNotifier returns a notifier for domain. apiBase overrides the US endpoint when set
// (e.g. mailgun.APIBaseEU).
func NewMailgunNotifier(domain, apiKey, apiBase, from string) *MailgunNotifier {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &MailgunNotifier{mg: mg, from: from}
}

func (n *MailgunNotifier) Send(ctx context.Context, msg Message) error {
	if n.mg.Domain() == "" || n.mg.APIKey() == "" {
		return fmt.Errorf("mailgun: %w", ErrNotConfigured)
	}
	m := n.mg.NewMessage(n.from, msg.Subject, msg.Body, msg.To)
	if _, _, err := n.mg.Send(ctx, m); err != nil {
		return fmt.Errorf("mailgun: %w", err)
	}
	return nil
}
