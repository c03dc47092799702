// Package notify delivers one-time codes to administrators over an outbound channel.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a channel is missing credentials or an endpoint.
var ErrNotConfigured = errors.New("notify: channel not configured")

// Message is one outbound notification. Body carries the plaintext code and must not be logged.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier sends a message. Success means the channel accepted it; there is no delivery tracking.
// Implementations must honour ctx cancellation.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// CodeMessage builds the OTP mail for to.
func CodeMessage(to, subject, code string, validMinutes int) Message {
	return Message{
		To:      to,
		Subject: subject,
		Body:    fmt.Sprintf("Your admin login code is %s. It expires in %d minutes and can be used once.", code, validMinutes),
	}
}
