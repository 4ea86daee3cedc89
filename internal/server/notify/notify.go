// Package notify delivers password-reset messages by email or SMS.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
)

// Message is one outbound notification.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message to an address.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrInvalidRecipient is returned before any delivery attempt.
var ErrInvalidRecipient = errors.New("invalid recipient")

// LogSender writes messages to the log instead of delivering them. Used
// when no gateway is configured.
type LogSender struct {
	Channel string
	Log     logging.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrInvalidRecipient
	}
	s.Log.Info(ctx, "notification not delivered, no gateway configured",
		"channel", s.Channel, "to", msg.To, "subject", msg.Subject)
	return nil
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, msg Message) error

func (f SenderFunc) Send(ctx context.Context, msg Message) error { return f(ctx, msg) }

func wrapSend(channel string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", channel, err)
}
