// Package messaging defines the pluggable outbound message delivery
// abstraction used by the conversation flow and dispatcher.
//
// Transports (WhatsApp Cloud API, whatsmeow, Twilio) implement Sender;
// failures are reported as errors, logged by callers, and never retried here.
package messaging

import (
	"context"

	"github.com/finsalud/finbot/internal/models"
)

// Sender delivers outbound messages to a user.
type Sender interface {
	// SendText sends a text message. replyTo optionally references the inbound
	// message ID being answered; transports that cannot express reply context
	// ignore it.
	SendText(ctx context.Context, to, body, replyTo string) error

	// SendVoice sends audio bytes as a voice note.
	SendVoice(ctx context.Context, to string, audio []byte, replyTo string) error

	// SendTyping signals a typing/read acknowledgment for the given inbound
	// message. Best-effort: transports without the capability return nil.
	SendTyping(ctx context.Context, to, messageID string) error
}

// ValidateOutbound checks the common preconditions for a text send. Transports
// call it before issuing any network request.
func ValidateOutbound(to, body string) error {
	if to == "" {
		return models.ErrEmptyRecipient
	}
	if body == "" {
		return models.ErrEmptyBody
	}
	return nil
}
