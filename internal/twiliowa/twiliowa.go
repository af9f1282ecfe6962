// Package twiliowa implements the messaging.Sender interface over the Twilio
// WhatsApp API.
//
// Twilio's Go SDK cannot attach raw audio bytes as a voice note and has no
// typing indicator, so SendVoice reports unsupported and SendTyping is a
// no-op. The engine degrades to text-only replies on this transport.
package twiliowa

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/finsalud/finbot/internal/messaging"
)

// Compile-time check that Client implements messaging.Sender.
var _ messaging.Sender = (*Client)(nil)

// Opts holds configuration for the Twilio transport.
type Opts struct {
	AccountSID string
	AuthToken  string
	FromWhats  string // sending number in "whatsapp:+1234567890" format
}

// Option defines a configuration option for the Twilio transport.
type Option func(*Opts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) Option {
	return func(o *Opts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) Option {
	return func(o *Opts) { o.AuthToken = token }
}

// WithFromWhats sets the sending WhatsApp number.
func WithFromWhats(from string) Option {
	return func(o *Opts) { o.FromWhats = from }
}

// Client wraps the Twilio REST API for WhatsApp.
type Client struct {
	client    *twilio.RestClient
	fromWhats string
}

// NewClient creates a Twilio WhatsApp transport. Options fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER environment
// variables.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromWhats == "" {
		cfg.FromWhats = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("Twilio transport config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromWhats_set", cfg.FromWhats != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromWhats == "" {
		return nil, fmt.Errorf("fromWhats number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &Client{client: client, fromWhats: cfg.FromWhats}, nil
}

// SendText sends a WhatsApp text message. Twilio has no reply threading, so
// replyTo is ignored.
func (c *Client) SendText(ctx context.Context, to, body, replyTo string) error {
	if err := messaging.ValidateOutbound(to, body); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom(c.fromWhats)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		slog.Error("Twilio SendText failed", "to", to, "error", err)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	slog.Debug("Twilio message sent", "to", to)
	return nil
}

// SendVoice is unsupported: Twilio media messages need a public URL, not raw
// bytes.
func (c *Client) SendVoice(ctx context.Context, to string, audio []byte, replyTo string) error {
	slog.Debug("Voice notes not supported on Twilio transport, skipping", "to", to, "bytes", len(audio))
	return fmt.Errorf("voice notes are not supported on the Twilio transport")
}

// SendTyping is a no-op: Twilio exposes no typing indicator.
func (c *Client) SendTyping(ctx context.Context, to, messageID string) error {
	return nil
}
