// Package wameow implements the messaging.Sender interface over a direct
// WhatsApp Web connection using whatsmeow.
//
// This transport needs no Meta business account: it logs in by pairing with a
// phone through a QR code (or numeric code) on first run and keeps the device
// session in its own database.
package wameow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/models"
	"github.com/finsalud/finbot/internal/store"
)

const (
	// DefaultSQLitePath is the default whatsmeow device database path.
	DefaultSQLitePath = "/var/lib/finbot/whatsmeow.db"
	// JIDSuffix is the WhatsApp JID suffix for regular users.
	JIDSuffix = "s.whatsapp.net"
	// voiceMimetype marks the upload as an Opus voice note.
	voiceMimetype = "audio/ogg; codecs=opus"
)

// Compile-time check that Sender implements messaging.Sender.
var _ messaging.Sender = (*Sender)(nil)

// Opts holds configuration for the whatsmeow transport.
type Opts struct {
	DBDSN       string // whatsmeow device database connection string
	QRPath      string // path to write the login QR code
	NumericCode bool   // print a numeric pairing code instead of a QR code
}

// Option defines a configuration option for the transport.
type Option func(*Opts)

// WithDBDSN sets the whatsmeow device database connection string.
func WithDBDSN(dsn string) Option {
	return func(o *Opts) {
		o.DBDSN = dsn
	}
}

// WithQRCodeOutput writes the login QR code to the specified path instead of
// stdout.
func WithQRCodeOutput(path string) Option {
	return func(o *Opts) {
		o.QRPath = path
	}
}

// WithNumericCode uses a numeric login code instead of a QR code.
func WithNumericCode() Option {
	return func(o *Opts) {
		o.NumericCode = true
	}
}

// Sender sends messages over a paired WhatsApp Web session.
type Sender struct {
	waClient *whatsmeow.Client
}

// NewSender initializes the device store, pairs if needed and connects.
func NewSender(opts ...Option) (*Sender, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("wameow NewSender options set", "DBDSN_set", cfg.DBDSN != "", "QRPath_set", cfg.QRPath != "", "NumericCode", cfg.NumericCode)

	dbDSN := cfg.DBDSN
	if dbDSN == "" {
		dbDSN = DefaultSQLitePath
		slog.Debug("No device database DSN provided, using default SQLite path", "default_path", dbDSN)
	}

	var dbDriver string
	if store.DetectDSNType(dbDSN) == "postgres" {
		dbDriver = "postgres"
	} else {
		dbDriver = "sqlite3"
		if !strings.Contains(dbDSN, "_foreign_keys") && !strings.Contains(dbDSN, "foreign_keys") {
			slog.Warn("SQLite device database does not appear to have foreign keys enabled. "+
				"whatsmeow strongly recommends enabling them. Consider adding '?_foreign_keys=on' to the connection string.",
				"dsn_example", "file:"+dbDSN+"?_foreign_keys=on")
		}
	}

	ctx := context.Background()
	container, err := sqlstore.New(ctx, dbDriver, dbDSN, waLog.Stdout("Database", "INFO", true))
	if err != nil {
		slog.Error("Failed to initialize whatsmeow device store", "error", err)
		return nil, fmt.Errorf("failed to initialize device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		slog.Error("Failed to get device from store", "error", err)
		return nil, fmt.Errorf("failed to get device from store: %w", err)
	}

	waClient := whatsmeow.NewClient(deviceStore, waLog.Stdout("Client", "INFO", true))

	if waClient.Store.ID == nil {
		slog.Info("WhatsApp login required; starting pairing flow")
		qrChan, _ := waClient.GetQRChannel(context.Background())
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect during pairing", "error", err)
			return nil, fmt.Errorf("failed to connect during pairing: %w", err)
		}
		writer := io.Writer(os.Stdout)
		if cfg.QRPath != "" {
			f, ferr := os.Create(cfg.QRPath)
			if ferr != nil {
				slog.Error("Failed to create QR file", "error", ferr)
				return nil, fmt.Errorf("failed to create QR file: %w", ferr)
			}
			defer f.Close()
			writer = f
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				slog.Debug("Pairing code received")
				if cfg.NumericCode {
					fmt.Fprintln(writer, evt.Code)
				} else {
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, writer)
				}
			} else {
				slog.Debug("Pairing event", "event", evt.Event)
			}
		}
	} else {
		slog.Debug("Device already paired, connecting")
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}
	}
	slog.Info("whatsmeow transport connected")
	return &Sender{waClient: waClient}, nil
}

// SendText sends a plain text message. whatsmeow carries no reply context
// here, so replyTo is ignored.
func (s *Sender) SendText(ctx context.Context, to, body, replyTo string) error {
	if err := messaging.ValidateOutbound(to, body); err != nil {
		return err
	}
	jid := types.NewJID(to, JIDSuffix)
	msg := &waE2E.Message{Conversation: &body}
	if _, err := s.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("Failed to send text over whatsmeow", "error", err, "to", to)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	slog.Debug("Text sent over whatsmeow", "to", to, "chars", len(body))
	return nil
}

// SendVoice uploads the audio and sends it as a push-to-talk voice note.
func (s *Sender) SendVoice(ctx context.Context, to string, audio []byte, replyTo string) error {
	if to == "" {
		return models.ErrEmptyRecipient
	}
	if len(audio) == 0 {
		return models.ErrEmptyBody
	}

	uploaded, err := s.waClient.Upload(ctx, audio, whatsmeow.MediaAudio)
	if err != nil {
		slog.Error("Failed to upload voice note", "error", err, "to", to)
		return fmt.Errorf("failed to upload voice note for %s: %w", to, err)
	}

	mimetype := voiceMimetype
	ptt := true
	length := uint64(len(audio))
	msg := &waE2E.Message{
		AudioMessage: &waE2E.AudioMessage{
			URL:           &uploaded.URL,
			DirectPath:    &uploaded.DirectPath,
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    &length,
			Mimetype:      &mimetype,
			PTT:           &ptt,
		},
	}
	jid := types.NewJID(to, JIDSuffix)
	if _, err := s.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("Failed to send voice note over whatsmeow", "error", err, "to", to)
		return fmt.Errorf("failed to send voice note to %s: %w", to, err)
	}
	slog.Debug("Voice note sent over whatsmeow", "to", to, "bytes", len(audio))
	return nil
}

// SendTyping shows the composing chat presence to the recipient.
func (s *Sender) SendTyping(ctx context.Context, to, messageID string) error {
	jid := types.NewJID(to, JIDSuffix)
	if err := s.waClient.SendChatPresence(jid, types.ChatPresenceComposing, types.ChatPresenceMediaText); err != nil {
		return fmt.Errorf("failed to send chat presence to %s: %w", to, err)
	}
	return nil
}

// Disconnect tears down the WhatsApp Web session.
func (s *Sender) Disconnect() {
	if s.waClient != nil {
		s.waClient.Disconnect()
	}
}
