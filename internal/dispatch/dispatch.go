// Package dispatch routes normalized inbound events to the conversation flow.
//
// The dispatcher owns the concerns that sit in front of the state machine:
// duplicate delivery suppression, the typing acknowledgment, and the
// voice-note branch (download, transcription, transcript echo) before handing
// text to the flow engine.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finsalud/finbot/internal/flow"
	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/models"
	"github.com/finsalud/finbot/internal/store"
)

// Apology texts for the voice-note branch.
const (
	msgVoiceNotUnderstood = "Lo siento, no pude entender tu mensaje de voz. ¿Podrías intentar de nuevo o enviar un mensaje de texto?"
	msgVoiceTrouble       = "Lo siento, tuve problemas para procesar tu mensaje de voz. ¿Podrías intentar de nuevo o enviar un mensaje de texto?"
)

func transcriptEcho(transcript string) string {
	return fmt.Sprintf("He recibido tu mensaje de voz. Te escuché decir:\n\n\"%s\"\n\nProcesando tu solicitud...", transcript)
}

// TextHandler consumes one inbound text message. Implemented by flow.Engine.
type TextHandler interface {
	HandleText(ctx context.Context, from, text, messageID string)
}

// Transcriber converts voice-note audio to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// AudioFetcher downloads voice-note bytes by media ID.
type AudioFetcher interface {
	DownloadAudio(ctx context.Context, mediaID string) ([]byte, error)
}

// Opts holds dispatcher configuration.
type Opts struct {
	Transcriber Transcriber
	Fetcher     AudioFetcher
}

// Option configures the dispatcher.
type Option func(*Opts)

// WithTranscriber enables the voice-note branch.
func WithTranscriber(t Transcriber) Option {
	return func(o *Opts) {
		o.Transcriber = t
	}
}

// WithAudioFetcher sets the media downloader for voice notes.
func WithAudioFetcher(f AudioFetcher) Option {
	return func(o *Opts) {
		o.Fetcher = f
	}
}

// Dispatcher routes events to the flow engine.
type Dispatcher struct {
	handler     TextHandler
	sender      messaging.Sender
	dedup       *store.DedupLedger
	transcriber Transcriber
	fetcher     AudioFetcher
}

// NewDispatcher creates a dispatcher over the given handler, sender and
// deduplication ledger.
func NewDispatcher(handler TextHandler, sender messaging.Sender, dedup *store.DedupLedger, opts ...Option) *Dispatcher {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dispatcher{
		handler:     handler,
		sender:      sender,
		dedup:       dedup,
		transcriber: cfg.Transcriber,
		fetcher:     cfg.Fetcher,
	}
}

// ProcessEvent handles one inbound event end to end. It never panics outward;
// a panic in a handler is logged and the event dropped, keeping the webhook
// worker alive.
func (d *Dispatcher) ProcessEvent(ctx context.Context, ev models.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing event", "panic", r, "message_id", ev.MessageID, "from", ev.From)
		}
	}()

	if !d.dedup.CheckAndInsert(ev.MessageID) {
		slog.Info("Skipping duplicate message delivery", "message_id", ev.MessageID, "from", ev.From)
		return
	}

	// Typing acknowledgment is best effort and never blocks processing.
	if err := d.sender.SendTyping(ctx, ev.From, ev.MessageID); err != nil {
		slog.Debug("Typing acknowledgment failed", "error", err, "to", ev.From)
	}

	switch ev.Kind {
	case models.MessageKindText:
		slog.Info("Processing text message", "message_id", ev.MessageID, "from", ev.From)
		d.handler.HandleText(ctx, ev.From, ev.Text, ev.MessageID)
	case models.MessageKindAudio:
		d.processAudio(ctx, ev)
	default:
		slog.Info("Unsupported message kind", "kind", ev.Kind, "message_id", ev.MessageID, "from", ev.From)
		d.sendText(ctx, ev.From, flow.UnsupportedKindMessage(), ev.MessageID)
	}
}

func (d *Dispatcher) processAudio(ctx context.Context, ev models.Event) {
	slog.Info("Processing voice message", "message_id", ev.MessageID, "from", ev.From)

	if d.fetcher == nil || d.transcriber == nil {
		slog.Warn("Voice message received but audio handling is not configured", "message_id", ev.MessageID)
		d.sendText(ctx, ev.From, msgVoiceTrouble, ev.MessageID)
		return
	}

	audioBytes, err := d.fetcher.DownloadAudio(ctx, ev.MediaID)
	if err != nil {
		slog.Error("Failed to download voice note", "error", err, "media_id", ev.MediaID)
		d.sendText(ctx, ev.From, msgVoiceTrouble, ev.MessageID)
		return
	}

	transcript, err := d.transcriber.Transcribe(ctx, audioBytes)
	if errors.Is(err, models.ErrEmptyTranscript) {
		d.sendText(ctx, ev.From, msgVoiceNotUnderstood, ev.MessageID)
		return
	}
	if err != nil {
		slog.Error("Failed to transcribe voice note", "error", err, "media_id", ev.MediaID)
		d.sendText(ctx, ev.From, msgVoiceTrouble, ev.MessageID)
		return
	}
	slog.Info("Voice note transcribed", "message_id", ev.MessageID, "chars", len(transcript))

	d.sendText(ctx, ev.From, transcriptEcho(transcript), ev.MessageID)
	d.handler.HandleText(ctx, ev.From, transcript, ev.MessageID)
}

func (d *Dispatcher) sendText(ctx context.Context, to, body, replyTo string) {
	if err := d.sender.SendText(ctx, to, body, replyTo); err != nil {
		slog.Error("Failed to send reply", "error", err, "to", to)
	}
}
