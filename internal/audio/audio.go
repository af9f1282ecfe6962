// Package audio wraps the OpenAI audio endpoints for voice-note handling:
// Whisper transcription of inbound voice messages and TTS synthesis of
// outbound voice replies.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/finsalud/finbot/internal/models"
)

// DefaultTimeout bounds each transcription or synthesis request.
const DefaultTimeout = 60 * time.Second

// Language passed to Whisper; the bot converses in Spanish.
const language = "es"

// Opts holds pipeline configuration.
type Opts struct {
	APIKey  string
	Timeout time.Duration
}

// Option configures the pipeline.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) {
		o.APIKey = key
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = d
	}
}

// Pipeline converts between speech and text through the OpenAI API.
type Pipeline struct {
	client  openai.Client
	timeout time.Duration
}

// NewPipeline creates an audio pipeline. The API key is required.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	cfg := Opts{Timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}
	slog.Debug("Audio pipeline initialized", "timeout", cfg.Timeout)
	return &Pipeline{
		client:  openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		timeout: cfg.Timeout,
	}, nil
}

// Transcribe converts voice-note audio to text using Whisper. An empty or
// whitespace-only transcript is reported as models.ErrEmptyTranscript so the
// caller can apologize instead of processing nothing.
func (p *Pipeline) Transcribe(ctx context.Context, audio []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model:    openai.AudioModelWhisper1,
		File:     openai.File(bytes.NewReader(audio), "audio.ogg", "audio/ogg"),
		Language: openai.String(language),
	})
	if err != nil {
		slog.Error("Audio transcription failed", "error", err, "bytes", len(audio))
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", models.ErrEmptyTranscript
	}
	slog.Debug("Audio transcribed", "chars", len(text))
	return text, nil
}

// Synthesize converts reply text to Opus audio suitable for a WhatsApp voice
// note.
func (p *Pipeline) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if text == "" {
		return nil, models.ErrEmptyBody
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModelTTS1,
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice("nova"),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatOpus,
	})
	if err != nil {
		slog.Error("Speech synthesis failed", "error", err, "chars", len(text))
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}
	slog.Debug("Speech synthesized", "chars", len(text), "bytes", len(data))
	return data, nil
}
