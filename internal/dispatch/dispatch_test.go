package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/finsalud/finbot/internal/audio"
	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/models"
	"github.com/finsalud/finbot/internal/store"
)

type handledText struct {
	From      string
	Text      string
	MessageID string
}

type fakeHandler struct {
	mu    sync.Mutex
	calls []handledText
	panic bool
}

func (f *fakeHandler) HandleText(ctx context.Context, from, text, messageID string) {
	if f.panic {
		panic("handler blew up")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, handledText{From: from, Text: text, MessageID: messageID})
}

func (f *fakeHandler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeFetcher struct {
	audio []byte
	err   error
	calls []string
}

func (f *fakeFetcher) DownloadAudio(ctx context.Context, mediaID string) ([]byte, error) {
	f.calls = append(f.calls, mediaID)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func textEvent(id, text string) models.Event {
	return models.Event{MessageID: id, From: "573001112233", Kind: models.MessageKindText, Text: text}
}

func audioEvent(id, mediaID string) models.Event {
	return models.Event{MessageID: id, From: "573001112233", Kind: models.MessageKindAudio, MediaID: mediaID}
}

func TestProcessEventRoutesText(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	d := NewDispatcher(handler, sender, store.NewDedupLedger())

	d.ProcessEvent(context.Background(), textEvent("wamid.1", "hola"))

	if handler.count() != 1 {
		t.Fatalf("handled = %d, want 1", handler.count())
	}
	got := handler.calls[0]
	if got.From != "573001112233" || got.Text != "hola" || got.MessageID != "wamid.1" {
		t.Errorf("handled = %+v", got)
	}
	if len(sender.Typing) != 1 || sender.Typing[0].MessageID != "wamid.1" {
		t.Errorf("typing acknowledgment = %+v, want one for wamid.1", sender.Typing)
	}
}

func TestProcessEventSkipsDuplicates(t *testing.T) {
	handler := &fakeHandler{}
	d := NewDispatcher(handler, messaging.NewMockSender(), store.NewDedupLedger())

	ev := textEvent("wamid.dup", "hola")
	d.ProcessEvent(context.Background(), ev)
	d.ProcessEvent(context.Background(), ev)

	if handler.count() != 1 {
		t.Errorf("handled = %d, want duplicate suppressed", handler.count())
	}
}

func TestProcessEventContinuesWhenTypingFails(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	sender.TypingErr = fmt.Errorf("network down")
	d := NewDispatcher(handler, sender, store.NewDedupLedger())

	d.ProcessEvent(context.Background(), textEvent("wamid.1", "hola"))

	if handler.count() != 1 {
		t.Errorf("handled = %d, typing failure must not block processing", handler.count())
	}
}

func TestProcessEventVoiceNote(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	fetcher := &fakeFetcher{audio: []byte("ogg-bytes")}
	pipeline := &audio.MockPipeline{TranscribeText: "analizar Acme"}
	d := NewDispatcher(handler, sender, store.NewDedupLedger(),
		WithTranscriber(pipeline),
		WithAudioFetcher(fetcher),
	)

	d.ProcessEvent(context.Background(), audioEvent("wamid.v1", "media-7"))

	if len(fetcher.calls) != 1 || fetcher.calls[0] != "media-7" {
		t.Fatalf("fetcher calls = %v", fetcher.calls)
	}
	if sender.TextCount() != 1 {
		t.Fatalf("texts = %d, want the transcript echo", sender.TextCount())
	}
	echo := sender.LastText().Body
	if !strings.Contains(echo, "He recibido tu mensaje de voz") || !strings.Contains(echo, "analizar Acme") {
		t.Errorf("echo = %q", echo)
	}
	if handler.count() != 1 || handler.calls[0].Text != "analizar Acme" {
		t.Errorf("handled = %+v, want the transcript routed as text", handler.calls)
	}
}

func TestProcessEventVoiceNoteEmptyTranscript(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	pipeline := &audio.MockPipeline{TranscribeErr: models.ErrEmptyTranscript}
	d := NewDispatcher(handler, sender, store.NewDedupLedger(),
		WithTranscriber(pipeline),
		WithAudioFetcher(&fakeFetcher{audio: []byte("ogg")}),
	)

	d.ProcessEvent(context.Background(), audioEvent("wamid.v1", "media-7"))

	if handler.count() != 0 {
		t.Errorf("handled = %d, empty transcript must not reach the flow", handler.count())
	}
	if sender.LastText().Body != msgVoiceNotUnderstood {
		t.Errorf("reply = %q, want the not-understood apology", sender.LastText().Body)
	}
}

func TestProcessEventVoiceNoteDownloadFailure(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	d := NewDispatcher(handler, sender, store.NewDedupLedger(),
		WithTranscriber(&audio.MockPipeline{TranscribeText: "hola"}),
		WithAudioFetcher(&fakeFetcher{err: fmt.Errorf("media expired")}),
	)

	d.ProcessEvent(context.Background(), audioEvent("wamid.v1", "media-7"))

	if handler.count() != 0 {
		t.Errorf("handled = %d, want none", handler.count())
	}
	if sender.LastText().Body != msgVoiceTrouble {
		t.Errorf("reply = %q, want the trouble apology", sender.LastText().Body)
	}
}

func TestProcessEventVoiceNoteUnconfigured(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	d := NewDispatcher(handler, sender, store.NewDedupLedger())

	d.ProcessEvent(context.Background(), audioEvent("wamid.v1", "media-7"))

	if sender.LastText().Body != msgVoiceTrouble {
		t.Errorf("reply = %q, want the trouble apology", sender.LastText().Body)
	}
}

func TestProcessEventUnsupportedKind(t *testing.T) {
	handler := &fakeHandler{}
	sender := messaging.NewMockSender()
	d := NewDispatcher(handler, sender, store.NewDedupLedger())

	d.ProcessEvent(context.Background(), models.Event{MessageID: "wamid.img", From: "573001112233", Kind: models.MessageKindOther})

	if handler.count() != 0 {
		t.Errorf("handled = %d, want none", handler.count())
	}
	reply := sender.LastText().Body
	if !strings.Contains(reply, "mensajes de texto y de voz") {
		t.Errorf("reply = %q, want the unsupported-kind message", reply)
	}
}

func TestProcessEventRecoversFromPanic(t *testing.T) {
	handler := &fakeHandler{panic: true}
	d := NewDispatcher(handler, messaging.NewMockSender(), store.NewDedupLedger())

	// Must not propagate the panic.
	d.ProcessEvent(context.Background(), textEvent("wamid.1", "hola"))
}
