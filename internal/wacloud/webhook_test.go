package wacloud

import (
	"errors"
	"testing"

	"github.com/finsalud/finbot/internal/models"
)

func TestParseWebhookText(t *testing.T) {
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"id": "wamid.abc",
			"from": "573001112233",
			"type": "text",
			"timestamp": "1756700000",
			"text": {"body": "hola"}
		}]}}]}]
	}`)

	ev, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	want := models.Event{
		MessageID: "wamid.abc",
		From:      "573001112233",
		Kind:      models.MessageKindText,
		Text:      "hola",
		Timestamp: 1756700000,
	}
	if ev != want {
		t.Errorf("event = %+v, want %+v", ev, want)
	}
}

func TestParseWebhookAudio(t *testing.T) {
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"id": "wamid.voice",
			"from": "573001112233",
			"type": "audio",
			"timestamp": "1756700001",
			"audio": {"id": "media-42"}
		}]}}]}]
	}`)

	ev, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if ev.Kind != models.MessageKindAudio || ev.MediaID != "media-42" {
		t.Errorf("event = %+v, want audio with media-42", ev)
	}
	if ev.Text != "" {
		t.Errorf("audio event carries text %q", ev.Text)
	}
}

func TestParseWebhookUnsupportedType(t *testing.T) {
	body := []byte(`{
		"entry": [{"changes": [{"value": {"messages": [{
			"id": "wamid.img",
			"from": "573001112233",
			"type": "image",
			"timestamp": "1756700002"
		}]}}]}]
	}`)

	ev, err := ParseWebhook(body)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if ev.Kind != models.MessageKindOther {
		t.Errorf("kind = %q, want %q", ev.Kind, models.MessageKindOther)
	}
}

func TestParseWebhookStatusUpdate(t *testing.T) {
	// Delivery receipts carry statuses instead of messages.
	body := []byte(`{
		"entry": [{"changes": [{"value": {"statuses": [{"id": "wamid.abc", "status": "delivered"}]}}]}]
	}`)

	_, err := ParseWebhook(body)
	if !errors.Is(err, models.ErrNoMessages) {
		t.Errorf("status update error = %v, want ErrNoMessages", err)
	}
}

func TestParseWebhookEmptyEntry(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"entry": []}`))
	if !errors.Is(err, models.ErrNoMessages) {
		t.Errorf("empty entry error = %v, want ErrNoMessages", err)
	}
}

func TestParseWebhookMalformedJSON(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"entry": [`))
	if err == nil || errors.Is(err, models.ErrNoMessages) {
		t.Errorf("malformed payload error = %v, want decode error", err)
	}
}
