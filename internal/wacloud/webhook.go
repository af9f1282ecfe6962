package wacloud

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/finsalud/finbot/internal/models"
)

// Webhook payload shapes, trimmed to the fields the bot consumes.

type webhookPayload struct {
	Entry []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	Changes []webhookChange `json:"changes"`
}

type webhookChange struct {
	Value webhookValue `json:"value"`
}

type webhookValue struct {
	Messages []webhookMessage `json:"messages"`
}

type webhookMessage struct {
	ID        string        `json:"id"`
	From      string        `json:"from"`
	Type      string        `json:"type"`
	Timestamp string        `json:"timestamp"`
	Text      *webhookText  `json:"text,omitempty"`
	Audio     *webhookMedia `json:"audio,omitempty"`
}

type webhookText struct {
	Body string `json:"body"`
}

type webhookMedia struct {
	ID string `json:"id"`
}

// ParseWebhook normalizes a Cloud API webhook delivery into an Event. Payloads
// without messages (status updates, read receipts) return
// models.ErrNoMessages; callers acknowledge those without processing.
func ParseWebhook(body []byte) (models.Event, error) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Event{}, fmt.Errorf("decode webhook payload: %w", err)
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return models.Event{}, models.ErrNoMessages
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return models.Event{}, models.ErrNoMessages
	}

	msg := value.Messages[0]
	ev := models.Event{
		MessageID: msg.ID,
		From:      msg.From,
	}
	if ts, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil {
		ev.Timestamp = ts
	}

	switch {
	case msg.Type == "text" && msg.Text != nil:
		ev.Kind = models.MessageKindText
		ev.Text = msg.Text.Body
	case msg.Type == "audio" && msg.Audio != nil:
		ev.Kind = models.MessageKindAudio
		ev.MediaID = msg.Audio.ID
	default:
		ev.Kind = models.MessageKindOther
	}
	return ev, nil
}
