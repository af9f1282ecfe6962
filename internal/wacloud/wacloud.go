// Package wacloud implements the messaging.Sender interface over the WhatsApp
// Business Cloud API (Meta Graph API).
//
// It also downloads inbound voice-note media and parses webhook payloads into
// normalized events. All requests carry bounded timeouts; the API never gets
// an unbounded wait.
package wacloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/finsalud/finbot/internal/messaging"
	"github.com/finsalud/finbot/internal/models"
)

// DefaultBaseURL is the Graph API root.
const DefaultBaseURL = "https://graph.facebook.com/v21.0"

// DefaultTimeout bounds each Graph API request.
const DefaultTimeout = 30 * time.Second

// Compile-time check that Client implements messaging.Sender.
var _ messaging.Sender = (*Client)(nil)

// Opts holds client configuration.
type Opts struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// Option configures the client.
type Option func(*Opts)

// WithAccessToken sets the Graph API bearer token.
func WithAccessToken(token string) Option {
	return func(o *Opts) {
		o.AccessToken = token
	}
}

// WithPhoneNumberID sets the sending phone number ID.
func WithPhoneNumberID(id string) Option {
	return func(o *Opts) {
		o.PhoneNumberID = id
	}
}

// WithBaseURL overrides the Graph API root, used by tests.
func WithBaseURL(url string) Option {
	return func(o *Opts) {
		o.BaseURL = url
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) {
		o.HTTPClient = c
	}
}

// Client talks to the WhatsApp Cloud API.
type Client struct {
	token         string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a Cloud API client. Token and phone number ID are
// required.
func NewClient(opts ...Option) (*Client, error) {
	cfg := Opts{BaseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("WhatsApp access token not set")
	}
	if cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("WhatsApp phone number ID not set")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	slog.Debug("WhatsApp Cloud API client initialized", "base_url", cfg.BaseURL)
	return &Client{
		token:         cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
	}, nil
}

type textPayload struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             textBody    `json:"text"`
	Context          *msgContext `json:"context,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type msgContext struct {
	MessageID string `json:"message_id"`
}

type audioPayload struct {
	MessagingProduct string      `json:"messaging_product"`
	RecipientType    string      `json:"recipient_type"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Audio            audioRef    `json:"audio"`
	Context          *msgContext `json:"context,omitempty"`
}

type audioRef struct {
	ID string `json:"id"`
}

type typingPayload struct {
	MessagingProduct string          `json:"messaging_product"`
	Status           string          `json:"status"`
	MessageID        string          `json:"message_id"`
	TypingIndicator  typingIndicator `json:"typing_indicator"`
}

type typingIndicator struct {
	Type string `json:"type"`
}

// SendText sends a text message, threading it to replyTo when set.
func (c *Client) SendText(ctx context.Context, to, body, replyTo string) error {
	if err := messaging.ValidateOutbound(to, body); err != nil {
		return err
	}
	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	}
	if replyTo != "" {
		payload.Context = &msgContext{MessageID: replyTo}
	}
	if err := c.postMessages(ctx, payload); err != nil {
		return fmt.Errorf("send text to %s: %w", to, err)
	}
	slog.Debug("Text message sent", "to", to, "chars", len(body))
	return nil
}

// SendVoice uploads the audio as media and sends it as a voice note.
func (c *Client) SendVoice(ctx context.Context, to string, audio []byte, replyTo string) error {
	if to == "" {
		return models.ErrEmptyRecipient
	}
	if len(audio) == 0 {
		return models.ErrEmptyBody
	}

	mediaID, err := c.uploadAudio(ctx, audio)
	if err != nil {
		return fmt.Errorf("send voice to %s: %w", to, err)
	}

	payload := audioPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "audio",
		Audio:            audioRef{ID: mediaID},
	}
	if replyTo != "" {
		payload.Context = &msgContext{MessageID: replyTo}
	}
	if err := c.postMessages(ctx, payload); err != nil {
		return fmt.Errorf("send voice to %s: %w", to, err)
	}
	slog.Debug("Voice note sent", "to", to, "media_id", mediaID, "bytes", len(audio))
	return nil
}

// SendTyping marks the inbound message read and shows the typing indicator.
// Without a message ID there is nothing to acknowledge.
func (c *Client) SendTyping(ctx context.Context, to, messageID string) error {
	if messageID == "" {
		return nil
	}
	payload := typingPayload{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
		TypingIndicator:  typingIndicator{Type: "text"},
	}
	if err := c.postMessages(ctx, payload); err != nil {
		return fmt.Errorf("send typing indicator to %s: %w", to, err)
	}
	return nil
}

// uploadAudio pushes voice-note bytes to the media endpoint and returns the
// media ID.
func (c *Client) uploadAudio(ctx context.Context, audio []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", fmt.Errorf("build media upload: %w", err)
	}
	part, err := writer.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", fmt.Errorf("build media upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("build media upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build media upload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("build media upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload media: status %d: %s", resp.StatusCode, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode media upload response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("media upload response missing id")
	}
	return result.ID, nil
}

// DownloadAudio resolves a media ID to its temporary URL and fetches the
// bytes. Both steps require the bearer token.
func (c *Client) DownloadAudio(ctx context.Context, mediaID string) ([]byte, error) {
	if mediaID == "" {
		return nil, fmt.Errorf("media ID not set")
	}

	infoURL := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media info request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch media info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch media info: status %d", resp.StatusCode)
	}

	var info struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode media info: %w", err)
	}
	if info.URL == "" {
		return nil, fmt.Errorf("media info missing download URL")
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build media download request: %w", err)
	}
	dlReq.Header.Set("Authorization", "Bearer "+c.token)

	dlResp, err := c.httpClient.Do(dlReq)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer dlResp.Body.Close()
	if dlResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media: status %d", dlResp.StatusCode)
	}

	data, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media bytes: %w", err)
	}
	slog.Debug("Voice note downloaded", "media_id", mediaID, "bytes", len(data))
	return data, nil
}

func (c *Client) postMessages(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("post message: status %d: %s", resp.StatusCode, respBody)
	}
	return nil
}
