package messaging

import (
	"context"
	"sync"
)

// SentText records one SendText call on the mock.
type SentText struct {
	To      string
	Body    string
	ReplyTo string
}

// SentVoice records one SendVoice call on the mock.
type SentVoice struct {
	To      string
	Audio   []byte
	ReplyTo string
}

// TypingEvent records one SendTyping call on the mock.
type TypingEvent struct {
	To        string
	MessageID string
}

// MockSender implements Sender for tests, recording every call.
type MockSender struct {
	mu        sync.Mutex
	Texts     []SentText
	Voices    []SentVoice
	Typing    []TypingEvent
	TextErr   error // returned by SendText when set
	VoiceErr  error // returned by SendVoice when set
	TypingErr error // returned by SendTyping when set
}

// NewMockSender creates an empty mock sender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) SendText(ctx context.Context, to, body, replyTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TextErr != nil {
		return m.TextErr
	}
	m.Texts = append(m.Texts, SentText{To: to, Body: body, ReplyTo: replyTo})
	return nil
}

func (m *MockSender) SendVoice(ctx context.Context, to string, audio []byte, replyTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.VoiceErr != nil {
		return m.VoiceErr
	}
	m.Voices = append(m.Voices, SentVoice{To: to, Audio: audio, ReplyTo: replyTo})
	return nil
}

func (m *MockSender) SendTyping(ctx context.Context, to, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TypingErr != nil {
		return m.TypingErr
	}
	m.Typing = append(m.Typing, TypingEvent{To: to, MessageID: messageID})
	return nil
}

// TextCount returns the number of recorded text sends.
func (m *MockSender) TextCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Texts)
}

// VoiceCount returns the number of recorded voice sends.
func (m *MockSender) VoiceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Voices)
}

// LastText returns the most recent text send, or the zero value.
func (m *MockSender) LastText() SentText {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Texts) == 0 {
		return SentText{}
	}
	return m.Texts[len(m.Texts)-1]
}
