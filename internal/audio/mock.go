package audio

import (
	"context"
	"sync"
)

// MockPipeline implements the flow and dispatch audio interfaces for tests.
type MockPipeline struct {
	mu             sync.Mutex
	TranscribeText string // returned by Transcribe
	TranscribeErr  error
	SynthAudio     []byte // returned by Synthesize
	SynthErr       error
	Transcribed    [][]byte // recorded Transcribe inputs
	Synthesized    []string // recorded Synthesize inputs
}

// NewMockPipeline creates an empty mock.
func NewMockPipeline() *MockPipeline {
	return &MockPipeline{}
}

func (m *MockPipeline) Transcribe(ctx context.Context, audio []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Transcribed = append(m.Transcribed, audio)
	if m.TranscribeErr != nil {
		return "", m.TranscribeErr
	}
	return m.TranscribeText, nil
}

func (m *MockPipeline) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Synthesized = append(m.Synthesized, text)
	if m.SynthErr != nil {
		return nil, m.SynthErr
	}
	return m.SynthAudio, nil
}
