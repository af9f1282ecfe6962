package flow

import (
	"sync"

	"github.com/finsalud/finbot/internal/models"
)

// Draft accumulates registration answers across states until the final field
// arrives and the company is analyzed and saved.
type Draft struct {
	Name        string
	Sector      string
	AnnualValue float64
	Profit      float64
	Employees   int
	Assets      float64
	Receivables float64
}

// Session is the per-phone conversation state. Callers must hold mu while
// reading or mutating State and Draft so interleaved messages from the same
// phone serialize.
type Session struct {
	mu    sync.Mutex
	State models.SessionState
	Draft Draft
}

// Reset returns the session to idle and clears the draft. Caller holds mu.
func (s *Session) Reset() {
	s.State = models.StateIdle
	s.Draft = Draft{}
}

// SessionRegistry hands out lazily created sessions keyed by phone number.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Get returns the session for the phone, creating an idle one on first use.
func (r *SessionRegistry) Get(phone string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[phone]
	if !ok {
		s = &Session{State: models.StateIdle}
		r.sessions[phone] = s
	}
	return s
}

// Len returns the number of known sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
