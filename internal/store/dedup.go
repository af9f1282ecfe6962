package store

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDedupTTL is how long a processed message ID stays in the ledger.
// WhatsApp retries webhook deliveries for far less than this window.
const DefaultDedupTTL = 30 * time.Minute

// DedupLedger tracks already-handled inbound message IDs with time-based
// expiry. The check-and-insert is atomic so concurrent deliveries of the same
// message ID admit exactly one.
type DedupLedger struct {
	mu      sync.Mutex
	entries map[string]time.Time // message_id -> expiry
	ttl     time.Duration
	now     func() time.Time
}

// DedupOption configures a DedupLedger.
type DedupOption func(*DedupLedger)

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) DedupOption {
	return func(l *DedupLedger) {
		l.ttl = ttl
	}
}

// WithClock injects a clock, used by tests to control expiry.
func WithClock(now func() time.Time) DedupOption {
	return func(l *DedupLedger) {
		l.now = now
	}
}

// NewDedupLedger creates an empty ledger.
func NewDedupLedger(opts ...DedupOption) *DedupLedger {
	l := &DedupLedger{
		entries: make(map[string]time.Time),
		ttl:     DefaultDedupTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndInsert records the message ID if it is not already present and not
// expired, returning true when the caller should process the message. A false
// return means the ID was already handled within the TTL window. Every call
// also sweeps expired entries so the ledger never grows unbounded.
func (l *DedupLedger) CheckAndInsert(messageID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepLocked(now)

	if expiry, seen := l.entries[messageID]; seen && now.Before(expiry) {
		return false
	}
	l.entries[messageID] = now.Add(l.ttl)
	return true
}

// Len returns the number of live entries.
func (l *DedupLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *DedupLedger) sweepLocked(now time.Time) {
	var removed int
	for id, expiry := range l.entries {
		if !now.Before(expiry) {
			delete(l.entries, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Dedup ledger sweep removed expired entries", "removed", removed, "active", len(l.entries))
	}
}
