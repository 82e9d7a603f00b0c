package domain

import "time"

// Status defines the current mode of the turn state machine.
type Status string

const (
	// StatusAwaitingChoice means the current node offers buttons and the
	// engine is waiting for one to be selected.
	StatusAwaitingChoice Status = "awaiting_choice"
	// StatusAwaitingFreeText means the current node captures typed input.
	StatusAwaitingFreeText Status = "awaiting_free_text"
	// StatusEnded means the terminal sentinel was reached; no further input
	// is accepted.
	StatusEnded Status = "ended"
)

// ClockFacts records first-reach timestamps for milestone nodes.
// A timestamp, once recorded, is never overwritten.
type ClockFacts map[string]time.Time

// Mark records the timestamp for a milestone unless one already exists.
func (c ClockFacts) Mark(milestone string, t time.Time) {
	if _, ok := c[milestone]; !ok {
		c[milestone] = t
	}
}

// Elapsed returns the duration between two recorded milestones.
// The second return is false when either milestone is missing.
func (c ClockFacts) Elapsed(from, to string) (time.Duration, bool) {
	a, okA := c[from]
	b, okB := c[to]
	if !okA || !okB {
		return 0, false
	}
	return b.Sub(a), true
}

// Session captures the runtime snapshot of one conversation. It is created
// empty at session start, mutated only by the engine in response to user
// actions, and discarded (or persisted via a StateStore) when the session
// ends. Mid-session language switches are unsupported: switching languages
// means starting a fresh session so one language's ledger never feeds the
// other language's resolver.
type Session struct {
	// ID identifies the session towards stores and adapters.
	ID string `json:"id"`

	// Language selects the content catalog for every node lookup.
	Language Language `json:"language"`

	// CurrentID is the id of the active node.
	CurrentID int `json:"current_id"`

	// Status indicates what kind of input the engine is waiting for.
	Status Status `json:"status"`

	// Ledger holds the answers given so far, keyed by node id.
	Ledger Ledger `json:"ledger"`

	// Milestones holds first-reach timestamps for milestone nodes.
	Milestones ClockFacts `json:"milestones"`

	// Transcript is the append-only rendered history of the session.
	Transcript []TranscriptEntry `json:"transcript"`
}

// NewSession creates a clean session positioned before the entry node.
func NewSession(id string, lang Language) *Session {
	return &Session{
		ID:         id,
		Language:   lang,
		Status:     StatusAwaitingChoice,
		Ledger:     make(Ledger),
		Milestones: make(ClockFacts),
	}
}

// Ended reports whether the session accepts further input.
func (s *Session) Ended() bool {
	return s.Status == StatusEnded
}

// Snapshot returns a deep copy so a caller (or store) cannot mutate the live
// session through shared maps or slices.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Ledger = s.Ledger.clone()
	cp.Milestones = make(ClockFacts, len(s.Milestones))
	for k, v := range s.Milestones {
		cp.Milestones[k] = v
	}
	cp.Transcript = make([]TranscriptEntry, len(s.Transcript))
	copy(cp.Transcript, s.Transcript)
	return &cp
}
