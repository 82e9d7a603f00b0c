package http

import "sync"

// StreamManager fans narrated lines out to per-session SSE subscribers.
// Publishing never blocks: a subscriber that stops draining loses entries,
// which matches the fire-and-forget narration contract.
type StreamManager struct {
	mu   sync.Mutex
	subs map[string][]chan []string
}

// NewStreamManager creates an empty manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subs: make(map[string][]chan []string),
	}
}

// Subscribe registers a listener for one session's narration. The returned
// cancel function must be called when the listener goes away.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan []string, func()) {
	ch := make(chan []string, 16)

	sm.mu.Lock()
	sm.subs[sessionID] = append(sm.subs[sessionID], ch)
	sm.mu.Unlock()

	cancel := func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		listeners := sm.subs[sessionID]
		for i, sub := range listeners {
			if sub == ch {
				sm.subs[sessionID] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
		if len(sm.subs[sessionID]) == 0 {
			delete(sm.subs, sessionID)
		}
		close(ch)
	}
	return ch, cancel
}

// Publish delivers lines to every subscriber of the session.
func (sm *StreamManager) Publish(sessionID string, lines []string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, ch := range sm.subs[sessionID] {
		select {
		case ch <- lines:
		default:
		}
	}
}
