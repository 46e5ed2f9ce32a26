package backend

import "sync"

// Status is one backend's usability as reported by the status endpoint.
type Status struct {
	Usable bool   `json:"usable"`
	Reason string `json:"reason,omitempty"`
}

// Health tracks which backends are currently usable. Entries are written
// concurrently by in-flight agent calls, so all access is synchronized.
// State resets only on process restart or an explicit Reset.
type Health struct {
	mu   sync.RWMutex
	down map[string]string // backend name -> reason
}

func NewHealth() *Health {
	return &Health{down: make(map[string]string)}
}

// MarkUnusable records that a backend should be skipped until reset.
func (h *Health) MarkUnusable(name, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.down[name] = reason
}

// Usable reports whether the chain may try this backend.
func (h *Health) Usable(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, marked := h.down[name]
	return !marked
}

// Reset clears all unusable marks.
func (h *Health) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.down = make(map[string]string)
}

// Snapshot returns the status of the named backends.
func (h *Health) Snapshot(names []string) map[string]Status {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]Status, len(names))
	for _, name := range names {
		reason, marked := h.down[name]
		out[name] = Status{Usable: !marked, Reason: reason}
	}
	return out
}
