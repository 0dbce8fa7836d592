package stream

import "sitegen/internal/models"

// Event is the canonical client-facing stream frame. A stream is zero
// or more content events followed by exactly one terminal event,
// either done (with the full accumulated text) or error.
type Event struct {
	Content     string      `json:"content,omitempty"`
	Done        bool        `json:"done,omitempty"`
	FullContent string      `json:"fullContent,omitempty"`
	Mode        models.Mode `json:"mode,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Terminal reports whether the event closes the stream.
func (e Event) Terminal() bool {
	return e.Done || e.Error != ""
}

// Sink is the outbound capability the normalizer writes to. It is
// implemented once for the real SSE response and once as an in-memory
// double for tests.
type Sink interface {
	Emit(Event) error
	Close() error
}
