package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// SSESink writes events onto a committed text/event-stream response as
// data-only frames. After Close no further writes occur.
type SSESink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

// NewSSESink commits stream headers on the response and returns a sink
// for it. It fails when the underlying writer cannot flush
// incrementally.
func NewSSESink(w http.ResponseWriter) (*SSESink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSESink{w: w, flusher: flusher}, nil
}

func (s *SSESink) Emit(evt Event) error {
	if s.closed {
		return errors.New("sink is closed")
	}

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal stream event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write stream event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

func (s *SSESink) Close() error {
	s.closed = true
	return nil
}

// MemorySink records events for tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
	closed bool

	// FailAfter makes Emit fail once that many events were accepted,
	// simulating a disconnected client. Zero disables the failure.
	FailAfter int
}

func (s *MemorySink) Emit(evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("sink is closed")
	}
	if s.FailAfter > 0 && len(s.events) >= s.FailAfter {
		return errors.New("client disconnected")
	}
	s.events = append(s.events, evt)
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Closed reports whether the sink was closed.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
