package stream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// Writer encodes events as "data: <json>\n\n" records and flushes after each
// one so the client sees progress as it happens. Send is safe for
// concurrent use.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	flush func() error
}

// NewWriter wraps an arbitrary writer. flush may be nil.
func NewWriter(w io.Writer, flush func() error) *Writer {
	if flush == nil {
		flush = func() error { return nil }
	}
	return &Writer{w: w, flush: flush}
}

// NewResponseWriter prepares w for streaming: it sets the event-stream
// headers, sends the 200 status and returns a Writer flushing through
// http.ResponseController, which also reaches wrapped ResponseWriters that
// implement Unwrap.
func NewResponseWriter(w http.ResponseWriter) (*Writer, error) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("streaming unsupported: %w", err)
	}
	return NewWriter(w, rc.Flush), nil
}

// Send writes one record. Errors mean the peer has gone away.
func (s *Writer) Send(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	return s.flush()
}
