package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/premium-reader/internal/server/middleware"
)

// SSEWriter writes data-only Server-Sent Events. Once a write fails (the
// client went away) all further writes are dropped.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
}

// NewSSEWriter sets the stream headers and sends the 200 status. origin is
// echoed for credentialed readers only when the CORS policy allows it;
// anything else gets DefaultOrigin.
func NewSSEWriter(w http.ResponseWriter, origin string, allowed []string) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	if !middleware.OriginAllowed(origin, allowed) {
		origin = DefaultOrigin
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteData sends one `data: <json>` event.
func (s *SSEWriter) WriteData(data any) error {
	if s.closed {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		s.closed = true
		return err
	}
	s.flusher.Flush()
	return nil
}

// Closed reports whether a write has failed.
func (s *SSEWriter) Closed() bool {
	return s.closed
}
