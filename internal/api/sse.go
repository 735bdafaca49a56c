package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/kamilpajak/sentimeter/internal/sentiment"
)

// sseEmitter implements sentiment.ProgressEmitter by writing Server-Sent
// Events.
type sseEmitter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	flusher  http.Flusher
	finished bool
}

// newSSEEmitter returns nil if the writer does not support flushing.
func newSSEEmitter(w http.ResponseWriter) *sseEmitter {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil
	}
	return &sseEmitter{w: w, flusher: f}
}

// Emit writes a progress event as an SSE data line and flushes.
func (e *sseEmitter) Emit(ev sentiment.ProgressEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ev.Type == sentiment.EventDone || ev.Type == sentiment.EventError {
		e.finished = true
	}
	fmt.Fprintf(e.w, "data: %s\n\n", data)
	e.flusher.Flush()
}

// done reports whether a terminal event has been written.
func (e *sseEmitter) done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}
