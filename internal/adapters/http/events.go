package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/patchbay/patchbay/pkg/patchbay"
)

// Event is one server-sent event: a name and a JSON data payload
type Event struct {
	Name string
	Data string
}

// EventHub fans events out to every connected SSE client. It implements
// the evaluator's RefreshNotifier, so registering a hub on a Patch via
// patchbay.WithNotifier turns inspected-node refreshes into "refresh"
// events on /events.
type EventHub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a client and returns its event channel plus a cancel
// function. Cancel is idempotent and closes the channel.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 16)
	h.subs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Subscribers returns the number of connected clients
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast delivers an event to every subscriber. A subscriber whose
// buffer is full misses the event rather than blocking the sender.
func (h *EventHub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Refresh implements patchbay.RefreshNotifier
func (h *EventHub) Refresh(id patchbay.NodeID) {
	h.Broadcast(Event{Name: "refresh", Data: fmt.Sprintf(`{"node":%d}`, id)})
}

// handleEvents streams hub events to the client as SSE
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.hub.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
