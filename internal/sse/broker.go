// Package sse streams page change notifications to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/starford/outliner/internal/models"
)

// Event types.
const (
	TypePageCreated  = "page.created"
	TypePageUpdated  = "page.updated"
	TypePageDeleted  = "page.deleted"
	TypeIndexUpdated = "index.updated"
)

// pageEventTypes maps workspace change kinds to event types.
var pageEventTypes = map[string]string{
	"created": TypePageCreated,
	"updated": TypePageUpdated,
	"deleted": TypePageDeleted,
}

const clientBuffer = 64

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// PageEventData is the payload of page events.
type PageEventData struct {
	Name string          `json:"name"`
	Kind models.PageKind `json:"kind"`
}

// IndexEventData is the payload of index.updated: the number of page
// changes since the previous index.updated.
type IndexEventData struct {
	Changes int `json:"changes"`
}

// hub is the state owned by the broker loop.
type hub struct {
	clients    map[chan []byte]struct{}
	indexEvery time.Duration
	lastIndex  time.Time
	pending    int
}

func (h *hub) broadcast(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	raw := fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event.Type, payload)
	for ch := range h.clients {
		select {
		case ch <- raw:
		default:
			// Slow client; drop rather than stall every other subscriber.
		}
	}
}

// pageChanged sends the page event and, at most once per indexEvery, an
// index.updated event telling clients to re-run their queries.
func (h *hub) pageChanged(kind string, id models.PageID, now time.Time) {
	typ, ok := pageEventTypes[kind]
	if !ok {
		return
	}
	h.broadcast(Event{Type: typ, Data: PageEventData{Name: id.Name, Kind: id.Kind}})
	h.pending++
	if now.Sub(h.lastIndex) < h.indexEvery {
		return
	}
	h.broadcast(Event{Type: TypeIndexUpdated, Data: IndexEventData{Changes: h.pending}})
	h.lastIndex, h.pending = now, 0
}

func (h *hub) closeAll() {
	for ch := range h.clients {
		close(ch)
	}
	clear(h.clients)
}

// Broker fans events out to SSE clients. A single goroutine owns the hub;
// every public method hands it an operation and waits for it to run.
type Broker struct {
	ops     chan func(*hub)
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. index.updated events are sent at most once
// per indexThrottle.
func NewBroker(indexThrottle time.Duration) *Broker {
	if indexThrottle <= 0 {
		indexThrottle = 2 * time.Second
	}
	b := &Broker{
		ops:     make(chan func(*hub)),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	h := &hub{clients: map[chan []byte]struct{}{}, indexEvery: indexThrottle}
	go b.run(h)
	return b
}

func (b *Broker) run(h *hub) {
	defer close(b.stopped)
	for {
		select {
		case <-b.stopCh:
			h.closeAll()
			return
		case op := <-b.ops:
			op(h)
		}
	}
}

// exec runs op on the broker loop and reports whether it ran.
func (b *Broker) exec(op func(*hub)) bool {
	if b.closed.Load() {
		return false
	}
	done := make(chan struct{})
	select {
	case b.ops <- func(h *hub) { op(h); close(done) }:
	case <-b.stopped:
		return false
	}
	<-done
	return true
}

// Close stops the loop and closes every client channel.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. The channel is closed on Unsubscribe or
// Close.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if !b.exec(func(h *hub) { h.clients[ch] = struct{}{} }) {
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.exec(func(h *hub) {
		if _, ok := h.clients[ch]; ok {
			delete(h.clients, ch)
			close(ch)
		}
	})
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	n := 0
	b.exec(func(h *hub) { n = len(h.clients) })
	return n
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	b.exec(func(h *hub) { h.broadcast(event) })
}

// PublishPageEvent publishes a page change ("created", "updated" or
// "deleted"). It matches the workspace change callback.
func (b *Broker) PublishPageEvent(kind string, id models.PageID) {
	now := time.Now()
	b.exec(func(h *hub) { h.pageChanged(kind, id, now) })
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	for k, v := range map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	} {
		w.Header().Set(k, v)
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
