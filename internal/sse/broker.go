// Package sse pushes build notifications to browsers over Server-Sent Events
// so an open page can reload after the content changes.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Event types.
const (
	EventSiteRebuilt     = "site.rebuilt"
	EventSiteBuildFailed = "site.build_failed"
)

// clientBuffer is the number of frames a slow client may lag behind before
// frames are dropped for it.
const clientBuffer = 64

// Event is a named payload sent to every client as JSON.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// BuildEvent describes a finished rebuild.
type BuildEvent struct {
	BuildID  string   `json:"build_id,omitempty"`
	Posts    int      `json:"posts"`
	Failures int      `json:"failures"`
	Changed  []string `json:"changed,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Broker fans framed events out to connected clients. Frames are numbered
// with an increasing id so clients can tell a missed rebuild apart.
type Broker struct {
	mu      sync.Mutex
	clients map[chan []byte]struct{}
	seq     uint64
	closed  bool

	done      chan struct{}
	closeOnce sync.Once
}

// NewBroker creates a broker that sends a comment frame to every client each
// heartbeat interval, keeping idle connections open through proxies. A
// non-positive interval disables heartbeats.
func NewBroker(heartbeat time.Duration) *Broker {
	b := &Broker{
		clients: make(map[chan []byte]struct{}),
		done:    make(chan struct{}),
	}
	if heartbeat > 0 {
		go b.heartbeat(heartbeat)
	}
	return b
}

func (b *Broker) heartbeat(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			b.mu.Lock()
			b.broadcast([]byte(": ping\n\n"))
			b.mu.Unlock()
		}
	}
}

// broadcast must be called with mu held. Full client buffers drop the frame.
func (b *Broker) broadcast(frame []byte) {
	for ch := range b.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Close disconnects every client. Later calls to any method are no-ops.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.closed = true
		for ch := range b.clients {
			close(ch)
		}
		clear(b.clients)
	})
}

// Subscribe registers a client. The returned channel is closed by
// Unsubscribe or Close; after Close it is returned already closed.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.clients[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[ch]; ok {
		delete(b.clients, ch)
		close(ch)
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Publish frames event and sends it to every client.
func (b *Broker) Publish(event Event) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.seq++
	b.broadcast(fmt.Appendf(nil, "id: %d\nevent: %s\ndata: %s\n\n", b.seq, event.Type, payload))
}

// PublishBuildEvent announces a rebuild: site.rebuilt on success,
// site.build_failed when ev carries an error.
func (b *Broker) PublishBuildEvent(ev BuildEvent) {
	typ := EventSiteRebuilt
	if ev.Error != "" {
		typ = EventSiteBuildFailed
	}
	b.Publish(Event{Type: typ, Data: ev})
}

// ServeHTTP streams events to one client until it disconnects or the broker
// is closed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
