package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishBuildEvent(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishBuildEvent(BuildEvent{BuildID: "b1", Posts: 3, Changed: []string{"a.md"}})
	b.PublishBuildEvent(BuildEvent{Error: "list sources: boom"})

	want := []string{
		"id: 1\nevent: site.rebuilt\n",
		"id: 2\nevent: site.build_failed\n",
	}
	for i, w := range want {
		select {
		case msg := <-ch:
			s := string(msg)
			if !strings.HasPrefix(s, w) {
				t.Errorf("message %d = %q, want prefix %q", i, s, w)
			}
			if i == 0 && (!strings.Contains(s, `"build_id":"b1"`) || !strings.Contains(s, `"changed":["a.md"]`)) {
				t.Errorf("missing data in %q", s)
			}
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestHeartbeat(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if string(msg) != ": ping\n\n" {
			t.Errorf("heartbeat = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

// syncRecorder guards the body so the test can read it while the handler writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishBuildEvent(BuildEvent{BuildID: "x", Posts: 1})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	if body := w.body(); !strings.Contains(body, "event: site.rebuilt") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublish_SlowClientDropsFrames(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()
	slow := b.Subscribe()
	defer b.Unsubscribe(slow)

	for i := range clientBuffer + 6 {
		b.Publish(Event{Type: "test", Data: map[string]int{"i": i}})
	}
	if n := len(slow); n != clientBuffer {
		t.Errorf("buffered = %d, want %d", n, clientBuffer)
	}

	// Dropped frames still consume ids.
	fast := b.Subscribe()
	defer b.Unsubscribe(fast)
	b.Publish(Event{Type: "test", Data: nil})
	msg := <-fast
	if want := fmt.Sprintf("id: %d\n", clientBuffer+7); !strings.HasPrefix(string(msg), want) {
		t.Errorf("frame = %q, want prefix %q", msg, want)
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.PublishBuildEvent(BuildEvent{Posts: 1})
	b.Close()

	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close should return a closed channel")
	}
}
