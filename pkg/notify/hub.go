package notify

import (
	"sync"
	"time"

	"github.com/reviewquest/progression/pkg/progression"
)

// Hub owns one coalescer per active user session and collects the emitted
// payloads into per-user feeds for the dashboard to poll. Each coalescer
// stays single-threaded; the hub only routes.
type Hub struct {
	window time.Duration

	mu         sync.Mutex
	coalescers map[string]*Coalescer
	feeds      map[string]*feed
}

type feed struct {
	mu       sync.Mutex
	payloads []Payload
}

func (f *feed) Present(p Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
}

func (f *feed) drain() []Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.payloads
	f.payloads = nil
	return out
}

// NewHub creates a hub whose coalescers use the given window.
func NewHub(window time.Duration) *Hub {
	return &Hub{
		window:     window,
		coalescers: make(map[string]*Coalescer),
		feeds:      make(map[string]*feed),
	}
}

// Submit routes an award result to the owning user's coalescer, creating it
// on first use.
func (h *Hub) Submit(res *progression.AwardResult) {
	if res == nil || res.UserID == "" {
		return
	}
	h.coalescerFor(res.UserID).Submit(res)
}

// Drain force-flushes the user's coalescer and returns everything presented
// so far. Pending contributions are presented, never discarded.
func (h *Hub) Drain(userID string) []Payload {
	h.mu.Lock()
	c := h.coalescers[userID]
	f := h.feeds[userID]
	h.mu.Unlock()

	if c == nil || f == nil {
		return nil
	}
	c.Flush()
	return f.drain()
}

// Close stops all coalescers, flushing their buffers into the feeds.
func (h *Hub) Close() {
	h.mu.Lock()
	coalescers := make([]*Coalescer, 0, len(h.coalescers))
	for _, c := range h.coalescers {
		coalescers = append(coalescers, c)
	}
	h.mu.Unlock()

	for _, c := range coalescers {
		c.Close()
	}
}

func (h *Hub) coalescerFor(userID string) *Coalescer {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.coalescers[userID]
	if !ok {
		f := &feed{}
		c = NewCoalescer(f, h.window)
		h.coalescers[userID] = c
		h.feeds[userID] = f
	}
	return c
}
