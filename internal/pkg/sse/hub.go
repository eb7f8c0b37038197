package sse

import (
	"sync"
	"time"
)

// Frame is one rendered state of the attendance timer, as streamed to
// portal tabs. It carries exactly what the DOM surface would paint.
type Frame struct {
	Display   string    `json:"display"`
	Active    bool      `json:"active"`
	Busy      bool      `json:"busy"`
	Button    string    `json:"button"`
	PaintedAt time.Time `json:"painted_at"`
}

// Hub fans display frames out to any number of stream subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Frame]struct{}
	last        *Frame
}

// NewHub creates a new frame Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Frame]struct{}),
	}
}

// Subscribe registers a new subscriber and returns the frame channel and a
// cleanup function. The most recent frame, if any, is delivered immediately
// so a freshly opened tab paints without waiting for the next tick.
func (h *Hub) Subscribe() (chan Frame, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Frame, 10)
	h.subscribers[ch] = struct{}{}
	if h.last != nil {
		ch <- *h.last
	}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}

	return ch, cleanup
}

// Publish sends a frame to all subscribers.
func (h *Hub) Publish(frame Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = &frame
	for ch := range h.subscribers {
		select {
		case ch <- frame:
		default:
			// Skip if channel is full (non-blocking to prevent deadlock)
		}
	}
}

// Last returns the most recently published frame, or nil.
func (h *Hub) Last() *Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// SubscriberCount returns the number of active subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
