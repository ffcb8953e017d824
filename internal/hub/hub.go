package hub

import (
	"context"
	"log"
	"sync"

	"github.com/atikulmunna/logloom/internal/aggregator"
	"github.com/atikulmunna/logloom/internal/model"
)

const subscriberBuffer = 16

// View is one rendering of the session, pushed to every subscriber.
type View struct {
	Lines []model.MergedLine `json:"lines"`
	Stats aggregator.Stats   `json:"stats"`
	Error string             `json:"error,omitempty"`
}

// RenderFunc produces the current view.
type RenderFunc func() View

// Hub re-renders the session when notified and broadcasts the view to all subscribers.
type Hub struct {
	render      RenderFunc
	notify      chan struct{}
	mu          sync.RWMutex
	subscribers map[chan View]struct{}
	dropped     int64
}

// New creates a Hub that renders with fn.
func New(fn RenderFunc) *Hub {
	return &Hub{
		render:      fn,
		notify:      make(chan struct{}, 1),
		subscribers: make(map[chan View]struct{}),
	}
}

// Subscribe returns a buffered channel that will receive rendered views.
// Multiple consumers can subscribe; each gets a copy of every view.
func (h *Hub) Subscribe() <-chan View {
	ch := make(chan View, subscriberBuffer)
	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe.
func (h *Hub) Unsubscribe(sub <-chan View) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		if ch == sub {
			delete(h.subscribers, ch)
			close(ch)
			return
		}
	}
}

// Notify schedules a re-render. Calls made while one is pending are coalesced.
func (h *Hub) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Dropped returns the total number of views dropped due to slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start renders and broadcasts on every notification.
// Blocks until the context is cancelled.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.notify:
			h.broadcast(h.render())
		}
	}
}

// broadcast sends a view to all subscribers.
// If a subscriber's channel is full, the view is dropped for that subscriber.
func (h *Hub) broadcast(v View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- v:
		default:
			h.dropped++
			log.Printf("hub: dropped view for slow consumer (total dropped: %d)", h.dropped)
		}
	}
}

// closeAll closes all subscriber channels.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, ch)
	}
}
