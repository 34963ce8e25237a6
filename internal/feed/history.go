package feed

import (
	"sync"

	"github.com/trogers1052/ai-feed-monitor/internal/models"
)

// DefaultHistoryCapacity is used when a non-positive capacity is requested
const DefaultHistoryCapacity = 100

// History is a newest-first, capacity-bounded list of feed events.
// Writes come from a single feed loop; reads take copies.
type History struct {
	mu       sync.RWMutex
	events   []models.FeedEvent
	capacity int
}

// NewHistory creates an empty history holding at most capacity events
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		events:   make([]models.FeedEvent, 0, capacity),
		capacity: capacity,
	}
}

// Push prepends event and drops the oldest entry once over capacity.
// Duplicates are kept. It returns the new length.
func (h *History) Push(event models.FeedEvent) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.events) < h.capacity {
		h.events = append(h.events, models.FeedEvent{})
	}
	copy(h.events[1:], h.events)
	h.events[0] = event

	return len(h.events)
}

// Snapshot returns a copy of the events, newest first
func (h *History) Snapshot() []models.FeedEvent {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.FeedEvent, len(h.events))
	copy(out, h.events)
	return out
}

// Len returns the number of events held
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Capacity returns the maximum number of events held
func (h *History) Capacity() int {
	return h.capacity
}
