// Package status publishes trigger and sequencer activity for diagnostics.
package status

import (
	"sync"
	"time"
)

// Event types published on the hub.
const (
	EventTrigger   = "trigger"
	EventRejected  = "rejected"
	EventState     = "state"
	EventStep      = "step"
	EventStepError = "step_error"
	EventDone      = "done"
)

// Event is a single diagnostic record.
type Event struct {
	Type    string    `json:"type"`
	Time    time.Time `json:"time"`
	ID      string    `json:"id,omitempty"`
	Command string    `json:"command,omitempty"`
	Scrip   string    `json:"scrip,omitempty"`
	State   string    `json:"state,omitempty"`
	Step    int       `json:"step,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Publisher accepts diagnostic events. Implementations must not block.
type Publisher interface {
	Publish(ev Event)
}

// Discard is a Publisher that drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// Hub fans events out to subscribers and keeps a short backlog.
type Hub struct {
	mu       sync.Mutex
	subs     map[chan Event]struct{}
	backlog  []Event
	capacity int
	now      func() time.Time
}

// NewHub creates a hub that remembers the last capacity events.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 200
	}
	return &Hub{
		subs:     make(map[chan Event]struct{}),
		capacity: capacity,
		now:      time.Now,
	}
}

// Publish records ev and offers it to every subscriber without blocking.
// Slow subscribers miss events.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = h.now()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backlog = append(h.backlog, ev)
	if len(h.backlog) > h.capacity {
		h.backlog = h.backlog[len(h.backlog)-h.capacity:]
	}
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a buffered channel and returns it with an unsubscribe func.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 32
	}
	ch := make(chan Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, unsub
}

// Snapshot returns a copy of the backlog, oldest first.
func (h *Hub) Snapshot() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Event, len(h.backlog))
	copy(out, h.backlog)
	return out
}
