// Package session holds the shared trigger state for one control session.
package session

import (
	"sync"

	"github.com/frudas24/keytrigger/internal/trigger"
	"github.com/frudas24/keytrigger/internal/window"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Pending    bool                  `json:"pending"`
	LastEvent  *trigger.TriggerEvent `json:"lastEvent,omitempty"`
	Target     *window.Info          `json:"target,omitempty"`
	Generation uint64                `json:"generation"`
}

// Session is written by the trigger listener and consumed by the sequencer.
// The target window is fixed at construction.
type Session struct {
	target window.Info

	mu        sync.RWMutex
	pending   bool
	lastEvent trigger.TriggerEvent
	hasEvent  bool
	gen       uint64
}

// Ensure Session can be handed to the trigger listener.
var _ trigger.Publisher = (*Session)(nil)

// New returns an idle session targeting the given window. A zero target disables re-focusing.
func New(target window.Info) *Session {
	return &Session{target: target}
}

// Publish stores ev as the last event and marks it pending.
// The event is written before the flag inside one critical section.
func (s *Session) Publish(ev trigger.TriggerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastEvent = ev
	s.hasEvent = true
	s.pending = true
	s.gen++
}

// Take returns a copy of the pending event and its generation.
// pending stays set until Complete is called with the same generation.
func (s *Session) Take() (trigger.TriggerEvent, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.pending {
		return trigger.TriggerEvent{}, 0, false
	}
	return s.lastEvent, s.gen, true
}

// Complete clears pending if no trigger was published since Take returned gen.
// It reports whether the flag was cleared; false means a newer trigger is waiting.
func (s *Session) Complete(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.pending = false
	return true
}

// Clear drops any pending trigger unconditionally.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
}

// Pending reports whether a trigger is waiting.
func (s *Session) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// LastEvent returns the last accepted event. It is retained after consumption.
func (s *Session) LastEvent() (trigger.TriggerEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastEvent, s.hasEvent
}

// Target returns the window to re-focus, and false when none was selected.
func (s *Session) Target() (window.Info, bool) {
	return s.target, !s.target.IsZero()
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{Pending: s.pending, Generation: s.gen}
	if s.hasEvent {
		ev := s.lastEvent
		snap.LastEvent = &ev
	}
	if !s.target.IsZero() {
		t := s.target
		snap.Target = &t
	}
	return snap
}
