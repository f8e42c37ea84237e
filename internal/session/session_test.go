package session

import (
	"sync"
	"testing"

	"github.com/frudas24/keytrigger/internal/trigger"
	"github.com/frudas24/keytrigger/internal/window"
)

func event(cmd trigger.Command, scrip string) trigger.TriggerEvent {
	return trigger.TriggerEvent{Command: cmd, Scrip: scrip}
}

// TestNew_Idle verifies a fresh session has nothing pending.
func TestNew_Idle(t *testing.T) {
	s := New(window.Info{})
	if s.Pending() {
		t.Fatalf("expected idle session")
	}
	if _, _, ok := s.Take(); ok {
		t.Fatalf("expected Take to report nothing pending")
	}
	if _, ok := s.LastEvent(); ok {
		t.Fatalf("expected no last event")
	}
	if _, ok := s.Target(); ok {
		t.Fatalf("expected no target")
	}
}

// TestPublishTakeComplete verifies the normal consume cycle.
func TestPublishTakeComplete(t *testing.T) {
	s := New(window.Info{Handle: 1, Title: "Terminal"})
	s.Publish(event(trigger.CommandF4, "NIFTY24DEC"))
	if !s.Pending() {
		t.Fatalf("expected pending after publish")
	}
	ev, gen, ok := s.Take()
	if !ok || ev.Scrip != "NIFTY24DEC" {
		t.Fatalf("unexpected take: %+v %v", ev, ok)
	}
	if !s.Pending() {
		t.Fatalf("expected pending to stay set until Complete")
	}
	if !s.Complete(gen) {
		t.Fatalf("expected Complete to clear pending")
	}
	if s.Pending() {
		t.Fatalf("expected pending cleared")
	}
	last, ok := s.LastEvent()
	if !ok || last.Scrip != "NIFTY24DEC" {
		t.Fatalf("expected last event retained, got %+v", last)
	}
}

// TestComplete_NewerTriggerStaysPending verifies a trigger published mid-run is not lost.
func TestComplete_NewerTriggerStaysPending(t *testing.T) {
	s := New(window.Info{})
	s.Publish(event(trigger.CommandF4, "A"))
	first, gen, _ := s.Take()

	s.Publish(event(trigger.CommandF5, "B"))
	if first.Scrip != "A" {
		t.Fatalf("captured event changed: %+v", first)
	}
	if s.Complete(gen) {
		t.Fatalf("expected Complete to keep the newer trigger pending")
	}
	ev, gen2, ok := s.Take()
	if !ok || ev.Command != trigger.CommandF5 || ev.Scrip != "B" {
		t.Fatalf("expected newer trigger, got %+v %v", ev, ok)
	}
	if !s.Complete(gen2) || s.Pending() {
		t.Fatalf("expected pending cleared after second run")
	}
}

// TestPublish_Coalesces verifies triggers arriving before Take collapse into the latest.
func TestPublish_Coalesces(t *testing.T) {
	s := New(window.Info{})
	s.Publish(event(trigger.CommandF4, "A"))
	s.Publish(event(trigger.CommandF4, "B"))
	ev, gen, ok := s.Take()
	if !ok || ev.Scrip != "B" {
		t.Fatalf("expected latest event, got %+v", ev)
	}
	if !s.Complete(gen) || s.Pending() {
		t.Fatalf("expected a single run to consume both")
	}
}

// TestClear verifies Clear drops a pending trigger.
func TestClear(t *testing.T) {
	s := New(window.Info{})
	s.Publish(event(trigger.CommandF4, "A"))
	s.Clear()
	if s.Pending() {
		t.Fatalf("expected pending cleared")
	}
}

// TestSnapshot verifies snapshot content.
func TestSnapshot(t *testing.T) {
	s := New(window.Info{Handle: 7, PID: 42, Name: "terminal.exe", Title: "Terminal"})
	s.Publish(event(trigger.CommandF5, "X"))
	snap := s.Snapshot()
	if !snap.Pending || snap.LastEvent == nil || snap.LastEvent.Command != trigger.CommandF5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Target == nil || snap.Target.PID != 42 || snap.Generation != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

// TestConcurrentPublishTake verifies readers never observe pending without an event.
func TestConcurrentPublishTake(t *testing.T) {
	s := New(window.Info{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			s.Publish(event(trigger.CommandF4, "S"))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if ev, gen, ok := s.Take(); ok {
				if ev.Command != trigger.CommandF4 || ev.Scrip != "S" {
					t.Errorf("torn event: %+v", ev)
					return
				}
				s.Complete(gen)
			}
		}
	}()
	wg.Wait()
}
