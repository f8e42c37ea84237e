// Package testutil provides fakes for the injector and window service.
package testutil

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/frudas24/keytrigger/internal/wininput"
)

// ErrInjected is returned by fakes configured to fail.
var ErrInjected = errors.New("injected failure")

// Call records a single injected action.
type Call struct {
	Name     string
	Keys     []string
	Text     string
	Count    int
	Interval time.Duration
}

// String renders the call compactly, e.g. "hotkey:shift+tab" or "type:500".
func (c Call) String() string {
	switch c.Name {
	case "SendHotkey":
		return "hotkey:" + strings.Join(c.Keys, "+")
	case "TypeText":
		return "type:" + c.Text
	case "PressKey":
		return "press:" + strings.Join(c.Keys, "+")
	default:
		return c.Name
	}
}

// FakeInjector implements wininput.Injector and records calls for tests.
type FakeInjector struct {
	mu    sync.Mutex
	Calls []Call

	// FailOn makes the call with this zero-based index return ErrInjected. Negative disables.
	FailOn int

	// OnCall, if set, runs after each call is recorded.
	OnCall func(index int, c Call)
}

// Ensure FakeInjector implements the interface.
var _ wininput.Injector = (*FakeInjector)(nil)

// NewFakeInjector returns an injector that never fails.
func NewFakeInjector() *FakeInjector {
	return &FakeInjector{FailOn: -1}
}

func (f *FakeInjector) record(c Call) error {
	f.mu.Lock()
	idx := len(f.Calls)
	f.Calls = append(f.Calls, c)
	fail := f.FailOn >= 0 && idx == f.FailOn
	hook := f.OnCall
	f.mu.Unlock()
	if hook != nil {
		hook(idx, c)
	}
	if fail {
		return ErrInjected
	}
	return nil
}

// SendHotkey records a hotkey.
func (f *FakeInjector) SendHotkey(keys ...string) error {
	return f.record(Call{Name: "SendHotkey", Keys: append([]string(nil), keys...)})
}

// TypeText records typed text.
func (f *FakeInjector) TypeText(text string, interval time.Duration) error {
	return f.record(Call{Name: "TypeText", Text: text, Interval: interval})
}

// PressKey records a key press.
func (f *FakeInjector) PressKey(key string, count int, interval time.Duration) error {
	return f.record(Call{Name: "PressKey", Keys: []string{key}, Count: count, Interval: interval})
}

// Snapshot returns a copy of the recorded calls.
func (f *FakeInjector) Snapshot() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// Strings returns every recorded call rendered with Call.String.
func (f *FakeInjector) Strings() []string {
	calls := f.Snapshot()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
