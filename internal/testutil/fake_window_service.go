package testutil

import (
	"sync"

	"github.com/frudas24/keytrigger/internal/window"
)

// FakeWindows implements window.Service over a fixed list.
type FakeWindows struct {
	mu      sync.Mutex
	Windows []window.Info
	Focused []window.Info

	// ListErr and FocusErr are returned by List and Focus when set.
	ListErr  error
	FocusErr error
}

// Ensure FakeWindows implements the interface.
var _ window.Service = (*FakeWindows)(nil)

// List returns a copy of Windows.
func (f *FakeWindows) List() ([]window.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	out := make([]window.Info, len(f.Windows))
	copy(out, f.Windows)
	return out, nil
}

// Focus records the target and returns FocusErr.
func (f *FakeWindows) Focus(target window.Info) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Focused = append(f.Focused, target)
	return f.FocusErr
}

// FocusCount returns how many focus attempts were made.
func (f *FakeWindows) FocusCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Focused)
}

// SetFocusErr changes the focus result.
func (f *FakeWindows) SetFocusErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FocusErr = err
}
