//go:build !windows

package wininput

import (
	"errors"
	"time"
)

// ErrUnsupported indicates WinAPI input injection is not available.
var ErrUnsupported = errors.New("wininput is only supported on Windows")

// NoopInjector is a placeholder injector for non-Windows builds.
type NoopInjector struct{}

// NewInjector returns a non-functional injector on non-Windows platforms.
func NewInjector() (Injector, error) {
	return &NoopInjector{}, ErrUnsupported
}

// SendHotkey returns ErrUnsupported.
func (n *NoopInjector) SendHotkey(keys ...string) error {
	_ = keys
	return ErrUnsupported
}

// TypeText returns ErrUnsupported.
func (n *NoopInjector) TypeText(text string, interval time.Duration) error {
	_ = text
	_ = interval
	return ErrUnsupported
}

// PressKey returns ErrUnsupported.
func (n *NoopInjector) PressKey(key string, count int, interval time.Duration) error {
	_ = key
	_ = count
	_ = interval
	return ErrUnsupported
}
