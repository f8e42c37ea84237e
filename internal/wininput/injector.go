// Package wininput defines keyboard input injection for the focused window.
package wininput

import (
	"errors"
	"time"
)

// ErrUnknownKey indicates a key name that has no virtual-key mapping.
var ErrUnknownKey = errors.New("unknown key")

// Injector defines the keyboard operations used by the sequencer.
type Injector interface {
	// SendHotkey presses keys in order and releases them in reverse.
	SendHotkey(keys ...string) error
	// TypeText types text, pausing interval between characters.
	TypeText(text string, interval time.Duration) error
	// PressKey taps key count times, pausing interval after each tap.
	PressKey(key string, count int, interval time.Duration) error
}
