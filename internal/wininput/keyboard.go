//go:build windows

package wininput

import (
	"fmt"
	"time"
	"unicode/utf16"

	"github.com/lxn/win"
)

// SendHotkey presses keys in order and releases them in reverse order.
func (w *WinInjector) SendHotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("hotkey needs at least one key")
	}
	resolved, err := LookupKeys(keys)
	if err != nil {
		return err
	}
	pressed := make([]Key, 0, len(resolved))
	var downErr error
	for _, k := range resolved {
		if downErr = keyDown(k); downErr != nil {
			break
		}
		pressed = append(pressed, k)
	}
	var upErr error
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := keyUp(pressed[i]); err != nil && upErr == nil {
			upErr = err
		}
	}
	if downErr != nil {
		return downErr
	}
	return upErr
}

// TypeText types Unicode text into the focused window.
func (w *WinInjector) TypeText(text string, interval time.Duration) error {
	if text == "" {
		return nil
	}
	codes := utf16.Encode([]rune(text))
	for i, code := range codes {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE}); err != nil {
			return err
		}
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE | win.KEYEVENTF_KEYUP}); err != nil {
			return err
		}
		if interval > 0 && i < len(codes)-1 {
			time.Sleep(interval)
		}
	}
	return nil
}

// PressKey taps a single key count times.
func (w *WinInjector) PressKey(key string, count int, interval time.Duration) error {
	k, err := LookupKey(key)
	if err != nil {
		return err
	}
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		if err := keyDown(k); err != nil {
			return err
		}
		if err := keyUp(k); err != nil {
			return err
		}
		if interval > 0 {
			time.Sleep(interval)
		}
	}
	return nil
}
