//go:build windows

package wininput

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
)

// WinInjector injects keyboard input using WinAPI.
type WinInjector struct{}

// NewInjector returns a Windows input injector.
func NewInjector() (Injector, error) {
	return &WinInjector{}, nil
}

// sendKeyboardInput dispatches a single keyboard input event.
func sendKeyboardInput(key win.KEYBDINPUT) error {
	input := win.KEYBD_INPUT{
		Type: win.INPUT_KEYBOARD,
		Ki:   key,
	}
	if win.SendInput(1, unsafe.Pointer(&input), int32(unsafe.Sizeof(input))) != 1 {
		return fmt.Errorf("SendInput failed: %w", syscall.GetLastError())
	}
	return nil
}

// keyDown presses k.
func keyDown(k Key) error {
	return sendKeyboardInput(win.KEYBDINPUT{WVk: k.VK, DwFlags: extendedFlag(k)})
}

// keyUp releases k.
func keyUp(k Key) error {
	return sendKeyboardInput(win.KEYBDINPUT{WVk: k.VK, DwFlags: extendedFlag(k) | win.KEYEVENTF_KEYUP})
}

func extendedFlag(k Key) uint32 {
	if k.Extended {
		return win.KEYEVENTF_EXTENDEDKEY
	}
	return 0
}
