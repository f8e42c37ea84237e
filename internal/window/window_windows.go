//go:build windows

package window

import (
	"fmt"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	getWindowTextW       = user32.NewProc("GetWindowTextW")
	getWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
)

// focusStepDelay separates the restore/raise/foreground calls so the shell can keep up.
const focusStepDelay = 100 * time.Millisecond

type winService struct{}

// NewService returns the WinAPI-backed window service.
func NewService() (Service, error) {
	return &winService{}, nil
}

// List returns visible, titled, unowned top-level windows.
func (s *winService) List() ([]Info, error) {
	state := &enumState{}
	callback := syscall.NewCallback(state.enumProc)
	if err := windows.EnumWindows(callback, nil); err != nil {
		return nil, fmt.Errorf("EnumWindows failed: %w", err)
	}
	return Filter(state.list), nil
}

// Focus restores, raises, and activates the target, then taps Alt to confirm input reaches it.
func (s *winService) Focus(target Info) error {
	hwnd := windows.HWND(target.Handle)
	if hwnd == 0 || !windows.IsWindow(hwnd) {
		list, err := s.List()
		if err != nil {
			return err
		}
		live, ok := Match(list, target)
		if !ok {
			return fmt.Errorf("%s: %w", target.DisplayName(), ErrNotFound)
		}
		hwnd = windows.HWND(live.Handle)
	}

	h := win.HWND(hwnd)
	if win.IsIconic(h) {
		win.ShowWindow(h, win.SW_RESTORE)
	} else {
		win.ShowWindow(h, win.SW_SHOW)
	}
	time.Sleep(focusStepDelay)
	win.BringWindowToTop(h)
	time.Sleep(focusStepDelay)
	if !win.SetForegroundWindow(h) {
		return fmt.Errorf("SetForegroundWindow failed for %s", target.DisplayName())
	}
	time.Sleep(focusStepDelay)

	if win.GetForegroundWindow() != h {
		return fmt.Errorf("%s did not become the foreground window", target.DisplayName())
	}
	tapAlt()
	return nil
}

type enumState struct {
	list []Info
}

func (s *enumState) enumProc(hwnd windows.HWND, lparam uintptr) uintptr {
	if !includeWindow(hwnd) {
		return 1
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		return 1
	}
	s.list = append(s.list, Info{
		Handle:    uintptr(hwnd),
		PID:       pid,
		Name:      imageName(pid),
		Title:     windowText(hwnd),
		Minimized: win.IsIconic(win.HWND(hwnd)),
	})
	return 1
}

// includeWindow applies the taskbar heuristic: visible, titled, unowned, not a tool window.
func includeWindow(hwnd windows.HWND) bool {
	if !windows.IsWindowVisible(hwnd) {
		return false
	}
	if windowText(hwnd) == "" {
		return false
	}
	h := win.HWND(hwnd)
	if win.GetWindow(h, win.GW_OWNER) != 0 {
		return false
	}
	exStyle := uint32(win.GetWindowLong(h, win.GWL_EXSTYLE))
	if exStyle&win.WS_EX_TOOLWINDOW != 0 && exStyle&win.WS_EX_APPWINDOW == 0 {
		return false
	}
	return true
}

// windowText returns the window title, or "" when it has none.
func windowText(hwnd windows.HWND) string {
	l, _, _ := getWindowTextLengthW.Call(uintptr(hwnd))
	if l == 0 {
		return ""
	}
	buf := make([]uint16, l+1)
	n, _, _ := getWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// imageName returns the executable base name for pid, or "" when it cannot be queried.
func imageName(pid uint32) string {
	if pid == 0 {
		return ""
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	path := windows.UTF16ToString(buf[:size])
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '\\' || path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}

// tapAlt presses and releases Alt, which also unlocks SetForegroundWindow for later calls.
func tapAlt() {
	inputs := []win.KEYBD_INPUT{
		{Type: win.INPUT_KEYBOARD, Ki: win.KEYBDINPUT{WVk: win.VK_MENU}},
		{Type: win.INPUT_KEYBOARD, Ki: win.KEYBDINPUT{WVk: win.VK_MENU, DwFlags: win.KEYEVENTF_KEYUP}},
	}
	for i := range inputs {
		win.SendInput(1, unsafe.Pointer(&inputs[i]), int32(unsafe.Sizeof(inputs[i])))
		time.Sleep(50 * time.Millisecond)
	}
}
