// Package window describes top-level application windows and how to focus them.
package window

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound indicates no window matched a selector or reference.
	ErrNotFound = errors.New("window not found")
	// ErrUnsupported indicates window enumeration and focus are not available.
	ErrUnsupported = errors.New("window service is only supported on Windows")
)

// Info identifies a top-level application window.
type Info struct {
	Handle    uintptr `json:"hwnd"`
	PID       uint32  `json:"pid"`
	Name      string  `json:"name"`
	Title     string  `json:"title"`
	Minimized bool    `json:"minimized,omitempty"`
}

// IsZero reports whether the info carries no identity.
func (i Info) IsZero() bool {
	return i.Handle == 0 && i.PID == 0 && i.Name == ""
}

// DisplayName returns "name - title" for menus and logs.
func (i Info) DisplayName() string {
	if i.Name == "" {
		return i.Title
	}
	return i.Name + " - " + i.Title
}

// Service enumerates and focuses application windows.
type Service interface {
	List() ([]Info, error)
	Focus(target Info) error
}

var systemProcesses = map[string]struct{}{
	"dwm.exe":      {},
	"winlogon.exe": {},
	"csrss.exe":    {},
	"smss.exe":     {},
}

// Filter drops system processes and placeholder titles, keeping the first window per title.
func Filter(list []Info) []Info {
	out := make([]Info, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		title := strings.TrimSpace(w.Title)
		switch {
		case title == "", title == "N/A", title == "Console":
			continue
		case strings.HasPrefix(title, "Windows"):
			continue
		}
		if _, ok := systemProcesses[strings.ToLower(w.Name)]; ok {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		w.Title = title
		out = append(out, w)
	}
	return out
}

// Select picks a window from list.
//
// Accepted selectors:
//
//	3              1-based index into list
//	pid:1234       exact process id
//	exe:app.exe    process image name, case-insensitive, ".exe" optional
//	anything else  case-insensitive title substring
func Select(list []Info, selector string) (Info, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return Info{}, fmt.Errorf("empty selector: %w", ErrNotFound)
	}
	lower := strings.ToLower(selector)

	if idx, err := strconv.Atoi(selector); err == nil {
		if idx < 1 || idx > len(list) {
			return Info{}, fmt.Errorf("index %d out of range 1-%d: %w", idx, len(list), ErrNotFound)
		}
		return list[idx-1], nil
	}

	if raw, ok := strings.CutPrefix(lower, "pid:"); ok {
		pid, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return Info{}, fmt.Errorf("invalid pid selector %q: %w", selector, err)
		}
		for _, w := range list {
			if w.PID == uint32(pid) {
				return w, nil
			}
		}
		return Info{}, fmt.Errorf("pid %d: %w", pid, ErrNotFound)
	}

	if raw, ok := strings.CutPrefix(lower, "exe:"); ok {
		want := trimExe(strings.TrimSpace(raw))
		for _, w := range list {
			if trimExe(strings.ToLower(w.Name)) == want {
				return w, nil
			}
		}
		return Info{}, fmt.Errorf("process %q: %w", raw, ErrNotFound)
	}

	for _, w := range list {
		if strings.Contains(strings.ToLower(w.Title), lower) {
			return w, nil
		}
	}
	return Info{}, fmt.Errorf("title %q: %w", selector, ErrNotFound)
}

// Match finds the live window that best corresponds to a previously selected one.
// Handle wins, then PID, then process name.
func Match(list []Info, target Info) (Info, bool) {
	if target.Handle != 0 {
		for _, w := range list {
			if w.Handle == target.Handle {
				return w, true
			}
		}
	}
	if target.PID != 0 {
		for _, w := range list {
			if w.PID == target.PID {
				return w, true
			}
		}
	}
	if target.Name != "" {
		want := trimExe(strings.ToLower(target.Name))
		for _, w := range list {
			if trimExe(strings.ToLower(w.Name)) == want {
				return w, true
			}
		}
	}
	return Info{}, false
}

func trimExe(name string) string {
	return strings.TrimSuffix(name, ".exe")
}
