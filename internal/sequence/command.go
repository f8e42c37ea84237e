package sequence

import (
	"errors"
	"strings"
	"time"
)

const (
	adhocHotkeyDelay   = 100 * time.Millisecond
	adhocTypeInterval  = 10 * time.Millisecond
	adhocPressInterval = 100 * time.Millisecond
)

// ParseCommand turns an operator command into a single step.
// "type:<text>" types text, "ctrl+c" sends a hotkey, anything else presses one key.
func ParseCommand(command string) (Step, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Step{}, errors.New("empty command")
	}
	if len(command) >= 5 && strings.EqualFold(command[:5], "type:") {
		text := command[5:]
		if text == "" {
			return Step{}, errors.New("type command needs text")
		}
		return Type(text, adhocTypeInterval, 0), nil
	}

	lower := strings.ToLower(command)
	var step Step
	if strings.Contains(lower, "+") {
		parts := strings.Split(lower, "+")
		keys := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				keys = append(keys, p)
			}
		}
		step = Hotkey(adhocHotkeyDelay, keys...)
	} else {
		step = Press(lower, 1, adhocPressInterval, 0)
	}
	if err := step.Validate(); err != nil {
		return Step{}, err
	}
	return step, nil
}
