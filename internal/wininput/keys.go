package wininput

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a Windows virtual-key code plus whether it needs the extended flag.
type Key struct {
	VK       uint16
	Extended bool
}

var namedKeys = map[string]Key{
	"backspace": {VK: 0x08},
	"tab":       {VK: 0x09},
	"enter":     {VK: 0x0D},
	"return":    {VK: 0x0D},
	"shift":     {VK: 0x10},
	"ctrl":      {VK: 0x11},
	"control":   {VK: 0x11},
	"alt":       {VK: 0x12},
	"pause":     {VK: 0x13},
	"capslock":  {VK: 0x14},
	"esc":       {VK: 0x1B},
	"escape":    {VK: 0x1B},
	"space":     {VK: 0x20},
	"pageup":    {VK: 0x21, Extended: true},
	"pagedown":  {VK: 0x22, Extended: true},
	"end":       {VK: 0x23, Extended: true},
	"home":      {VK: 0x24, Extended: true},
	"left":      {VK: 0x25, Extended: true},
	"up":        {VK: 0x26, Extended: true},
	"right":     {VK: 0x27, Extended: true},
	"down":      {VK: 0x28, Extended: true},
	"insert":    {VK: 0x2D, Extended: true},
	"delete":    {VK: 0x2E, Extended: true},
	"del":       {VK: 0x2E, Extended: true},
	"win":       {VK: 0x5B, Extended: true},
	"cmd":       {VK: 0x5B, Extended: true},
}

// LookupKey maps a key name (case-insensitive) to its virtual-key code.
// Single letters and digits map to their ASCII codes; f1..f24 map to VK_F1..VK_F24.
func LookupKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if k, ok := namedKeys[n]; ok {
		return k, nil
	}
	if len(n) == 1 {
		c := n[0]
		switch {
		case c >= 'a' && c <= 'z':
			return Key{VK: uint16(c - 'a' + 'A')}, nil
		case c >= '0' && c <= '9':
			return Key{VK: uint16(c)}, nil
		}
	}
	if len(n) >= 2 && n[0] == 'f' {
		num, err := strconv.Atoi(n[1:])
		if err == nil && num >= 1 && num <= 24 && strconv.Itoa(num) == n[1:] {
			return Key{VK: uint16(0x70 + num - 1)}, nil
		}
	}
	return Key{}, fmt.Errorf("%q: %w", name, ErrUnknownKey)
}

// LookupKeys resolves every name or returns the first failure.
func LookupKeys(names []string) ([]Key, error) {
	out := make([]Key, 0, len(names))
	for _, name := range names {
		k, err := LookupKey(name)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}
