// Package sequence defines the keystroke step tables run for each trigger command.
package sequence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/frudas24/keytrigger/internal/wininput"
)

// Kind selects which injector primitive a step uses.
type Kind string

const (
	// KindHotkey presses all keys together then releases them.
	KindHotkey Kind = "hotkey"
	// KindType types text one character at a time.
	KindType Kind = "type"
	// KindPress taps a single key Count times.
	KindPress Kind = "press"
)

// Placeholders substituted into type steps at execution time.
const (
	PlaceholderScrip      = "{scrip}"
	PlaceholderFutScrip   = "{futScrip}"
	PlaceholderFutScripBp = "{futScripBp}"
)

// Step is one keystroke action followed by a settle delay.
type Step struct {
	Kind     Kind          `yaml:"kind"`
	Keys     []string      `yaml:"keys,omitempty"`
	Text     string        `yaml:"text,omitempty"`
	Key      string        `yaml:"key,omitempty"`
	Count    int           `yaml:"count,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"`
	Delay    time.Duration `yaml:"delay,omitempty"`
}

// Hotkey builds a hotkey step.
func Hotkey(delay time.Duration, keys ...string) Step {
	return Step{Kind: KindHotkey, Keys: keys, Delay: delay}
}

// Type builds a type-text step.
func Type(text string, interval, delay time.Duration) Step {
	return Step{Kind: KindType, Text: text, Interval: interval, Delay: delay}
}

// Press builds a press-key step.
func Press(key string, count int, interval, delay time.Duration) Step {
	return Step{Kind: KindPress, Key: key, Count: count, Interval: interval, Delay: delay}
}

// Validate checks the step shape and that every key name is known.
func (s Step) Validate() error {
	switch s.Kind {
	case KindHotkey:
		if len(s.Keys) == 0 {
			return errors.New("hotkey step needs keys")
		}
		if _, err := wininput.LookupKeys(s.Keys); err != nil {
			return err
		}
	case KindType:
		if s.Text == "" {
			return errors.New("type step needs text")
		}
	case KindPress:
		if s.Key == "" {
			return errors.New("press step needs key")
		}
		if s.Count < 0 {
			return fmt.Errorf("press step count %d is negative", s.Count)
		}
		if _, err := wininput.LookupKey(s.Key); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown step kind %q", s.Kind)
	}
	if s.Interval < 0 || s.Delay < 0 {
		return errors.New("step delays must not be negative")
	}
	return nil
}

// Presses returns the effective repeat count for press steps.
func (s Step) Presses() int {
	if s.Count <= 0 {
		return 1
	}
	return s.Count
}

// String renders the step for logs.
func (s Step) String() string {
	switch s.Kind {
	case KindHotkey:
		return "hotkey " + strings.Join(s.Keys, "+")
	case KindType:
		return fmt.Sprintf("type %q", s.Text)
	case KindPress:
		if s.Presses() > 1 {
			return fmt.Sprintf("press %s x%d", s.Key, s.Presses())
		}
		return "press " + s.Key
	default:
		return string(s.Kind)
	}
}

// Params carries the trigger fields a sequence may reference.
type Params struct {
	Scrip      string
	FutScrip   string
	FutScripBp string
}

// Expand replaces placeholders in text.
func (p Params) Expand(text string) string {
	r := strings.NewReplacer(
		PlaceholderScrip, p.Scrip,
		PlaceholderFutScrip, p.FutScrip,
		PlaceholderFutScripBp, p.FutScripBp,
	)
	return r.Replace(text)
}

// Resolve returns a copy of s with placeholders substituted.
func (s Step) Resolve(p Params) Step {
	if s.Kind == KindType {
		s.Text = p.Expand(s.Text)
	}
	return s
}

// Sequence is a named, ordered list of steps.
type Sequence struct {
	Name  string
	Steps []Step
}

// Validate checks every step and reports the first failing index.
func (q Sequence) Validate() error {
	if len(q.Steps) == 0 {
		return fmt.Errorf("sequence %s has no steps", q.Name)
	}
	for i, s := range q.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sequence %s step %d: %w", q.Name, i+1, err)
		}
	}
	return nil
}

// Table maps command names to sequences.
type Table map[string]Sequence

// Lookup returns the sequence bound to name.
func (t Table) Lookup(name string) (Sequence, bool) {
	q, ok := t[name]
	return q, ok
}

// Names returns the sorted command names in the table.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every sequence in the table.
func (t Table) Validate() error {
	for _, name := range t.Names() {
		if err := t[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}
