// Package trigger accepts trigger messages on a local TCP socket and turns them into events.
package trigger

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Command names a step sequence a trigger asks to run.
type Command string

const (
	// CommandF4 runs the F4 sequence.
	CommandF4 Command = "F4"
	// CommandF5 runs the F5 sequence.
	CommandF5 Command = "F5"
)

const (
	wirePrefix = "TRIGGER_"
	ackSuffix  = "_TRIGGERED"

	// ResponseUnknown is sent for any payload that is not a known trigger.
	ResponseUnknown = "UNKNOWN_COMMAND"
	// LegacyToken is the bare payload older clients send.
	LegacyToken = "TRIGGER_F4"
)

// Placeholder values used when a payload omits a field.
const (
	UnknownValue      = "Unknown"
	LegacySymbolKey   = "Legacy"
	DefaultFutScripBp = "0"
	TimestampLayout   = "2006-01-02 15:04:05"
)

// CommandFromWire maps "TRIGGER_F4" to CommandF4. ok is false when the prefix is missing.
func CommandFromWire(wire string) (Command, bool) {
	name, ok := strings.CutPrefix(strings.TrimSpace(wire), wirePrefix)
	if !ok || name == "" {
		return "", false
	}
	return Command(name), true
}

// Wire returns the request form of the command, e.g. "TRIGGER_F4".
func (c Command) Wire() string {
	return wirePrefix + string(c)
}

// Ack returns the acknowledgment token for the command, e.g. "F4_TRIGGERED".
func (c Command) Ack() string {
	return string(c) + ackSuffix
}

// TriggerEvent is a fully decoded trigger. It is never mutated after decoding.
type TriggerEvent struct {
	ID         uuid.UUID `json:"id"`
	Command    Command   `json:"command"`
	SymbolKey  string    `json:"symbolKey"`
	Scrip      string    `json:"scrip"`
	FutScrip   string    `json:"futScrip"`
	FutScripBp string    `json:"futScripBp"`
	Timestamp  string    `json:"timestamp"`
	ReceivedAt time.Time `json:"receivedAt"`
	Legacy     bool      `json:"legacy,omitempty"`
}
