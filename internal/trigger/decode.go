package trigger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ErrUnknownCommand indicates a well-formed message naming no known sequence.
var ErrUnknownCommand = errors.New("unknown command")

// DecodeError reports a payload that is neither a structured trigger nor the legacy token.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode trigger %q: %v", e.Payload, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Message is the structured trigger payload.
type Message struct {
	Command    string `json:"command"`
	SymbolKey  *Field `json:"symbolKey,omitempty"`
	Scrip      *Field `json:"scrip,omitempty"`
	FutScrip   *Field `json:"futScrip,omitempty"`
	FutScripBp *Field `json:"futScripBp,omitempty"`
	Timestamp  *Field `json:"timestamp,omitempty"`
}

// Field is a payload value. Strings are taken as-is; any other JSON kind
// keeps its compact JSON text, so true becomes "true" and 25000 stays "25000".
type Field string

// UnmarshalJSON unquotes strings and stores other values as compact JSON.
func (f *Field) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return fmt.Errorf("field: %w", err)
	}
	*f = Field(buf.String())
	return nil
}

// value returns the trimmed field or def when absent or blank.
func (f *Field) value(def string) string {
	if f == nil {
		return def
	}
	if v := strings.TrimSpace(string(*f)); v != "" {
		return v
	}
	return def
}

// Decoder turns raw payloads into TriggerEvents for a fixed set of commands.
type Decoder struct {
	known map[Command]struct{}
	now   func() time.Time
	newID func() uuid.UUID
}

// NewDecoder returns a decoder that accepts the given commands, or F4 and F5 when none are given.
func NewDecoder(commands ...Command) *Decoder {
	if len(commands) == 0 {
		commands = []Command{CommandF4, CommandF5}
	}
	known := make(map[Command]struct{}, len(commands))
	for _, c := range commands {
		known[c] = struct{}{}
	}
	return &Decoder{known: known, now: time.Now, newID: uuid.New}
}

// Known reports whether c is accepted.
func (d *Decoder) Known(c Command) bool {
	_, ok := d.known[c]
	return ok
}

// Decode parses payload as a structured message, falling back to the legacy bare token.
// A returned error wraps either *DecodeError or ErrUnknownCommand.
func (d *Decoder) Decode(payload []byte) (TriggerEvent, error) {
	if !utf8.Valid(payload) {
		return TriggerEvent{}, &DecodeError{Payload: excerpt(payload), Err: errors.New("invalid utf-8")}
	}
	text := strings.TrimSpace(string(payload))
	if text == "" {
		return TriggerEvent{}, &DecodeError{Payload: "", Err: errors.New("empty payload")}
	}

	var msg Message
	jsonErr := json.Unmarshal([]byte(text), &msg)
	if jsonErr == nil {
		cmd, ok := CommandFromWire(msg.Command)
		if !ok || !d.Known(cmd) {
			return TriggerEvent{}, fmt.Errorf("%q: %w", msg.Command, ErrUnknownCommand)
		}
		return d.structured(cmd, msg), nil
	}

	if text == LegacyToken && d.Known(CommandF4) {
		return d.legacy(), nil
	}
	return TriggerEvent{}, &DecodeError{Payload: excerpt([]byte(text)), Err: jsonErr}
}

func (d *Decoder) structured(cmd Command, msg Message) TriggerEvent {
	received := d.now()
	scrip := msg.Scrip.value(UnknownValue)
	return TriggerEvent{
		ID:         d.newID(),
		Command:    cmd,
		SymbolKey:  msg.SymbolKey.value(UnknownValue),
		Scrip:      scrip,
		FutScrip:   msg.FutScrip.value(scrip),
		FutScripBp: msg.FutScripBp.value(DefaultFutScripBp),
		Timestamp:  msg.Timestamp.value(received.Format(TimestampLayout)),
		ReceivedAt: received,
	}
}

func (d *Decoder) legacy() TriggerEvent {
	received := d.now()
	return TriggerEvent{
		ID:         d.newID(),
		Command:    CommandF4,
		SymbolKey:  LegacySymbolKey,
		Scrip:      UnknownValue,
		FutScrip:   UnknownValue,
		FutScripBp: DefaultFutScripBp,
		Timestamp:  received.Format(TimestampLayout),
		ReceivedAt: received,
		Legacy:     true,
	}
}

// excerpt shortens payloads for error messages.
func excerpt(b []byte) string {
	const limit = 64
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
