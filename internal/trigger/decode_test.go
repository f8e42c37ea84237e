package trigger

import (
	"errors"
	"testing"
	"time"
)

func fixedDecoder(commands ...Command) *Decoder {
	d := NewDecoder(commands...)
	d.now = func() time.Time { return time.Date(2024, 12, 2, 9, 15, 0, 0, time.Local) }
	return d
}

// TestDecode_Structured verifies a complete structured message is decoded verbatim.
func TestDecode_Structured(t *testing.T) {
	d := fixedDecoder()
	payload := `{"command":"TRIGGER_F4","symbolKey":"BANKNIFTY","scrip":"NIFTY24DEC","futScrip":"NIFTY24DECFUT","futScripBp":"23500.5","timestamp":"2024-12-01 10:00:00"}`
	ev, err := d.Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Command != CommandF4 || ev.SymbolKey != "BANKNIFTY" || ev.Scrip != "NIFTY24DEC" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.FutScrip != "NIFTY24DECFUT" || ev.FutScripBp != "23500.5" || ev.Timestamp != "2024-12-01 10:00:00" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.Legacy {
		t.Fatalf("structured event marked legacy")
	}
	if ev.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected event id")
	}
}

// TestDecode_Defaults verifies omitted and blank fields get their defaults.
func TestDecode_Defaults(t *testing.T) {
	d := fixedDecoder()
	ev, err := d.Decode([]byte(`{"command":"TRIGGER_F5","scrip":"NIFTY24DEC","symbolKey":"  "}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Command != CommandF5 {
		t.Fatalf("expected F5, got %s", ev.Command)
	}
	if ev.SymbolKey != UnknownValue {
		t.Fatalf("expected symbolKey %q, got %q", UnknownValue, ev.SymbolKey)
	}
	if ev.FutScrip != "NIFTY24DEC" {
		t.Fatalf("expected futScrip to default to scrip, got %q", ev.FutScrip)
	}
	if ev.FutScripBp != DefaultFutScripBp {
		t.Fatalf("expected futScripBp %q, got %q", DefaultFutScripBp, ev.FutScripBp)
	}
	if ev.Timestamp != "2024-12-02 09:15:00" {
		t.Fatalf("expected receipt timestamp, got %q", ev.Timestamp)
	}
}

// TestDecode_NoScrip verifies scrip and futScrip fall back to Unknown.
func TestDecode_NoScrip(t *testing.T) {
	ev, err := fixedDecoder().Decode([]byte(`{"command":"TRIGGER_F4"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Scrip != UnknownValue || ev.FutScrip != UnknownValue {
		t.Fatalf("expected Unknown scrips, got %+v", ev)
	}
}

// TestDecode_NumericFields verifies numbers are accepted where strings are expected.
func TestDecode_NumericFields(t *testing.T) {
	ev, err := fixedDecoder().Decode([]byte(`{"command":"TRIGGER_F4","scrip":"X","futScripBp":23500.25}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.FutScripBp != "23500.25" {
		t.Fatalf("expected numeric futScripBp, got %q", ev.FutScripBp)
	}
}

// TestDecode_NonStringFields verifies bool and other JSON kinds become their JSON text.
func TestDecode_NonStringFields(t *testing.T) {
	ev, err := fixedDecoder().Decode([]byte(`{"command":"TRIGGER_F4","scrip":true,"futScrip":false,"symbolKey":[1, 2]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Scrip != "true" || ev.FutScrip != "false" || ev.SymbolKey != "[1,2]" {
		t.Fatalf("unexpected fields: %+v", ev)
	}
}

// TestDecode_Legacy verifies the bare token maps to an F4 event with placeholders.
func TestDecode_Legacy(t *testing.T) {
	for _, payload := range []string{"TRIGGER_F4", "TRIGGER_F4\n", "  TRIGGER_F4\r\n"} {
		ev, err := fixedDecoder().Decode([]byte(payload))
		if err != nil {
			t.Fatalf("decode %q: %v", payload, err)
		}
		if !ev.Legacy || ev.Command != CommandF4 {
			t.Fatalf("expected legacy F4, got %+v", ev)
		}
		if ev.SymbolKey != LegacySymbolKey || ev.Scrip != UnknownValue || ev.FutScripBp != DefaultFutScripBp {
			t.Fatalf("unexpected legacy fields: %+v", ev)
		}
	}
}

// TestDecode_Rejects verifies every unusable payload is rejected with the right error kind.
func TestDecode_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		unknown bool
	}{
		{name: "unknown structured", payload: []byte(`{"command":"TRIGGER_F9"}`), unknown: true},
		{name: "missing command", payload: []byte(`{"scrip":"X"}`), unknown: true},
		{name: "wrong prefix", payload: []byte(`{"command":"F4"}`), unknown: true},
		{name: "legacy F5 token", payload: []byte("TRIGGER_F5")},
		{name: "garbage", payload: []byte("hello")},
		{name: "empty", payload: nil},
		{name: "invalid utf8", payload: []byte{0xff, 0xfe, 0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fixedDecoder().Decode(tc.payload)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := errors.Is(err, ErrUnknownCommand); got != tc.unknown {
				t.Fatalf("ErrUnknownCommand=%v, want %v (err=%v)", got, tc.unknown, err)
			}
			var de *DecodeError
			if !tc.unknown && !errors.As(err, &de) {
				t.Fatalf("expected DecodeError, got %T", err)
			}
		})
	}
}

// TestDecode_ExtraCommands verifies commands beyond F4 and F5 can be registered.
func TestDecode_ExtraCommands(t *testing.T) {
	d := fixedDecoder(CommandF4, Command("EXIT"))
	ev, err := d.Decode([]byte(`{"command":"TRIGGER_EXIT","scrip":"X"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Command.Ack() != "EXIT_TRIGGERED" {
		t.Fatalf("unexpected ack %q", ev.Command.Ack())
	}
	if _, err := d.Decode([]byte(`{"command":"TRIGGER_F5"}`)); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected F5 to be unknown, got %v", err)
	}
}

// TestCommandFromWire verifies the wire prefix is required.
func TestCommandFromWire(t *testing.T) {
	if c, ok := CommandFromWire("TRIGGER_F5"); !ok || c != CommandF5 {
		t.Fatalf("expected F5, got %q %v", c, ok)
	}
	for _, wire := range []string{"", "TRIGGER_", "F4", "trigger_f4"} {
		if _, ok := CommandFromWire(wire); ok {
			t.Fatalf("expected %q to be rejected", wire)
		}
	}
	if CommandF4.Wire() != "TRIGGER_F4" || CommandF4.Ack() != "F4_TRIGGERED" {
		t.Fatalf("unexpected wire forms")
	}
}
