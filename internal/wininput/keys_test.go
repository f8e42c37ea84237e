package wininput

import (
	"errors"
	"testing"
)

// TestLookupKey_Named verifies named keys and the extended flag.
func TestLookupKey_Named(t *testing.T) {
	k, err := LookupKey("Tab")
	if err != nil || k.VK != 0x09 || k.Extended {
		t.Fatalf("unexpected tab mapping %+v err=%v", k, err)
	}
	k, err = LookupKey("down")
	if err != nil || k.VK != 0x28 || !k.Extended {
		t.Fatalf("unexpected down mapping %+v err=%v", k, err)
	}
}

// TestLookupKey_FunctionKeys verifies f1..f24 mapping.
func TestLookupKey_FunctionKeys(t *testing.T) {
	cases := map[string]uint16{"f1": 0x70, "F4": 0x73, "f8": 0x77, "f12": 0x7B, "f24": 0x87}
	for name, want := range cases {
		k, err := LookupKey(name)
		if err != nil || k.VK != want {
			t.Fatalf("%s: expected 0x%X, got 0x%X err=%v", name, want, k.VK, err)
		}
	}
	for _, bad := range []string{"f0", "f25", "f01", "fx"} {
		if _, err := LookupKey(bad); !errors.Is(err, ErrUnknownKey) {
			t.Fatalf("%s: expected ErrUnknownKey, got %v", bad, err)
		}
	}
}

// TestLookupKey_LettersAndDigits verifies single characters map to ASCII codes.
func TestLookupKey_LettersAndDigits(t *testing.T) {
	k, err := LookupKey("r")
	if err != nil || k.VK != 'R' {
		t.Fatalf("unexpected r mapping %+v err=%v", k, err)
	}
	k, err = LookupKey("f")
	if err != nil || k.VK != 0x46 {
		t.Fatalf("unexpected f mapping %+v err=%v", k, err)
	}
	k, err = LookupKey("5")
	if err != nil || k.VK != '5' {
		t.Fatalf("unexpected 5 mapping %+v err=%v", k, err)
	}
}

// TestLookupKeys_StopsOnUnknown verifies a bad name fails the whole chord.
func TestLookupKeys_StopsOnUnknown(t *testing.T) {
	if _, err := LookupKeys([]string{"shift", "bogus"}); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	keys, err := LookupKeys([]string{"shift", "tab"})
	if err != nil || len(keys) != 2 {
		t.Fatalf("unexpected result %+v err=%v", keys, err)
	}
}
