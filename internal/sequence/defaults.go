package sequence

import "time"

const (
	hotkeyFnDelay = 300 * time.Millisecond
	hotkeyDelay   = 200 * time.Millisecond
	typeInterval  = 50 * time.Millisecond
	typeDelay     = 200 * time.Millisecond
	pressInterval = 200 * time.Millisecond
)

func typeStep(text string) Step {
	return Type(text, typeInterval, typeDelay)
}

func pressStep(key string, count int) Step {
	return Press(key, count, pressInterval, 0)
}

func shiftTab() []Step {
	return []Step{
		Hotkey(hotkeyDelay, "shift", "tab"),
		Hotkey(hotkeyDelay, "shift", "tab"),
	}
}

func concat(parts ...[]Step) []Step {
	var out []Step
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// F4 returns the built-in F4 sequence.
func F4() Sequence {
	return Sequence{Name: "F4", Steps: concat(
		[]Step{Hotkey(hotkeyFnDelay, "f8"), typeStep("500")},
		shiftTab(),
		[]Step{
			pressStep("f", 1),
			pressStep("tab", 3),
			typeStep(PlaceholderFutScrip),
			pressStep("tab", 1),
			typeStep(PlaceholderFutScripBp),
			Hotkey(hotkeyFnDelay, "f4"),
			typeStep("500"),
		},
		shiftTab(),
		[]Step{
			pressStep("r", 1),
			pressStep("tab", 1),
			pressStep("down", 2),
			pressStep("tab", 2),
			typeStep(PlaceholderScrip),
		},
	)}
}

// F5 returns the built-in F5 sequence.
func F5() Sequence {
	return Sequence{Name: "F5", Steps: concat(
		[]Step{Hotkey(hotkeyFnDelay, "f5"), typeStep("500")},
		shiftTab(),
		[]Step{
			pressStep("r", 1),
			pressStep("tab", 1),
			pressStep("down", 2),
			pressStep("tab", 2),
			typeStep(PlaceholderScrip),
			Hotkey(hotkeyFnDelay, "f4"),
			typeStep("500"),
		},
		shiftTab(),
		[]Step{
			pressStep("f", 1),
			pressStep("tab", 1),
			pressStep("down", 2),
			pressStep("tab", 2),
			typeStep(PlaceholderFutScrip),
		},
	)}
}

// Default returns a fresh table holding the built-in sequences.
func Default() Table {
	return Table{"F4": F4(), "F5": F5()}
}
