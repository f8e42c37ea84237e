package app

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frudas24/keytrigger/internal/config"
	"github.com/frudas24/keytrigger/internal/sequence"
	"github.com/frudas24/keytrigger/internal/testutil"
	"github.com/frudas24/keytrigger/internal/window"
)

var terminal = window.Info{Handle: 0x20, PID: 77, Name: "terminal.exe", Title: "Trading Terminal"}

func testConfig() config.Config {
	return config.Config{
		TriggerAddr:  "127.0.0.1:0",
		StatusAddr:   "127.0.0.1:0",
		MaxPayload:   1024,
		ReadTimeout:  time.Second,
		PollInterval: 5 * time.Millisecond,
		FocusSettle:  time.Millisecond,
	}
}

// fastTable mirrors the F4 shape without settle delays.
func fastTable() sequence.Table {
	return sequence.Table{
		"F4": {Name: "F4", Steps: []sequence.Step{
			sequence.Hotkey(0, "f8"),
			sequence.Type(sequence.PlaceholderFutScrip, 0, 0),
			sequence.Type(sequence.PlaceholderFutScripBp, 0, 0),
			sequence.Type(sequence.PlaceholderScrip, 0, 0),
		}},
		"F5": {Name: "F5", Steps: []sequence.Step{sequence.Hotkey(0, "f5")}},
	}
}

func startApp(t *testing.T, cfg config.Config, inj *testutil.FakeInjector, windows *testutil.FakeWindows) *App {
	t.Helper()
	a, err := New(cfg, terminal, fastTable(), inj, windows, prometheus.NewRegistry(), false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		if err := a.Stop(); err != nil {
			t.Errorf("stop: %v", err)
		}
	})
	return a
}

func sendTrigger(t *testing.T, addr net.Addr, payload string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return strings.TrimSpace(line)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestApp_EndToEnd verifies a socket trigger is focused, typed, and cleared.
func TestApp_EndToEnd(t *testing.T) {
	inj := testutil.NewFakeInjector()
	windows := &testutil.FakeWindows{Windows: []window.Info{terminal}}
	a := startApp(t, testConfig(), inj, windows)

	if windows.FocusCount() != 1 {
		t.Fatalf("expected initial focus, got %d", windows.FocusCount())
	}

	resp := sendTrigger(t, a.TriggerAddr(), `{"command":"TRIGGER_F4","scrip":"NIFTY24DEC","futScrip":"NIFTY24DECFUT"}`)
	if resp != "F4_TRIGGERED" {
		t.Fatalf("expected F4_TRIGGERED, got %q", resp)
	}
	waitFor(t, "sequence", func() bool { return len(inj.Snapshot()) == 4 && !a.Session().Pending() })

	got := strings.Join(inj.Strings(), " | ")
	want := "hotkey:f8 | type:NIFTY24DECFUT | type:0 | type:NIFTY24DEC"
	if got != want {
		t.Fatalf("unexpected calls:\n got  %s\n want %s", got, want)
	}
	if windows.FocusCount() != 2 {
		t.Fatalf("expected re-focus before the sequence, got %d focus calls", windows.FocusCount())
	}
}

// TestApp_UnknownCommand verifies rejected payloads never reach the sequencer.
func TestApp_UnknownCommand(t *testing.T) {
	inj := testutil.NewFakeInjector()
	a := startApp(t, testConfig(), inj, &testutil.FakeWindows{})

	if resp := sendTrigger(t, a.TriggerAddr(), `{"command":"TRIGGER_F9"}`); resp != "UNKNOWN_COMMAND" {
		t.Fatalf("expected UNKNOWN_COMMAND, got %q", resp)
	}
	if a.Session().Pending() {
		t.Fatalf("expected state unchanged")
	}
	if _, ok := a.Session().LastEvent(); ok {
		t.Fatalf("expected no last event")
	}
}

// TestApp_OversizedPayload verifies a message over MaxPayload is refused and nothing runs.
func TestApp_OversizedPayload(t *testing.T) {
	inj := testutil.NewFakeInjector()
	a := startApp(t, testConfig(), inj, &testutil.FakeWindows{})

	payload := `{"command":"TRIGGER_F4","scrip":"X","pad":"` + strings.Repeat("x", 1100) + `"}`
	if resp := sendTrigger(t, a.TriggerAddr(), payload); resp != "UNKNOWN_COMMAND" {
		t.Fatalf("expected UNKNOWN_COMMAND, got %q", resp)
	}
	if a.Session().Pending() {
		t.Fatalf("expected state unchanged")
	}
	if _, ok := a.Session().LastEvent(); ok {
		t.Fatalf("expected no last event")
	}
	if got := len(inj.Snapshot()); got != 0 {
		t.Fatalf("expected no injected input, got %d", got)
	}
}

// TestApp_StatusState verifies /api/state reflects the session after a run.
func TestApp_StatusState(t *testing.T) {
	inj := testutil.NewFakeInjector()
	a := startApp(t, testConfig(), inj, &testutil.FakeWindows{})

	sendTrigger(t, a.TriggerAddr(), `{"command":"TRIGGER_F5","scrip":"X"}`)
	waitFor(t, "run", func() bool { return a.Sequencer().Stats().Runs == 1 })

	res, err := http.Get("http://" + a.StatusAddr().String() + "/api/state")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	defer res.Body.Close()
	var body stateResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Pending || body.Executed != 1 || body.LastEvent == nil || body.LastEvent.Scrip != "X" {
		t.Fatalf("unexpected state: %+v", body)
	}
	if body.Target == nil || body.Target.PID != terminal.PID {
		t.Fatalf("expected target in state, got %+v", body.Target)
	}

	metricsRes, err := http.Get("http://" + a.StatusAddr().String() + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer metricsRes.Body.Close()
	if metricsRes.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", metricsRes.StatusCode)
	}
}

// TestApp_FocusFailureIsWarning verifies a failing window service does not stop the session.
func TestApp_FocusFailureIsWarning(t *testing.T) {
	inj := testutil.NewFakeInjector()
	windows := &testutil.FakeWindows{FocusErr: window.ErrNotFound}
	a := startApp(t, testConfig(), inj, windows)

	sendTrigger(t, a.TriggerAddr(), `{"command":"TRIGGER_F5"}`)
	waitFor(t, "run", func() bool { return len(inj.Snapshot()) == 1 && !a.Session().Pending() })
}

// TestApp_BindFailure verifies a busy trigger port aborts Start.
func TestApp_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig()
	cfg.TriggerAddr = ln.Addr().String()
	a, err := New(cfg, terminal, fastTable(), testutil.NewFakeInjector(), &testutil.FakeWindows{}, nil, false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Start(); err == nil {
		_ = a.Stop()
		t.Fatalf("expected bind error")
	}
	if err := a.Stop(); err != nil {
		t.Fatalf("stop after failed start: %v", err)
	}
}

// TestNew_Validates verifies required collaborators are checked.
func TestNew_Validates(t *testing.T) {
	cfg := testConfig()
	if _, err := New(cfg, terminal, fastTable(), nil, &testutil.FakeWindows{}, nil, false); err == nil {
		t.Fatalf("expected error without injector")
	}
	if _, err := New(cfg, terminal, sequence.Table{}, testutil.NewFakeInjector(), &testutil.FakeWindows{}, nil, false); err == nil {
		t.Fatalf("expected error with empty table")
	}
	if _, err := New(cfg, terminal, fastTable(), testutil.NewFakeInjector(), nil, nil, false); err == nil {
		t.Fatalf("expected error without window service")
	}
	if _, err := New(cfg, window.Info{}, fastTable(), testutil.NewFakeInjector(), nil, nil, false); err != nil {
		t.Fatalf("expected no window service needed without target: %v", err)
	}
}
