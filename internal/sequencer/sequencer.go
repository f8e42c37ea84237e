// Package sequencer consumes pending triggers and plays the matching step sequence
// against the target window.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/frudas24/keytrigger/internal/metrics"
	"github.com/frudas24/keytrigger/internal/sequence"
	"github.com/frudas24/keytrigger/internal/status"
	"github.com/frudas24/keytrigger/internal/trigger"
	"github.com/frudas24/keytrigger/internal/window"
	"github.com/frudas24/keytrigger/internal/wininput"
)

// State is the sequencer's position in its cycle.
type State string

// Cycle states, in the order a trigger moves through them.
const (
	StateIdle      State = "IDLE"
	StateTriggered State = "TRIGGERED"
	StateFocusing  State = "FOCUSING"
	StateExecuting State = "EXECUTING"
)

// ErrNoSequence is returned when a trigger names a command without a step table.
var ErrNoSequence = errors.New("no sequence for command")

// FocusError reports that the target window could not be activated.
type FocusError struct {
	Window window.Info
	Err    error
}

func (e *FocusError) Error() string {
	return fmt.Sprintf("focus %s: %v", e.Window.DisplayName(), e.Err)
}

func (e *FocusError) Unwrap() error {
	return e.Err
}

// InjectionError reports a single failed step.
type InjectionError struct {
	Sequence string
	Index    int
	Step     sequence.Step
	Err      error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("%s step %d (%s): %v", e.Sequence, e.Index+1, e.Step, e.Err)
}

func (e *InjectionError) Unwrap() error {
	return e.Err
}

// Source is the shared trigger state as seen by the consumer.
type Source interface {
	Take() (trigger.TriggerEvent, uint64, bool)
	Complete(gen uint64) bool
	Target() (window.Info, bool)
}

// Config controls timing and logging.
type Config struct {
	PollInterval time.Duration
	FocusSettle  time.Duration
	Debug        bool
}

// Result summarizes one trigger cycle.
type Result struct {
	ID       string
	Command  string
	Steps    int
	Errors   []error
	Focus    error
	Err      error
	Duration time.Duration
}

// Failed returns the number of failed steps.
func (r Result) Failed() int {
	return len(r.Errors)
}

// Stats is a read-only view for diagnostics.
type Stats struct {
	State       State  `json:"state"`
	Runs        int    `json:"runs"`
	FailedSteps int    `json:"failedSteps"`
	LastCommand string `json:"lastCommand,omitempty"`
	LastError   string `json:"lastError,omitempty"`
}

// Sequencer is the single consumer of the shared trigger state.
type Sequencer struct {
	cfg      Config
	src      Source
	table    sequence.Table
	injector wininput.Injector
	windows  window.Service
	sink     metrics.Sink
	events   status.Publisher
	clock    func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	mu    sync.RWMutex
	state State
	stats Stats
}

// New creates a sequencer. windows may be nil when no target is ever focused.
func New(cfg Config, src Source, table sequence.Table, injector wininput.Injector, windows window.Service, sink metrics.Sink, events status.Publisher) *Sequencer {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if events == nil {
		events = status.Discard
	}
	return &Sequencer{
		cfg:      cfg,
		src:      src,
		table:    table,
		injector: injector,
		windows:  windows,
		sink:     sink,
		events:   events,
		clock:    time.Now,
		sleep:    sleepContext,
		state:    StateIdle,
		stats:    Stats{State: StateIdle},
	}
}

// Run polls for pending triggers until ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	log.Printf("sequencer: started, poll=%s settle=%s", s.cfg.PollInterval, s.cfg.FocusSettle)
	for {
		select {
		case <-ctx.Done():
			log.Println("sequencer: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll runs at most one trigger cycle. ok is false when nothing was pending.
func (s *Sequencer) Poll(ctx context.Context) (res Result, ok bool) {
	ev, gen, ok := s.src.Take()
	if !ok {
		return Result{}, false
	}
	start := s.clock()
	res = Result{ID: ev.ID.String(), Command: string(ev.Command)}
	defer func() {
		res.Duration = s.clock().Sub(start)
		if !s.src.Complete(gen) {
			log.Printf("sequencer: newer trigger arrived during %s, keeping it pending", ev.Command)
		}
		s.finish(res)
	}()

	// Parameters are captured here so a trigger published mid-run cannot tear them.
	params := sequence.Params{Scrip: ev.Scrip, FutScrip: ev.FutScrip, FutScripBp: ev.FutScripBp}
	s.setState(StateTriggered)
	log.Printf("sequencer: %s triggered scrip=%s futScrip=%s futScripBp=%s", ev.Command, params.Scrip, params.FutScrip, params.FutScripBp)

	if target, has := s.src.Target(); has {
		s.setState(StateFocusing)
		res.Focus = s.focus(target)
		if err := s.sleep(ctx, s.cfg.FocusSettle); err != nil {
			res.Err = err
			return res, true
		}
	}

	q, found := s.table.Lookup(string(ev.Command))
	if !found {
		res.Err = fmt.Errorf("%s: %w", ev.Command, ErrNoSequence)
		log.Printf("sequencer: %v", res.Err)
		return res, true
	}

	s.setState(StateExecuting)
	res.Steps = len(q.Steps)
	res.Errors, res.Err = s.Execute(ctx, q, params)
	return res, true
}

// Execute runs every step of q in order. Step failures are collected and do not stop
// the sequence; only ctx cancellation aborts the remaining steps.
func (s *Sequencer) Execute(ctx context.Context, q sequence.Sequence, params sequence.Params) ([]error, error) {
	var failures []error
	for i, raw := range q.Steps {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		st := raw.Resolve(params)
		if s.cfg.Debug {
			log.Printf("sequencer: %s step %d/%d: %s", q.Name, i+1, len(q.Steps), st)
		}
		s.events.Publish(status.Event{Type: status.EventStep, Command: q.Name, Step: i + 1, Detail: st.String()})

		if err := Apply(s.injector, st); err != nil {
			ierr := &InjectionError{Sequence: q.Name, Index: i, Step: st, Err: err}
			failures = append(failures, ierr)
			log.Printf("sequencer: %v", ierr)
			s.sink.StepFailed(q.Name)
			s.events.Publish(status.Event{Type: status.EventStepError, Command: q.Name, Step: i + 1, Detail: st.String(), Error: err.Error()})
		}
		if err := s.sleep(ctx, st.Delay); err != nil {
			return failures, err
		}
	}
	return failures, nil
}

// Apply sends one resolved step through the injector without its post delay.
func Apply(inj wininput.Injector, st sequence.Step) error {
	switch st.Kind {
	case sequence.KindHotkey:
		return inj.SendHotkey(st.Keys...)
	case sequence.KindType:
		return inj.TypeText(st.Text, st.Interval)
	case sequence.KindPress:
		return inj.PressKey(st.Key, st.Presses(), st.Interval)
	default:
		return fmt.Errorf("unknown step kind %q", st.Kind)
	}
}

func (s *Sequencer) focus(target window.Info) error {
	start := s.clock()
	var err error
	if s.windows == nil {
		err = window.ErrUnsupported
	} else {
		err = s.windows.Focus(target)
	}
	s.sink.FocusCompleted(err == nil, s.clock().Sub(start))
	if err != nil {
		ferr := &FocusError{Window: target, Err: err}
		log.Printf("sequencer: warning: %v; continuing", ferr)
		return ferr
	}
	if s.cfg.Debug {
		log.Printf("sequencer: focused %s", target.DisplayName())
	}
	return nil
}

func (s *Sequencer) finish(res Result) {
	// Cycles that never reached the end of a sequence are not completions.
	if res.Err == nil && res.Steps > 0 {
		s.sink.SequenceCompleted(res.Command, res.Failed(), res.Duration)
	}

	done := status.Event{Type: status.EventDone, ID: res.ID, Command: res.Command, Step: res.Steps}
	if res.Err != nil {
		done.Error = res.Err.Error()
	}
	if n := res.Failed(); n > 0 {
		done.Detail = fmt.Sprintf("%d of %d steps failed", n, res.Steps)
	}
	s.events.Publish(done)

	s.mu.Lock()
	s.stats.Runs++
	s.stats.FailedSteps += res.Failed()
	s.stats.LastCommand = res.Command
	s.stats.LastError = done.Error
	s.mu.Unlock()
	s.setState(StateIdle)

	switch {
	case res.Err != nil:
		log.Printf("sequencer: %s ended early after %s: %v", res.Command, res.Duration.Round(time.Millisecond), res.Err)
	case res.Failed() > 0:
		log.Printf("sequencer: %s completed with %d failed steps in %s", res.Command, res.Failed(), res.Duration.Round(time.Millisecond))
	default:
		log.Printf("sequencer: %s completed in %s", res.Command, res.Duration.Round(time.Millisecond))
	}
}

func (s *Sequencer) setState(st State) {
	s.mu.Lock()
	changed := s.state != st
	s.state = st
	s.stats.State = st
	s.mu.Unlock()
	if changed {
		s.events.Publish(status.Event{Type: status.EventState, State: string(st)})
	}
}

// State returns the current cycle state.
func (s *Sequencer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Stats returns counters for diagnostics.
func (s *Sequencer) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
