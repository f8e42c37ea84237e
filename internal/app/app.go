// Package app wires one control session: trigger listener, shared state, sequencer,
// and the optional diagnostics server.
package app

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frudas24/keytrigger/internal/config"
	"github.com/frudas24/keytrigger/internal/metrics"
	"github.com/frudas24/keytrigger/internal/sequence"
	"github.com/frudas24/keytrigger/internal/sequencer"
	"github.com/frudas24/keytrigger/internal/session"
	"github.com/frudas24/keytrigger/internal/status"
	"github.com/frudas24/keytrigger/internal/trigger"
	"github.com/frudas24/keytrigger/internal/window"
	"github.com/frudas24/keytrigger/internal/wininput"
)

const shutdownTimeout = 5 * time.Second

// App coordinates the trigger listener, sequencer, and diagnostics server.
type App struct {
	mu        sync.Mutex
	cfg       config.Config
	windows   window.Service
	session   *session.Session
	listener  *trigger.Server
	sequencer *sequencer.Sequencer
	hub       *status.Hub
	status    *status.Server
	registry  *prometheus.Registry

	httpServer *http.Server
	statusAddr net.Addr
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	started    bool
}

// New creates a control session for target. A zero target disables re-focusing.
// reg may be nil, in which case metrics are discarded and /metrics is not served.
func New(cfg config.Config, target window.Info, table sequence.Table, injector wininput.Injector, windows window.Service, reg *prometheus.Registry, debug bool) (*App, error) {
	if injector == nil {
		return nil, errors.New("injector is required")
	}
	if len(table) == 0 {
		return nil, errors.New("sequence table is empty")
	}
	if !target.IsZero() && windows == nil {
		return nil, errors.New("window service is required when a target is set")
	}

	var sink metrics.Sink = metrics.NewNoopSink()
	if reg != nil {
		sink = metrics.NewPrometheusSink(reg)
	}

	commands := make([]trigger.Command, 0, len(table))
	for _, name := range table.Names() {
		commands = append(commands, trigger.Command(name))
	}

	a := &App{
		cfg:      cfg,
		windows:  windows,
		session:  session.New(target),
		hub:      status.NewHub(0),
		registry: reg,
	}
	listener, err := trigger.NewServer(trigger.Config{
		Addr:        cfg.TriggerAddr,
		MaxPayload:  cfg.MaxPayload,
		ReadTimeout: cfg.ReadTimeout,
	}, trigger.NewDecoder(commands...), a.session, sink, a.hub)
	if err != nil {
		return nil, err
	}
	a.listener = listener
	a.sequencer = sequencer.New(sequencer.Config{
		PollInterval: cfg.PollInterval,
		FocusSettle:  cfg.FocusSettle,
		Debug:        debug,
	}, a.session, table, injector, windows, sink, a.hub)

	var gatherer prometheus.Gatherer
	if reg != nil {
		gatherer = reg
	}
	a.status = status.NewServer(a.hub, a.State, gatherer)
	return a, nil
}

// Start focuses the target once, binds the trigger listener, and starts the sequencer.
// A listener bind failure is returned and nothing is left running.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return errors.New("app already started")
	}

	if target, ok := a.session.Target(); ok {
		if err := a.windows.Focus(target); err != nil {
			log.Printf("app: warning: initial focus of %s failed: %v", target.DisplayName(), err)
		} else {
			log.Printf("app: focused %s", target.DisplayName())
		}
	} else {
		log.Printf("app: no target window; keystrokes go to the foreground window")
	}

	if err := a.listener.Listen(); err != nil {
		return err
	}
	if a.cfg.StatusAddr != "" {
		if err := a.startStatus(); err != nil {
			_ = a.listener.Close()
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.listener.Serve(); err != nil {
			log.Printf("app: trigger listener stopped: %v", err)
		}
	}()
	go func() {
		defer a.wg.Done()
		_ = a.sequencer.Run(ctx)
	}()
	a.started = true
	return nil
}

func (a *App) startStatus() error {
	ln, err := net.Listen("tcp", a.cfg.StatusAddr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	a.status.RegisterRoutes(mux)
	a.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	a.statusAddr = ln.Addr()
	log.Printf("status: listening on http://%s", ln.Addr())
	go func() {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("status: server error: %v", err)
		}
	}()
	return nil
}

// Stop closes the listener, cancels the sequencer, and shuts down the status server.
func (a *App) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return nil
	}
	a.started = false

	var errs []error
	a.cancel()
	if err := a.listener.Close(); err != nil {
		errs = append(errs, err)
	}
	a.wg.Wait()

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		a.httpServer = nil
	}
	return errors.Join(errs...)
}

// Session returns the shared trigger state.
func (a *App) Session() *session.Session {
	return a.session
}

// Sequencer returns the consumer loop.
func (a *App) Sequencer() *sequencer.Sequencer {
	return a.sequencer
}

// Events returns the diagnostics hub.
func (a *App) Events() *status.Hub {
	return a.hub
}

// TriggerAddr returns the bound trigger address, or nil before Start.
func (a *App) TriggerAddr() net.Addr {
	return a.listener.Addr()
}

// StatusAddr returns the bound diagnostics address, or nil when disabled.
func (a *App) StatusAddr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusAddr
}

type stateResponse struct {
	Pending     bool                  `json:"pending"`
	LastEvent   *trigger.TriggerEvent `json:"lastEvent,omitempty"`
	Target      *window.Info          `json:"target,omitempty"`
	State       sequencer.State       `json:"state"`
	Executed    int                   `json:"executed"`
	FailedSteps int                   `json:"failedSteps"`
	LastError   string                `json:"lastError,omitempty"`
	TriggerAddr string                `json:"triggerAddr,omitempty"`
}

// State returns the combined session and sequencer view served at /api/state.
func (a *App) State() any {
	snap := a.session.Snapshot()
	stats := a.sequencer.Stats()
	resp := stateResponse{
		Pending:     snap.Pending,
		LastEvent:   snap.LastEvent,
		Target:      snap.Target,
		State:       stats.State,
		Executed:    stats.Runs,
		FailedSteps: stats.FailedSteps,
		LastError:   stats.LastError,
	}
	if addr := a.listener.Addr(); addr != nil {
		resp.TriggerAddr = addr.String()
	}
	return resp
}
