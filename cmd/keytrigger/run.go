// Package main starts the keytrigger control session.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/frudas24/keytrigger/internal/app"
	"github.com/frudas24/keytrigger/internal/config"
	"github.com/frudas24/keytrigger/internal/sequence"
	"github.com/frudas24/keytrigger/internal/sequencer"
	"github.com/frudas24/keytrigger/internal/window"
	"github.com/frudas24/keytrigger/internal/wininput"
)

type options struct {
	debug  bool
	list   bool
	target string
	send   string
}

// run wires the application and blocks until shutdown.
func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.debug {
		log.Printf("debug: enabled")
	}
	logStartup(cfg)

	windows, err := window.NewService()
	if err != nil {
		return err
	}
	if opts.list {
		return listWindows(windows)
	}

	injector, err := wininput.NewInjector()
	if err != nil {
		return err
	}
	table, err := sequence.LoadFile(cfg.SequencesPath)
	if err != nil {
		return err
	}
	log.Printf("sequences: %s", strings.Join(table.Names(), ", "))

	selector := opts.target
	if selector == "" {
		selector = cfg.Target
	}
	target, err := resolveTarget(windows, selector)
	if err != nil {
		return err
	}

	if opts.send != "" {
		return sendOnce(windows, injector, target, opts.send, cfg.FocusSettle)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	appInstance, err := app.New(cfg, target, table, injector, windows, reg, opts.debug)
	if err != nil {
		return err
	}
	if err := appInstance.Start(); err != nil {
		return err
	}
	logClientHint(appInstance.TriggerAddr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-ctx.Done()

	log.Printf("shutdown: stopping control session")
	return appInstance.Stop()
}

// listWindows prints the selectable windows.
func listWindows(windows window.Service) error {
	list, err := windows.List()
	if err != nil {
		return err
	}
	list = window.Filter(list)
	if len(list) == 0 {
		log.Printf("windows: none found")
		return nil
	}
	for i, w := range list {
		log.Printf("%d. %s (pid %d)", i+1, w.DisplayName(), w.PID)
	}
	return nil
}

// resolveTarget picks the target window. An empty selector means no target.
func resolveTarget(windows window.Service, selector string) (window.Info, error) {
	if strings.TrimSpace(selector) == "" {
		return window.Info{}, nil
	}
	list, err := windows.List()
	if err != nil {
		return window.Info{}, err
	}
	target, err := window.Select(window.Filter(list), selector)
	if err != nil {
		return window.Info{}, fmt.Errorf("target %q: %w", selector, err)
	}
	log.Printf("target: %s (pid %d)", target.DisplayName(), target.PID)
	return target, nil
}

// sendOnce focuses the target and sends a single operator command.
func sendOnce(windows window.Service, injector wininput.Injector, target window.Info, command string, settle time.Duration) error {
	step, err := sequence.ParseCommand(command)
	if err != nil {
		return err
	}
	if !target.IsZero() {
		if err := windows.Focus(target); err != nil {
			log.Printf("send: warning: focus failed: %v", err)
		}
		time.Sleep(settle)
	}
	log.Printf("send: %s", step)
	if err := sequencer.Apply(injector, step); err != nil {
		return err
	}
	time.Sleep(step.Delay)
	return nil
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks.
func logStartup(cfg config.Config) {
	log.Printf("keytrigger starting")
	logEnvStatus(cfg)
	log.Printf("trigger addr: %s (max %d bytes, read timeout %s)", cfg.TriggerAddr, cfg.MaxPayload, cfg.ReadTimeout)
	log.Printf("sequencer: poll %s, focus settle %s", cfg.PollInterval, cfg.FocusSettle)
	if cfg.StatusAddr == "" {
		log.Printf("status: disabled (set STATUS_ADDR to enable)")
	}
}

// logEnvStatus reports whether a .env file and a sequences file were found.
func logEnvStatus(cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Printf("env check: ok (%s)", envPath)
	} else {
		log.Printf("env check: missing (%s)", envPath)
	}
	if fileExists(cfg.SequencesPath) {
		log.Printf("sequences file: %s", cfg.SequencesPath)
	} else {
		log.Printf("sequences file: not found, using built-in F4/F5")
	}
}

// logClientHint shows how a client reaches the listener.
func logClientHint(addr net.Addr) {
	if addr == nil {
		return
	}
	log.Printf(`client: connect to %s and send {"command":"TRIGGER_F4","scrip":"..."} or TRIGGER_F4`, addr)
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
