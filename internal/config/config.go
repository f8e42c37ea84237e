// Package config loads environment configuration for keytrigger.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTriggerAddr    = "127.0.0.1:9999"
	defaultDataDir        = "./data"
	defaultMaxPayload     = 1024
	defaultReadTimeoutMs  = 2000
	defaultPollIntervalMs = 100
	defaultFocusSettleMs  = 500
	defaultSequencesFile  = "sequences.yaml"
	minFocusSettleMs      = 200
	maxFocusSettleMs      = 5000
	maxPollIntervalMs     = 5000
)

// Config holds runtime configuration values.
type Config struct {
	TriggerAddr   string
	DataDir       string
	SequencesPath string
	StatusAddr    string
	Target        string
	MaxPayload    int
	ReadTimeout   time.Duration
	PollInterval  time.Duration
	FocusSettle   time.Duration
}

// Load reads configuration from ./data/.env and environment variables.
func Load() (Config, error) {
	cfg := Config{
		TriggerAddr:   defaultTriggerAddr,
		DataDir:       defaultDataDir,
		SequencesPath: filepath.Join(defaultDataDir, defaultSequencesFile),
		MaxPayload:    defaultMaxPayload,
		ReadTimeout:   time.Duration(defaultReadTimeoutMs) * time.Millisecond,
		PollInterval:  time.Duration(defaultPollIntervalMs) * time.Millisecond,
		FocusSettle:   time.Duration(defaultFocusSettleMs) * time.Millisecond,
	}

	if err := loadEnvFile(filepath.Join(envString("DATA_DIR", cfg.DataDir), ".env")); err != nil {
		return Config{}, err
	}

	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.TriggerAddr = envString("TRIGGER_ADDR", cfg.TriggerAddr)
	cfg.SequencesPath = envString("SEQUENCES_PATH", filepath.Join(cfg.DataDir, defaultSequencesFile))
	cfg.StatusAddr = envString("STATUS_ADDR", cfg.StatusAddr)
	cfg.Target = envString("TARGET", cfg.Target)

	maxPayload, err := envInt("TRIGGER_MAX_BYTES", cfg.MaxPayload)
	if err != nil {
		return Config{}, err
	}
	if maxPayload <= 0 {
		return Config{}, fmt.Errorf("TRIGGER_MAX_BYTES must be > 0")
	}
	cfg.MaxPayload = maxPayload

	readTimeout, err := envMillis("TRIGGER_READ_TIMEOUT_MS", cfg.ReadTimeout)
	if err != nil {
		return Config{}, err
	}
	if readTimeout <= 0 {
		return Config{}, fmt.Errorf("TRIGGER_READ_TIMEOUT_MS must be > 0")
	}
	cfg.ReadTimeout = readTimeout

	poll, err := envMillis("POLL_INTERVAL_MS", cfg.PollInterval)
	if err != nil {
		return Config{}, err
	}
	if poll <= 0 || poll > maxPollIntervalMs*time.Millisecond {
		return Config{}, fmt.Errorf("POLL_INTERVAL_MS must be 1-%d", maxPollIntervalMs)
	}
	cfg.PollInterval = poll

	settle, err := envMillis("FOCUS_SETTLE_MS", cfg.FocusSettle)
	if err != nil {
		return Config{}, err
	}
	if settle < minFocusSettleMs*time.Millisecond || settle > maxFocusSettleMs*time.Millisecond {
		return Config{}, fmt.Errorf("FOCUS_SETTLE_MS must be %d-%d", minFocusSettleMs, maxFocusSettleMs)
	}
	cfg.FocusSettle = settle

	if strings.TrimSpace(cfg.TriggerAddr) == "" {
		return Config{}, errors.New("TRIGGER_ADDR is required")
	}

	return cfg, nil
}

// envString returns an env override when present, otherwise a default.
func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt returns an int env override when present, otherwise a default.
func envInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

// envMillis reads an integer millisecond override as a duration.
func envMillis(key string, def time.Duration) (time.Duration, error) {
	ms, err := envInt(key, int(def/time.Millisecond))
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file without overriding the real environment.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
