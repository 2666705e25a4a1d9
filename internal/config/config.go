package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/coqctl/internal/protocol/session"
)

// Client is everything a coqctl config file can set.
type Client struct {
	Session     session.Config
	MetricsAddr string
}

type fileConfig struct {
	Coqtop             string   `toml:"coqtop"`
	Args               []string `toml:"args"`
	Timeout            string   `toml:"timeout"`
	StartupTimeout     string   `toml:"startup_timeout"`
	MaxStartupAttempts int      `toml:"max_startup_attempts"`
	ReadChunkSize      int      `toml:"read_chunk_size"`
	BackoffInitial     string   `toml:"backoff_initial"`
	BackoffMultiplier  float64  `toml:"backoff_multiplier"`
	BackoffMax         string   `toml:"backoff_max"`
	BackoffJitter      bool     `toml:"backoff_jitter"`
	MetricsAddr        string   `toml:"metrics_addr"`
}

func Default() Client {
	return Client{Session: session.DefaultConfig()}
}

// Load overlays the keys present in path onto Default and validates the result.
func Load(path string) (Client, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Client{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Client{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("coqtop") {
		cfg.Session.Coqtop = strings.TrimSpace(raw.Coqtop)
	}
	if meta.IsDefined("args") {
		cfg.Session.Args = append([]string(nil), raw.Args...)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"timeout", raw.Timeout, &cfg.Session.Timeout},
		{"startup_timeout", raw.StartupTimeout, &cfg.Session.StartupTimeout},
		{"backoff_initial", raw.BackoffInitial, &cfg.Session.Backoff.InitialDelay},
		{"backoff_max", raw.BackoffMax, &cfg.Session.Backoff.MaxDelay},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Client{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if meta.IsDefined("max_startup_attempts") {
		cfg.Session.MaxStartupAttempts = raw.MaxStartupAttempts
	}
	if meta.IsDefined("read_chunk_size") {
		cfg.Session.ReadChunkSize = raw.ReadChunkSize
	}
	if meta.IsDefined("backoff_multiplier") {
		cfg.Session.Backoff.Multiplier = raw.BackoffMultiplier
	}
	if meta.IsDefined("backoff_jitter") {
		cfg.Session.Backoff.Jitter = raw.BackoffJitter
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := Validate(cfg); err != nil {
		return Client{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Client) error {
	if err := cfg.Session.Validate(); err != nil {
		return err
	}
	if cfg.Session.Backoff.InitialDelay < 0 || cfg.Session.Backoff.MaxDelay < 0 {
		return fmt.Errorf("backoff delays must not be negative")
	}
	if addr := cfg.MetricsAddr; addr != "" && !strings.Contains(addr, ":") {
		return fmt.Errorf("metrics_addr %q must be host:port or :port", addr)
	}
	return nil
}
