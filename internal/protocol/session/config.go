package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/danmuck/coqctl/internal/protocol/transport"
)

var ErrInvalidConfig = errors.New("session: invalid config")

// BackoffConfig spaces out startup attempts.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines worker selection and timeout behavior.
type Config struct {
	// Coqtop pins the executable; empty means search PATH.
	Coqtop string
	// Args are appended after the fixed worker arguments.
	Args []string
	// Timeout bounds each read and write once the worker is up.
	Timeout time.Duration
	// StartupTimeout bounds the wait for the first feedback. The worker
	// sometimes hangs while initializing, so this is kept short and the
	// attempt is restarted instead.
	StartupTimeout     time.Duration
	MaxStartupAttempts int
	ReadChunkSize      int
	Backoff            BackoffConfig
}

func DefaultConfig() Config {
	return Config{
		Timeout:            2 * time.Second,
		StartupTimeout:     200 * time.Millisecond,
		MaxStartupAttempts: 5,
		ReadChunkSize:      transport.DefaultChunkSize,
		Backoff: BackoffConfig{
			InitialDelay: 50 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     time.Second,
			Jitter:       true,
		},
	}
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	if c.StartupTimeout <= 0 {
		return fmt.Errorf("%w: startup timeout must be positive", ErrInvalidConfig)
	}
	if c.MaxStartupAttempts < 1 {
		return fmt.Errorf("%w: max startup attempts must be at least 1", ErrInvalidConfig)
	}
	if c.ReadChunkSize < 0 {
		return fmt.Errorf("%w: read chunk size must not be negative", ErrInvalidConfig)
	}
	return nil
}
