// Package worker provides a semaphore-bounded task pool. The convert and
// summarize stage runners use it to fan work across the articles of one
// session; crawl concurrency is handled by the collector's limit rule, not
// by this pool.
package worker

import (
	"errors"
	"time"
)

const (
	// DefaultSize is the default number of concurrent tasks.
	DefaultSize = 4

	// DefaultDrainTimeout is the default wait for in-flight tasks on Drain.
	DefaultDrainTimeout = 30 * time.Second

	// MinSize is the minimum allowed pool size.
	MinSize = 1

	// MaxSize is the maximum allowed pool size.
	MaxSize = 100
)

// Config holds the pool settings.
type Config struct {
	// Size is the number of tasks allowed to run concurrently.
	Size int

	// DrainTimeout bounds the wait for in-flight tasks during Drain.
	DrainTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:         DefaultSize,
		DrainTimeout: DefaultDrainTimeout,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Size < MinSize {
		return errors.New("pool size must be at least 1")
	}
	if c.Size > MaxSize {
		return errors.New("pool size cannot exceed 100")
	}
	if c.DrainTimeout <= 0 {
		return errors.New("drain timeout must be positive")
	}
	return nil
}
