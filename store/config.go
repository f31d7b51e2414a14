package store

import (
	"fmt"
	"time"

	"github.com/ygrebnov/beam/metrics"
)

// Config controls an AsyncDataStore's flush-retry backoff.
type Config struct {
	// BackoffBase is the delay before the first flush retry.
	BackoffBase time.Duration
	// BackoffMax caps the exponentially growing retry delay.
	BackoffMax time.Duration

	metrics metrics.Provider
}

// Option configures an AsyncDataStore at construction time.
type Option func(*Config) error

// WithBackoff sets the retry backoff bounds.
func WithBackoff(base, max time.Duration) Option {
	return func(c *Config) error {
		if base <= 0 || max < base {
			return fmt.Errorf("store: WithBackoff requires 0 < base <= max")
		}
		c.BackoffBase = base
		c.BackoffMax = max
		return nil
	}
}

// WithMetrics installs a metrics.Provider the store reports flush
// counters to. Defaults to metrics.NewNoopProvider().
func WithMetrics(p metrics.Provider) Option {
	return func(c *Config) error {
		c.metrics = p
		return nil
	}
}

func defaultConfig() Config {
	return Config{
		BackoffBase: 50 * time.Millisecond,
		BackoffMax:  5 * time.Second,
		metrics:     metrics.NewNoopProvider(),
	}
}

func newConfig(opts ...Option) (Config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

func nextBackoff(cur, max time.Duration) time.Duration {
	next := cur * 2
	if next > max {
		return max
	}
	return next
}
