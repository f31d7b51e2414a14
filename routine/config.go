package routine

import "fmt"

// Config controls how a Scheduler admits routines to execution.
type Config struct {
	// MaxWorkers bounds how many routines may be Running concurrently.
	// Zero means unbounded (limited only by GOMAXPROCS and memory): the
	// scheduler uses a growth-on-demand pool instead of a fixed one.
	MaxWorkers uint

	// ReadyQueueSize bounds how many resumed-but-not-yet-admitted
	// routines may sit in the dispatcher's ready channel before Resume
	// blocks the caller. Defaults to 64; WithReadyQueueSize rejects zero.
	ReadyQueueSize uint
}

// Option configures a Scheduler at construction time.
type Option func(*Config) error

// WithMaxWorkers caps the number of concurrently Running routines.
func WithMaxWorkers(n uint) Option {
	return func(c *Config) error {
		if n == 0 {
			return fmt.Errorf("routine: WithMaxWorkers requires n > 0")
		}
		c.MaxWorkers = n
		return nil
	}
}

// WithReadyQueueSize sets the dispatcher's ready channel capacity.
func WithReadyQueueSize(n uint) Option {
	return func(c *Config) error {
		if n == 0 {
			return fmt.Errorf("routine: WithReadyQueueSize requires n > 0")
		}
		c.ReadyQueueSize = n
		return nil
	}
}

func defaultConfig() Config {
	return Config{
		MaxWorkers:     0,
		ReadyQueueSize: 64,
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
