// Package log is Beam's internal structured-logging shim. It wraps
// github.com/rs/zerolog so the scheduler, reactor host and store flush
// loop can emit leveled, structured events (routine panics, flush
// retries, host lifecycle) without each component constructing its own
// logger.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	current = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// SetOutput redirects all subsequent logging to w, structured as JSON.
// Tests typically call this with a bytes.Buffer to assert on output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	current = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel bounds the minimum level that will be emitted.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	current = current.Level(level)
}

// For returns a child logger tagged with a component name, e.g.
// log.For("scheduler") or log.For("store.flush").
func For(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current.With().Str("component", component).Logger()
}
