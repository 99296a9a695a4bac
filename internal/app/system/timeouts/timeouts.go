// Package timeouts holds the deadlines handlers and jobs put on blocking
// work: Mongo calls, dataset reads and export rendering.
package timeouts

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing    = 2 * time.Second
	DefaultShort   = 5 * time.Second
	DefaultDataset = 30 * time.Second
	DefaultExport  = 20 * time.Second
)

var (
	mu      sync.RWMutex
	ping    = DefaultPing
	short   = DefaultShort
	dataset = DefaultDataset
	export  = DefaultExport
)

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document Mongo operations.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Dataset returns the timeout for reading and parsing the dataset.
func Dataset() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return dataset
}

// Export returns the timeout for building an XLSX or PNG export.
func Export() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return export
}

// Config holds timeout configuration values. Zero fields keep the
// current value.
type Config struct {
	Ping    time.Duration
	Short   time.Duration
	Dataset time.Duration
	Export  time.Duration
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	set(&ping, cfg.Ping)
	set(&short, cfg.Short)
	set(&dataset, cfg.Dataset)
	set(&export, cfg.Export)
}

func set(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Reset restores all timeouts to defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	dataset = DefaultDataset
	export = DefaultExport
}

// ConfigureFromEnv reads STRATAENERGY_TIMEOUT_{PING,SHORT,DATASET,EXPORT},
// applies them through Configure and returns how many were applied.
// Unparseable values are ignored.
func ConfigureFromEnv() int {
	var cfg Config
	vars := []struct {
		name string
		dst  *time.Duration
	}{
		{"STRATAENERGY_TIMEOUT_PING", &cfg.Ping},
		{"STRATAENERGY_TIMEOUT_SHORT", &cfg.Short},
		{"STRATAENERGY_TIMEOUT_DATASET", &cfg.Dataset},
		{"STRATAENERGY_TIMEOUT_EXPORT", &cfg.Export},
	}

	configured := 0
	for _, v := range vars {
		raw := os.Getenv(v.name)
		if raw == "" {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			*v.dst = d
			configured++
		}
	}
	Configure(cfg)
	return configured
}

// Current returns the current timeout configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{
		Ping:    ping,
		Short:   short,
		Dataset: dataset,
		Export:  export,
	}
}

// WithTimeout creates a context with timeout and logs when the deadline
// was the reason the operation ended.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
