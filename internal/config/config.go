// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogJSON switches the logger to JSON output.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory intake queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of append workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StoreDriver selects the event store: memory or sqlite.
	StoreDriver string `koanf:"store_driver"`
	SQLitePath  string `koanf:"sqlite_path"`

	// SanctionRows is the number of sanction rows printed before overflow.
	SanctionRows int `koanf:"sanction_rows"`

	// DefaultView is used when a set view request names none.
	DefaultView string `koanf:"default_view"`
}

// New creates a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		EventQueueSize: 10_000,
		WorkerCount:    runtime.NumCPU(),
		DedupeSize:     50_000,
		StoreDriver:    "memory",
		SQLitePath:     "scoresheet.db",
		SanctionRows:   10,
		DefaultView:    "second_referee",
	}
}
