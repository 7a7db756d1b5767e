package testevents

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openvolley/scoresheet/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging sends log records to both stdout and a file. If logFile is
// empty, a timestamped filename is generated. The returned closer releases
// the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if logFile == "" {
		logFile = "simulation_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Scoresheet Match Simulator
==========================

Plays deterministic volleyball matches, posts their event logs to a running
scoresheet service out of order, and verifies the derived summaries.

Usage:
  go run ./cmd/test-events [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -matches int
        Number of matches to simulate (default 20)
  -seed uint
        Seed of the match generator (default 1)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -batch int
        Events per request (default 25)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Maximum wait for the service to store all events (default 1m)
  -output string
        Directory for generated match files (skipped if empty)
  -log string
        Log file for test output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run ./cmd/test-events

  # Larger run against another port, keeping the match files
  go run ./cmd/test-events -matches 200 -workers 16 -url http://localhost:8080 -output ./sim

  # Replay a generated match offline
  go run ./cmd/scoresheet replay ./sim/<match-id>.yaml
`)
}
