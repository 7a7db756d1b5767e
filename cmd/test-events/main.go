package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/openvolley/scoresheet/internal/testevents"
)

// Default configuration constants.
const (
	defaultMatches     = 20
	defaultSeed        = 1
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultBatchSize   = 25
	defaultTimeout     = 30 * time.Second
	defaultWait        = time.Minute
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		matches   = flag.Int("matches", defaultMatches, "Number of matches to simulate")
		seed      = flag.Uint64("seed", defaultSeed, "Seed of the match generator")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		batchSize = flag.Int("batch", defaultBatchSize, "Events per request")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait      = flag.Duration("wait", defaultWait, "Maximum wait for the service to store all events")
		outputDir = flag.String("output", "", "Directory for generated match files")
		logFile   = flag.String("log", "", "Log file for test output (default: simulation_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return
	}

	closer, err := testevents.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testevents.Config{
		BaseURL:     *baseURL,
		Matches:     *matches,
		Seed:        *seed,
		Workers:     max(*workers, 1),
		BatchSize:   *batchSize,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		OutputDir:   *outputDir,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if _, err := testevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		cancel()
		_ = closer.Close()
		os.Exit(1)
	}
}
