package testevents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/openvolley/scoresheet/internal/cli"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// ErrVerification is returned when a derived summary disagrees with the
// simulated match.
var ErrVerification = errors.New("verification failed")

// Run simulates matches, feeds them to the service and checks the derived
// results.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting scoresheet simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matches", config.Matches),
		logger.Int("workers", config.Workers),
		logger.Int("batchSize", config.BatchSize),
		logger.Int64("seed", int64(config.Seed)), //nolint:gosec // display only
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Simulate matches
	sims := make([]Simulation, config.Matches)
	start := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	for i := range sims {
		sims[i] = Simulate(config.Seed, i, start.Add(time.Duration(i)*time.Hour))
		stats.EventsGenerated += len(sims[i].Events)
	}
	stats.MatchesSimulated = len(sims)
	log.Info(ctx, "matches simulated",
		logger.Int("matches", stats.MatchesSimulated), logger.Int("events", stats.EventsGenerated))

	// Step 3: Register match records
	for _, sim := range sims {
		if _, err := client.do(ctx, http.MethodPut, "/matches/"+url.PathEscape(sim.Match.ID), sim.Match, nil); err != nil {
			return stats, fmt.Errorf("put match %s: %w", sim.Match.ID, err)
		}
	}

	// Step 4: Submit event logs out of order
	rng := newRand(config.Seed)
	if err := submitEvents(ctx, config, client, batches(sims, config.BatchSize, rng), stats); err != nil {
		return stats, fmt.Errorf("event submission failed: %w", err)
	}

	// Step 5: Wait for the workers to drain
	for _, sim := range sims {
		if err := waitForEvents(ctx, client, sim.Match.ID, len(sim.Events), config.WaitTimeout); err != nil {
			return stats, err
		}
	}

	// Step 6: Record the finished sets
	for _, sim := range sims {
		for _, set := range sim.Sets {
			path := "/matches/" + url.PathEscape(sim.Match.ID) + "/sets/" + strconv.Itoa(set.Index)
			if _, err := client.do(ctx, http.MethodPut, path, set, nil); err != nil {
				return stats, fmt.Errorf("put set %d of %s: %w", set.Index, sim.Match.ID, err)
			}
		}
	}

	// Step 7: Verify the derived summaries
	verifyErr := verifyResults(ctx, client, sims, stats)

	// Step 8: Save match files
	if config.OutputDir != "" {
		if err := saveMatchFiles(ctx, config.OutputDir, sims); err != nil {
			log.Warn(ctx, "failed to save match files", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return stats, verifyErr
	}
	log.Info(ctx, "simulation completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	logger.Get().Info(ctx, "checking service health")
	if _, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// waitForEvents polls the event log of a match until it holds want events.
func waitForEvents(ctx context.Context, client *HTTPClient, matchID string, want int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	path := "/matches/" + url.PathEscape(matchID) + "/events"
	var got int
	for {
		var resp eventsResponse
		if _, err := client.do(ctx, http.MethodGet, path, nil, &resp); err == nil {
			got = len(resp.Events)
			if got >= want {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("match %s: %d of %d events stored after %s", matchID, got, want, timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}

// saveMatchFiles writes every simulation as a YAML match file readable by
// the scoresheet CLI.
func saveMatchFiles(ctx context.Context, dir string, sims []Simulation) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, sim := range sims {
		path := filepath.Join(dir, sim.Match.ID+".yaml")
		mf := &cli.MatchFile{Match: sim.Match, Sets: sim.Sets, Events: sim.Events}
		if err := cli.SaveMatchFile(path, mf); err != nil {
			return err
		}
	}
	logger.Get().Info(ctx, "match files saved", logger.String("dir", dir), logger.Int("matches", len(sims)))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(stats *Stats) {
	var successRate, eventsPerSecond float64

	if stats.EventsSubmitted > 0 {
		successRate = float64(stats.EventsSubmitted-stats.EventsFailed) / float64(stats.EventsSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		eventsPerSecond = float64(stats.EventsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("matchesSimulated", stats.MatchesSimulated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("eventsSubmitted", stats.EventsSubmitted),
		logger.Int("eventsAccepted", stats.EventsAccepted),
		logger.Int("eventsDuplicate", stats.EventsDuplicate),
		logger.Int("eventsFailed", stats.EventsFailed),
		logger.Int("retries", stats.Retries),
		logger.Int("matchesVerified", stats.MatchesVerified),
		logger.Int("matchesFailed", stats.MatchesFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("eventsPerSecond", eventsPerSecond))
}
