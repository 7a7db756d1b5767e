package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// errBackpressure marks a 429 answer from the service.
var errBackpressure = errors.New("service applied backpressure")

// HTTPClient wraps http.Client with a base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// do sends body as JSON and decodes a 2xx answer into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return resp.StatusCode, errBackpressure
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return resp.StatusCode, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// batches cuts every log into requests of at most size events and
// shuffles the requests, so the service sees the matches out of order.
func batches(sims []Simulation, size int, rng *rand.Rand) [][]model.Event {
	if size < 1 {
		size = 1
	}
	var out [][]model.Event
	for _, sim := range sims {
		for start := 0; start < len(sim.Events); start += size {
			end := min(start+size, len(sim.Events))
			batch := make([]model.Event, end-start)
			copy(batch, sim.Events[start:end])
			rng.Shuffle(len(batch), func(i, j int) { batch[i], batch[j] = batch[j], batch[i] })
			out = append(out, batch)
		}
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// submitEvents posts batches concurrently using a worker pool. Batches
// refused under backpressure are retried; earlier events of a refused batch
// come back as duplicates.
func submitEvents(ctx context.Context, config *Config, client *HTTPClient, work [][]model.Event, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "submitting events",
		logger.Int("batches", len(work)), logger.Int("workers", config.Workers))

	var (
		submitted int64
		accepted  int64
		duplicate int64
		failed    int64
		retries   int64
	)

	batchChan := make(chan []model.Event, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batchChan {
				resp, attempts, err := submitBatch(ctx, client, batch)
				atomic.AddInt64(&submitted, int64(len(batch)))
				atomic.AddInt64(&retries, int64(attempts-1))
				if err != nil {
					atomic.AddInt64(&failed, int64(len(batch)))
					log.Warn(ctx, "batch failed", logger.Int("events", len(batch)), logger.Error(err))
					continue
				}
				atomic.AddInt64(&accepted, int64(resp.Accepted))
				atomic.AddInt64(&duplicate, int64(resp.Duplicates))
				if config.Verbose {
					log.Debug(ctx, "batch submitted",
						logger.Int("accepted", resp.Accepted), logger.Int("duplicates", resp.Duplicates))
				}
			}
		}()
	}

	go func() {
		defer close(batchChan)
		for _, batch := range work {
			select {
			case <-ctx.Done():
				return
			case batchChan <- batch:
			}
		}
	}()

	wg.Wait()

	stats.EventsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.EventsAccepted = int(atomic.LoadInt64(&accepted))
	stats.EventsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.EventsFailed = int(atomic.LoadInt64(&failed))
	stats.Retries = int(atomic.LoadInt64(&retries))

	log.Info(ctx, "event submission completed",
		logger.Int("accepted", stats.EventsAccepted),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed),
		logger.Int("retries", stats.Retries))
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}

// submitBatch posts one batch, retrying on backpressure.
func submitBatch(ctx context.Context, client *HTTPClient, batch []model.Event) (batchResponse, int, error) {
	var resp batchResponse
	for attempt := 1; ; attempt++ {
		_, err := client.do(ctx, http.MethodPost, "/events", batch, &resp)
		if !errors.Is(err, errBackpressure) || attempt == MaxSubmitAttempts {
			return resp, attempt, err
		}
		select {
		case <-ctx.Done():
			return resp, attempt, ctx.Err()
		case <-time.After(time.Duration(attempt) * BackpressureBackoff):
		}
	}
}
