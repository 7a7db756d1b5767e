package testevents

import (
	"time"

	"github.com/openvolley/scoresheet/internal/domain/derive"
	"github.com/openvolley/scoresheet/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Matches     int           // Number of matches to simulate
	Seed        uint64        // Seed of the match generator
	Workers     int           // Number of concurrent submitters
	BatchSize   int           // Events per POST /events request
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // Upper bound on waiting for the store to catch up
	OutputDir   string        // Directory for generated match files (skipped if empty)
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// Simulation is one generated match with its expected outcome.
type Simulation struct {
	Match  model.Match
	Events []model.Event
	Sets   []model.Set
	// SetsWon counts the sets won per side.
	SetsWon model.Tally
}

// batchResponse mirrors the body of POST /events for a batch.
type batchResponse struct {
	Status     string `json:"status"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
}

// eventsResponse mirrors GET /matches/{id}/events.
type eventsResponse struct {
	MatchID string        `json:"matchId"`
	Events  []model.Event `json:"events"`
}

// summaryResponse mirrors GET /matches/{id}/summary.
type summaryResponse = derive.MatchSummary

// Stats holds run statistics.
type Stats struct {
	MatchesSimulated int
	EventsGenerated  int
	EventsSubmitted  int
	EventsAccepted   int
	EventsDuplicate  int
	EventsFailed     int
	Retries          int
	MatchesVerified  int
	MatchesFailed    int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
