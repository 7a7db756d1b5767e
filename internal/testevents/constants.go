package testevents

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	PollInterval         = 100 * time.Millisecond
	BackpressureBackoff  = 50 * time.Millisecond
	MaxSubmitAttempts    = 20
	PercentageMultiplier = 100
)

// Simulation constants.
const (
	// serverWinProbability is the chance the serving team wins a rally.
	serverWinProbability = 0.45
	// timeoutChance is the per-rally chance (1 in N) of a timeout request.
	timeoutChance = 30
	// sanctionChance is the per-rally chance (1 in N) of a warning.
	sanctionChance  = 150
	maxTimeouts     = 2
	rallyMinSeconds = 15
	rallySpread     = 30
	setBreak        = 3 * time.Minute
)
