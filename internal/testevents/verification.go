package testevents

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/openvolley/scoresheet/internal/domain/result"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	"github.com/openvolley/scoresheet/pkg/logger"
)

// verifyResults fetches the summary of every match and compares it with
// the simulated outcome.
func verifyResults(ctx context.Context, client *HTTPClient, sims []Simulation, stats *Stats) error {
	log := logger.Get()
	log.Info(ctx, "verifying results", logger.Int("matches", len(sims)))

	for _, sim := range sims {
		var sum summaryResponse
		path := "/matches/" + url.PathEscape(sim.Match.ID) + "/summary"
		if _, err := client.do(ctx, http.MethodGet, path, nil, &sum); err != nil {
			stats.MatchesFailed++
			log.Warn(ctx, "summary unavailable", logger.String("matchId", sim.Match.ID), logger.Error(err))
			continue
		}
		if problems := compareSummary(sim, sum); len(problems) > 0 {
			stats.MatchesFailed++
			for _, p := range problems {
				log.Warn(ctx, "summary mismatch", logger.String("matchId", sim.Match.ID), logger.String("problem", p))
			}
			continue
		}
		stats.MatchesVerified++
	}

	if stats.MatchesFailed > 0 {
		return fmt.Errorf("%w: %d of %d matches", ErrVerification, stats.MatchesFailed, len(sims))
	}
	log.Info(ctx, "result verification completed", logger.Int("verified", stats.MatchesVerified))
	return nil
}

// compareSummary lists every difference between the simulated match and
// its derived summary.
func compareSummary(sim Simulation, sum summaryResponse) []string {
	var problems []string
	a := sides.TeamAKey(sim.Match)

	if sum.EventCount != len(sim.Events) {
		problems = append(problems, fmt.Sprintf("event count %d, want %d", sum.EventCount, len(sim.Events)))
	}
	if got, want := sum.Result.TeamASets, sim.SetsWon.Of(a); got != want {
		problems = append(problems, fmt.Sprintf("team A sets %d, want %d", got, want))
	}
	if got, want := sum.Result.TeamBSets, sim.SetsWon.Of(a.Other()); got != want {
		problems = append(problems, fmt.Sprintf("team B sets %d, want %d", got, want))
	}
	if !sum.Result.IsMatchFinished {
		problems = append(problems, "match not finished")
	}
	for _, set := range sim.Sets {
		row, ok := findRow(sum, set.Index)
		if !ok {
			problems = append(problems, fmt.Sprintf("set %d missing", set.Index))
			continue
		}
		if row.TeamAPoints != set.Points().Of(a) || row.TeamBPoints != set.Points().Of(a.Other()) {
			problems = append(problems, fmt.Sprintf("set %d score %d:%d, want %d:%d", set.Index,
				row.TeamAPoints, row.TeamBPoints, set.Points().Of(a), set.Points().Of(a.Other())))
		}
		if !row.Finished {
			problems = append(problems, fmt.Sprintf("set %d not finished", set.Index))
		}
	}
	return problems
}

func findRow(sum summaryResponse, index int) (result.SetRow, bool) {
	for _, r := range sum.Result.Sets {
		if r.Index == index {
			return r, true
		}
	}
	return result.SetRow{}, false
}
