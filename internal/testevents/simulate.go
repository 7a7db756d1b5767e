package testevents

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openvolley/scoresheet/internal/domain/lineup"
	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/rally"
	"github.com/openvolley/scoresheet/internal/domain/result"
	"github.com/openvolley/scoresheet/internal/domain/sides"
)

// MatchID derives the id of the index-th simulated match of a seed. The
// same seed always yields the same ids.
func MatchID(seed uint64, index int) string {
	name := "scoresheet-sim/" + strconv.FormatUint(seed, 10) + "/" + strconv.Itoa(index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// matchSim carries the running state of one generated match.
type matchSim struct {
	rng     *rand.Rand
	ns      uuid.UUID
	clock   time.Time
	seq     int64
	sim     Simulation
	lineups map[model.Side]lineup.State
}

// Simulate plays a full best-of-five match rally by rally. The output is a
// pure function of seed, index and start.
func Simulate(seed uint64, index int, start time.Time) Simulation {
	id := MatchID(seed, index)
	rng := rand.New(rand.NewPCG(seed, uint64(index)))

	m := model.Match{
		ID:            id,
		ScheduledAt:   model.At(start),
		CoinTossTeamA: model.SideHome,
		HomeShortName: fmt.Sprintf("H%02d", index%100),
		AwayShortName: fmt.Sprintf("A%02d", index%100),
	}
	if rng.IntN(2) == 1 {
		m.CoinTossTeamA = model.SideAway
	}
	serveA := rng.IntN(2) == 1
	m.CoinTossServeA = &serveA

	s := &matchSim{
		rng:   rng,
		ns:    uuid.MustParse(id),
		clock: start,
		sim:   Simulation{Match: m},
	}
	for set := model.MinSet; set <= model.MaxSet; set++ {
		s.playSet(set)
		if result.IsMatchFinished(s.sim.SetsWon.Home, s.sim.SetsWon.Away) {
			break
		}
		s.clock = s.clock.Add(setBreak)
	}
	return s.sim
}

func (s *matchSim) emit(set int, t model.EventType, payload model.Payload) {
	s.seq++
	s.sim.Events = append(s.sim.Events, model.Event{
		ID:       uuid.NewSHA1(s.ns, []byte(strconv.FormatInt(s.seq, 10))).String(),
		MatchID:  s.sim.Match.ID,
		SetIndex: set,
		Type:     t,
		Payload:  payload,
		TS:       model.At(s.clock),
		Seq:      s.seq,
	})
}

func (s *matchSim) emitLineup(set int, side model.Side) {
	positions := make(map[string]any, len(lineup.Positions))
	for _, p := range lineup.Positions {
		positions[p] = s.lineups[side].Positions[p]
	}
	s.emit(set, model.TypeLineup, model.Payload{"team": string(side), "lineup": positions})
}

// startingLineup places players 1..6 (home) or 11..16 (away), shifted by
// the set index so each set opens differently.
func startingLineup(side model.Side, set int) lineup.State {
	st := lineup.Empty()
	st.Known = true
	base := 1
	if side == model.SideAway {
		base = 11
	}
	for i, p := range lineup.Positions {
		st.Positions[p] = strconv.Itoa(base + (i+set-1)%len(lineup.Positions))
	}
	return st
}

func (s *matchSim) playSet(set int) {
	m := &s.sim.Match
	first := rally.FirstServer(*m, s.sim.Sets, set)
	record := model.Set{Index: set, StartTime: model.At(s.clock)}

	s.emit(set, model.TypeSetStart, nil)
	s.lineups = map[model.Side]lineup.State{
		model.SideHome: startingLineup(model.SideHome, set),
		model.SideAway: startingLineup(model.SideAway, set),
	}
	s.emitLineup(set, model.SideHome)
	s.emitLineup(set, model.SideAway)

	var score model.Tally
	timeouts := map[model.Side]int{}
	warned := map[model.Side]bool{}
	server := first
	tiebreak := result.IsTiebreak(set)

	for !result.IsSetComplete(score.Home, score.Away, tiebreak) {
		if s.rng.IntN(timeoutChance) == 0 {
			side := pickSide(s.rng)
			if timeouts[side] < maxTimeouts {
				timeouts[side]++
				s.emit(set, model.TypeTimeout, model.Payload{"team": string(side)})
			}
		}
		if s.rng.IntN(sanctionChance) == 0 {
			side := pickSide(s.rng)
			if !warned[side] {
				warned[side] = true
				player := s.lineups[side].Positions[lineup.Positions[s.rng.IntN(len(lineup.Positions))]]
				s.emit(set, model.TypeSanction, model.Payload{"team": string(side), "type": "warning", "playerNumber": player})
			}
		}

		s.emit(set, model.TypeRallyStart, nil)
		s.clock = s.clock.Add(time.Duration(rallyMinSeconds+s.rng.IntN(rallySpread)) * time.Second)

		winner := server
		if s.rng.Float64() >= serverWinProbability {
			winner = server.Other()
		}
		score.Add(winner)
		s.emit(set, model.TypePoint, model.Payload{"team": string(winner)})

		if winner != server {
			s.lineups[winner] = lineup.Rotate(s.lineups[winner])
			s.emitLineup(set, winner)
			server = winner
		}
		if tiebreak && !m.Set5CourtSwitched && sides.ShouldSwitchSet5(score) {
			m.Set5CourtSwitched = true
			m.Set5PointsAtChange = score.Of(sides.TeamAKey(*m))
		}
	}

	record.HomePoints, record.AwayPoints = score.Home, score.Away
	record.Finished = true
	record.EndTime = model.At(s.clock)
	s.sim.Sets = append(s.sim.Sets, record)
	if score.Home > score.Away {
		s.sim.SetsWon.Add(model.SideHome)
	} else {
		s.sim.SetsWon.Add(model.SideAway)
	}
}

func pickSide(rng *rand.Rand) model.Side {
	if rng.IntN(2) == 0 {
		return model.SideHome
	}
	return model.SideAway
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
