package lineup

import "github.com/openvolley/scoresheet/internal/domain/model"

// ActiveReplacements maps each player currently on court through a
// substitution to the player they most recently replaced. When the original
// player returns the entry disappears, which the scoresheet renders as a
// closed (circled) substitution.
func ActiveReplacements(events []model.Event, side model.Side) map[string]string {
	active := map[string]string{}
	for _, e := range events {
		if e.Type != model.TypeSubstitution || e.Team() != side {
			continue
		}
		out := e.Payload.PlayerNumber("playerOut")
		in := e.Payload.PlayerNumber("playerIn")
		if out == "" || in == "" {
			continue
		}
		replaced, had := active[out]
		delete(active, out)
		if had && replaced == in {
			continue
		}
		active[in] = out
	}
	return active
}

// SlotEntry is one substitution written under a starting position.
type SlotEntry struct {
	PlayerIn  string `json:"playerIn"`
	PlayerOut string `json:"playerOut"`
	Score     string `json:"score"`
	// Circled marks a substitution closed by the original player's return.
	Circled bool `json:"circled"`
}

// Slot holds the substitutions of one starting position.
type Slot struct {
	Position string      `json:"position"`
	Entries  []SlotEntry `json:"entries"`
}

// SubstitutionSlots assigns each substitution of side to the starting
// position whose occupant left the court. scoreAt receives the index of the
// substitution within events and returns the score to print beside it.
// Substitutions naming a player who is not on court are skipped.
func SubstitutionSlots(events []model.Event, side model.Side, initial State, scoreAt func(i int) string) []Slot {
	slots := make([]Slot, len(Positions))
	occupant := make(map[string]string, len(Positions))
	for i, p := range Positions {
		slots[i] = Slot{Position: p, Entries: []SlotEntry{}}
		occupant[p] = initial.Positions[p]
	}
	for i, e := range events {
		if e.Type != model.TypeSubstitution || e.Team() != side {
			continue
		}
		out := e.Payload.PlayerNumber("playerOut")
		in := e.Payload.PlayerNumber("playerIn")
		if out == "" || in == "" {
			continue
		}
		idx := -1
		for j, p := range Positions {
			if occupant[p] == out {
				idx = j
				break
			}
		}
		if idx < 0 {
			continue
		}
		occupant[Positions[idx]] = in
		score := ""
		if scoreAt != nil {
			score = scoreAt(i)
		}
		slot := &slots[idx]
		for k := range slot.Entries {
			prev := &slot.Entries[k]
			if prev.PlayerIn == out && prev.PlayerOut == in {
				prev.Circled = true
			}
		}
		slot.Entries = append(slot.Entries, SlotEntry{PlayerIn: in, PlayerOut: out, Score: score})
	}
	return slots
}
