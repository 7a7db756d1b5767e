package rally

import "github.com/openvolley/scoresheet/internal/domain/model"

// Slots is the number of rotation positions in a service order.
const Slots = 6

// ServiceRound is one box of a team's service order: the turn served from
// Position (0 for I through 5 for VI), the Box-th time around.
type ServiceRound struct {
	Position int  `json:"position"`
	Box      int  `json:"box"`
	Ticked   bool `json:"ticked"`
	// Points is the number of points won in the turn, set once service is lost.
	Points  *int `json:"points"`
	Circled bool `json:"circled"`
}

// Placement ties a point to the service turn of the rally it ended.
type Placement struct {
	EventID     string     `json:"eventId"`
	Team        model.Side `json:"team"`
	ServingTeam model.Side `json:"servingTeam"`
	Position    int        `json:"position"`
	Box         int        `json:"box"`
	// Run is the serving team's consecutive points in the turn after the rally.
	Run int `json:"run"`
}

// TeamRounds is the service order of one team.
type TeamRounds struct {
	Side model.Side `json:"side"`
	// StartsReceiving marks the first box of the team that received first.
	StartsReceiving bool           `json:"startsReceiving"`
	Rounds          []ServiceRound `json:"rounds"`
}

// Service is the service order of both teams in a set.
type Service struct {
	Home       TeamRounds  `json:"home"`
	Away       TeamRounds  `json:"away"`
	Placements []Placement `json:"placements"`
}

// Of returns the rounds of side.
func (s Service) Of(side model.Side) TeamRounds {
	if side == model.SideAway {
		return s.Away
	}
	return s.Home
}

// turnSlot maps the k-th service turn of a team to its grid coordinates.
func turnSlot(turn int) (position, box int) {
	return turn % Slots, turn/Slots + 1
}

// ServiceRounds replays the points of a set and lays out each team's service
// order. first serves the opening rally; the receiving team's first serve is
// its second turn, as its first box is crossed out. When finished is true
// the turn holding the final point is circled and no turn is opened after it.
func ServiceRounds(events []model.Event, first model.Side, finished bool) Service {
	if !first.Valid() {
		first = model.SideHome
	}
	rounds := map[model.Side][]ServiceRound{model.SideHome: {}, model.SideAway: {}}
	turns := map[model.Side]int{first: 0, first.Other(): 1}
	placements := []Placement{}

	open := func(side model.Side) {
		pos, box := turnSlot(turns[side])
		turns[side]++
		rounds[side] = append(rounds[side], ServiceRound{Position: pos, Box: box, Ticked: true})
	}
	closeTurn := func(side model.Side, run int) {
		r := rounds[side]
		n := run
		r[len(r)-1].Points = &n
	}

	var points []model.Event
	for _, e := range events {
		if e.Type == model.TypePoint && e.Team().Valid() {
			points = append(points, e)
		}
	}

	server := first
	run := 0
	open(server)
	for i, e := range points {
		scorer := e.Team()
		current := rounds[server][len(rounds[server])-1]
		if scorer == server {
			run++
		}
		placements = append(placements, Placement{
			EventID:     e.ID,
			Team:        scorer,
			ServingTeam: server,
			Position:    current.Position,
			Box:         current.Box,
			Run:         run,
		})
		last := finished && i == len(points)-1
		if last {
			closeTurn(server, run)
			rounds[server][len(rounds[server])-1].Circled = true
			break
		}
		if scorer != server {
			closeTurn(server, run)
			server = scorer
			run = 0
			open(server)
		}
	}

	return Service{
		Home:       TeamRounds{Side: model.SideHome, StartsReceiving: first != model.SideHome, Rounds: rounds[model.SideHome]},
		Away:       TeamRounds{Side: model.SideAway, StartsReceiving: first != model.SideAway, Rounds: rounds[model.SideAway]},
		Placements: placements,
	}
}
