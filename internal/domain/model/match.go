package model

// Official is a team or match official listed on the scoresheet.
type Official struct {
	Role      string `json:"role" yaml:"role" msgpack:"role"`
	FirstName string `json:"firstName,omitempty" yaml:"firstName,omitempty" msgpack:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty" yaml:"lastName,omitempty" msgpack:"lastName,omitempty"`
}

// Match is the mutable record that accompanies the event log.
type Match struct {
	ID          string    `json:"id" yaml:"id" msgpack:"id"`
	ScheduledAt Timestamp `json:"scheduledAt,omitzero" yaml:"scheduledAt,omitempty" msgpack:"scheduledAt"`

	// CoinTossTeamA is the side labelled "A" on the scoresheet.
	CoinTossTeamA Side `json:"coinTossTeamA,omitempty" yaml:"coinTossTeamA,omitempty" msgpack:"coinTossTeamA,omitempty"`
	// FirstServe is the side serving first in set 1.
	FirstServe Side `json:"firstServe,omitempty" yaml:"firstServe,omitempty" msgpack:"firstServe,omitempty"`
	// CoinTossServeA records whether team A chose service at the toss.
	CoinTossServeA *bool `json:"coinTossServeA,omitempty" yaml:"coinTossServeA,omitempty" msgpack:"coinTossServeA,omitempty"`

	HomeShortName string `json:"homeShortName,omitempty" yaml:"homeShortName,omitempty" msgpack:"homeShortName,omitempty"`
	AwayShortName string `json:"awayShortName,omitempty" yaml:"awayShortName,omitempty" msgpack:"awayShortName,omitempty"`

	Set5CourtSwitched  bool `json:"set5CourtSwitched,omitempty" yaml:"set5CourtSwitched,omitempty" msgpack:"set5CourtSwitched,omitempty"`
	Set5PointsAtChange int  `json:"set5PointsAtChange,omitempty" yaml:"set5PointsAtChange,omitempty" msgpack:"set5PointsAtChange,omitempty"`

	Officials     []Official `json:"officials,omitempty" yaml:"officials,omitempty" msgpack:"officials,omitempty"`
	HomeOfficials []Official `json:"homeOfficials,omitempty" yaml:"homeOfficials,omitempty" msgpack:"homeOfficials,omitempty"`
	AwayOfficials []Official `json:"awayOfficials,omitempty" yaml:"awayOfficials,omitempty" msgpack:"awayOfficials,omitempty"`

	// Requests holds transient flags (e.g. captainOnCourt) cleared once resolved.
	Requests map[string]bool `json:"requests,omitempty" yaml:"requests,omitempty" msgpack:"requests,omitempty"`
}

// ShortName returns the short name of side.
func (m Match) ShortName(side Side) string {
	if side == SideAway {
		return m.AwayShortName
	}
	return m.HomeShortName
}

// Set is the persisted record of one set.
type Set struct {
	Index      int       `json:"index" yaml:"index" msgpack:"index"`
	HomePoints int       `json:"homePoints" yaml:"homePoints" msgpack:"homePoints"`
	AwayPoints int       `json:"awayPoints" yaml:"awayPoints" msgpack:"awayPoints"`
	Finished   bool      `json:"finished" yaml:"finished" msgpack:"finished"`
	StartTime  Timestamp `json:"startTime,omitzero" yaml:"startTime,omitempty" msgpack:"startTime"`
	EndTime    Timestamp `json:"endTime,omitzero" yaml:"endTime,omitempty" msgpack:"endTime"`
	// FirstServe is the side serving first in this set, when recorded.
	FirstServe Side `json:"firstServe,omitempty" yaml:"firstServe,omitempty" msgpack:"firstServe,omitempty"`
}

// Points returns the set score as a tally.
func (s Set) Points() Tally {
	return Tally{Home: s.HomePoints, Away: s.AwayPoints}
}

// Merge applies an update to a stored set. Finished is sticky: once true it
// is never cleared, and a recorded end time is kept when the update omits it.
func (s Set) Merge(update Set) Set {
	out := update
	out.Index = s.Index
	if s.Finished {
		out.Finished = true
		if out.EndTime.IsZero() {
			out.EndTime = s.EndTime
		}
	}
	if out.StartTime.IsZero() {
		out.StartTime = s.StartTime
	}
	if out.FirstServe == "" {
		out.FirstServe = s.FirstServe
	}
	return out
}

// FindSet returns the record for index, if any.
func FindSet(sets []Set, index int) (Set, bool) {
	for _, s := range sets {
		if s.Index == index {
			return s, true
		}
	}
	return Set{}, false
}
