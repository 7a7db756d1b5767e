package ledger

import (
	"strconv"
	"strings"

	"github.com/openvolley/scoresheet/internal/domain/model"
	"github.com/openvolley/scoresheet/internal/domain/ordering"
	"github.com/openvolley/scoresheet/internal/domain/sides"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// DefaultSanctionRows is the number of sanction rows printed on the sheet.
const DefaultSanctionRows = 10

// DelayMarker stands in for the player number of delay sanctions.
const DelayMarker = "D"

// Sanction kinds as recorded in the payload type field.
const (
	KindWarning          = "warning"
	KindPenalty          = "penalty"
	KindExpulsion        = "expulsion"
	KindDisqualification = "disqualification"
	KindDelayWarning     = "delay_warning"
	KindDelayPenalty     = "delay_penalty"
	KindImproperRequest  = "improper_request"
)

// Kind returns the sanction kind of a payload, trimmed and lowercased.
func Kind(p model.Payload) string {
	return strings.ToLower(strings.TrimSpace(p.String("type")))
}

// SanctionRecord is one row of the sanctions box.
type SanctionRecord struct {
	EventID  string      `json:"eventId"`
	Team     model.Label `json:"team"`
	PlayerNr string      `json:"playerNr"`
	Type     string      `json:"type"`
	Set      int         `json:"set"`
	Score    string      `json:"score"`
}

// ImproperRequests flags the teams that received an improper request sanction.
type ImproperRequests struct {
	A bool `json:"A"`
	B bool `json:"B"`
}

// Sanctions is the sanctions box of a match.
type Sanctions struct {
	Records  []SanctionRecord `json:"records"`
	Overflow []SanctionRecord `json:"overflow"`
	Improper ImproperRequests `json:"improperRequest"`
}

// roleCodes maps folded official roles to their sheet code.
var roleCodes = map[string]string{
	"coach":             "C",
	"c":                 "C",
	"assistant coach 1": "AC1",
	"ac1":               "AC1",
	"assistant coach 2": "AC2",
	"ac2":               "AC2",
	"physiotherapist":   "P",
	"p":                 "P",
	"medic":             "M",
	"doctor":            "M",
	"m":                 "M",
}

var fold = cases.Fold()

// RoleCode maps an official's role to its sheet code, or "" when unknown.
func RoleCode(role string) string {
	key := strings.Join(strings.Fields(fold.String(norm.NFC.String(role))), " ")
	return roleCodes[key]
}

// BuildSanctions replays every sanction of the match, across all sets. The
// score of each record counts the points of the same set issued no later
// than the sanction, written A:B. Records past rows spill into Overflow;
// rows <= 0 uses DefaultSanctionRows.
func BuildSanctions(events []model.Event, m model.Match, rows int) Sanctions {
	if rows <= 0 {
		rows = DefaultSanctionRows
	}
	out := Sanctions{Records: []SanctionRecord{}, Overflow: []SanctionRecord{}}
	bySet := ordering.BySet(events)

	for set := model.MinSet; set <= model.MaxSet; set++ {
		setEvents := bySet[set]
		for i, e := range setEvents {
			if e.Type != model.TypeSanction {
				continue
			}
			side := e.Team()
			if !side.Valid() {
				continue
			}
			label := sides.LabelOf(m, side)
			kind := Kind(e.Payload)

			rec := SanctionRecord{EventID: e.ID, Team: label, Set: set}
			switch kind {
			case KindImproperRequest:
				if label == model.LabelA {
					out.Improper.A = true
				} else {
					out.Improper.B = true
				}
				continue
			case KindDelayWarning:
				rec.Type, rec.PlayerNr = KindWarning, DelayMarker
			case KindDelayPenalty:
				rec.Type, rec.PlayerNr = KindPenalty, DelayMarker
			case KindWarning, KindPenalty, KindExpulsion, KindDisqualification:
				rec.Type = kind
				rec.PlayerNr = playerOrRole(e.Payload)
			default:
				continue
			}

			score := scoreAtSanction(setEvents, i)
			a, b := sides.TeamAKey(m), sides.TeamBKey(m)
			rec.Score = strconv.Itoa(score.Of(a)) + ":" + strconv.Itoa(score.Of(b))

			if len(out.Records) < rows {
				out.Records = append(out.Records, rec)
			} else {
				out.Overflow = append(out.Overflow, rec)
			}
		}
	}
	return out
}

func playerOrRole(p model.Payload) string {
	if nr := p.PlayerNumber("playerNumber"); nr != "" {
		return nr
	}
	if nr := p.PlayerNumber("playerNr"); nr != "" {
		return nr
	}
	return RoleCode(p.String("role"))
}

// scoreAtSanction counts the points of events issued no later than
// events[at]. Without timestamps on both sides the log order decides.
func scoreAtSanction(events []model.Event, at int) model.Tally {
	sanction := events[at]
	var t model.Tally
	for i, e := range events {
		if e.Type != model.TypePoint {
			continue
		}
		var before bool
		if !sanction.TS.IsZero() && !e.TS.IsZero() {
			before = !e.TS.After(sanction.TS.Time)
		} else {
			before = i < at
		}
		if before {
			t.Add(e.Team())
		}
	}
	return t
}
