package model

import (
	"strconv"
	"strings"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
)

// DNF-class marks. They are always worth zero points.
const (
	MarkDNF = "DNF"
	MarkDNP = "DNP"
	MarkDNS = "DNS"
)

// IsDNFMark reports whether s is one of the DNF-class tokens (case-insensitive).
func IsDNFMark(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case MarkDNF, MarkDNP, MarkDNS:
		return true
	}
	return false
}

// Position is a finishing place or a DNF-class mark.
type Position struct {
	Place int
	Mark  string
}

// Place returns a numeric finishing position.
func Place(n int) Position { return Position{Place: n} }

// DNF returns the did-not-finish sentinel.
func DNF() Position { return Position{Mark: MarkDNF} }

// IsDNF reports whether the position carries a DNF-class mark.
func (p Position) IsDNF() bool { return p.Mark != "" }

func (p Position) String() string {
	if p.IsDNF() {
		return p.Mark
	}
	return strconv.Itoa(p.Place)
}

// RawRow is one finisher record as read from an event sheet.
type RawRow struct {
	Name      Cell
	Team      Cell
	BirthYear Cell
	Position  Cell

	BirthYearApproved bool
	PositionApproved  bool

	Location diag.Location
}

// EventResultRow is a normalized finisher record.
type EventResultRow struct {
	Participant Participant
	Position    Position
	Alternative bool

	BirthYearApproved bool
	PositionApproved  bool

	Location diag.Location
}

// RaceResult is one participant's outcome in one race slot. An alternative
// event fills the Alt* fields of the slot it supplements.
type RaceResult struct {
	Position *Position
	Points   *int

	AltPosition *Position
	AltPoints   *int

	// HalfPoints is set when an alternative event contributed to the slot.
	HalfPoints bool
	// IgnoredInSummary is set when the best-N rule dropped the slot.
	IgnoredInSummary bool

	CumulativePoints *int
	CumulativeRank   *int
}

// Populated reports whether any event contributed to the slot.
func (r *RaceResult) Populated() bool {
	return r.Points != nil || r.AltPoints != nil
}

// EffectivePoints returns the slot's points: primary plus alternative.
func (r *RaceResult) EffectivePoints() (int, bool) {
	if !r.Populated() {
		return 0, false
	}
	total := 0
	if r.Points != nil {
		total += *r.Points
	}
	if r.AltPoints != nil {
		total += *r.AltPoints
	}
	return total, true
}

// DisplayPosition returns the primary position, or the alternative one when
// the slot was filled only by an alternative event.
func (r *RaceResult) DisplayPosition() *Position {
	if r.Position != nil {
		return r.Position
	}
	return r.AltPosition
}

// PersonalResult is one participant's season.
type PersonalResult struct {
	Participant *Participant
	Races       []RaceResult
}

// NewPersonalResult returns a result with slots empty race slots.
func NewPersonalResult(p *Participant, slots int) *PersonalResult {
	return &PersonalResult{Participant: p, Races: make([]RaceResult, slots)}
}

// Final returns the last race slot, or nil when there are none.
func (pr *PersonalResult) Final() *RaceResult {
	if len(pr.Races) == 0 {
		return nil
	}
	return &pr.Races[len(pr.Races)-1]
}

// CategoryStandings is a category with its participants, ordered by final
// rank once computed.
type CategoryStandings struct {
	Category Category
	Results  []*PersonalResult
}

// Len returns the number of participants.
func (s *CategoryStandings) Len() int { return len(s.Results) }

// Find returns the participant result with key k.
func (s *CategoryStandings) Find(k Key) (*PersonalResult, bool) {
	for _, pr := range s.Results {
		if pr.Participant.Key() == k {
			return pr, true
		}
	}
	return nil, false
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int { return &n }
