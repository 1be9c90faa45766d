package dedupe

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Default checker configuration constants.
const (
	defaultCategoryThreshold = 0.8
	defaultRosterThreshold   = 0.9
	defaultMaxYearGap        = 5
)

// Scopes of a similarity check, used as metric labels.
const (
	ScopeCategory = "category"
	ScopeRoster   = "roster"
)

// RosterEntry is one participant as listed in some season's results.
type RosterEntry struct {
	// Season is the source year; zero within a single run.
	Season      int
	Category    string
	Participant model.Participant
	Location    diag.Location
}

// Pair is a reported pair of probably identical participants.
type Pair struct {
	A, B       RosterEntry
	Similarity float64
}

// Checker compares participant names. It never changes what it checks.
type Checker struct {
	categoryThreshold   float64
	rosterThreshold     float64
	maxYearGap          int
	rosterRequiresYears bool
}

// NewChecker creates a new checker with configuration options.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		categoryThreshold:   defaultCategoryThreshold,
		rosterThreshold:     defaultRosterThreshold,
		maxYearGap:          defaultMaxYearGap,
		rosterRequiresYears: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckCategory reports similar names within one category's standings.
// Participants with an unknown birth year are compared with everyone.
func (c *Checker) CheckCategory(st *model.CategoryStandings, r diag.Reporter) []Pair {
	entries := make([]RosterEntry, 0, len(st.Results))
	for _, pr := range st.Results {
		entries = append(entries, RosterEntry{Category: st.Category.Name, Participant: *pr.Participant})
	}

	pairs := c.scan(entries, c.categoryThreshold, false)
	for _, p := range pairs {
		diag.Warnf(r, diag.Location{}, diag.CodeSimilarNames,
			"Similar names in %s: '%s' (%s) and '%s' (%s), similarity %.2f",
			st.Category.Name,
			p.A.Participant.Name, p.A.Participant.BirthYear,
			p.B.Participant.Name, p.B.Participant.BirthYear,
			p.Similarity)
	}
	return pairs
}

// CheckRoster reports similar names across a multi-season roster. Entries
// with the same name and birth year are the same person and not reported.
func (c *Checker) CheckRoster(entries []RosterEntry, r diag.Reporter) []Pair {
	pairs := c.scan(entries, c.rosterThreshold, c.rosterRequiresYears)
	for _, p := range pairs {
		diag.Warnf(r, p.B.Location, diag.CodeSimilarNames,
			"Similar names: '%s' (%s, %d %s) and '%s' (%s, %d %s), similarity %.2f",
			p.A.Participant.Name, p.A.Participant.BirthYear, p.A.Season, p.A.Category,
			p.B.Participant.Name, p.B.Participant.BirthYear, p.B.Season, p.B.Category,
			p.Similarity)
	}
	return pairs
}

func (c *Checker) scan(entries []RosterEntry, threshold float64, requireYears bool) []Pair {
	folded := make([]string, len(entries))
	for i, e := range entries {
		folded[i] = foldName(e.Participant.Name)
	}

	var pairs []Pair
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i].Participant, entries[j].Participant
			if a.Key() == b.Key() {
				continue
			}
			if !c.yearsComparable(a.BirthYear, b.BirthYear, requireYears) {
				continue
			}
			if sim := similarity(folded[i], folded[j]); sim >= threshold {
				pairs = append(pairs, Pair{A: entries[i], B: entries[j], Similarity: sim})
			}
		}
	}
	return pairs
}

func (c *Checker) yearsComparable(a, b model.BirthYear, requireYears bool) bool {
	if !a.Known() || !b.Known() {
		return !requireYears
	}
	gap := a.Year - b.Year
	if gap < 0 {
		gap = -gap
	}
	return gap <= c.maxYearGap
}

// NameSimilarity returns the best similarity of a and b, also trying the
// two-token forms of three-token names.
func NameSimilarity(a, b string) float64 {
	return similarity(foldName(a), foldName(b))
}

func similarity(a, b string) float64 {
	best := 0.0
	for _, x := range variants(a) {
		for _, y := range variants(b) {
			if r := ratio(x, y); r > best {
				best = r
			}
		}
	}
	return best
}

// variants returns name and, for three tokens, the first token paired with
// each of the other two.
func variants(name string) []string {
	out := []string{name}
	t := strings.Fields(name)
	if len(t) != 3 {
		return out
	}
	for _, v := range []string{t[0] + " " + t[1], t[0] + " " + t[2]} {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Ratio returns the Levenshtein similarity of two names in [0, 1], ignoring
// case and diacritics.
func Ratio(a, b string) float64 {
	return ratio(foldName(a), foldName(b))
}

func ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// foldName strips diacritics, folds case and collapses whitespace.
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}
