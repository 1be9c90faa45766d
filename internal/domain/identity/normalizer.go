package identity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// DefaultHonorifics are the title and qualifier tokens removed from names.
var DefaultHonorifics = []string{
	"Mgr.", "Ing.", "Bc.", "MUDr.", "MVDr.", "JUDr.", "RNDr.", "PhDr.", "Dr.",
	"PhD.", "Ph.D.", "DiS.", "ml.", "st.",
}

// DefaultUnknownBirthYearTokens mean "birth year explicitly unknown".
var DefaultUnknownBirthYearTokens = []string{"?", "-", "--", "N/A", "x"}

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithFirstNames sets the first-name dictionary used to order name tokens.
func WithFirstNames(d Dictionary) Option {
	return func(n *Normalizer) {
		if d != nil {
			n.firstNames = d
		}
	}
}

// WithHonorifics replaces the stripped title tokens.
func WithHonorifics(tokens []string) Option {
	return func(n *Normalizer) {
		if tokens != nil {
			n.honorifics = NewDictionary(tokens...)
		}
	}
}

// WithUnknownBirthYearTokens replaces the tokens read as an unknown birth year.
func WithUnknownBirthYearTokens(tokens []string) Option {
	return func(n *Normalizer) {
		if tokens != nil {
			n.unknownYear = NewDictionary(tokens...)
		}
	}
}

// Normalizer canonicalizes raw rows. It holds no per-row state and is safe
// for concurrent use.
type Normalizer struct {
	firstNames  Dictionary
	honorifics  Dictionary
	unknownYear Dictionary
}

// NewNormalizer creates a Normalizer with configuration options.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		firstNames:  NewDictionary(),
		honorifics:  NewDictionary(DefaultHonorifics...),
		unknownYear: NewDictionary(DefaultUnknownBirthYearTokens...),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Scope is what a row is normalized against.
type Scope struct {
	Category    model.Category
	SeasonYear  int
	Alternative bool
}

// NormalizeRow canonicalizes one raw row. It returns false when the row must
// be dropped: an alternative-event finisher outside the category's
// birth-year window who was not approved.
func (n *Normalizer) NormalizeRow(raw model.RawRow, scope Scope, r diag.Reporter) (model.EventResultRow, bool) {
	loc := raw.Location
	name := n.NormalizeName(raw.Name.String(), loc, r)

	by, keep := n.CoerceBirthYear(raw.BirthYear, raw.BirthYearApproved, name, scope, loc, r)
	if !keep {
		return model.EventResultRow{}, false
	}

	return model.EventResultRow{
		Participant: model.Participant{
			Name:      name,
			Team:      strings.TrimSpace(raw.Team.String()),
			BirthYear: by,
		},
		Position:          n.CoercePosition(raw.Position, raw.PositionApproved, name, loc, r),
		Alternative:       scope.Alternative,
		BirthYearApproved: raw.BirthYearApproved,
		PositionApproved:  raw.PositionApproved,
		Location:          loc,
	}, true
}

// NormalizeName returns the canonical "First Surname" form of raw. Names
// whose token order cannot be decided are returned in their original order
// with a warning; names with an unexpected number of tokens are returned
// unchanged with an error.
func (n *Normalizer) NormalizeName(raw string, loc diag.Location, r diag.Reporter) string {
	tokens := n.tokens(raw)

	switch len(tokens) {
	case 2:
		first, last := title(tokens[0]), title(tokens[1])
		f0, f1 := n.firstNames.Contains(first), n.firstNames.Contains(last)
		switch {
		case f0 && !f1:
			return first + " " + last
		case f1 && !f0:
			return last + " " + first
		}
	case 3:
		a, b, c := title(tokens[0]), title(tokens[1]), title(tokens[2])
		fa, fc := n.firstNames.Contains(a), n.firstNames.Contains(c)
		switch {
		case fa && !fc:
			return strings.Join([]string{a, b, c}, " ")
		case fc && !fa:
			// Surname in front position.
			return strings.Join([]string{b, c, a}, " ")
		}
	default:
		diag.Errorf(r, loc, diag.CodeNameFormat, "Unexpected name format, 2 or 3 parts expected: '%s'", raw)
		return raw
	}

	diag.Warnf(r, loc, diag.CodeNameOrder, "Unable to detect first and second name: '%s'", raw)
	return strings.Join(tokens, " ")
}

func (n *Normalizer) tokens(raw string) []string {
	fields := strings.Fields(raw)
	out := fields[:0]
	for _, f := range fields {
		if _, ok := n.honorifics[fold(f)]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// title capitalizes each part of a possibly compound token.
func title(token string) string {
	caser := cases.Title(language.Und)
	parts := strings.Split(token, compoundSeparator)
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, compoundSeparator)
}

// CoerceBirthYear reads a birth year and checks it against the category's
// window. The boolean is false when the row must be dropped.
func (n *Normalizer) CoerceBirthYear(c model.Cell, approved bool, name string, scope Scope, loc diag.Location, r diag.Reporter) (model.BirthYear, bool) {
	if c.IsAbsent() {
		return model.BirthYear{}, true
	}
	if c.Kind == model.CellText {
		if _, ok := n.unknownYear[fold(strings.TrimSpace(c.Text))]; ok {
			return model.BirthYear{}, true
		}
	}

	year, ok := c.CoerceInt()
	if !ok {
		diag.Warnf(r, loc, diag.CodeBirthYearNaN, "Birth year '%s' of %s is not a number", c.String(), name)
		return model.BirthYear{Text: strings.TrimSpace(c.Text)}, true
	}
	if year <= 0 {
		diag.Warnf(r, loc, diag.CodeBirthYearNaN, "Birth year '%d' of %s is not a number", year, name)
		return model.BirthYear{Text: c.String()}, true
	}

	by := model.Year(year)
	if approved || scope.Category.InBirthYearRange(scope.SeasonYear, year) {
		return by, true
	}
	if scope.Alternative {
		// Alternative events list every age; finishers outside the
		// category are not part of it.
		return by, false
	}
	diag.Warnf(r, loc, diag.CodeBirthYearRange, "Birth year %d of %s is out of category %s range", year, name, scope.Category.Name)
	return by, true
}

// CoercePosition reads a finishing position. DNF-class tokens and values that
// are not positive numbers become a DNF sentinel.
func (n *Normalizer) CoercePosition(c model.Cell, approved bool, name string, loc diag.Location, r diag.Reporter) model.Position {
	if c.Kind == model.CellText && model.IsDNFMark(c.Text) {
		return model.Position{Mark: strings.ToUpper(strings.TrimSpace(c.Text))}
	}
	if place, ok := c.CoerceInt(); ok && place > 0 {
		return model.Place(place)
	}
	if !approved {
		diag.Infof(r, loc, diag.CodePositionUnparsed, "Position '%s' is not a number! DNF '%s'!", c.String(), name)
	}
	return model.DNF()
}
