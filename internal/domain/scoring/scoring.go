// Package scoring maps one event finish to series points.
package scoring

import "github.com/pavelchuchma/vkct/internal/domain/model"

// Default scoring configuration constants.
const (
	defaultBonusCap        = 30
	defaultAlternativeBase = 26
	participationPoints    = 1
)

// DefaultPointTable is the placing bonus for the top positions, indexed by
// position-1.
var DefaultPointTable = []int{
	50, 45, 40, 37, 34, 31, 28, 26, 24, 22,
	20, 19, 18, 17, 16, 15, 14, 13, 12, 11,
	10, 9, 8, 7, 6, 5, 4, 3, 2, 1,
}

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithPointTable replaces the placing bonus table.
func WithPointTable(table []int) Option {
	return func(c *Calculator) {
		if len(table) > 0 {
			c.table = append([]int(nil), table...)
		}
	}
}

// WithBonusCap sets the participant count above which the field bonus stops
// growing.
func WithBonusCap(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.bonusCap = n
		}
	}
}

// WithAlternativeBase sets the base of the alternative-event scale: place p
// earns base-p points.
func WithAlternativeBase(n int) Option {
	return func(c *Calculator) {
		if n > 0 {
			c.altBase = n
		}
	}
}

// Input abstracts the row and event fields needed for scoring.
type Input struct {
	Position model.Position
	// ParticipantCount is the number of rows in the event, DNF rows included.
	ParticipantCount int
	Alternative      bool
	CountsPositions  bool
}

// Scorer computes points for one finish.
type Scorer interface {
	Points(in Input) int
}

// Calculator implements Scorer with the series points rules.
type Calculator struct {
	table    []int
	bonusCap int
	altBase  int
}

// NewCalculator creates a new calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		table:    DefaultPointTable,
		bonusCap: defaultBonusCap,
		altBase:  defaultAlternativeBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Points returns the points earned by in. The result is never negative.
func (c *Calculator) Points(in Input) int {
	if in.Position.IsDNF() || in.Position.Place <= 0 {
		return 0
	}
	if !in.CountsPositions {
		return participationPoints
	}
	place := in.Position.Place
	if in.Alternative {
		return max(0, c.altBase-place)
	}

	bonus := min(in.ParticipantCount, c.bonusCap)
	points := max(bonus-(place-1), 0)
	if place <= len(c.table) {
		points += c.table[place-1]
	}
	return points
}
