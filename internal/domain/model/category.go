package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSeason reports a season configuration that fails validation.
var ErrInvalidSeason = errors.New("invalid season configuration")

// Open-ended age bounds.
const (
	AgeOpenLow  = 0
	AgeOpenHigh = 100
)

// EventInput describes where one event's results for a category come from.
// The addressing fields are only interpreted by the workbook reader.
type EventInput struct {
	Alternative bool `yaml:"alternative" json:"alternative"`

	File     string `yaml:"file" json:"file" validate:"required"`
	Sheet    string `yaml:"sheet" json:"sheet"`
	FirstRow int    `yaml:"first_row" json:"first_row" validate:"min=0"`

	NameCol              string `yaml:"name_col" json:"name_col" validate:"required,alpha"`
	TeamCol              string `yaml:"team_col" json:"team_col" validate:"omitempty,alpha"`
	BirthYearCol         string `yaml:"birth_year_col" json:"birth_year_col" validate:"omitempty,alpha"`
	PositionCol          string `yaml:"position_col" json:"position_col" validate:"required,alpha"`
	BirthYearApprovedCol string `yaml:"birth_year_approved_col" json:"birth_year_approved_col" validate:"omitempty,alpha"`
	PositionApprovedCol  string `yaml:"position_approved_col" json:"position_approved_col" validate:"omitempty,alpha"`
}

// Category is an age/skill class with its own standings.
type Category struct {
	Name   string `yaml:"name" json:"name" validate:"required"`
	MinAge int    `yaml:"min_age" json:"min_age" validate:"min=0,max=100"`
	MaxAge int    `yaml:"max_age" json:"max_age" validate:"min=0,max=100,gtefield=MinAge"`

	// CountsPositions false means every finisher earns one participation point.
	CountsPositions bool `yaml:"counts_positions" json:"counts_positions"`

	// MaxCountedEvents is how many best events count toward the season total.
	MaxCountedEvents int `yaml:"max_counted_events" json:"max_counted_events" validate:"min=0"`

	Inputs []EventInput `yaml:"inputs" json:"inputs" validate:"dive"`
}

// RaceCount returns the number of non-alternative inputs.
func (c Category) RaceCount() int {
	n := 0
	for _, in := range c.Inputs {
		if !in.Alternative {
			n++
		}
	}
	return n
}

// SlotCount returns the number of race slots in the standings. A category
// fed only by alternative events still gets one slot for them.
func (c Category) SlotCount() int {
	n := c.RaceCount()
	if n == 0 && len(c.Inputs) > 0 {
		return 1
	}
	return n
}

// MinBirthYear returns the earliest birth year allowed in season year.
// An open upper age bound yields math.MinInt.
func (c Category) MinBirthYear(year int) int {
	if c.MaxAge >= AgeOpenHigh {
		return math.MinInt
	}
	return year - c.MaxAge
}

// MaxBirthYear returns the latest birth year allowed in season year.
// An open lower age bound yields math.MaxInt.
func (c Category) MaxBirthYear(year int) int {
	if c.MinAge <= AgeOpenLow {
		return math.MaxInt
	}
	return year - c.MinAge
}

// InBirthYearRange reports whether birthYear fits the category in season year.
func (c Category) InBirthYearRange(year, birthYear int) bool {
	return birthYear >= c.MinBirthYear(year) && birthYear <= c.MaxBirthYear(year)
}

// Season is the full configuration of one run.
type Season struct {
	Year int `yaml:"year" json:"year" validate:"required,min=1900"`

	// MaxCountedEvents is the season-wide default for categories that leave it zero.
	MaxCountedEvents int `yaml:"max_counted_events" json:"max_counted_events" validate:"min=0"`

	Categories []Category `yaml:"categories" json:"categories" validate:"required,dive"`
}

// Normalize fills each category's MaxCountedEvents from the season default.
// A zero default and a zero category value mean every event counts.
func (s *Season) Normalize() {
	for i := range s.Categories {
		c := &s.Categories[i]
		if c.MaxCountedEvents <= 0 {
			c.MaxCountedEvents = s.MaxCountedEvents
		}
		if c.MaxCountedEvents <= 0 {
			c.MaxCountedEvents = c.SlotCount()
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the season configuration against its field constraints.
func (s *Season) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeason, err)
	}
	return nil
}
