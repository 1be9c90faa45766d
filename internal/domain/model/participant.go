package model

import "strconv"

// BirthYear is a participant's birth year. Exactly one of Year and Text is
// set, or neither when the year is unknown. Text keeps a raw value that could
// not be read as a number.
type BirthYear struct {
	Year int
	Text string
}

// Year returns a numeric birth year.
func Year(y int) BirthYear { return BirthYear{Year: y} }

// Known reports whether the birth year is numeric.
func (b BirthYear) Known() bool { return b.Year > 0 }

// Absent reports whether nothing is known about the birth year.
func (b BirthYear) Absent() bool { return b.Year == 0 && b.Text == "" }

func (b BirthYear) String() string {
	if b.Known() {
		return strconv.Itoa(b.Year)
	}
	return b.Text
}

// Participant identifies a competitor within a season.
type Participant struct {
	Name      string
	Team      string
	BirthYear BirthYear
}

// Key is the identity of a participant: rows with equal keys are the same person.
type Key struct {
	Name      string
	BirthYear BirthYear
}

// Key returns the identity key of p.
func (p *Participant) Key() Key {
	return Key{Name: p.Name, BirthYear: p.BirthYear}
}

// Backfill copies the team from other when p has none.
func (p *Participant) Backfill(other Participant) {
	if p.Team == "" && other.Team != "" {
		p.Team = other.Team
	}
}
