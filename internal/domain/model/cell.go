// Package model contains the series data model passed between layers.
package model

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	// CellAbsent is an empty cell.
	CellAbsent CellKind = iota
	// CellInt is a whole number.
	CellInt
	// CellText is any other text.
	CellText
)

// Cell is a raw spreadsheet value: absent, integer or text.
type Cell struct {
	Kind CellKind
	Int  int
	Text string
}

// Absent returns an empty cell.
func Absent() Cell { return Cell{} }

// IntCell returns an integer cell.
func IntCell(n int) Cell { return Cell{Kind: CellInt, Int: n} }

// TextCell returns a text cell. Blank text is an absent cell.
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// ParseCell classifies a raw string as read from a workbook: blank is
// absent, a plain integer is CellInt, anything else is text.
func ParseCell(s string) Cell {
	t := strings.TrimSpace(s)
	if t == "" {
		return Cell{}
	}
	if n, err := strconv.Atoi(t); err == nil {
		return IntCell(n)
	}
	// Numeric cells written by some tools come back as "1985.0".
	if f, err := strconv.ParseFloat(t, 64); err == nil && f == float64(int(f)) && strings.ContainsAny(t, ".eE") && !strings.HasSuffix(t, ".") {
		return IntCell(int(f))
	}
	return TextCell(s)
}

// IsAbsent reports whether the cell is empty.
func (c Cell) IsAbsent() bool { return c.Kind == CellAbsent }

// String renders the cell the way it would be written back.
func (c Cell) String() string {
	switch c.Kind {
	case CellInt:
		return strconv.Itoa(c.Int)
	case CellText:
		return c.Text
	default:
		return ""
	}
}

// CoerceInt returns the integer held by c. Text is accepted when it is a
// numeral, optionally followed by one non-numeral marker such as the
// ordinal period in "3.".
func (c Cell) CoerceInt() (int, bool) {
	switch c.Kind {
	case CellInt:
		return c.Int, true
	case CellText:
		return coerceNumeral(strings.TrimSpace(c.Text))
	default:
		return 0, false
	}
}

func coerceNumeral(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if n, ok := digits(s); ok {
		return n, true
	}
	last, size := utf8.DecodeLastRuneInString(s)
	if unicode.IsDigit(last) {
		return 0, false
	}
	return digits(s[:len(s)-size])
}

func digits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
