// Package fixtures provides in-memory event sources and synthetic seasons.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// ErrUnknownEvent is returned for an input no rows were added for.
var ErrUnknownEvent = errors.New("unknown event input")

type eventKey struct {
	file, sheet string
}

// Source is an in-memory event source keyed by input file and sheet.
type Source struct {
	mu     sync.RWMutex
	events map[eventKey][]model.RawRow
}

// NewSource returns an empty Source.
func NewSource() *Source {
	return &Source{events: make(map[eventKey][]model.RawRow)}
}

// Add appends rows to the event addressed by in. Rows without a location get
// one pointing at their index below in.FirstRow.
func (s *Source) Add(in model.EventInput, rows ...model.RawRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := eventKey{in.File, in.Sheet}
	first := max(in.FirstRow, 1) + len(s.events[k])
	for i := range rows {
		if rows[i].Location.IsZero() {
			rows[i].Location = diag.Location{File: in.File, Sheet: in.Sheet, Row: first + i}
		}
	}
	s.events[k] = append(s.events[k], rows...)
}

// Rows returns a copy of the rows added for in.
func (s *Source) Rows(ctx context.Context, _ model.Category, in model.EventInput) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, ok := s.events[eventKey{in.File, in.Sheet}]
	if !ok {
		return nil, fmt.Errorf("%w: %s[%s]", ErrUnknownEvent, in.File, in.Sheet)
	}
	return append([]model.RawRow(nil), rows...), nil
}

// Row builds a raw row from loosely typed values: ints become integer
// cells, strings text cells and nil an absent cell.
func Row(name, team string, birthYear, position any) model.RawRow {
	return model.RawRow{
		Name:      model.TextCell(name),
		Team:      model.TextCell(team),
		BirthYear: cell(birthYear),
		Position:  cell(position),
	}
}

func cell(v any) model.Cell {
	switch x := v.(type) {
	case nil:
		return model.Absent()
	case int:
		return model.IntCell(x)
	case string:
		return model.TextCell(x)
	default:
		return model.TextCell(fmt.Sprint(x))
	}
}
