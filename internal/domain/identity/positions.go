package identity

import (
	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// ValidatePositions checks one event's places for duplicates and gaps.
// Rows with an approved position never trigger the duplicate warning.
// Alternative events are not checked for gaps since they are filtered by
// birth year.
func ValidatePositions(rows []model.EventResultRow, alternative bool, r diag.Reporter) {
	if len(rows) == 0 {
		return
	}

	seen := make(map[int]bool, len(rows))
	maxPlace := 0
	for _, row := range rows {
		if row.Position.IsDNF() {
			continue
		}
		place := row.Position.Place
		if seen[place] && !row.PositionApproved {
			diag.Warnf(r, row.Location, diag.CodePositionDuplicate,
				"Position %d of '%s' is not unique", place, row.Participant.Name)
		}
		seen[place] = true
		if place > maxPlace {
			maxPlace = place
		}
	}

	if alternative {
		return
	}
	sheet := rows[0].Location
	sheet.Row = 0
	for p := 1; p <= maxPlace; p++ {
		if !seen[p] {
			diag.Warnf(r, sheet, diag.CodePositionMissing, "Position %d is missing", p)
		}
	}
}
