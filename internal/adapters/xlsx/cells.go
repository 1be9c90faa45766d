// Package xlsx reads series workbooks and renders standings with excelize.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// column converts a column letter to a zero-based index. An empty letter is
// an unused column and yields -1.
func column(letter string) (int, error) {
	letter = strings.TrimSpace(letter)
	if letter == "" {
		return -1, nil
	}
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrColumn, letter, err)
	}
	return n - 1, nil
}

// at returns the value at index i of a row, or "" past its end.
func at(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// cellName returns the A1 name of a one-based column and row.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// truthy reads an approval or flag cell. Blank cells yield def.
func truthy(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return def
	case "1", "x", "a", "ano", "y", "yes", "true", "ok":
		return true
	default:
		return false
	}
}

func hasSheet(f *excelize.File, sheet string) bool {
	idx, err := f.GetSheetIndex(sheet)
	return err == nil && idx >= 0
}
