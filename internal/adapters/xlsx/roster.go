package xlsx

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelchuchma/vkct/internal/domain/dedupe"
	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

var yearInName = regexp.MustCompile(`(19|20)\d{2}`)

// SeasonOf guesses the season year of a results workbook from its file name
// (vysledky2019.xlsx). It returns 0 when the name carries no year.
func SeasonOf(path string) int {
	m := yearInName.FindString(filepath.Base(path))
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// ReadRoster lists every participant of a results workbook written by
// Writer. Each sheet other than templateSheet is one category.
func ReadRoster(path, templateSheet string) ([]dedupe.RosterEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenWorkbook, path, err)
	}
	defer f.Close()

	year := SeasonOf(path)
	var out []dedupe.RosterEntry
	for _, sheet := range f.GetSheetList() {
		if sheet == templateSheet {
			continue
		}
		grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read %s[%s]: %w", path, sheet, err)
		}
		for i := firstDataRow - 1; i < len(grid); i++ {
			row := grid[i]
			name := strings.TrimSpace(at(row, colName-1))
			if name == "" {
				break
			}
			out = append(out, dedupe.RosterEntry{
				Season:   year,
				Category: sheet,
				Participant: model.Participant{
					Name:      name,
					Team:      strings.TrimSpace(at(row, colTeam-1)),
					BirthYear: birthYear(model.ParseCell(at(row, colBirthYear-1))),
				},
				Location: diag.Location{File: path, Sheet: sheet, Row: i + 1},
			})
		}
	}
	return out, nil
}

func birthYear(c model.Cell) model.BirthYear {
	if n, ok := c.CoerceInt(); ok && n > 0 {
		return model.Year(n)
	}
	if c.IsAbsent() {
		return model.BirthYear{}
	}
	return model.BirthYear{Text: c.String()}
}
