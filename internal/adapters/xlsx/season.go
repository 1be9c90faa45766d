package xlsx

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Config workbook layout.
const (
	CategoriesSheet = "Kategorie"

	yearCell             = "B1"
	maxCountedCell       = "B2"
	firstCategoryRow     = 4
	firstInputRow        = 2
	defaultInputSheetRow = 1
)

// LoadSeason reads a config workbook: the Kategorie sheet lists the season
// year, the counted-events default and one category per row, and every
// category has a sheet of the same name listing its event inputs.
func LoadSeason(path string) (model.Season, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return model.Season{}, fmt.Errorf("%w: %s: %w", ErrOpenWorkbook, path, err)
	}
	defer f.Close()

	if !hasSheet(f, CategoriesSheet) {
		return model.Season{}, fmt.Errorf("%w: %s[%s]", ErrSheetNotFound, path, CategoriesSheet)
	}
	grid, err := f.GetRows(CategoriesSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return model.Season{}, fmt.Errorf("read %s[%s]: %w", path, CategoriesSheet, err)
	}

	var s model.Season
	if s.Year, err = intAt(grid, 0, 1, 0, true); err != nil {
		return model.Season{}, fmt.Errorf("%s %s: %w", CategoriesSheet, yearCell, err)
	}
	if s.MaxCountedEvents, err = intAt(grid, 1, 1, 0, false); err != nil {
		return model.Season{}, fmt.Errorf("%s %s: %w", CategoriesSheet, maxCountedCell, err)
	}

	for i := firstCategoryRow - 1; i < len(grid); i++ {
		row := grid[i]
		name := strings.TrimSpace(at(row, 0))
		if name == "" {
			break
		}
		cat := model.Category{Name: name, CountsPositions: truthy(at(row, 3), true)}
		if cat.MinAge, err = intAt(grid, i, 1, model.AgeOpenLow, false); err != nil {
			return model.Season{}, fmt.Errorf("category %s: min age: %w", name, err)
		}
		if cat.MaxAge, err = intAt(grid, i, 2, model.AgeOpenHigh, false); err != nil {
			return model.Season{}, fmt.Errorf("category %s: max age: %w", name, err)
		}
		if cat.MaxCountedEvents, err = intAt(grid, i, 4, 0, false); err != nil {
			return model.Season{}, fmt.Errorf("category %s: counted events: %w", name, err)
		}
		if cat.Inputs, err = loadInputs(f, path, name); err != nil {
			return model.Season{}, err
		}
		s.Categories = append(s.Categories, cat)
	}

	if err := s.Validate(); err != nil {
		return model.Season{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// loadInputs reads a category sheet: file, sheet, first row, name, team,
// birth year and position columns, alternative flag, birth-year-approved
// and position-approved columns.
func loadInputs(f *excelize.File, path, category string) ([]model.EventInput, error) {
	if !hasSheet(f, category) {
		return nil, fmt.Errorf("%w: %s[%s]", ErrSheetNotFound, path, category)
	}
	grid, err := f.GetRows(category, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s[%s]: %w", path, category, err)
	}

	var inputs []model.EventInput
	for i := firstInputRow - 1; i < len(grid); i++ {
		row := grid[i]
		file := strings.TrimSpace(at(row, 0))
		if file == "" {
			break
		}
		firstRow, err := intAt(grid, i, 2, defaultInputSheetRow, false)
		if err != nil {
			return nil, fmt.Errorf("%s[%s] row %d: first row: %w", path, category, i+1, err)
		}
		inputs = append(inputs, model.EventInput{
			File:                 file,
			Sheet:                strings.TrimSpace(at(row, 1)),
			FirstRow:             firstRow,
			NameCol:              strings.ToUpper(strings.TrimSpace(at(row, 3))),
			TeamCol:              strings.ToUpper(strings.TrimSpace(at(row, 4))),
			BirthYearCol:         strings.ToUpper(strings.TrimSpace(at(row, 5))),
			PositionCol:          strings.ToUpper(strings.TrimSpace(at(row, 6))),
			Alternative:          truthy(at(row, 7), false),
			BirthYearApprovedCol: strings.ToUpper(strings.TrimSpace(at(row, 8))),
			PositionApprovedCol:  strings.ToUpper(strings.TrimSpace(at(row, 9))),
		})
	}
	return inputs, nil
}

// intAt reads grid[row][col] as an integer. Blank cells yield def, or an
// error when required.
func intAt(grid [][]string, row, col, def int, required bool) (int, error) {
	var raw string
	if row < len(grid) {
		raw = at(grid[row], col)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: %s is empty", ErrConfigCell, cellName(col+1, row+1))
		}
		return def, nil
	}
	c := model.ParseCell(raw)
	n, ok := c.CoerceInt()
	if !ok {
		return 0, fmt.Errorf("%w: %s: %s", ErrConfigCell, cellName(col+1, row+1), strconv.Quote(raw))
	}
	return n, nil
}
