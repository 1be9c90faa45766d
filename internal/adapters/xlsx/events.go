package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Event is one event sheet to write: rows laid out at the columns of Input.
type Event struct {
	Input model.EventInput
	Rows  []model.RawRow
}

// WriteEventBook saves events into one workbook at path, one sheet each, in
// the layout Reader reads back. A header row is written above Input.FirstRow
// when there is room.
func WriteEventBook(path string, events []Event) error {
	if len(events) == 0 {
		return fmt.Errorf("%s: no events to write", path)
	}
	f := excelize.NewFile()
	defer f.Close()
	first := f.GetSheetName(0)

	for _, ev := range events {
		in := ev.Input
		cols, err := columnsOf(in)
		if err != nil {
			return err
		}
		if !hasSheet(f, in.Sheet) {
			if _, err := f.NewSheet(in.Sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", in.Sheet, err)
			}
		}

		start := max(in.FirstRow, 1)
		if start > 1 {
			for col, label := range map[int]string{
				cols.name: "Jméno", cols.team: "Oddíl", cols.birthYear: "Ročník", cols.position: "Pořadí",
			} {
				if col >= 0 {
					if err := f.SetCellValue(in.Sheet, cellName(col+1, start-1), label); err != nil {
						return err
					}
				}
			}
		}

		for i, row := range ev.Rows {
			line := start + i
			for _, c := range []struct {
				col  int
				cell model.Cell
			}{
				{cols.name, row.Name},
				{cols.team, row.Team},
				{cols.birthYear, row.BirthYear},
				{cols.position, row.Position},
				{cols.birthYearApproved, flagCell(row.BirthYearApproved)},
				{cols.positionApproved, flagCell(row.PositionApproved)},
			} {
				if c.col < 0 || c.cell.IsAbsent() {
					continue
				}
				if err := f.SetCellValue(in.Sheet, cellName(c.col+1, line), cellValue(c.cell)); err != nil {
					return err
				}
			}
		}
	}

	if !sheetUsed(first, events) {
		if err := f.DeleteSheet(first); err != nil {
			return fmt.Errorf("remove default sheet: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func sheetUsed(sheet string, events []Event) bool {
	for _, ev := range events {
		if ev.Input.Sheet == sheet {
			return true
		}
	}
	return false
}

func flagCell(b bool) model.Cell {
	if b {
		return model.TextCell("x")
	}
	return model.Absent()
}

func cellValue(c model.Cell) any {
	if c.Kind == model.CellInt {
		return c.Int
	}
	return c.Text
}
