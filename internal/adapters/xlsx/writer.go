package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/ranking"
)

// Output layout, one-based columns.
const (
	DefaultTemplateSheet = "Template"

	firstDataRow = 7
	headerRow    = 6

	colRank      = 1
	colName      = 2
	colTeam      = 3
	colBirthYear = 4
	colFirst     = 5
	lastStyled   = 29

	maxSheetName = 31
)

// Writer renders standings into a copy of a template workbook, one sheet per
// category.
type Writer struct {
	template      string
	templateSheet string
}

// NewWriter creates a Writer with configuration options.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{templateSheet: DefaultTemplateSheet}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// slotColumns returns the position and points columns of a race slot. Slots
// after the first are followed by their cumulative rank and points columns.
func slotColumns(slot int) (pos, pts int) {
	if slot == 0 {
		return colFirst, colFirst + 1
	}
	pos = colFirst + 2 + (slot-1)*4
	return pos, pos + 1
}

// Write saves standings to path.
func (w *Writer) Write(path string, standings []*model.CategoryStandings) error {
	if len(standings) == 0 {
		return ErrNoStandings
	}
	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	tmpl, err := f.GetSheetIndex(w.templateSheet)
	if err != nil || tmpl < 0 {
		return fmt.Errorf("%w: template sheet %s", ErrSheetNotFound, w.templateSheet)
	}

	r := &render{f: f, strike: make(map[int]int), headers: w.template == ""}
	for _, st := range standings {
		sheet := sheetName(st.Category.Name)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		if err := f.CopySheet(tmpl, idx); err != nil {
			return fmt.Errorf("copy template to %s: %w", sheet, err)
		}
		if err := r.category(sheet, st); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      colFirst - 1,
			YSplit:      firstDataRow - 1,
			TopLeftCell: cellName(colFirst, firstDataRow),
			ActivePane:  "bottomRight",
		}); err != nil {
			return fmt.Errorf("freeze panes of %s: %w", sheet, err)
		}
	}

	if err := f.DeleteSheet(w.templateSheet); err != nil {
		return fmt.Errorf("remove template sheet: %w", err)
	}
	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (w *Writer) open() (*excelize.File, error) {
	if w.template != "" {
		f, err := excelize.OpenFile(w.template)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrOpenWorkbook, w.template, err)
		}
		return f, nil
	}
	return builtinTemplate(w.templateSheet)
}

// builtinTemplate is a bare workbook with the output header row.
func builtinTemplate(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("template: %w", err)
	}
	header := []any{"Pořadí", "Jméno", "Oddíl", "Ročník"}
	if err := f.SetSheetRow(sheet, cellName(1, headerRow), &header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("template: %w", err)
	}
	return f, nil
}

// sheetName makes a category name acceptable as a sheet name.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

type render struct {
	f       *excelize.File
	strike  map[int]int
	headers bool
}

func (r *render) category(sheet string, st *model.CategoryStandings) error {
	if err := r.copyRowStyle(sheet, st.Len()); err != nil {
		return err
	}
	if r.headers && st.Len() > 0 {
		if err := r.raceHeaders(sheet, len(st.Results[0].Races)); err != nil {
			return err
		}
	}

	ranks := ranking.FinalRanks(st)
	for i, pr := range st.Results {
		row := firstDataRow + i
		p := pr.Participant
		values := map[int]any{colRank: ranks[i], colName: p.Name, colTeam: p.Team}
		if p.BirthYear.Known() {
			values[colBirthYear] = p.BirthYear.Year
		} else if p.BirthYear.Text != "" {
			values[colBirthYear] = p.BirthYear.Text
		}

		for slot := range pr.Races {
			rr := &pr.Races[slot]
			posCol, ptsCol := slotColumns(slot)
			if pos := rr.DisplayPosition(); pos != nil {
				values[posCol] = positionValue(*pos)
			}
			if pts, ok := rr.EffectivePoints(); ok {
				values[ptsCol] = pts
			}
			if slot > 0 && rr.CumulativePoints != nil {
				if rr.CumulativeRank != nil {
					values[ptsCol+1] = *rr.CumulativeRank
				}
				values[ptsCol+2] = *rr.CumulativePoints
			}
		}

		for col, v := range values {
			if err := r.f.SetCellValue(sheet, cellName(col, row), v); err != nil {
				return err
			}
		}
		for slot := range pr.Races {
			if !pr.Races[slot].IgnoredInSummary {
				continue
			}
			posCol, ptsCol := slotColumns(slot)
			for _, col := range []int{posCol, ptsCol} {
				if err := r.strikeThrough(sheet, cellName(col, row)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func positionValue(p model.Position) any {
	if p.IsDNF() {
		return p.Mark
	}
	return p.Place
}

// copyRowStyle repeats the styles of the first data row over n rows.
func (r *render) copyRowStyle(sheet string, n int) error {
	if n < 2 {
		return nil
	}
	for col := colName; col <= lastStyled; col++ {
		style, err := r.f.GetCellStyle(sheet, cellName(col, firstDataRow))
		if err != nil {
			return err
		}
		if style == 0 {
			continue
		}
		last := cellName(col, firstDataRow+n-1)
		if err := r.f.SetCellStyle(sheet, cellName(col, firstDataRow+1), last, style); err != nil {
			return err
		}
	}
	return nil
}

func (r *render) raceHeaders(sheet string, slots int) error {
	for slot := 0; slot < slots; slot++ {
		posCol, ptsCol := slotColumns(slot)
		labels := map[int]string{
			posCol: fmt.Sprintf("%d. závod", slot+1),
			ptsCol: "Body",
		}
		if slot > 0 {
			labels[ptsCol+1] = "Pořadí"
			labels[ptsCol+2] = "Celkem"
		}
		for col, label := range labels {
			if err := r.f.SetCellValue(sheet, cellName(col, headerRow), label); err != nil {
				return err
			}
		}
	}
	return nil
}

// strikeThrough adds a strikethrough font to the cell, keeping its style.
func (r *render) strikeThrough(sheet, cell string) error {
	base, err := r.f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	id, ok := r.strike[base]
	if !ok {
		style, err := r.f.GetStyle(base)
		if err != nil {
			return err
		}
		if style.Font == nil {
			style.Font = &excelize.Font{}
		}
		style.Font.Strike = true
		if id, err = r.f.NewStyle(style); err != nil {
			return err
		}
		r.strike[base] = id
	}
	return r.f.SetCellStyle(sheet, cell, cell, id)
}
