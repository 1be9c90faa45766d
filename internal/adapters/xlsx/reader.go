package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// Reader reads event result sheets. Opened workbooks are cached until Close,
// since several categories usually share one workbook.
type Reader struct {
	baseDir string

	mu    sync.Mutex
	books map[string]*excelize.File
}

// NewReader creates a Reader with configuration options.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{books: make(map[string]*excelize.File)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reader) resolve(file string) string {
	if r.baseDir == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(r.baseDir, file)
}

// open returns the cached workbook for file. The caller holds r.mu.
func (r *Reader) open(file string) (*excelize.File, error) {
	path := r.resolve(file)
	if f, ok := r.books[path]; ok {
		return f, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenWorkbook, path, err)
	}
	r.books[path] = f
	return f, nil
}

type eventColumns struct {
	name, team, birthYear, position     int
	birthYearApproved, positionApproved int
}

func columnsOf(in model.EventInput) (eventColumns, error) {
	var c eventColumns
	for _, col := range []struct {
		dst    *int
		letter string
	}{
		{&c.name, in.NameCol},
		{&c.team, in.TeamCol},
		{&c.birthYear, in.BirthYearCol},
		{&c.position, in.PositionCol},
		{&c.birthYearApproved, in.BirthYearApprovedCol},
		{&c.positionApproved, in.PositionApprovedCol},
	} {
		idx, err := column(col.letter)
		if err != nil {
			return c, err
		}
		*col.dst = idx
	}
	if c.name < 0 || c.position < 0 {
		return c, fmt.Errorf("%w: name and position columns are required", ErrColumn)
	}
	return c, nil
}

// Rows implements the event source of a season run. Rows are read from
// in.FirstRow until the first row with an empty name cell.
func (r *Reader) Rows(ctx context.Context, _ model.Category, in model.EventInput) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols, err := columnsOf(in)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.open(in.File)
	if err != nil {
		return nil, err
	}
	sheet := in.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if !hasSheet(f, sheet) {
		return nil, fmt.Errorf("%w: %s[%s]", ErrSheetNotFound, in.File, sheet)
	}

	grid, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s[%s]: %w", in.File, sheet, err)
	}

	var out []model.RawRow
	for i := max(in.FirstRow, 1) - 1; i < len(grid); i++ {
		row := grid[i]
		name := at(row, cols.name)
		if strings.TrimSpace(name) == "" {
			break
		}
		out = append(out, model.RawRow{
			Name:              model.TextCell(name),
			Team:              model.TextCell(at(row, cols.team)),
			BirthYear:         model.ParseCell(at(row, cols.birthYear)),
			Position:          model.ParseCell(at(row, cols.position)),
			BirthYearApproved: truthy(at(row, cols.birthYearApproved), false),
			PositionApproved:  truthy(at(row, cols.positionApproved), false),
			Location:          diag.Location{File: in.File, Sheet: sheet, Row: i + 1},
		})
	}
	return out, nil
}

// Close releases every cached workbook.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for path, f := range r.books {
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", path, err)
		}
		delete(r.books, path)
	}
	return first
}
