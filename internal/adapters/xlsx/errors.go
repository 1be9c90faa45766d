package xlsx

import "errors"

// Sentinel kinds for workbook errors.
var (
	ErrOpenWorkbook  = errors.New("cannot open workbook")
	ErrSheetNotFound = errors.New("sheet not found")
	ErrColumn        = errors.New("invalid column")
	ErrConfigCell    = errors.New("invalid configuration cell")
	ErrNoStandings   = errors.New("no standings to write")
)
