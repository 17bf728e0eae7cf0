// Package spreadsheet reads the portfolio workbook into typed row records.
package spreadsheet

import (
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"

	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Worksheet names and key columns the workbook must provide.
const (
	PositionsSheet = "Networth"
	ReturnsSheet   = "Investment Returns"

	positionKey = "ID"
	returnKey   = "Investment ID"
)

// Record is one data row keyed by header name. Values are nil, string,
// float64 or bool; dates are already YYYY-MM-DD strings.
type Record map[string]any

type column struct {
	name string
	col  int
}

// Workbook is an open spreadsheet. It is not safe for concurrent use.
type Workbook struct {
	f          *excelize.File
	path       string
	log        zerolog.Logger
	date1904   bool
	dateStyles map[int]bool
	skipped    int
}

// Open opens the workbook at path
func Open(path string, log zerolog.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}

	w := &Workbook{
		f:          f,
		path:       path,
		log:        log.With().Str("workbook", path).Logger(),
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.f.Close()
}

// Skipped returns how many rows were rejected so far
func (w *Workbook) Skipped() int {
	return w.skipped
}

// Positions yields the Networth rows that carry an ID.
// The first error ends the sequence.
func (w *Workbook) Positions() iter.Seq2[PositionRaw, error] {
	return func(yield func(PositionRaw, error) bool) {
		for row, err := range w.rows(PositionsSheet, positionKey, nil) {
			if err != nil {
				yield(PositionRaw{}, err)
				return
			}
			if !yield(w.normalizePosition(row.num, row.rec), nil) {
				return
			}
		}
	}
}

// ReturnEvents yields the Investment Returns rows linked to an investment.
// The first error ends the sequence.
func (w *Workbook) ReturnEvents() iter.Seq2[ReturnEventRaw, error] {
	unlinked := func(key string) bool { return key == domain.UnlinkedInvestmentID }
	return func(yield func(ReturnEventRaw, error) bool) {
		for row, err := range w.rows(ReturnsSheet, returnKey, unlinked) {
			if err != nil {
				yield(ReturnEventRaw{}, err)
				return
			}
			if !yield(w.normalizeReturnEvent(row.num, row.rec), nil) {
				return
			}
		}
	}
}

type sheetRow struct {
	num int
	rec Record
}

// rows yields every accepted row of sheet. Rows without the key value, or
// whose key is rejected, are skipped and counted.
func (w *Workbook) rows(sheet, key string, reject func(string) bool) iter.Seq2[sheetRow, error] {
	return func(yield func(sheetRow, error) bool) {
		if !slices.Contains(w.f.GetSheetList(), sheet) {
			yield(sheetRow{}, &domain.SheetNotFoundError{Sheet: sheet, Path: w.path})
			return
		}

		headers, lastRow, err := w.layout(sheet)
		if err != nil {
			yield(sheetRow{}, fmt.Errorf("failed to read %s header: %w", sheet, err))
			return
		}

		for num := 2; num <= lastRow; num++ {
			rec, hasData, err := w.readRow(sheet, num, headers)
			if err != nil {
				yield(sheetRow{}, fmt.Errorf("failed to read %s row %d: %w", sheet, num, err))
				return
			}

			keyValue := keyString(rec[key])
			switch {
			case !hasData:
				continue
			case keyValue == "":
				w.skip(sheet, num, "missing "+key)
				continue
			case reject != nil && reject(keyValue):
				w.skip(sheet, num, key+" is "+keyValue)
				continue
			}

			if !yield(sheetRow{num: num, rec: rec}, nil) {
				return
			}
		}
	}
}

// layout reads the header row and the last populated row number.
func (w *Workbook) layout(sheet string) ([]column, int, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	var headers []column
	for i, h := range rows[0] {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		headers = append(headers, column{name: name, col: i + 1})
	}

	lastRow := len(rows)
	// GetRows drops trailing rows holding only uncalculated formulas
	if dim, err := w.f.GetSheetDimension(sheet); err == nil {
		if _, end, ok := strings.Cut(dim, ":"); ok {
			if _, row, err := excelize.CellNameToCoordinates(end); err == nil && row > lastRow {
				lastRow = row
			}
		}
	}
	return headers, lastRow, nil
}

func (w *Workbook) readRow(sheet string, rowNum int, headers []column) (Record, bool, error) {
	rec := make(Record, len(headers))
	hasData := false
	for _, h := range headers {
		cell, err := excelize.CoordinatesToCellName(h.col, rowNum)
		if err != nil {
			return nil, false, err
		}
		v, err := w.resolveCell(sheet, cell)
		if err != nil {
			return nil, false, fmt.Errorf("cell %s: %w", cell, err)
		}
		rec[h.name] = v
		if v != nil {
			hasData = true
		}
	}
	return rec, hasData, nil
}

func (w *Workbook) skip(sheet string, rowNum int, reason string) {
	w.skipped++
	err := &domain.RowValidationError{Sheet: sheet, Row: rowNum, Reason: reason}
	w.log.Debug().Err(err).Str("sheet", sheet).Int("row", rowNum).Msg("Row skipped")
}

// keyString renders a key cell as text; numeric IDs keep their shortest form.
func keyString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
