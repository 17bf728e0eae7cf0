package spreadsheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// resolveCell turns one cell into nil, string, float64 or bool.
//
// Resolution order:
//  1. a plain value is used as stored (typed by the cell type, date-formatted
//     numbers become YYYY-MM-DD);
//  2. a hyperlink or rich-text cell yields its display text;
//  3. a formula with a cached result yields that result;
//  4. a formula without a cached result is evaluated, nil if that fails.
func (w *Workbook) resolveCell(sheet, cell string) (any, error) {
	formula, err := w.f.GetCellFormula(sheet, cell)
	if err != nil {
		return nil, err
	}

	if formula == "" {
		text, ok, err := w.displayText(sheet, cell)
		if err != nil {
			return nil, err
		}
		if ok {
			return text, nil
		}
		return w.scalar(sheet, cell)
	}

	raw, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if raw != "" {
		return w.scalar(sheet, cell)
	}

	calculated, err := w.f.CalcCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil || calculated == "" {
		w.log.Debug().Err(err).Str("sheet", sheet).Str("cell", cell).Str("formula", formula).Msg("Formula has no value")
		return nil, nil
	}
	if w.isDateStyled(sheet, cell) {
		if n, err := strconv.ParseFloat(calculated, 64); err == nil {
			return w.serialToDate(n), nil
		}
	}
	return inferScalar(calculated), nil
}

// displayText returns the visible text of hyperlink and rich-text cells.
func (w *Workbook) displayText(sheet, cell string) (string, bool, error) {
	linked, _, err := w.f.GetCellHyperLink(sheet, cell)
	if err != nil {
		return "", false, err
	}

	runs, err := w.f.GetCellRichText(sheet, cell)
	if err != nil {
		return "", false, err
	}
	// Plain shared strings come back as a single unformatted run
	rich := len(runs) > 1 || (len(runs) == 1 && runs[0].Font != nil)

	switch {
	case rich:
		var sb strings.Builder
		for _, r := range runs {
			sb.WriteString(r.Text)
		}
		return sb.String(), true, nil
	case linked:
		text, err := w.f.GetCellValue(sheet, cell)
		return text, err == nil, err
	default:
		return "", false, nil
	}
}

// scalar reads the stored value of a cell according to its type.
func (w *Workbook) scalar(sheet, cell string) (any, error) {
	typ, err := w.f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	raw, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	switch typ {
	case excelize.CellTypeBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return raw, nil
		}
		return b, nil
	case excelize.CellTypeDate:
		return isoDate(raw), nil
	case excelize.CellTypeError:
		return nil, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return raw, nil
	}

	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw, nil
	}
	if w.isDateStyled(sheet, cell) {
		return w.serialToDate(n), nil
	}
	return n, nil
}

func (w *Workbook) serialToDate(serial float64) string {
	t, err := excelize.ExcelDateToTime(serial, w.date1904)
	if err != nil {
		return strconv.FormatFloat(serial, 'f', -1, 64)
	}
	return t.Format(time.DateOnly)
}

func (w *Workbook) isDateStyled(sheet, cell string) bool {
	styleID, err := w.f.GetCellStyle(sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if known, ok := w.dateStyles[styleID]; ok {
		return known
	}

	isDate := false
	if style, err := w.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	w.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a number format renders a calendar date.
// Time-only built-ins (18-21, 45-47) are treated as numbers.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil {
		return customFormatHasDate(*custom)
	}
	switch {
	case numFmt >= 14 && numFmt <= 17, numFmt == 22:
		return true
	case numFmt >= 27 && numFmt <= 36, numFmt >= 50 && numFmt <= 58:
		return true
	}
	return false
}

func customFormatHasDate(format string) bool {
	var sb strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			sb.WriteRune(r)
		}
	}
	stripped := sb.String()
	return strings.ContainsAny(stripped, "yd") || strings.Contains(stripped, "mmm")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// isoDate normalizes an ISO-8601 timestamp to its calendar date.
func isoDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}

// inferScalar types a formatted engine result.
func inferScalar(s string) any {
	switch strings.ToUpper(s) {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n
	}
	return s
}
