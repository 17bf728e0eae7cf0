package spreadsheet

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/aristath/networth/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Networth column headers.
const (
	colID             = "ID"
	colPlatform       = "Platform"
	colInvestmentType = "Investment Type"
	colTicker         = "Ticker Symbol"
	colAssetName      = "Asset Name"
	colInvested       = "Invested Amount"
	colCurrent        = "Current Amount"
	colCurrency       = "Currency"
	colUpdatedDate    = "Updated Date"
	colPurchaseDate   = "Purchase Date"
	colQuantity       = "Quantity"
	colAutoUpdate     = "Auto Update"
	colNotes          = "Notes"
)

// Investment Returns column headers.
const (
	colInvestmentID = "Investment ID"
	colInstrument   = "Stock/Instrument"
	colReturnType   = "Return Type"
	colDate         = "Date"
	colAmount       = "Amount"
)

// PositionRaw is a normalized Networth row. The sheet's Profit/Loss column
// is ignored; profit/loss is always derived from the amounts.
type PositionRaw struct {
	Row            int
	ID             string
	Platform       string
	InvestmentType string
	TickerSymbol   *string
	AssetName      string
	InvestedAmount *float64
	CurrentAmount  *float64
	Currency       *string
	UpdatedDate    *string
	PurchaseDate   *string
	Quantity       *float64
	AutoUpdate     bool
	Notes          string
}

// Position converts the row into a domain position with derived profit/loss.
func (r PositionRaw) Position() domain.Position {
	p := domain.Position{
		ID:             r.ID,
		Platform:       r.Platform,
		InvestmentType: r.InvestmentType,
		TickerSymbol:   r.TickerSymbol,
		AssetName:      r.AssetName,
		InvestedAmount: r.InvestedAmount,
		CurrentAmount:  r.CurrentAmount,
		Currency:       r.Currency,
		UpdatedDate:    r.UpdatedDate,
		PurchaseDate:   r.PurchaseDate,
		Quantity:       r.Quantity,
		AutoUpdate:     r.AutoUpdate,
		Notes:          r.Notes,
	}
	p.ProfitLoss = domain.ProfitLoss(p)
	return p
}

// ReturnEventRaw is a normalized Investment Returns row.
type ReturnEventRaw struct {
	Row          int
	InvestmentID string
	Instrument   string
	ReturnType   domain.ReturnType
	Date         *string
	Amount       *float64
	Currency     *string
	Notes        string
}

// ReturnEvent converts the row into a domain event.
func (r ReturnEventRaw) ReturnEvent() domain.ReturnEvent {
	return domain.ReturnEvent{
		InvestmentID: r.InvestmentID,
		Instrument:   r.Instrument,
		ReturnType:   r.ReturnType,
		Date:         r.Date,
		Amount:       r.Amount,
		Currency:     r.Currency,
		Notes:        r.Notes,
	}
}

func (w *Workbook) normalizePosition(row int, rec Record) PositionRaw {
	n := normalizer{w: w, sheet: PositionsSheet, row: row, rec: rec}

	p := PositionRaw{
		Row:            row,
		ID:             keyString(rec[colID]),
		Platform:       n.text(colPlatform),
		InvestmentType: n.text(colInvestmentType),
		TickerSymbol:   n.optionalText(colTicker),
		AssetName:      n.text(colAssetName),
		InvestedAmount: n.number(colInvested),
		CurrentAmount:  n.number(colCurrent),
		Currency:       n.currency(colCurrency),
		UpdatedDate:    n.date(colUpdatedDate),
		PurchaseDate:   n.date(colPurchaseDate),
		Quantity:       n.number(colQuantity),
		AutoUpdate:     n.flag(colAutoUpdate),
		Notes:          n.text(colNotes),
	}
	if p.TickerSymbol != nil {
		upper := strings.ToUpper(*p.TickerSymbol)
		p.TickerSymbol = &upper
	}
	// A zero quantity means "not tracked"; negatives are left for the store to reject
	if p.Quantity != nil && *p.Quantity == 0 {
		p.Quantity = nil
	}
	return p
}

func (w *Workbook) normalizeReturnEvent(row int, rec Record) ReturnEventRaw {
	n := normalizer{w: w, sheet: ReturnsSheet, row: row, rec: rec}

	return ReturnEventRaw{
		Row:          row,
		InvestmentID: keyString(rec[colInvestmentID]),
		Instrument:   n.text(colInstrument),
		ReturnType:   domain.ParseReturnType(n.text(colReturnType)),
		Date:         n.date(colDate),
		Amount:       n.number(colAmount),
		Currency:     n.currency(colCurrency),
		Notes:        n.text(colNotes),
	}
}

// normalizer converts the loosely typed cells of one record.
type normalizer struct {
	w     *Workbook
	sheet string
	row   int
	rec   Record
}

func (n normalizer) text(col string) string {
	if s := n.optionalText(col); s != nil {
		return *s
	}
	return ""
}

func (n normalizer) optionalText(col string) *string {
	var s string
	switch v := n.rec[col].(type) {
	case string:
		s = strings.TrimSpace(v)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(v)
	}
	if s == "" {
		return nil
	}
	return &s
}

func (n normalizer) number(col string) *float64 {
	switch v := n.rec[col].(type) {
	case float64:
		return &v
	case string:
		f, err := parseNumber(v)
		if err != nil {
			n.w.log.Debug().Err(err).Str("sheet", n.sheet).Int("row", n.row).Str("column", col).Msg("Ignoring non-numeric value")
			return nil
		}
		return f
	}
	return nil
}

func (n normalizer) currency(col string) *string {
	s := n.optionalText(col)
	if s == nil {
		return nil
	}
	code := strings.ToUpper(*s)
	if money.GetCurrency(code) == nil {
		n.w.log.Warn().Str("sheet", n.sheet).Int("row", n.row).Str("currency", code).Msg("Unknown currency code")
	}
	return &code
}

func (n normalizer) date(col string) *string {
	var s string
	switch v := n.rec[col].(type) {
	case string:
		s = normalizeDateText(strings.TrimSpace(v))
	case float64:
		s = n.w.serialToDate(v)
	}
	if s == "" {
		return nil
	}
	return &s
}

func (n normalizer) flag(col string) bool {
	switch v := n.rec[col].(type) {
	case bool:
		return v
	case string:
		return domain.ParseAutoUpdate(v)
	case float64:
		return v == 1
	}
	return false
}

// parseNumber reads numeric text such as "1,250.50" or "$ 300".
// Blank text is nil, not an error.
func parseNumber(s string) (*float64, error) {
	cleaned := strings.NewReplacer(",", "", " ", "", "$", "").Replace(strings.TrimSpace(s))
	if cleaned == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	f := d.InexactFloat64()
	return &f, nil
}

var textDateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// normalizeDateText brings common typed-in date spellings to YYYY-MM-DD.
// Unrecognized text is returned unchanged.
func normalizeDateText(s string) string {
	if s == "" {
		return ""
	}
	if iso := isoDate(s); iso != s {
		return iso
	}
	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly)
		}
	}
	return s
}

// Reader opens workbooks and parses them into typed records.
type Reader struct {
	log zerolog.Logger
}

// NewReader creates a new spreadsheet reader
func NewReader(log zerolog.Logger) *Reader {
	return &Reader{log: log.With().Str("component", "spreadsheet").Logger()}
}

// Open opens the workbook at path for lazy iteration
func (r *Reader) Open(path string) (*Workbook, error) {
	return Open(path, r.log)
}

// ParsePositions reads every usable row of the Networth sheet
func (r *Reader) ParsePositions(path string) ([]PositionRaw, error) {
	w, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	return collect(w.Positions())
}

// ParseReturnEvents reads every usable row of the Investment Returns sheet
func (r *Reader) ParseReturnEvents(path string) ([]ReturnEventRaw, error) {
	w, err := r.Open(path)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	return collect(w.ReturnEvents())
}

func collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
