package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/networth/internal/domain"
	"github.com/xuri/excelize/v2"
)

// PositionHeaders is the header row of the Networth sheet
var PositionHeaders = []any{
	"ID", "Platform", "Investment Type", "Ticker Symbol", "Asset Name",
	"Invested Amount", "Current Amount", "Profit/Loss", "Currency",
	"Updated Date", "Purchase Date", "Quantity", "Auto Update", "Notes",
}

// ReturnHeaders is the header row of the Investment Returns sheet
var ReturnHeaders = []any{
	"Investment ID", "Stock/Instrument", "Return Type", "Date", "Amount", "Currency", "Notes",
}

// WorkbookBuilder assembles xlsx files for tests
type WorkbookBuilder struct {
	t      *testing.T
	f      *excelize.File
	sheets int
}

// NewWorkbook starts an empty workbook
func NewWorkbook(t *testing.T) *WorkbookBuilder {
	t.Helper()
	return &WorkbookBuilder{t: t, f: excelize.NewFile()}
}

// Sheet adds a sheet and writes rows starting at A1
func (b *WorkbookBuilder) Sheet(name string, rows ...[]any) *WorkbookBuilder {
	b.t.Helper()

	if _, err := b.f.NewSheet(name); err != nil {
		b.t.Fatalf("Failed to create sheet %s: %v", name, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := b.f.SetSheetRow(name, cell, &r); err != nil {
			b.t.Fatalf("Failed to write row %d of %s: %v", i+1, name, err)
		}
	}
	b.sheets++
	return b
}

// File exposes the underlying workbook for cell-level tweaks (formulas, links)
func (b *WorkbookBuilder) File() *excelize.File {
	return b.f
}

// Save writes the workbook into dir and returns its path
func (b *WorkbookBuilder) Save(dir, name string) string {
	b.t.Helper()

	if b.sheets > 0 {
		if idx, err := b.f.GetSheetIndex("Sheet1"); err == nil && idx >= 0 {
			_ = b.f.DeleteSheet("Sheet1")
		}
	}
	path := filepath.Join(dir, name)
	if err := b.f.SaveAs(path); err != nil {
		b.t.Fatalf("Failed to save workbook %s: %v", path, err)
	}
	_ = b.f.Close()
	return path
}

// PositionRow renders a position the way the Networth sheet stores it
func PositionRow(p domain.Position) []any {
	return []any{
		p.ID, p.Platform, p.InvestmentType, deref(p.TickerSymbol), p.AssetName,
		derefFloat(p.InvestedAmount), derefFloat(p.CurrentAmount), nil, deref(p.Currency),
		deref(p.UpdatedDate), deref(p.PurchaseDate), derefFloat(p.Quantity),
		domain.FormatAutoUpdate(p.AutoUpdate), p.Notes,
	}
}

// ReturnRow renders an event the way the Investment Returns sheet stores it
func ReturnRow(e domain.ReturnEvent) []any {
	return []any{
		e.InvestmentID, e.Instrument, string(e.ReturnType), deref(e.Date),
		derefFloat(e.Amount), deref(e.Currency), e.Notes,
	}
}

// WritePortfolioWorkbook saves a workbook with both sheets filled from the given records
func WritePortfolioWorkbook(t *testing.T, dir string, positions []domain.Position, events []domain.ReturnEvent) string {
	t.Helper()

	posRows := [][]any{PositionHeaders}
	for _, p := range positions {
		posRows = append(posRows, PositionRow(p))
	}
	evRows := [][]any{ReturnHeaders}
	for _, e := range events {
		evRows = append(evRows, ReturnRow(e))
	}

	return NewWorkbook(t).
		Sheet("Networth", posRows...).
		Sheet("Investment Returns", evRows...).
		Save(dir, "portfolio.xlsx")
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
