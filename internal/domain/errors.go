package domain

import (
	"fmt"
	"strings"
)

// SheetNotFoundError is returned when a required worksheet is missing.
type SheetNotFoundError struct {
	Sheet string
	Path  string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("%s sheet not found in %s", e.Sheet, e.Path)
}

// RowValidationError describes a spreadsheet row that was skipped.
// It is recorded, never returned to callers of the parse functions.
type RowValidationError struct {
	Sheet  string
	Row    int
	Reason string
}

func (e *RowValidationError) Error() string {
	return fmt.Sprintf("%s row %d skipped: %s", e.Sheet, e.Row, e.Reason)
}

// ConstraintError is returned by the store when a row violates a schema constraint.
type ConstraintError struct {
	Table string
	Key   string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation in %s for %q: %v", e.Table, e.Key, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// InsertionError identifies the record that made an import transaction abort.
type InsertionError struct {
	Sheet string
	Row   int
	ID    string
	Err   error
}

func (e *InsertionError) Error() string {
	return fmt.Sprintf("failed to insert %s row %d (id %q): %v", e.Sheet, e.Row, e.ID, e.Err)
}

func (e *InsertionError) Unwrap() error { return e.Err }

// RateFetchError wraps a transport or decoding failure from the FX source.
type RateFetchError struct {
	From string
	To   string
	Err  error
}

func (e *RateFetchError) Error() string {
	return fmt.Sprintf("failed to fetch exchange rate %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *RateFetchError) Unwrap() error { return e.Err }

// RateNotFoundError is returned when the FX response has no rate for the target.
type RateNotFoundError struct {
	From string
	To   string
}

func (e *RateNotFoundError) Error() string {
	return fmt.Sprintf("exchange rate not found for %s -> %s", e.From, e.To)
}

// InvalidSymbolError rejects empty and placeholder tickers before any I/O.
type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	if strings.TrimSpace(e.Symbol) == "" {
		return "invalid ticker symbol: empty"
	}
	return fmt.Sprintf("invalid ticker symbol: %s", e.Symbol)
}

// PriceFetchError wraps a transport or decoding failure from the quote source.
type PriceFetchError struct {
	Symbol string
	Err    error
}

func (e *PriceFetchError) Error() string {
	return fmt.Sprintf("failed to fetch price for %s: %v", e.Symbol, e.Err)
}

func (e *PriceFetchError) Unwrap() error { return e.Err }

// PriceNotFoundError is returned when a quote response has no price field.
type PriceNotFoundError struct {
	Symbol string
}

func (e *PriceNotFoundError) Error() string {
	return fmt.Sprintf("no price data found for symbol: %s", e.Symbol)
}
