// Package domain holds the core portfolio types shared by every layer.
package domain

import (
	"strings"
	"time"
)

// Sentinel values used by the source spreadsheet.
const (
	// TickerPlaceholder marks a position whose ticker has not been filled in yet.
	TickerPlaceholder = "TO_BE_ADDED"
	// UnlinkedInvestmentID marks a return event not yet attached to a position.
	UnlinkedInvestmentID = "TO_BE_LINKED"
)

// Position is a single tracked holding.
// Nullable columns are pointers; nil means the source had no value.
type Position struct {
	ID             string     `json:"id"`
	Platform       string     `json:"platform"`
	InvestmentType string     `json:"investment_type"`
	TickerSymbol   *string    `json:"ticker_symbol"`
	AssetName      string     `json:"asset_name"`
	InvestedAmount *float64   `json:"invested_amount"`
	CurrentAmount  *float64   `json:"current_amount"`
	ProfitLoss     *float64   `json:"profit_loss"`
	Currency       *string    `json:"currency"`
	UpdatedDate    *string    `json:"updated_date"`  // YYYY-MM-DD
	PurchaseDate   *string    `json:"purchase_date"` // YYYY-MM-DD
	Quantity       *float64   `json:"quantity"`
	AutoUpdate     bool       `json:"auto_update"`
	Notes          string     `json:"notes"`
	ModifiedAt     *time.Time `json:"modified_at,omitempty"`
}

// ProfitLoss derives profit/loss as current minus invested.
// It is the only place profit/loss is computed; stored values are never trusted.
// Returns nil when either amount is missing.
func ProfitLoss(p Position) *float64 {
	if p.CurrentAmount == nil || p.InvestedAmount == nil {
		return nil
	}
	pl := *p.CurrentAmount - *p.InvestedAmount
	return &pl
}

// CurrencyOr returns the position currency, or fallback when it is unset.
func (p Position) CurrencyOr(fallback string) string {
	if p.Currency == nil || *p.Currency == "" {
		return fallback
	}
	return *p.Currency
}

// HasUsableTicker reports whether the ticker can be sent to a quote source.
func (p Position) HasUsableTicker() bool {
	return p.TickerSymbol != nil && IsUsableSymbol(*p.TickerSymbol)
}

// IsUsableSymbol reports whether symbol is neither empty nor the placeholder.
func IsUsableSymbol(symbol string) bool {
	s := strings.TrimSpace(symbol)
	return s != "" && s != TickerPlaceholder
}

// FormatAutoUpdate serializes the auto-update flag the way the store keeps it.
func FormatAutoUpdate(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}

// ParseAutoUpdate reads the YES/NO column (and common truthy spellings).
func ParseAutoUpdate(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "TRUE", "1":
		return true
	default:
		return false
	}
}

// ReturnType classifies a cash-flow event.
type ReturnType string

const (
	ReturnDividend    ReturnType = "DIVIDEND"
	ReturnInterest    ReturnType = "INTEREST"
	ReturnBond        ReturnType = "BOND"
	ReturnCapitalGain ReturnType = "CAPITAL_GAIN"
	ReturnOther       ReturnType = "OTHER"
)

// ParseReturnType normalizes free text into a ReturnType.
// "capital gain" and "Capital_Gain" both map to CAPITAL_GAIN; anything unknown is OTHER.
func ParseReturnType(s string) ReturnType {
	norm := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), " ", "_")
	switch ReturnType(norm) {
	case ReturnDividend, ReturnInterest, ReturnBond, ReturnCapitalGain:
		return ReturnType(norm)
	default:
		return ReturnOther
	}
}

// ReturnEvent is a dated cash flow (dividend, interest, coupon, capital gain).
// It has no identity of its own: the whole set is rebuilt on every import.
type ReturnEvent struct {
	InvestmentID string     `json:"investment_id"`
	Instrument   string     `json:"stock_instrument"`
	ReturnType   ReturnType `json:"return_type"`
	Date         *string    `json:"date"` // YYYY-MM-DD
	Amount       *float64   `json:"amount"`
	Currency     *string    `json:"currency"`
	Notes        string     `json:"notes"`
}

// RateEntry is a cached conversion rate for one ordered currency pair.
type RateEntry struct {
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         float64   `json:"rate"`
	LastUpdated  time.Time `json:"last_updated"`
}

// PriceEntry is a cached quote for one ticker.
type PriceEntry struct {
	TickerSymbol string    `json:"ticker_symbol"`
	Price        float64   `json:"current_price"`
	Currency     string    `json:"currency"`
	LastUpdated  time.Time `json:"last_updated"`
}

// IsFresh reports whether an entry stamped at lastUpdated is still inside maxAge at now.
func IsFresh(lastUpdated, now time.Time, maxAge time.Duration) bool {
	return now.Sub(lastUpdated) < maxAge
}

// InsightRecord is one generated analysis, stored append-only.
type InsightRecord struct {
	ID                int64     `json:"id"`
	Type              string    `json:"insight_type"`
	Content           string    `json:"content"`
	PortfolioSnapshot string    `json:"portfolio_snapshot"` // JSON
	GeneratedAt       time.Time `json:"generated_at"`
}
