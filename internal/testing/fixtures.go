package testing

import (
	"github.com/aristath/networth/internal/domain"
)

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }

// NewPositionFixtures returns a small multi-currency portfolio
func NewPositionFixtures() []domain.Position {
	return []domain.Position{
		{
			ID:             "INV-001",
			Platform:       "CommSec",
			InvestmentType: "Stock",
			TickerSymbol:   String("CBA.AX"),
			AssetName:      "Commonwealth Bank",
			InvestedAmount: Float(1000),
			CurrentAmount:  Float(1250),
			Currency:       String("AUD"),
			PurchaseDate:   String("2023-03-01"),
			Quantity:       Float(10),
			AutoUpdate:     true,
		},
		{
			ID:             "INV-002",
			Platform:       "Interactive Brokers",
			InvestmentType: "ETF",
			TickerSymbol:   String("VTI"),
			AssetName:      "Vanguard Total Stock Market",
			InvestedAmount: Float(2000),
			CurrentAmount:  Float(2400),
			Currency:       String("USD"),
			Quantity:       Float(8),
			AutoUpdate:     true,
		},
		{
			ID:             "INV-003",
			Platform:       "ING",
			InvestmentType: "Savings",
			AssetName:      "Savings Maximiser",
			InvestedAmount: Float(5000),
			CurrentAmount:  Float(5100),
			Currency:       String("AUD"),
		},
		{
			ID:             "INV-004",
			Platform:       "Interactive Brokers",
			InvestmentType: "Stock",
			TickerSymbol:   String(domain.TickerPlaceholder),
			AssetName:      "Pending research",
			InvestedAmount: Float(500),
			Currency:       String("USD"),
			AutoUpdate:     true,
		},
	}
}

// NewReturnEventFixtures returns events for NewPositionFixtures
func NewReturnEventFixtures() []domain.ReturnEvent {
	return []domain.ReturnEvent{
		{InvestmentID: "INV-001", Instrument: "CBA", ReturnType: domain.ReturnDividend, Date: String("2024-02-15"), Amount: Float(42.5), Currency: String("AUD")},
		{InvestmentID: "INV-003", Instrument: "Savings", ReturnType: domain.ReturnInterest, Date: String("2024-03-01"), Amount: Float(18.2), Currency: String("AUD")},
		{InvestmentID: "INV-009", Instrument: "Bond", ReturnType: domain.ReturnBond, Date: String("2024-03-10"), Amount: Float(75), Currency: String("USD"), Notes: "not imported yet"},
	}
}
