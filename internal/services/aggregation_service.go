package services

import (
	"context"
	"fmt"

	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// NetWorth is the portfolio valuation in one base currency
type NetWorth struct {
	NetWorth        float64 `json:"net_worth"`
	TotalInvested   float64 `json:"total_invested"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	ROIPercentage   float64 `json:"roi_percentage"`
	Count           int     `json:"total_investments"`
	BaseCurrency    string  `json:"base_currency"`
}

// BreakdownGroup holds the sums of one group in its own currency, plus the
// current total converted to the base currency
type BreakdownGroup struct {
	Key              string  `json:"key"`
	Currency         string  `json:"currency"`
	Count            int     `json:"count"`
	TotalInvested    float64 `json:"total_invested"`
	TotalCurrent     float64 `json:"total_current"`
	TotalProfitLoss  float64 `json:"total_profit_loss"`
	TotalCurrentBase float64 `json:"total_current_base"`
}

// Breakdown groups the portfolio by type, platform and currency
type Breakdown struct {
	ByType       []BreakdownGroup `json:"by_type"`
	ByPlatform   []BreakdownGroup `json:"by_platform"`
	ByCurrency   []BreakdownGroup `json:"by_currency"`
	BaseCurrency string           `json:"base_currency"`
}

// PositionSummary is one position as seen by the portfolio summary
type PositionSummary struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Platform   string   `json:"platform"`
	AssetName  string   `json:"asset_name"`
	Invested   *float64 `json:"invested"`
	Current    *float64 `json:"current"`
	ProfitLoss float64  `json:"profit_loss"`
	ROIPercent float64  `json:"roi_percent"`
	Currency   string   `json:"currency"`
}

// PortfolioSummary counts positions per dimension and totals them in the base currency
type PortfolioSummary struct {
	TotalInvestments int               `json:"total_investments"`
	ByType           map[string]int    `json:"by_type"`
	ByCurrency       map[string]int    `json:"by_currency"`
	ByPlatform       map[string]int    `json:"by_platform"`
	TotalInvested    float64           `json:"total_invested"`
	TotalCurrent     float64           `json:"total_current"`
	TotalProfitLoss  float64           `json:"total_profit_loss"`
	BaseCurrency     string            `json:"base_currency"`
	Investments      []PositionSummary `json:"investments"`
}

// AggregationService computes valuations across currencies
type AggregationService struct {
	positions *portfolio.PositionRepository
	converter domain.CurrencyConverter
	log       zerolog.Logger
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(
	positions *portfolio.PositionRepository,
	converter domain.CurrencyConverter,
	log zerolog.Logger,
) *AggregationService {
	return &AggregationService{
		positions: positions,
		converter: converter,
		log:       log.With().Str("service", "aggregation").Logger(),
	}
}

// NetWorth sums every valued position in base. Positions without a current
// amount are left out. Profit/loss is current minus invested, converted per
// position; the stored column is not read.
func (s *AggregationService) NetWorth(ctx context.Context, base string) (*NetWorth, error) {
	base = normalizeCurrency(base)
	positions, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	result := &NetWorth{BaseCurrency: base}
	for _, p := range positions {
		if p.CurrentAmount == nil {
			continue
		}
		result.Count++
		currency := p.CurrencyOr(base)

		current, err := s.converter.Convert(ctx, *p.CurrentAmount, currency, base)
		if err != nil {
			return nil, err
		}
		result.NetWorth += current

		if p.InvestedAmount == nil || *p.InvestedAmount == 0 {
			continue
		}
		invested, err := s.converter.Convert(ctx, *p.InvestedAmount, currency, base)
		if err != nil {
			return nil, err
		}
		result.TotalInvested += invested

		pl, err := s.converter.Convert(ctx, *domain.ProfitLoss(p), currency, base)
		if err != nil {
			return nil, err
		}
		result.TotalProfitLoss += pl
	}

	result.ROIPercentage = roi(result.TotalProfitLoss, result.TotalInvested)

	s.log.Debug().
		Str("base", base).
		Float64("net_worth", result.NetWorth).
		Int("count", result.Count).
		Msg("Net worth computed")
	return result, nil
}

// Breakdown groups positions by (type, currency), (platform, currency) and
// currency. Each group's current total is converted once, after summing.
func (s *AggregationService) Breakdown(ctx context.Context, base string) (*Breakdown, error) {
	base = normalizeCurrency(base)
	result := &Breakdown{BaseCurrency: base}

	var err error
	if result.ByType, err = s.group(ctx, portfolio.FieldInvestmentType, base); err != nil {
		return nil, err
	}
	if result.ByPlatform, err = s.group(ctx, portfolio.FieldPlatform, base); err != nil {
		return nil, err
	}
	byCurrency, err := s.group(ctx, portfolio.FieldCurrency, base)
	if err != nil {
		return nil, err
	}
	for _, g := range byCurrency {
		if g.Currency != "" {
			result.ByCurrency = append(result.ByCurrency, g)
		}
	}
	return result, nil
}

func (s *AggregationService) group(ctx context.Context, field, base string) ([]BreakdownGroup, error) {
	rows, err := s.positions.Aggregate(ctx, portfolio.AggregateQuery{GroupBy: []string{field}})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", field, err)
	}

	groups := make([]BreakdownGroup, 0, len(rows))
	for _, row := range rows {
		g := BreakdownGroup{
			Key:             row.Keys[field],
			Currency:        row.Currency,
			Count:           row.Count,
			TotalInvested:   row.TotalInvested,
			TotalCurrent:    row.TotalCurrent,
			TotalProfitLoss: row.TotalPL,
		}
		if g.TotalCurrent != 0 {
			currency := g.Currency
			if currency == "" {
				currency = base
			}
			if g.TotalCurrentBase, err = s.converter.Convert(ctx, g.TotalCurrent, currency, base); err != nil {
				return nil, err
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Summary describes every position with counts and base-currency totals
func (s *AggregationService) Summary(ctx context.Context, base string) (*PortfolioSummary, error) {
	base = normalizeCurrency(base)
	positions, err := s.positions.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	summary := &PortfolioSummary{
		TotalInvestments: len(positions),
		ByType:           make(map[string]int),
		ByCurrency:       make(map[string]int),
		ByPlatform:       make(map[string]int),
		BaseCurrency:     base,
		Investments:      make([]PositionSummary, 0, len(positions)),
	}

	for _, p := range positions {
		currency := p.CurrencyOr("")
		summary.ByType[p.InvestmentType]++
		summary.ByCurrency[currency]++
		summary.ByPlatform[p.Platform]++

		from := p.CurrencyOr(base)
		if p.InvestedAmount != nil && *p.InvestedAmount != 0 {
			v, err := s.converter.Convert(ctx, *p.InvestedAmount, from, base)
			if err != nil {
				return nil, err
			}
			summary.TotalInvested += v
		}
		if p.CurrentAmount != nil && *p.CurrentAmount != 0 {
			v, err := s.converter.Convert(ctx, *p.CurrentAmount, from, base)
			if err != nil {
				return nil, err
			}
			summary.TotalCurrent += v
		}

		var pl float64
		if p.InvestedAmount != nil && *p.InvestedAmount != 0 && p.CurrentAmount != nil && *p.CurrentAmount != 0 {
			pl = *domain.ProfitLoss(p)
			v, err := s.converter.Convert(ctx, pl, from, base)
			if err != nil {
				return nil, err
			}
			summary.TotalProfitLoss += v
		}

		item := PositionSummary{
			ID:         p.ID,
			Type:       p.InvestmentType,
			Platform:   p.Platform,
			AssetName:  p.AssetName,
			Invested:   p.InvestedAmount,
			Current:    p.CurrentAmount,
			ProfitLoss: pl,
			Currency:   currency,
		}
		if p.InvestedAmount != nil && *p.InvestedAmount > 0 {
			item.ROIPercent = pl / *p.InvestedAmount * 100
		}
		summary.Investments = append(summary.Investments, item)
	}

	return summary, nil
}

// roi is profit/loss over invested as a percentage, 0 when nothing was invested
func roi(profitLoss, invested float64) float64 {
	if invested == 0 {
		return 0
	}
	return profitLoss / invested * 100
}
