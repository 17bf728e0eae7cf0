package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/networth/internal/domain"
	"github.com/aristath/networth/internal/modules/insights"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Insight kinds stored in ai_insights.insight_type
const (
	InsightPortfolioAnalysis = "portfolio_analysis"
	InsightReallocation      = "reallocation"
	InsightProjections       = "projections"
)

// ErrNoTextGenerator is returned by Analyze when no language model is configured
var ErrNoTextGenerator = errors.New("no text generator configured")

const analysisInstruction = `You are a financial advisor reviewing a personal investment portfolio.
The user message holds the portfolio as JSON, with every total already in the base currency.
Assess overall health, diversification and risk, then give specific, actionable recommendations.
Keep the answer concise.`

// InsightService asks a language model about the portfolio and keeps every answer
type InsightService struct {
	aggregation *AggregationService
	generator   domain.TextGenerator
	store       *insights.Repository
	log         zerolog.Logger
	now         func() time.Time
}

// NewInsightService creates a new insight service. generator may be nil.
func NewInsightService(
	aggregation *AggregationService,
	generator domain.TextGenerator,
	store *insights.Repository,
	log zerolog.Logger,
) *InsightService {
	return &InsightService{
		aggregation: aggregation,
		generator:   generator,
		store:       store,
		log:         log.With().Str("service", "insights").Logger(),
		now:         time.Now,
	}
}

// Analyze generates one insight of the given kind and appends it to the log
func (s *InsightService) Analyze(ctx context.Context, kind, base string) (*domain.InsightRecord, error) {
	if s.generator == nil {
		return nil, ErrNoTextGenerator
	}
	if kind == "" {
		kind = InsightPortfolioAnalysis
	}

	summary, err := s.aggregation.Summary(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to build portfolio summary: %w", err)
	}

	snapshot, err := json.Marshal(roundSummary(*summary))
	if err != nil {
		return nil, fmt.Errorf("failed to encode portfolio snapshot: %w", err)
	}

	prompt := fmt.Sprintf("Requested insight: %s\nBase currency: %s\nPortfolio:\n%s", kind, summary.BaseCurrency, snapshot)
	content, err := s.generator.Generate(ctx, analysisInstruction, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", kind, err)
	}

	record := domain.InsightRecord{
		Type:              kind,
		Content:           content,
		PortfolioSnapshot: string(snapshot),
		GeneratedAt:       s.now(),
	}
	if record.ID, err = s.store.Append(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info().Str("kind", kind).Int64("id", record.ID).Msg("Insight generated")
	return &record, nil
}

// roundSummary rounds every money figure to cents
func roundSummary(s PortfolioSummary) PortfolioSummary {
	s.TotalInvested = cents(s.TotalInvested)
	s.TotalCurrent = cents(s.TotalCurrent)
	s.TotalProfitLoss = cents(s.TotalProfitLoss)

	investments := make([]PositionSummary, len(s.Investments))
	for i, inv := range s.Investments {
		inv.ProfitLoss = cents(inv.ProfitLoss)
		inv.ROIPercent = cents(inv.ROIPercent)
		investments[i] = inv
	}
	s.Investments = investments
	return s
}

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
