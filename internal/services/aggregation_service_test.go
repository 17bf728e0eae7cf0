package services

import (
	"context"
	"testing"

	testingpkg "github.com/aristath/networth/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetWorth_SingleCurrencyROI(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, position("A", "AUD", testingpkg.Float(100), testingpkg.Float(150)))

	nw, err := env.aggregation.NetWorth(context.Background(), "AUD")
	require.NoError(t, err)

	assert.Equal(t, 150.0, nw.NetWorth)
	assert.Equal(t, 100.0, nw.TotalInvested)
	assert.Equal(t, 50.0, nw.TotalProfitLoss)
	assert.Equal(t, 50.0, nw.ROIPercentage)
	assert.Equal(t, 1, nw.Count)
	assert.Zero(t, env.rateSource.TotalCalls())
}

func TestNetWorth_SkipsUnvaluedPositions(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t,
		position("A", "AUD", testingpkg.Float(100), testingpkg.Float(150)),
		position("B", "AUD", testingpkg.Float(500), nil),
	)

	nw, err := env.aggregation.NetWorth(context.Background(), "AUD")
	require.NoError(t, err)
	assert.Equal(t, 150.0, nw.NetWorth)
	assert.Equal(t, 100.0, nw.TotalInvested)
	assert.Equal(t, 1, nw.Count)
}

func TestNetWorth_ZeroInvestedHasZeroROI(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, position("GIFT", "AUD", nil, testingpkg.Float(80)))

	nw, err := env.aggregation.NetWorth(context.Background(), "AUD")
	require.NoError(t, err)
	assert.Equal(t, 80.0, nw.NetWorth)
	assert.Zero(t, nw.ROIPercentage)
}

func TestNetWorth_ConvertsEachPosition(t *testing.T) {
	env := newTestEnv(t)
	env.rateSource.SetRate("USD", "AUD", 1.5)
	env.seed(t,
		position("A", "AUD", testingpkg.Float(100), testingpkg.Float(150)),
		position("B", "USD", testingpkg.Float(100), testingpkg.Float(120)),
	)
	noCurrency := position("C", "", testingpkg.Float(10), testingpkg.Float(10))
	noCurrency.Currency = nil
	env.seed(t, noCurrency)

	nw, err := env.aggregation.NetWorth(context.Background(), "AUD")
	require.NoError(t, err)
	assert.Equal(t, 150.0+180.0+10.0, nw.NetWorth)
	assert.Equal(t, 100.0+150.0+10.0, nw.TotalInvested)
	assert.InDelta(t, 50.0+30.0, nw.TotalProfitLoss, 1e-9)
	assert.Equal(t, 1, env.rateSource.Calls("USD"))
}

func TestNetWorth_ConversionFailureIsReturned(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, position("A", "JPY", testingpkg.Float(100), testingpkg.Float(150)))

	_, err := env.aggregation.NetWorth(context.Background(), "AUD")
	assert.Error(t, err)
}

func TestBreakdown_ConvertsGroupTotalsOnce(t *testing.T) {
	env := newTestEnv(t)
	env.rateSource.SetRate("USD", "AUD", 1.5)
	env.seed(t, testingpkg.NewPositionFixtures()...)

	b, err := env.aggregation.Breakdown(context.Background(), "AUD")
	require.NoError(t, err)

	byKey := func(groups []BreakdownGroup, key, currency string) BreakdownGroup {
		for _, g := range groups {
			if g.Key == key && g.Currency == currency {
				return g
			}
		}
		t.Fatalf("group %s/%s not found", key, currency)
		return BreakdownGroup{}
	}

	ib := byKey(b.ByPlatform, "Interactive Brokers", "USD")
	assert.Equal(t, 2, ib.Count)
	assert.Equal(t, 2400.0, ib.TotalCurrent)
	assert.Equal(t, 3600.0, ib.TotalCurrentBase)

	stocks := byKey(b.ByType, "Stock", "AUD")
	assert.Equal(t, 1250.0, stocks.TotalCurrentBase)

	require.Len(t, b.ByCurrency, 2)
	assert.Equal(t, "AUD", b.BaseCurrency)
	// the USD rate is fetched once and then cached
	assert.Equal(t, 1, env.rateSource.Calls("USD"))
}

func TestSummary_CountsAndTotals(t *testing.T) {
	env := newTestEnv(t)
	env.rateSource.SetRate("USD", "AUD", 2)
	env.seed(t, testingpkg.NewPositionFixtures()...)

	s, err := env.aggregation.Summary(context.Background(), "AUD")
	require.NoError(t, err)

	assert.Equal(t, 4, s.TotalInvestments)
	assert.Equal(t, 2, s.ByType["Stock"])
	assert.Equal(t, 2, s.ByCurrency["USD"])
	assert.Equal(t, 1000.0+2*2000+5000+2*500, s.TotalInvested)
	assert.Equal(t, 1250.0+2*2400+5100, s.TotalCurrent)
	assert.Equal(t, 250.0+2*400+100, s.TotalProfitLoss)

	require.Len(t, s.Investments, 4)
	assert.Equal(t, 25.0, s.Investments[0].ROIPercent)
}
