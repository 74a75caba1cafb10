package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

func gbpConverter(t *testing.T) *portfolio.Converter {
	t.Helper()
	c, err := portfolio.NewConverter(portfolio.DefaultRates())
	require.NoError(t, err)
	return c
}

func compute(t *testing.T, valuations []portfolio.DailyValuation, ledger []portfolio.ClosedTrade) Summary {
	t.Helper()
	s, err := Compute(valuations, ledger, gbpConverter(t), portfolio.CurrencyGBP)
	require.NoError(t, err)
	return s
}

func val(day string, value float64) portfolio.DailyValuation {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return portfolio.DailyValuation{Date: d, Value: value}
}

func trade(market types.Market, plPercent float64, reason string) portfolio.ClosedTrade {
	return portfolio.ClosedTrade{
		Position: portfolio.Position{
			Symbol:    "X",
			Market:    market,
			TradeSize: 1000,
			Currency:  portfolio.CurrencyGBP,
		},
		PLPercent:  plPercent,
		ExitReason: reason,
	}
}

func TestMaxDrawdown_MonotonicSeriesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 100, 110, 125, 125, 140}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
}

func TestMaxDrawdown_KnownSeries(t *testing.T) {
	// Peak 120, trough 90: 25% drawdown.
	assert.InDelta(t, 25.0, MaxDrawdown([]float64{100, 120, 90, 130}), 1e-9)
	// The later, deeper decline wins: peak 130 to 65 is 50%.
	assert.InDelta(t, 50.0, MaxDrawdown([]float64{100, 120, 90, 130, 65}), 1e-9)
}

func TestDailyReturns(t *testing.T) {
	vals := []portfolio.DailyValuation{
		val("2025-01-06", 100),
		val("2025-01-07", 110),
		val("2025-01-08", 99),
	}
	returns := DailyReturns(vals)
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.10, returns[0], 1e-12)
	assert.InDelta(t, -0.10, returns[1], 1e-12)
}

func TestCompute_TotalReturn(t *testing.T) {
	s := compute(t, []portfolio.DailyValuation{
		val("2025-01-06", 10000),
		val("2025-01-07", 10500),
		val("2025-01-08", 11000),
	}, nil)
	assert.InDelta(t, 10.0, s.TotalReturnPercent, 1e-9)
}

func TestCompute_SortinoSentinelWithoutLosses(t *testing.T) {
	s := compute(t, []portfolio.DailyValuation{
		val("2025-01-06", 100),
		val("2025-01-07", 101),
		val("2025-01-08", 103),
		val("2025-01-09", 104),
	}, nil)
	assert.Equal(t, RatioSentinel, s.SortinoRatio)
	assert.Equal(t, RatioSentinel, s.CalmarRatio, "zero drawdown")
	assert.Greater(t, s.SharpeRatio, 0.0)
}

func TestCompute_SharpeNegativeForDecline(t *testing.T) {
	s := compute(t, []portfolio.DailyValuation{
		val("2025-01-06", 100),
		val("2025-01-07", 98),
		val("2025-01-08", 97),
		val("2025-01-09", 95),
		val("2025-01-10", 96),
	}, nil)
	assert.Less(t, s.SharpeRatio, 0.0)
	assert.Less(t, s.SortinoRatio, 0.0)
	assert.Greater(t, s.MaxDrawdownPercent, 0.0)
	assert.Greater(t, s.VolatilityPercent, 0.0)
}

func TestCompute_DegenerateInputs(t *testing.T) {
	s := compute(t, nil, nil)
	assert.Zero(t, s.TotalReturnPercent)
	assert.Zero(t, s.SharpeRatio)
	assert.Zero(t, s.TotalTrades)

	s = compute(t, []portfolio.DailyValuation{val("2025-01-06", 100)}, nil)
	assert.Zero(t, s.TotalReturnPercent)
}

func TestCompute_TradeStats(t *testing.T) {
	ledger := []portfolio.ClosedTrade{
		trade(types.MarketUK, 8, signals.ReasonTakeProfit),
		trade(types.MarketUK, 8, signals.ReasonTakeProfit),
		trade(types.MarketUS, -5, signals.ReasonStopLoss),
		trade(types.MarketIndia, 2, "Max holding period (30 days)"),
	}

	s := compute(t, nil, ledger)
	assert.Equal(t, 4, s.TotalTrades)
	assert.Equal(t, 3, s.WinningTrades)
	assert.Equal(t, 1, s.LosingTrades)
	assert.InDelta(t, 75.0, s.WinRatePercent, 1e-9)
	assert.InDelta(t, 6.0, s.AvgWinPercent, 1e-9)   // (8+8+2)/3
	assert.InDelta(t, -5.0, s.AvgLossPercent, 1e-9)
	assert.InDelta(t, 3.25, s.ExpectancyPercent, 1e-9) // (8+8-5+2)/4
	// Gross profit 180, gross loss 50 on the 1000 notional.
	assert.InDelta(t, 3.6, s.ProfitFactor, 1e-9)
}

func TestCompute_ProfitFactorInDisplayCurrency(t *testing.T) {
	// +1% on a 50,000 INR book is about +£4.76; -5% on a 4,000 GBP book
	// is -£200. The profit factor must reflect the converted magnitudes,
	// not the raw home-currency amounts (which would call this ledger
	// profitable at 500/200 = 2.5).
	india := trade(types.MarketIndia, 1, signals.ReasonTakeProfit)
	india.TradeSize = 50000
	india.Currency = portfolio.CurrencyINR
	uk := trade(types.MarketUK, -5, signals.ReasonStopLoss)
	uk.TradeSize = 4000

	s := compute(t, nil, []portfolio.ClosedTrade{india, uk})
	assert.InDelta(t, (500.0/105.0)/200.0, s.ProfitFactor, 1e-9)
	assert.Less(t, s.ProfitFactor, 1.0)
}

func TestCompute_FailsOnMissingConversionRate(t *testing.T) {
	converter, err := portfolio.NewConverter(map[string]float64{"GBP->USD": 1.25})
	require.NoError(t, err)

	india := trade(types.MarketIndia, 1, signals.ReasonTakeProfit)
	india.Currency = portfolio.CurrencyINR

	_, err = Compute(nil, []portfolio.ClosedTrade{india}, converter, portfolio.CurrencyGBP)
	assert.Error(t, err)
}

func TestCompute_ProfitFactorSentinelWithoutLosses(t *testing.T) {
	s := compute(t, nil, []portfolio.ClosedTrade{
		trade(types.MarketUK, 8, signals.ReasonTakeProfit),
	})
	assert.Equal(t, RatioSentinel, s.ProfitFactor)
}

func TestCompute_Breakdowns(t *testing.T) {
	ledger := []portfolio.ClosedTrade{
		trade(types.MarketUK, 8, signals.ReasonTakeProfit),
		trade(types.MarketUK, -5, signals.ReasonStopLoss),
		trade(types.MarketUS, 3, "manual close"),
	}

	s := compute(t, nil, ledger)

	uk := s.ByMarket[types.MarketUK]
	assert.Equal(t, 2, uk.Trades)
	assert.Equal(t, 1, uk.Wins)
	assert.InDelta(t, 50.0, uk.WinRatePercent, 1e-9)
	assert.InDelta(t, 1.5, uk.AvgPLPercent, 1e-9)

	assert.Equal(t, 1, s.ByExitReason[BucketTakeProfit].Trades)
	assert.Equal(t, 1, s.ByExitReason[BucketStopLoss].Trades)
	assert.Equal(t, 1, s.ByExitReason[BucketOther].Trades)
}

func TestMonthlyReturns_CompoundedWithinMonth(t *testing.T) {
	vals := []portfolio.DailyValuation{
		val("2025-01-30", 100),
		val("2025-01-31", 110),
		val("2025-02-03", 105),
		val("2025-02-28", 126),
	}

	s := compute(t, vals, nil)
	require.Len(t, s.Monthly, 2)

	assert.Equal(t, 2025, s.Monthly[0].Year)
	assert.Equal(t, 1, s.Monthly[0].Month)
	assert.InDelta(t, 10.0, s.Monthly[0].ReturnPercent, 1e-9)

	assert.Equal(t, 2, s.Monthly[1].Month)
	assert.InDelta(t, 20.0, s.Monthly[1].ReturnPercent, 1e-9)
}
