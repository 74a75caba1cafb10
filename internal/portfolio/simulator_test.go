package portfolio

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

var (
	simStart = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // a Monday
	simToday = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
)

func newTestSimulator(t *testing.T, mutate func(*Config)) *Simulator {
	t.Helper()
	cfg := DefaultConfig(simStart)
	if mutate != nil {
		mutate(&cfg)
	}
	conv, err := NewConverter(DefaultRates())
	require.NoError(t, err)
	sim, err := NewSimulator(cfg, conv)
	require.NoError(t, err)
	return sim
}

func entrySignal(symbol string, market types.Market, entry time.Time) signals.Signal {
	return signals.Signal{
		Symbol:            symbol,
		Market:            market,
		EntryDate:         entry,
		EntryPrice:        100,
		HistoricalWinRate: 0.8,
	}
}

func closedSignal(symbol string, market types.Market, entry, exit time.Time, plPercent float64, reason string) signals.Signal {
	s := entrySignal(symbol, market, entry)
	s.ExitDate = &exit
	s.ExitPrice = s.EntryPrice * (1 + plPercent/100)
	s.PLPercent = plPercent
	s.HoldingDays = int(exit.Sub(entry).Hours() / 24)
	s.ExitReason = reason
	return s
}

func TestNewSimulator_RejectsInvalidConfig(t *testing.T) {
	conv, err := NewConverter(DefaultRates())
	require.NoError(t, err)

	cfg := DefaultConfig(simStart)
	cfg.MaxTotalPositions = 0
	_, err = NewSimulator(cfg, conv)
	assert.Error(t, err)

	cfg = DefaultConfig(time.Time{})
	_, err = NewSimulator(cfg, conv)
	assert.Error(t, err)

	cfg = DefaultConfig(simStart)
	cfg.Allocations[types.MarketIndia] = MarketAllocation{TradeSize: -5, Currency: CurrencyINR}
	_, err = NewSimulator(cfg, conv)
	assert.Error(t, err)
}

func TestNewSimulator_RejectsMissingConversion(t *testing.T) {
	conv, err := NewConverter(map[string]float64{"GBP->USD": 1.25})
	require.NoError(t, err)

	// INR cannot reach the GBP display currency with this table.
	_, err = NewSimulator(DefaultConfig(simStart), conv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INR")
}

func TestSimulator_EndBeforeStart(t *testing.T) {
	sim := newTestSimulator(t, nil)
	_, err := sim.Run(nil, simStart.AddDate(0, 0, -1))
	assert.Error(t, err)
}

func TestSimulator_SkipsWeekends(t *testing.T) {
	sim := newTestSimulator(t, nil)
	res, err := sim.Run(nil, simToday)
	require.NoError(t, err)

	// Mar 3..14 2025 spans two full weeks: ten trading days.
	require.Len(t, res.DailyValuations, 10)
	for _, v := range res.DailyValuations {
		wd := v.Date.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestSimulator_FIFOAdmissionForLastSlot(t *testing.T) {
	sim := newTestSimulator(t, func(cfg *Config) {
		cfg.MaxPerMarket = 1
	})
	batch := []signals.Signal{
		entrySignal("FIRST.L", types.MarketUK, simStart),
		entrySignal("SECOND.L", types.MarketUK, simStart),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)

	require.Len(t, res.OpenPositions, 1)
	assert.Equal(t, "FIRST.L", res.OpenPositions[0].Symbol)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "SECOND.L", res.Skipped[0].Symbol)
	assert.Contains(t, res.Skipped[0].Reason, "max positions")
}

func TestSimulator_PerMarketCapHolds(t *testing.T) {
	sim := newTestSimulator(t, func(cfg *Config) {
		cfg.MaxPerMarket = 2
		cfg.MaxTotalPositions = 10
	})

	var batch []signals.Signal
	for i := 0; i < 5; i++ {
		batch = append(batch, entrySignal(fmt.Sprintf("UK%d.L", i), types.MarketUK, simStart))
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)

	for _, v := range res.DailyValuations {
		assert.LessOrEqual(t, v.PositionsByMarket[types.MarketUK], 2, "day %s", v.Date)
	}
	assert.Len(t, res.OpenPositions, 2)
	assert.Len(t, res.Skipped, 3)
}

func TestSimulator_TotalCapAcrossMarkets(t *testing.T) {
	sim := newTestSimulator(t, func(cfg *Config) {
		cfg.MaxTotalPositions = 3
		cfg.MaxPerMarket = 2
	})

	batch := []signals.Signal{
		entrySignal("A.L", types.MarketUK, simStart),
		entrySignal("B.L", types.MarketUK, simStart),
		entrySignal("C", types.MarketUS, simStart),
		entrySignal("D", types.MarketUS, simStart),
		entrySignal("E.NS", types.MarketIndia, simStart.AddDate(0, 0, 1)),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)

	assert.Len(t, res.OpenPositions, 3)
	for _, v := range res.DailyValuations {
		assert.LessOrEqual(t, v.ActivePositions, 3, "day %s", v.Date)
	}
	// D lost the same-day race to C; E found the portfolio full next day.
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, "D", res.Skipped[0].Symbol)
	assert.Equal(t, "E.NS", res.Skipped[1].Symbol)
}

func TestSimulator_AppliesSignalExit(t *testing.T) {
	sim := newTestSimulator(t, nil)
	exit := simStart.AddDate(0, 0, 2) // Wednesday
	batch := []signals.Signal{
		closedSignal("WIN.L", types.MarketUK, simStart, exit, 8, signals.ReasonTakeProfit),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)

	require.Len(t, res.ClosedTrades, 1)
	trade := res.ClosedTrades[0]
	assert.Equal(t, "WIN.L", trade.Symbol)
	assert.Equal(t, exit, trade.ExitDate)
	assert.InDelta(t, 8.0, trade.PLPercent, 1e-12)
	assert.Equal(t, signals.ReasonTakeProfit, trade.ExitReason)
	assert.Equal(t, 4000.0, trade.TradeSize)
	assert.Equal(t, CurrencyGBP, trade.Currency)
	assert.Empty(t, res.OpenPositions)

	// Position was open Monday and Tuesday, closed Wednesday.
	assert.Equal(t, 1, res.DailyValuations[0].ActivePositions)
	assert.Equal(t, 1, res.DailyValuations[1].ActivePositions)
	assert.Equal(t, 0, res.DailyValuations[2].ActivePositions)
}

func TestSimulator_ValuationConvertsCurrencies(t *testing.T) {
	sim := newTestSimulator(t, nil)
	exit := simStart.AddDate(0, 0, 1)
	batch := []signals.Signal{
		// India position stays open: 50,000 INR -> GBP at 1/105.
		entrySignal("OPEN.NS", types.MarketIndia, simStart),
		// UK trade closes Tuesday at +10%: realized 400 GBP.
		closedSignal("DONE.L", types.MarketUK, simStart, exit, 10, signals.ReasonTakeProfit),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)
	require.Len(t, res.DailyValuations, 10)

	openNotional := 50000.0 / 105.0
	// Monday: both positions open.
	assert.InDelta(t, openNotional+4000, res.DailyValuations[0].Value, 1e-6)
	// Tuesday onward: India open plus realized UK profit.
	last := res.DailyValuations[len(res.DailyValuations)-1]
	assert.InDelta(t, openNotional+400, last.Value, 1e-6)
	assert.Equal(t, 1, last.ActivePositions)
	assert.Equal(t, 1, last.PositionsByMarket[types.MarketIndia])
}

func TestSimulator_UnknownMarketIsSkippedNotFatal(t *testing.T) {
	sim := newTestSimulator(t, nil)
	batch := []signals.Signal{
		entrySignal("ALIEN", types.Market("Mars"), simStart),
		entrySignal("FINE.L", types.MarketUK, simStart),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "ALIEN", res.Skipped[0].Symbol)
	assert.Equal(t, "unrecognized market", res.Skipped[0].Reason)
	assert.Len(t, res.OpenPositions, 1)
}

func TestSimulator_LedgerImmutableAcrossDays(t *testing.T) {
	sim := newTestSimulator(t, nil)
	exit := simStart.AddDate(0, 0, 2)
	batch := []signals.Signal{
		closedSignal("KEEP.L", types.MarketUK, simStart, exit, 8, signals.ReasonTakeProfit),
		// Churn after the close so later days keep mutating state.
		entrySignal("LATER.L", types.MarketUK, simStart.AddDate(0, 0, 7)),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)
	require.Len(t, res.ClosedTrades, 1)

	trade := res.ClosedTrades[0]
	assert.Equal(t, exit, trade.ExitDate)
	assert.InDelta(t, 8.0, trade.PLPercent, 1e-12)
	assert.Equal(t, signals.ReasonTakeProfit, trade.ExitReason)
	assert.InDelta(t, 320.0, trade.RealizedPL(), 1e-12)
}

func TestSimulator_SignalBeforeStartNeverAdmitted(t *testing.T) {
	sim := newTestSimulator(t, nil)
	batch := []signals.Signal{
		entrySignal("PAST.L", types.MarketUK, simStart.AddDate(0, 0, -7)),
	}

	res, err := sim.Run(batch, simToday)
	require.NoError(t, err)
	assert.Empty(t, res.OpenPositions)
	assert.Empty(t, res.ClosedTrades)
}
