package portfolio

import (
	"fmt"
	"log"
	"time"

	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// MarketAllocation fixes the notional size and home currency of every
// position opened in one market.
type MarketAllocation struct {
	TradeSize float64
	Currency  Currency
}

// Config drives one simulation run. It is passed in explicitly; the
// simulator keeps no package-level state.
type Config struct {
	StartDate         time.Time
	MaxTotalPositions int
	MaxPerMarket      int
	Allocations       map[types.Market]MarketAllocation
	DisplayCurrency   Currency
}

// DefaultConfig returns the standard constraints: 30 positions overall,
// 10 per market, fixed sizes per market, everything valued in GBP.
func DefaultConfig(startDate time.Time) Config {
	return Config{
		StartDate:         startDate,
		MaxTotalPositions: 30,
		MaxPerMarket:      10,
		Allocations: map[types.Market]MarketAllocation{
			types.MarketIndia: {TradeSize: 50000, Currency: CurrencyINR},
			types.MarketUK:    {TradeSize: 4000, Currency: CurrencyGBP},
			types.MarketUS:    {TradeSize: 5000, Currency: CurrencyUSD},
		},
		DisplayCurrency: CurrencyGBP,
	}
}

// Validate fails fast on malformed configuration.
func (c Config) Validate() error {
	if c.StartDate.IsZero() {
		return fmt.Errorf("simulation start date is required")
	}
	if c.MaxTotalPositions <= 0 {
		return fmt.Errorf("max total positions must be positive, got %d", c.MaxTotalPositions)
	}
	if c.MaxPerMarket <= 0 {
		return fmt.Errorf("max positions per market must be positive, got %d", c.MaxPerMarket)
	}
	if len(c.Allocations) == 0 {
		return fmt.Errorf("at least one market allocation is required")
	}
	for market, alloc := range c.Allocations {
		if alloc.TradeSize <= 0 {
			return fmt.Errorf("trade size for market %s must be positive, got %v", market, alloc.TradeSize)
		}
		if alloc.Currency == "" {
			return fmt.Errorf("currency for market %s is required", market)
		}
	}
	if c.DisplayCurrency == "" {
		return fmt.Errorf("display currency is required")
	}
	return nil
}

// Simulator replays a signal batch through a day-by-day portfolio state
// machine. Days are processed strictly in ascending order on a single
// goroutine: each day's admission decisions depend on the running count
// of previously admitted positions.
type Simulator struct {
	cfg       Config
	converter *Converter
}

// NewSimulator validates the configuration and checks that every market
// currency can be expressed in the display currency before any day runs.
func NewSimulator(cfg Config, converter *Converter) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulator config: %w", err)
	}
	for market, alloc := range cfg.Allocations {
		if !converter.CanConvert(alloc.Currency, cfg.DisplayCurrency) {
			return nil, fmt.Errorf("no conversion from %s (market %s) to display currency %s",
				alloc.Currency, market, cfg.DisplayCurrency)
		}
	}
	return &Simulator{cfg: cfg, converter: converter}, nil
}

type signalKey struct {
	symbol string
	day    string
}

func keyFor(symbol string, date time.Time) signalKey {
	return signalKey{symbol: symbol, day: date.Format("2006-01-02")}
}

// Run walks every trading day from the configured start date to today.
// Per day: close positions whose signal exits today, admit the day's
// signals FIFO under the position caps, then record a valuation. The
// signal batch is read-only input; all state lives in the returned
// Result.
func (s *Simulator) Run(batch []signals.Signal, today time.Time) (*Result, error) {
	if today.Before(s.cfg.StartDate) {
		return nil, fmt.Errorf("simulation end %s precedes start %s",
			today.Format("2006-01-02"), s.cfg.StartDate.Format("2006-01-02"))
	}

	// Index signals once per run: O(1) exit lookups instead of a linear
	// scan per position per day, and a per-day admission queue that
	// preserves the batch's FIFO order.
	bySignal := make(map[signalKey]*signals.Signal, len(batch))
	byEntryDay := make(map[string][]*signals.Signal)
	for i := range batch {
		sig := &batch[i]
		bySignal[keyFor(sig.Symbol, sig.EntryDate)] = sig
		day := sig.EntryDate.Format("2006-01-02")
		byEntryDay[day] = append(byEntryDay[day], sig)
	}

	result := &Result{}
	var open []Position
	realized := 0.0 // cumulative realized P/L in the display currency

	for day := s.cfg.StartDate; !day.After(today); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		// 1. Exits: the exit condition itself was decided upstream when
		// the signal was generated; here the pre-computed exit date is
		// simply applied.
		remaining := open[:0]
		for _, pos := range open {
			sig, ok := bySignal[keyFor(pos.Symbol, pos.EntryDate)]
			if ok && sig.ExitDate != nil && sameDay(*sig.ExitDate, day) {
				trade := ClosedTrade{
					Position:    pos,
					ExitDate:    *sig.ExitDate,
					ExitPrice:   sig.ExitPrice,
					PLPercent:   sig.PLPercent,
					ExitReason:  sig.ExitReason,
					HoldingDays: sig.HoldingDays,
				}
				result.ClosedTrades = append(result.ClosedTrades, trade)
				pl, err := s.converter.Convert(trade.RealizedPL(), trade.Currency, s.cfg.DisplayCurrency)
				if err != nil {
					return nil, fmt.Errorf("converting realized P/L for %s: %w", trade.Symbol, err)
				}
				realized += pl
				continue
			}
			remaining = append(remaining, pos)
		}
		open = remaining

		// 2. Admission, FIFO over the day's batch. Counters are seeded
		// once here and incremented locally so an admission earlier in
		// the batch reduces the room left for later signals.
		total := len(open)
		perMarket := make(map[types.Market]int)
		for _, pos := range open {
			perMarket[pos.Market]++
		}
		for _, sig := range byEntryDay[day.Format("2006-01-02")] {
			alloc, ok := s.cfg.Allocations[sig.Market]
			if !ok {
				result.Skipped = append(result.Skipped, SkipEntry{
					Date: day, Symbol: sig.Symbol, Market: sig.Market,
					Reason: "unrecognized market",
				})
				log.Printf("⚠️ skipping %s: no allocation for market %s", sig.Symbol, sig.Market)
				continue
			}
			if total >= s.cfg.MaxTotalPositions {
				result.Skipped = append(result.Skipped, SkipEntry{
					Date: day, Symbol: sig.Symbol, Market: sig.Market,
					Reason: "portfolio at max positions",
				})
				continue
			}
			if perMarket[sig.Market] >= s.cfg.MaxPerMarket {
				result.Skipped = append(result.Skipped, SkipEntry{
					Date: day, Symbol: sig.Symbol, Market: sig.Market,
					Reason: fmt.Sprintf("market %s at max positions", sig.Market),
				})
				continue
			}
			open = append(open, Position{
				Symbol:         sig.Symbol,
				Market:         sig.Market,
				EntryDate:      sig.EntryDate,
				EntryPrice:     sig.EntryPrice,
				TradeSize:      alloc.TradeSize,
				Currency:       alloc.Currency,
				WinRateAtEntry: sig.HistoricalWinRate,
			})
			total++
			perMarket[sig.Market]++
		}

		// 3. Valuation in the display currency.
		value := realized
		counts := make(map[types.Market]int)
		for _, pos := range open {
			notional, err := s.converter.Convert(pos.TradeSize, pos.Currency, s.cfg.DisplayCurrency)
			if err != nil {
				return nil, fmt.Errorf("converting notional for %s: %w", pos.Symbol, err)
			}
			value += notional
			counts[pos.Market]++
		}
		result.DailyValuations = append(result.DailyValuations, DailyValuation{
			Date:              day,
			Value:             value,
			ActivePositions:   len(open),
			PositionsByMarket: counts,
		})
	}

	result.OpenPositions = open
	return result, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
