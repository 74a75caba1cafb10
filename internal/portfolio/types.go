package portfolio

import (
	"time"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// Position is a currently-open notional allocation owned by the
// simulator. Trade size is fixed per market and never resized mid-life.
type Position struct {
	Symbol         string
	Market         types.Market
	EntryDate      time.Time
	EntryPrice     float64
	TradeSize      float64
	Currency       Currency
	WinRateAtEntry float64
}

// ClosedTrade is a Position plus its realized exit. The ledger of closed
// trades is append-only and never mutated after creation.
type ClosedTrade struct {
	Position
	ExitDate    time.Time
	ExitPrice   float64
	PLPercent   float64
	ExitReason  string
	HoldingDays int
}

// RealizedPL returns the trade's profit or loss in its home currency.
func (t *ClosedTrade) RealizedPL() float64 {
	return t.TradeSize * t.PLPercent / 100
}

// DailyValuation is one record per simulated trading day.
type DailyValuation struct {
	Date              time.Time
	Value             float64
	ActivePositions   int
	PositionsByMarket map[types.Market]int
}

// SkipEntry records a signal excluded from the simulation and why.
// Skips are normal control flow, not errors.
type SkipEntry struct {
	Date   time.Time
	Symbol string
	Market types.Market
	Reason string
}

// Result bundles the simulator's output artifacts.
type Result struct {
	ClosedTrades    []ClosedTrade
	OpenPositions   []Position
	DailyValuations []DailyValuation
	Skipped         []SkipEntry
}
