package signals

import (
	"time"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// Exit reason strings recorded on completed signals. Downstream
// breakdowns classify by substring, so these are stable prefixes.
const (
	ReasonTakeProfit = "Take profit"
	ReasonStopLoss   = "Stop loss"
	ReasonMaxDays    = "Max holding period"
)

// Signal is one candidate trade produced by backtesting a symbol's
// history against the entry/exit rules. A signal with no exit date is an
// open opportunity. Signals are immutable once produced.
type Signal struct {
	Symbol            string
	Market            types.Market
	EntryDate         time.Time
	EntryPrice        float64
	ExitDate          *time.Time
	ExitPrice         float64
	PLPercent         float64
	HoldingDays       int
	ExitReason        string
	HistoricalWinRate float64
}

// Completed reports whether the signal's trade has been closed.
func (s *Signal) Completed() bool {
	return s.ExitDate != nil
}

// Win reports whether a completed signal closed at a profit.
func (s *Signal) Win() bool {
	return s.Completed() && s.PLPercent > 0
}

// WinRates computes the fraction of winning completed signals per symbol.
// Symbols with no completed signals are absent from the map.
func WinRates(batch []Signal) map[string]float64 {
	wins := make(map[string]int)
	totals := make(map[string]int)
	for i := range batch {
		s := &batch[i]
		if !s.Completed() {
			continue
		}
		totals[s.Symbol]++
		if s.Win() {
			wins[s.Symbol]++
		}
	}

	rates := make(map[string]float64, len(totals))
	for sym, total := range totals {
		rates[sym] = float64(wins[sym]) / float64(total)
	}
	return rates
}

// CompletedCounts returns the number of closed signals per symbol.
func CompletedCounts(batch []Signal) map[string]int {
	counts := make(map[string]int)
	for i := range batch {
		if batch[i].Completed() {
			counts[batch[i].Symbol]++
		}
	}
	return counts
}
