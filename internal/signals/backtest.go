package signals

import (
	"fmt"
	"math"
	"time"

	"github.com/ketanswebsite/signalforge-sub005/internal/indicators"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// Params configures the entry/exit rules for a symbol backtest.
type Params struct {
	PeriodR           int
	PeriodS           int
	PeriodU           int
	EntryThreshold    float64
	TakeProfitPercent float64
	StopLossPercent   float64
	MaxHoldingDays    int
}

// DefaultParams are the standard scanner settings.
func DefaultParams() Params {
	return Params{
		PeriodR:           14,
		PeriodS:           10,
		PeriodU:           5,
		EntryThreshold:    0,
		TakeProfitPercent: 8,
		StopLossPercent:   5,
		MaxHoldingDays:    30,
	}
}

// Validate fails fast on malformed rule configuration.
func (p Params) Validate() error {
	if p.PeriodR <= 0 || p.PeriodS <= 0 || p.PeriodU <= 0 {
		return fmt.Errorf("DTI periods must be positive (r=%d s=%d u=%d)", p.PeriodR, p.PeriodS, p.PeriodU)
	}
	if p.TakeProfitPercent <= 0 {
		return fmt.Errorf("take profit percent must be positive, got %v", p.TakeProfitPercent)
	}
	if p.StopLossPercent <= 0 {
		return fmt.Errorf("stop loss percent must be positive, got %v", p.StopLossPercent)
	}
	if p.MaxHoldingDays <= 0 {
		return fmt.Errorf("max holding days must be positive, got %d", p.MaxHoldingDays)
	}
	return nil
}

// Backtest replays the full history of one symbol against the DTI entry
// rule and the exit conditions, producing the symbol's signal ledger in
// chronological order. The last signal may still be open.
//
// Entry: daily DTI crosses up through the threshold while the 7-day DTI
// confirms above it. Exits are checked bar by bar: stop-loss on the low,
// take-profit on the high, then the time stop on the close.
func Backtest(series *types.PriceSeries, p Params) ([]Signal, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	daily, err := indicators.DTI(series.High, series.Low, p.PeriodR, p.PeriodS, p.PeriodU)
	if err != nil {
		return nil, fmt.Errorf("daily DTI for %s: %w", series.Symbol, err)
	}
	weekly, err := indicators.SevenDayDTI(series.Dates, series.High, series.Low, p.PeriodR, p.PeriodS, p.PeriodU)
	if err != nil {
		return nil, fmt.Errorf("7-day DTI for %s: %w", series.Symbol, err)
	}

	var batch []Signal
	var open *Signal

	for i := 1; i < series.Len(); i++ {
		if open != nil {
			if closed := evaluateExit(open, series, i, p); closed {
				batch = append(batch, *open)
				open = nil
			}
			continue
		}

		crossedUp := daily[i-1] < p.EntryThreshold && daily[i] >= p.EntryThreshold
		confirmed := !math.IsNaN(weekly[i]) && weekly[i] > p.EntryThreshold
		if crossedUp && confirmed {
			open = &Signal{
				Symbol:     series.Symbol,
				Market:     series.Market,
				EntryDate:  series.Dates[i],
				EntryPrice: series.Close[i],
			}
		}
	}

	if open != nil {
		batch = append(batch, *open)
	}

	attachWinRates(batch)
	return batch, nil
}

// evaluateExit closes the open signal in place when an exit condition
// fires on bar i. Stop-loss wins over take-profit when both trigger in
// the same bar.
func evaluateExit(open *Signal, series *types.PriceSeries, i int, p Params) bool {
	stopPrice := open.EntryPrice * (1 - p.StopLossPercent/100)
	targetPrice := open.EntryPrice * (1 + p.TakeProfitPercent/100)

	switch {
	case series.Low[i] <= stopPrice:
		closeSignal(open, series.Dates[i], stopPrice, ReasonStopLoss)
	case series.High[i] >= targetPrice:
		closeSignal(open, series.Dates[i], targetPrice, ReasonTakeProfit)
	case calendarDays(open.EntryDate, series.Dates[i]) >= p.MaxHoldingDays:
		closeSignal(open, series.Dates[i], series.Close[i], fmt.Sprintf("%s (%d days)", ReasonMaxDays, p.MaxHoldingDays))
	default:
		return false
	}
	return true
}

func closeSignal(s *Signal, date time.Time, price float64, reason string) {
	exit := date
	s.ExitDate = &exit
	s.ExitPrice = price
	s.PLPercent = (price - s.EntryPrice) / s.EntryPrice * 100
	s.HoldingDays = calendarDays(s.EntryDate, date)
	s.ExitReason = reason
}

// attachWinRates stamps each signal with the win rate of all *other*
// completed signals for its symbol, so a trade never counts itself.
func attachWinRates(batch []Signal) {
	wins := 0
	total := 0
	for i := range batch {
		if batch[i].Completed() {
			total++
			if batch[i].Win() {
				wins++
			}
		}
	}
	for i := range batch {
		s := &batch[i]
		w, n := wins, total
		if s.Completed() {
			n--
			if s.Win() {
				w--
			}
		}
		if n > 0 {
			s.HistoricalWinRate = float64(w) / float64(n)
		}
	}
}

func calendarDays(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
