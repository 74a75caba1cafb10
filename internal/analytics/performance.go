package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

const (
	// TradingDaysPerYear annualizes daily statistics.
	TradingDaysPerYear = 252

	// AnnualRiskFreeRate feeds the Sharpe/Sortino numerators.
	AnnualRiskFreeRate = 0.02

	// RatioSentinel stands in for an undefined ratio (no downside
	// deviation, or zero drawdown). A finite constant keeps reports and
	// serialization sane where infinity would not.
	RatioSentinel = 9999.0
)

// Summary aggregates every performance and risk statistic derived from a
// simulation's valuation series and closed-trade ledger. All inputs are
// read-only; computing a Summary mutates nothing.
type Summary struct {
	TotalReturnPercent      float64
	AnnualizedReturnPercent float64
	VolatilityPercent       float64
	SharpeRatio             float64
	SortinoRatio            float64
	CalmarRatio             float64
	MaxDrawdownPercent      float64

	TotalTrades       int
	WinningTrades     int
	LosingTrades      int
	WinRatePercent    float64
	AvgWinPercent     float64
	AvgLossPercent    float64
	ProfitFactor      float64
	ExpectancyPercent float64

	ByMarket     map[types.Market]TradeBreakdown
	ByExitReason map[string]TradeBreakdown
	Monthly      []MonthlyReturn
}

// TradeBreakdown is the per-dimension slice of the ledger.
type TradeBreakdown struct {
	Trades         int
	Wins           int
	WinRatePercent float64
	TotalPLPercent float64
	AvgPLPercent   float64
}

// MonthlyReturn is the compounded portfolio return within one calendar
// month, from the month's first valuation to its last.
type MonthlyReturn struct {
	Year          int
	Month         int
	ReturnPercent float64
}

// Exit-reason buckets, matched by substring against the stored reason.
const (
	BucketTakeProfit = "Take Profit"
	BucketStopLoss   = "Stop Loss"
	BucketMaxDays    = "Max Days"
	BucketOther      = "Other"
)

// Compute derives the full summary. Money-denominated statistics are
// expressed in the display currency, so a ledger mixing markets needs a
// converter covering every home currency; a missing pair is a hard
// error. A series shorter than two valuations yields zero return-based
// statistics; an empty ledger yields zero trade statistics.
func Compute(valuations []portfolio.DailyValuation, ledger []portfolio.ClosedTrade, converter *portfolio.Converter, display portfolio.Currency) (Summary, error) {
	s := Summary{
		ByMarket:     make(map[types.Market]TradeBreakdown),
		ByExitReason: make(map[string]TradeBreakdown),
	}
	computeReturnStats(&s, valuations)
	if err := computeTradeStats(&s, ledger, converter, display); err != nil {
		return Summary{}, err
	}
	s.Monthly = monthlyReturns(valuations)
	return s, nil
}

func computeReturnStats(s *Summary, valuations []portfolio.DailyValuation) {
	s.MaxDrawdownPercent = MaxDrawdown(values(valuations))
	if len(valuations) < 2 {
		return
	}

	first := valuations[0].Value
	last := valuations[len(valuations)-1].Value
	if first != 0 {
		s.TotalReturnPercent = (last - first) / first * 100
	}

	returns := DailyReturns(valuations)
	if len(returns) == 0 {
		return
	}

	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	s.VolatilityPercent = sd * math.Sqrt(TradingDaysPerYear) * 100

	dailyRiskFree := AnnualRiskFreeRate / TradingDaysPerYear
	if sd > 0 {
		s.SharpeRatio = (mean - dailyRiskFree) / sd * math.Sqrt(TradingDaysPerYear)
	}

	downside := downsideDeviation(returns)
	if downside > 0 {
		s.SortinoRatio = (mean - dailyRiskFree) / downside * math.Sqrt(TradingDaysPerYear)
	} else {
		s.SortinoRatio = RatioSentinel
	}

	if first > 0 {
		years := float64(len(valuations)) / TradingDaysPerYear
		if years > 0 {
			s.AnnualizedReturnPercent = (math.Pow(last/first, 1/years) - 1) * 100
		}
	}
	if s.MaxDrawdownPercent > 0 {
		s.CalmarRatio = s.AnnualizedReturnPercent / s.MaxDrawdownPercent
	} else {
		s.CalmarRatio = RatioSentinel
	}
}

func computeTradeStats(s *Summary, ledger []portfolio.ClosedTrade, converter *portfolio.Converter, display portfolio.Currency) error {
	if len(ledger) == 0 {
		return nil
	}

	grossProfit := 0.0
	grossLoss := 0.0
	sumWins := 0.0
	sumLosses := 0.0
	sumPL := 0.0

	for i := range ledger {
		t := &ledger[i]
		// Gross profit and loss accumulate in the display currency so a
		// 50,000 INR trade does not swamp a 4,000 GBP one.
		realized, err := converter.Convert(t.RealizedPL(), t.Currency, display)
		if err != nil {
			return fmt.Errorf("converting realized P/L for %s: %w", t.Symbol, err)
		}
		sumPL += t.PLPercent
		if t.PLPercent > 0 {
			s.WinningTrades++
			sumWins += t.PLPercent
			grossProfit += realized
		} else {
			s.LosingTrades++
			sumLosses += t.PLPercent
			grossLoss += math.Abs(realized)
		}
		addToBreakdown(s.ByMarket, t.Market, t.PLPercent)
		addToBreakdown(s.ByExitReason, classifyExitReason(t.ExitReason), t.PLPercent)
	}

	s.TotalTrades = len(ledger)
	s.WinRatePercent = float64(s.WinningTrades) / float64(s.TotalTrades) * 100
	if s.WinningTrades > 0 {
		s.AvgWinPercent = sumWins / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLossPercent = sumLosses / float64(s.LosingTrades)
	}
	if grossLoss > 0 {
		s.ProfitFactor = grossProfit / grossLoss
	} else if grossProfit > 0 {
		s.ProfitFactor = RatioSentinel
	}
	s.ExpectancyPercent = sumPL / float64(s.TotalTrades)

	finalizeBreakdowns(s.ByMarket)
	finalizeBreakdowns(s.ByExitReason)
	return nil
}

// DailyReturns computes period-over-period fractional returns, skipping
// pairs whose base value is zero.
func DailyReturns(valuations []portfolio.DailyValuation) []float64 {
	var returns []float64
	for i := 1; i < len(valuations); i++ {
		prev := valuations[i-1].Value
		if prev != 0 {
			returns = append(returns, (valuations[i].Value-prev)/prev)
		}
	}
	return returns
}

// MaxDrawdown returns the deepest peak-to-trough decline in percent,
// tracked against a monotonically-updated running peak. A non-decreasing
// series has zero drawdown.
func MaxDrawdown(series []float64) float64 {
	maxDD := 0.0
	peak := math.Inf(-1)
	for _, v := range series {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func downsideDeviation(returns []float64) float64 {
	sumSq := 0.0
	n := 0
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}

func monthlyReturns(valuations []portfolio.DailyValuation) []MonthlyReturn {
	type bounds struct {
		first float64
		last  float64
	}
	months := make(map[[2]int]*bounds)
	for _, v := range valuations {
		key := [2]int{v.Date.Year(), int(v.Date.Month())}
		if b, ok := months[key]; ok {
			b.last = v.Value
		} else {
			months[key] = &bounds{first: v.Value, last: v.Value}
		}
	}

	out := make([]MonthlyReturn, 0, len(months))
	for key, b := range months {
		r := MonthlyReturn{Year: key[0], Month: key[1]}
		if b.first != 0 {
			r.ReturnPercent = (b.last - b.first) / b.first * 100
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

func classifyExitReason(reason string) string {
	switch {
	case strings.Contains(reason, signals.ReasonTakeProfit):
		return BucketTakeProfit
	case strings.Contains(reason, signals.ReasonStopLoss):
		return BucketStopLoss
	case strings.Contains(reason, signals.ReasonMaxDays):
		return BucketMaxDays
	default:
		return BucketOther
	}
}

func addToBreakdown[K comparable](m map[K]TradeBreakdown, key K, plPercent float64) {
	b := m[key]
	b.Trades++
	if plPercent > 0 {
		b.Wins++
	}
	b.TotalPLPercent += plPercent
	m[key] = b
}

func finalizeBreakdowns[K comparable](m map[K]TradeBreakdown) {
	for key, b := range m {
		b.WinRatePercent = float64(b.Wins) / float64(b.Trades) * 100
		b.AvgPLPercent = b.TotalPLPercent / float64(b.Trades)
		m[key] = b
	}
}

func values(valuations []portfolio.DailyValuation) []float64 {
	out := make([]float64, len(valuations))
	for i, v := range valuations {
		out[i] = v.Value
	}
	return out
}
