package signals

import (
	"sort"
	"time"
)

// FilterMode tells the caller whether the opportunities were ranked by
// historical win rate or passed through raw because the batch carried no
// completed trade history at all.
type FilterMode int

const (
	Ranked FilterMode = iota
	Unranked
)

func (m FilterMode) String() string {
	if m == Unranked {
		return "unranked"
	}
	return "ranked"
}

// FilterResult is the conviction filter's output. Callers must branch on
// Mode: Unranked opportunities carry no win-rate evidence.
type FilterResult struct {
	Mode          FilterMode
	Opportunities []Signal
}

// Filter gates open opportunities on historical conviction and recency.
type Filter struct {
	MinTrades   int     // completed trades required before win rate counts
	MinWinRate  float64 // exclusive lower bound, e.g. 0.75
	RecencyDays int     // trading-day lookback window
	MaxScanDays int     // calendar-day safety cap for the lookback walk
	TopN        int     // result cap for the unranked fallback
	Now         func() time.Time
}

// NewFilter returns a conviction filter with the standard gates.
func NewFilter() *Filter {
	return &Filter{
		MinTrades:   5,
		MinWinRate:  0.75,
		RecencyDays: 5,
		MaxScanDays: 10,
		TopN:        10,
		Now:         time.Now,
	}
}

// Apply evaluates a whole batch of signals (completed history plus open
// opportunities, possibly spanning many symbols) and returns the
// actionable set. With history present the result is ranked by win rate;
// with no completed trades anywhere the recency-gated opportunities pass
// through unranked, capped at TopN.
func (f *Filter) Apply(batch []Signal) FilterResult {
	today := f.Now()
	rates := WinRates(batch)
	counts := CompletedCounts(batch)

	var recent []Signal
	for i := range batch {
		s := batch[i]
		if s.Completed() {
			continue
		}
		if f.WithinTradingWindow(s.EntryDate, today) {
			recent = append(recent, s)
		}
	}

	if len(rates) == 0 {
		// No completed history in the batch: win-rate filtering is
		// impossible, so recency is the only signal. Newest entries
		// first, then cap.
		sort.SliceStable(recent, func(i, j int) bool {
			return recent[i].EntryDate.After(recent[j].EntryDate)
		})
		if len(recent) > f.TopN {
			recent = recent[:f.TopN]
		}
		return FilterResult{Mode: Unranked, Opportunities: recent}
	}

	var qualified []Signal
	for _, s := range recent {
		if counts[s.Symbol] >= f.MinTrades && rates[s.Symbol] > f.MinWinRate {
			qualified = append(qualified, s)
		}
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		return rates[qualified[i].Symbol] > rates[qualified[j].Symbol]
	})
	return FilterResult{Mode: Ranked, Opportunities: qualified}
}

// WithinTradingWindow reports whether date falls inside the last
// RecencyDays trading days counted backward from today. Saturdays and
// Sundays are skipped while walking, and the walk never scans more than
// MaxScanDays calendar days.
func (f *Filter) WithinTradingWindow(date, today time.Time) bool {
	tradingSeen := 0
	d := today
	for scanned := 0; scanned < f.MaxScanDays; scanned++ {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			tradingSeen++
			if sameDay(d, date) {
				return true
			}
			if tradingSeen >= f.RecencyDays {
				return false
			}
		}
		d = d.AddDate(0, 0, -1)
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
