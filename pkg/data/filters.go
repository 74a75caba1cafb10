package data

import (
	"time"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// DefaultFilter implements Filter by slicing the parallel arrays, so the
// window shares backing storage with the source series.
type DefaultFilter struct{}

// NewDefaultFilter creates a default filter.
func NewDefaultFilter() *DefaultFilter {
	return &DefaultFilter{}
}

// ByDateRange keeps bars inside [start, end], inclusive. Order is
// preserved; the result may be empty.
func (f *DefaultFilter) ByDateRange(series *types.PriceSeries, start, end time.Time) *types.PriceSeries {
	lo := 0
	for lo < series.Len() && series.Dates[lo].Before(start) {
		lo++
	}
	hi := series.Len()
	for hi > lo && series.Dates[hi-1].After(end) {
		hi--
	}
	return slice(series, lo, hi)
}

// LastYears keeps the trailing n years of bars, anchored at the series'
// final date. Non-positive n returns the series unchanged.
func (f *DefaultFilter) LastYears(series *types.PriceSeries, years int) *types.PriceSeries {
	if years <= 0 || series.Len() == 0 {
		return series
	}
	cutoff := series.Dates[series.Len()-1].AddDate(-years, 0, 0)
	lo := 0
	for lo < series.Len() && series.Dates[lo].Before(cutoff) {
		lo++
	}
	return slice(series, lo, series.Len())
}

func slice(s *types.PriceSeries, lo, hi int) *types.PriceSeries {
	return &types.PriceSeries{
		Symbol: s.Symbol,
		Market: s.Market,
		Dates:  s.Dates[lo:hi],
		Open:   s.Open[lo:hi],
		High:   s.High[lo:hi],
		Low:    s.Low[lo:hi],
		Close:  s.Close[lo:hi],
		Volume: s.Volume[lo:hi],
	}
}
