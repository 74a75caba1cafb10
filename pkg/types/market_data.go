package types

import (
	"fmt"
	"time"
)

// Market identifies the exchange region a symbol trades in.
type Market string

const (
	MarketIndia Market = "India"
	MarketUK    Market = "UK"
	MarketUS    Market = "US"
)

// SymbolInfo describes one tradable symbol from the catalog.
type SymbolInfo struct {
	Symbol string
	Name   string
	Market Market
}

// PriceSeries holds the full daily history for one symbol as parallel,
// index-aligned arrays. Dates ascend; weekends are normally absent.
type PriceSeries struct {
	Symbol string
	Market Market
	Dates  []time.Time
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	return len(s.Dates)
}

// Validate checks array alignment and date ordering. Any violation is a
// caller bug, so the series must not be used after a validation error.
func (s *PriceSeries) Validate() error {
	n := len(s.Dates)
	if n == 0 {
		return fmt.Errorf("price series %s: empty", s.Symbol)
	}
	if len(s.Open) != n || len(s.High) != n || len(s.Low) != n || len(s.Close) != n || len(s.Volume) != n {
		return fmt.Errorf("price series %s: misaligned arrays (dates=%d open=%d high=%d low=%d close=%d volume=%d)",
			s.Symbol, n, len(s.Open), len(s.High), len(s.Low), len(s.Close), len(s.Volume))
	}
	for i := 1; i < n; i++ {
		if !s.Dates[i].After(s.Dates[i-1]) {
			return fmt.Errorf("price series %s: dates not strictly ascending at index %d (%s -> %s)",
				s.Symbol, i, s.Dates[i-1].Format("2006-01-02"), s.Dates[i].Format("2006-01-02"))
		}
	}
	return nil
}

// OHLCV is a single bar view, used where a record shape is more
// convenient than the parallel arrays.
type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Bar returns the i-th bar of the series as an OHLCV record.
func (s *PriceSeries) Bar(i int) OHLCV {
	return OHLCV{
		Open:      s.Open[i],
		High:      s.High[i],
		Low:       s.Low[i],
		Close:     s.Close[i],
		Volume:    s.Volume[i],
		Timestamp: s.Dates[i],
	}
}

// FromBars builds a PriceSeries from bar records, preserving order.
func FromBars(symbol string, market Market, bars []OHLCV) *PriceSeries {
	s := &PriceSeries{
		Symbol: symbol,
		Market: market,
		Dates:  make([]time.Time, len(bars)),
		Open:   make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Close:  make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		s.Dates[i] = b.Timestamp
		s.Open[i] = b.Open
		s.High[i] = b.High
		s.Low[i] = b.Low
		s.Close[i] = b.Close
		s.Volume[i] = b.Volume
	}
	return s
}
