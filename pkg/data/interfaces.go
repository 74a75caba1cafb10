package data

import (
	"time"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// Provider loads the full daily history for one symbol from some source.
// Where the bars come from (file, HTTP fetch, database) is the
// provider's business; the pipeline only requires the parsed series.
type Provider interface {
	// LoadSeries loads and validates the price series for a symbol.
	LoadSeries(info types.SymbolInfo, source string) (*types.PriceSeries, error)

	// GetName returns the name of the provider.
	GetName() string
}

// Cache stores loaded series keyed by source.
type Cache interface {
	Get(key string) (*types.PriceSeries, bool)
	Set(key string, series *types.PriceSeries)
	Clear()
	Size() int
}

// Filter narrows a series to a window of interest.
type Filter interface {
	// ByDateRange keeps bars inside [start, end], inclusive.
	ByDateRange(series *types.PriceSeries, start, end time.Time) *types.PriceSeries

	// LastYears keeps the trailing n years of bars.
	LastYears(series *types.PriceSeries, years int) *types.PriceSeries
}

// ColumnMapping defines the column positions of a daily-bar CSV file.
type ColumnMapping struct {
	DateCol    int
	OpenCol    int
	HighCol    int
	LowCol     int
	CloseCol   int
	VolumeCol  int
	MinColumns int
	DateFormat string
}

// DefaultCSVFormat matches the standard export layout:
// date,open,high,low,close,volume with ISO dates.
var DefaultCSVFormat = ColumnMapping{
	DateCol:    0,
	OpenCol:    1,
	HighCol:    2,
	LowCol:     3,
	CloseCol:   4,
	VolumeCol:  5,
	MinColumns: 6,
	DateFormat: "2006-01-02",
}
