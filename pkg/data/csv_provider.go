package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// CSVProvider loads daily bars from CSV files. Malformed rows are logged
// and skipped so one bad line does not sink the symbol; a file that
// yields no usable bars at all is an error.
type CSVProvider struct {
	format ColumnMapping
}

// NewCSVProvider creates a provider with the default column layout.
func NewCSVProvider() *CSVProvider {
	return &CSVProvider{format: DefaultCSVFormat}
}

// NewCSVProviderWithFormat creates a provider with a custom layout.
func NewCSVProviderWithFormat(format ColumnMapping) *CSVProvider {
	return &CSVProvider{format: format}
}

// GetName returns the name of the provider.
func (p *CSVProvider) GetName() string {
	return "CSV Provider"
}

// LoadSeries reads, parses and validates the symbol's file.
func (p *CSVProvider) LoadSeries(info types.SymbolInfo, source string) (*types.PriceSeries, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("opening %s for %s: %w", source, info.Symbol, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", source, err)
	}

	var bars []types.OHLCV
	lineNum := 1
	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading %s at line %d: %w", source, lineNum, err)
		}
		lineNum++

		if len(record) < p.format.MinColumns {
			log.Printf("⚠️ %s line %d: %d columns, want %d, skipping", source, lineNum, len(record), p.format.MinColumns)
			continue
		}

		bar, err := p.parseRow(record)
		if err != nil {
			log.Printf("⚠️ %s line %d: %v, skipping", source, lineNum, err)
			continue
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: no usable bars for %s", source, info.Symbol)
	}

	series := types.FromBars(info.Symbol, info.Market, bars)
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

func (p *CSVProvider) parseRow(record []string) (types.OHLCV, error) {
	date, err := time.Parse(p.format.DateFormat, record[p.format.DateCol])
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid date %q", record[p.format.DateCol])
	}

	fields := []struct {
		name string
		col  int
		dst  *float64
	}{
		{"open", p.format.OpenCol, nil},
		{"high", p.format.HighCol, nil},
		{"low", p.format.LowCol, nil},
		{"close", p.format.CloseCol, nil},
		{"volume", p.format.VolumeCol, nil},
	}
	bar := types.OHLCV{Timestamp: date}
	fields[0].dst = &bar.Open
	fields[1].dst = &bar.High
	fields[2].dst = &bar.Low
	fields[3].dst = &bar.Close
	fields[4].dst = &bar.Volume

	for _, f := range fields {
		v, err := strconv.ParseFloat(record[f.col], 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q", f.name, record[f.col])
		}
		*f.dst = v
	}
	return bar, nil
}
