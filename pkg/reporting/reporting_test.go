package reporting

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ketanswebsite/signalforge-sub005/internal/analytics"
	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

func sampleResult() *portfolio.Result {
	entry := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	exit := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return &portfolio.Result{
		ClosedTrades: []portfolio.ClosedTrade{
			{
				Position: portfolio.Position{
					Symbol:     "VOD.L",
					Market:     types.MarketUK,
					EntryDate:  entry,
					EntryPrice: 100,
					TradeSize:  4000,
					Currency:   portfolio.CurrencyGBP,
				},
				ExitDate:    exit,
				ExitPrice:   108,
				PLPercent:   8,
				ExitReason:  "Take profit",
				HoldingDays: 7,
			},
		},
		DailyValuations: []portfolio.DailyValuation{
			{Date: entry, Value: 4000, ActivePositions: 1},
			{Date: exit, Value: 4320, ActivePositions: 0},
		},
	}
}

func TestWriteTradesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "trades.csv")
	r := NewDefaultCSVReporter()
	require.NoError(t, r.WriteTradesCSV(sampleResult(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + trade + summary

	assert.Equal(t, "Symbol", rows[0][0])
	assert.Equal(t, "VOD.L", rows[1][0])
	assert.Equal(t, "8.00", rows[1][6])
	assert.Equal(t, "320.00", rows[1][7])
	assert.Equal(t, "W", rows[1][11])
	assert.Contains(t, rows[2][11], "trades=1")
}

func TestWriteValuationsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valuations.csv")
	r := NewDefaultCSVReporter()
	require.NoError(t, r.WriteValuationsCSV(sampleResult(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2025-03-10", rows[2][0])
	assert.Equal(t, "4320.00", rows[2][1])
}

func TestWriteWorkbook(t *testing.T) {
	result := sampleResult()
	converter, err := portfolio.NewConverter(portfolio.DefaultRates())
	require.NoError(t, err)
	summary, err := analytics.Compute(result.DailyValuations, result.ClosedTrades, converter, portfolio.CurrencyGBP)
	require.NoError(t, err)
	report := &Report{
		RunName:   "test",
		Portfolio: result,
		Summary:   &summary,
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	r := NewDefaultExcelReporter()
	require.NoError(t, r.WriteWorkbook(report, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.ElementsMatch(t, []string{"Trades", "Daily Valuations", "Summary"}, fx.GetSheetList())

	symbol, err := fx.GetCellValue("Trades", "A2")
	require.NoError(t, err)
	assert.Equal(t, "VOD.L", symbol)
}

func TestWriteReportJSON(t *testing.T) {
	result := sampleResult()
	report := &Report{
		RunName: "test",
		Batch: []signals.Signal{
			{Symbol: "VOD.L", Market: types.MarketUK},
		},
		FilterResult: &signals.FilterResult{
			Mode:          signals.Ranked,
			Opportunities: []signals.Signal{{Symbol: "VOD.L"}},
		},
		Portfolio: result,
	}

	path := filepath.Join(t.TempDir(), "report.json")
	r := NewDefaultJSONReporter()
	require.NoError(t, r.WriteReportJSON(report, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.Equal(t, "ranked", parsed["filter_mode"])
	assert.EqualValues(t, 1, parsed["signals_selected"])
	assert.EqualValues(t, 4320, parsed["portfolio"].(map[string]interface{})["final_value"])
}

func TestOutputDir(t *testing.T) {
	p := NewDefaultPathManager()
	dir := p.OutputDir("results", "UK Scan")
	assert.Contains(t, dir, filepath.Join("results", "uk_scan_"))
}
