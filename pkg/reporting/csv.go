package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteTradesCSV writes the closed-trade ledger to a CSV file.
func (r *DefaultCSVReporter) WriteTradesCSV(result *portfolio.Result, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"Symbol",
		"Market",
		"Entry_Date",
		"Entry_Price",
		"Exit_Date",
		"Exit_Price",
		"PL_%",
		"Realized_PL",
		"Currency",
		"Holding_Days",
		"Exit_Reason",
		"Win_Loss",
	}); err != nil {
		return err
	}

	var totalPL float64
	wins := 0
	for _, t := range result.ClosedTrades {
		winLoss := "W"
		if t.PLPercent <= 0 {
			winLoss = "L"
		} else {
			wins++
		}
		totalPL += t.PLPercent

		row := []string{
			t.Symbol,
			string(t.Market),
			t.EntryDate.Format("2006-01-02"),
			fmt.Sprintf("%.4f", t.EntryPrice),
			t.ExitDate.Format("2006-01-02"),
			fmt.Sprintf("%.4f", t.ExitPrice),
			fmt.Sprintf("%.2f", t.PLPercent),
			fmt.Sprintf("%.2f", t.RealizedPL()),
			string(t.Currency),
			strconv.Itoa(t.HoldingDays),
			t.ExitReason,
			winLoss,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("SUMMARY: trades=%d; wins=%d; total_pl=%.2f%%",
		len(result.ClosedTrades), wins, totalPL)
	summaryRow := make([]string, 12)
	summaryRow[11] = summary
	return w.Write(summaryRow)
}

// WriteValuationsCSV writes the day-by-day valuation series to a CSV file.
func (r *DefaultCSVReporter) WriteValuationsCSV(result *portfolio.Result, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Portfolio_Value", "Active_Positions"}); err != nil {
		return err
	}
	for _, v := range result.DailyValuations {
		row := []string{
			v.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", v.Value),
			strconv.Itoa(v.ActivePositions),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
