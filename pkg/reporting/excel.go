package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelStyles holds the workbook cell styles
type ExcelStyles struct {
	HeaderStyle       int
	BaseStyle         int
	NumberStyle       int
	PercentStyle      int
	RedPercentStyle   int
	GreenPercentStyle int
	SummaryStyle      int
}

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteWorkbook writes the full run report as a multi-sheet workbook.
func (r *DefaultExcelReporter) WriteWorkbook(report *Report, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const valuationsSheet = "Daily Valuations"
	const summarySheet = "Summary"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	fx.NewSheet(valuationsSheet)
	fx.NewSheet(summarySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, report, styles); err != nil {
		return err
	}
	if err := r.writeValuationsSheet(fx, valuationsSheet, report, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, report, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left"},
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    2, // 0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    2,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	})
	if err != nil {
		return styles, err
	}

	styles.RedPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2,
		Font:   &excelize.Font{Color: "CC0000"},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.GreenPercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 2,
		Font:   &excelize.Font{Color: "006600"},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return styles, err
	}

	styles.SummaryStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"E8E8E8"},
			Pattern: 1,
		},
	})
	return styles, err
}

func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, report *Report, styles ExcelStyles) error {
	headers := []interface{}{
		"Symbol", "Market", "Entry Date", "Entry Price",
		"Exit Date", "Exit Price", "P/L %", "Realized P/L",
		"Currency", "Holding Days", "Exit Reason",
	}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "K1", styles.HeaderStyle); err != nil {
		return err
	}

	if report.Portfolio == nil {
		return nil
	}
	for i, t := range report.Portfolio.ClosedTrades {
		row := i + 2
		values := []interface{}{
			t.Symbol,
			string(t.Market),
			t.EntryDate.Format("2006-01-02"),
			t.EntryPrice,
			t.ExitDate.Format("2006-01-02"),
			t.ExitPrice,
			t.PLPercent,
			t.RealizedPL(),
			string(t.Currency),
			t.HoldingDays,
			t.ExitReason,
		}
		cell := fmt.Sprintf("A%d", row)
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		plStyle := styles.GreenPercentStyle
		if t.PLPercent < 0 {
			plStyle = styles.RedPercentStyle
		}
		plCell := fmt.Sprintf("G%d", row)
		if err := fx.SetCellStyle(sheet, plCell, plCell, plStyle); err != nil {
			return err
		}
	}

	fx.SetColWidth(sheet, "A", "A", 14)
	fx.SetColWidth(sheet, "K", "K", 28)
	return nil
}

func (r *DefaultExcelReporter) writeValuationsSheet(fx *excelize.File, sheet string, report *Report, styles ExcelStyles) error {
	headers := []interface{}{"Date", "Portfolio Value", "Active Positions"}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "C1", styles.HeaderStyle); err != nil {
		return err
	}

	if report.Portfolio == nil {
		return nil
	}
	for i, v := range report.Portfolio.DailyValuations {
		values := []interface{}{
			v.Date.Format("2006-01-02"),
			v.Value,
			v.ActivePositions,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	fx.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, report *Report, styles ExcelStyles) error {
	if report.Summary == nil {
		return nil
	}
	s := report.Summary

	rows := [][]interface{}{
		{"PERFORMANCE", ""},
		{"Total Return %", s.TotalReturnPercent},
		{"Annualized Return %", s.AnnualizedReturnPercent},
		{"Volatility %", s.VolatilityPercent},
		{"Max Drawdown %", s.MaxDrawdownPercent},
		{"Sharpe Ratio", s.SharpeRatio},
		{"Sortino Ratio", s.SortinoRatio},
		{"Calmar Ratio", s.CalmarRatio},
		{"", ""},
		{"TRADES", ""},
		{"Total Trades", s.TotalTrades},
		{"Winning Trades", s.WinningTrades},
		{"Losing Trades", s.LosingTrades},
		{"Win Rate %", s.WinRatePercent},
		{"Avg Win %", s.AvgWinPercent},
		{"Avg Loss %", s.AvgLossPercent},
		{"Profit Factor", s.ProfitFactor},
		{"Expectancy %", s.ExpectancyPercent},
	}

	if report.Risk != nil {
		rows = append(rows,
			[]interface{}{"", ""},
			[]interface{}{"FORWARD RISK", ""},
			[]interface{}{"Expected Value", report.Risk.ExpectedValue},
			[]interface{}{"VaR 95%", report.Risk.VaR95},
			[]interface{}{"VaR 99%", report.Risk.VaR99},
			[]interface{}{"Expected Shortfall", report.Risk.ExpectedShortfall},
			[]interface{}{"Probability of Loss", report.Risk.ProbabilityOfLoss},
		)
	}

	rows = append(rows, []interface{}{"", ""}, []interface{}{"MONTHLY RETURNS", ""})
	for _, m := range s.Monthly {
		rows = append(rows, []interface{}{
			fmt.Sprintf("%04d-%02d", m.Year, m.Month),
			m.ReturnPercent,
		})
	}

	for i, values := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		v := values
		if err := fx.SetSheetRow(sheet, cell, &v); err != nil {
			return err
		}
		if len(values) == 2 && values[1] == "" && values[0] != "" {
			if err := fx.SetCellStyle(sheet, cell, cell, styles.SummaryStyle); err != nil {
				return err
			}
		}
	}

	fx.SetColWidth(sheet, "A", "A", 22)
	fx.SetColWidth(sheet, "B", "B", 16)
	return nil
}
