package reporting

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ketanswebsite/signalforge-sub005/internal/analytics"
	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// DefaultConsoleReporter implements console output functionality
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// OutputOpportunities prints the conviction filter's picks.
func (r *DefaultConsoleReporter) OutputOpportunities(result *signals.FilterResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	if result.Mode == signals.Unranked {
		t.SetTitle("🎯 OPPORTUNITIES (unranked: no completed history)")
	} else {
		t.SetTitle("🎯 HIGH CONVICTION OPPORTUNITIES")
	}
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Symbol", "Market", "Entry Date", "Entry Price", "Win Rate"})
	for _, s := range result.Opportunities {
		winRate := "n/a"
		if result.Mode == signals.Ranked {
			winRate = fmt.Sprintf("%.1f%%", s.HistoricalWinRate*100)
		}
		t.AppendRow(table.Row{
			s.Symbol,
			s.Market,
			s.EntryDate.Format("2006-01-02"),
			fmt.Sprintf("%.2f", s.EntryPrice),
			winRate,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}

// OutputPortfolio prints the simulation's closing state.
func (r *DefaultConsoleReporter) OutputPortfolio(result *portfolio.Result, currency portfolio.Currency) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("💼 PORTFOLIO SIMULATION")
	t.SetStyle(table.StyleRounded)

	finalValue := 0.0
	if n := len(result.DailyValuations); n > 0 {
		finalValue = result.DailyValuations[n-1].Value
	}

	t.AppendRows([]table.Row{
		{"💰 Final Value", fmt.Sprintf("%.2f %s", finalValue, currency)},
		{"📂 Open Positions", len(result.OpenPositions)},
		{"🔄 Closed Trades", len(result.ClosedTrades)},
		{"⏭️ Skipped Signals", len(result.Skipped)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 30, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// OutputSummary prints the performance and risk statistics.
func (r *DefaultConsoleReporter) OutputSummary(summary *analytics.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("📊 PERFORMANCE SUMMARY")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📈 Total Return", fmt.Sprintf("%.2f%%", summary.TotalReturnPercent)},
		{"📈 Annualized Return", fmt.Sprintf("%.2f%%", summary.AnnualizedReturnPercent)},
		{"📉 Max Drawdown", fmt.Sprintf("%.2f%%", summary.MaxDrawdownPercent)},
		{"📊 Volatility", fmt.Sprintf("%.2f%%", summary.VolatilityPercent)},
		{"📊 Sharpe Ratio", fmt.Sprintf("%.2f", summary.SharpeRatio)},
		{"📊 Sortino Ratio", fmt.Sprintf("%.2f", summary.SortinoRatio)},
		{"📊 Calmar Ratio", fmt.Sprintf("%.2f", summary.CalmarRatio)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔄 Total Trades", summary.TotalTrades},
		{"✅ Winning Trades", fmt.Sprintf("%d (%.1f%%)", summary.WinningTrades, summary.WinRatePercent)},
		{"❌ Losing Trades", summary.LosingTrades},
		{"💹 Profit Factor", fmt.Sprintf("%.2f", summary.ProfitFactor)},
		{"🎯 Expectancy", fmt.Sprintf("%.2f%%", summary.ExpectancyPercent)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, WidthMax: 25, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()

	r.outputBreakdowns(summary)
}

func (r *DefaultConsoleReporter) outputBreakdowns(summary *analytics.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🌍 BREAKDOWN BY MARKET")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Market", "Trades", "Win Rate", "Avg P/L"})

	markets := make([]string, 0, len(summary.ByMarket))
	for m := range summary.ByMarket {
		markets = append(markets, string(m))
	}
	sort.Strings(markets)
	for _, m := range markets {
		b := summary.ByMarket[types.Market(m)]
		t.AppendRow(table.Row{
			m,
			b.Trades,
			fmt.Sprintf("%.1f%%", b.WinRatePercent),
			fmt.Sprintf("%.2f%%", b.AvgPLPercent),
		})
	}
	t.Render()
	fmt.Println()

	t = table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🚪 BREAKDOWN BY EXIT REASON")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Exit Reason", "Trades", "Win Rate", "Avg P/L"})

	reasons := make([]string, 0, len(summary.ByExitReason))
	for reason := range summary.ByExitReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		b := summary.ByExitReason[reason]
		t.AppendRow(table.Row{
			reason,
			b.Trades,
			fmt.Sprintf("%.1f%%", b.WinRatePercent),
			fmt.Sprintf("%.2f%%", b.AvgPLPercent),
		})
	}
	t.Render()
	fmt.Println()
}

// OutputRiskReport prints the Monte Carlo risk estimates.
func (r *DefaultConsoleReporter) OutputRiskReport(report *analytics.RiskReport) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("🎲 MONTE CARLO RISK REPORT")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"💰 Initial Value", fmt.Sprintf("%.2f", report.InitialValue)},
		{"💰 Expected Value", fmt.Sprintf("%.2f", report.ExpectedValue)},
		{"⚠️ VaR 95%", fmt.Sprintf("%.2f", report.VaR95)},
		{"⚠️ VaR 99%", fmt.Sprintf("%.2f", report.VaR99)},
		{"⚠️ Expected Shortfall", fmt.Sprintf("%.2f", report.ExpectedShortfall)},
		{"📉 Expected Max DD", fmt.Sprintf("%.2f%%", report.ExpectedMaxDrawdown)},
		{"📉 Worst Case DD", fmt.Sprintf("%.2f%%", report.WorstCaseDrawdown)},
		{"🎯 Probability of Loss", fmt.Sprintf("%.1f%%", report.ProbabilityOfLoss*100)},
		{"📊 Sharpe-like Ratio", fmt.Sprintf("%.2f", report.SharpeLikeRatio)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 22, WidthMax: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 15, WidthMax: 20, Align: text.AlignRight},
	})

	t.Render()
	fmt.Println()
}
