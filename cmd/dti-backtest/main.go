package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gonum.org/v1/gonum/stat"

	"github.com/ketanswebsite/signalforge-sub005/internal/analytics"
	"github.com/ketanswebsite/signalforge-sub005/internal/logger"
	"github.com/ketanswebsite/signalforge-sub005/internal/monitoring"
	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/scanner"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/config"
	"github.com/ketanswebsite/signalforge-sub005/pkg/data"
	"github.com/ketanswebsite/signalforge-sub005/pkg/reporting"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

const (
	AppName    = "DTI Backtest"
	AppVersion = "1.0.0"

	DefaultDataRoot = "data"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if err := ValidateFlags(flags); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}
	if *flags.ShowHelp {
		printUsageHelp()
		return
	}

	printHeader()
	loadEnvironment(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	if *flags.OutputDir != "" {
		cfg.Output.Dir = *flags.OutputDir
	}
	if *flags.MetricsPort > 0 {
		cfg.Output.MetricsPort = *flags.MetricsPort
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if *flags.Today != "" {
		today, _ = time.Parse("2006-01-02", *flags.Today)
	}

	fileLog, err := logger.NewLogger(cfg.Output.LogDir, "scan")
	if err != nil {
		log.Fatalf("❌ Logger error: %v", err)
	}
	defer fileLog.Close()

	health := monitoring.NewHealthChecker()
	if cfg.Output.MetricsPort > 0 {
		startMonitoringServer(cfg.Output.MetricsPort, health)
	}

	if err := run(cfg, flags, today, fileLog, health); err != nil {
		fileLog.Error("run failed: %v", err)
		log.Fatalf("❌ %v", err)
	}
}

func run(cfg *config.Config, flags *Flags, today time.Time, fileLog *logger.Logger, health *monitoring.HealthChecker) error {
	started := time.Now()

	sources, err := buildSources(*flags.DataRoot, flags.SelectedMarkets(), flags.SymbolFilter())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no data files found under %s for markets %s", *flags.DataRoot, *flags.Markets)
	}
	log.Printf("📂 Found %d symbols under %s", len(sources), *flags.DataRoot)
	fileLog.Info("scanning %d symbols", len(sources))

	provider := data.NewCachedProvider(data.NewCSVProvider())
	sc := scanner.New(provider, toParams(cfg), *flags.Workers)

	batch, err := sc.Scan(context.Background(), sources)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	health.RecordScan(len(sources))
	for _, skip := range batch.Skipped {
		fileLog.Warn("skipped %s (%s): %v", skip.Symbol, skip.Market, skip.Err)
		health.RecordError(fmt.Sprintf("%s: %v", skip.Symbol, skip.Err))
	}
	log.Printf("📊 Scan produced %d signals (%d symbols skipped)", len(batch.Signals), len(batch.Skipped))
	for _, s := range batch.Signals {
		if !s.Completed() {
			fileLog.Signal("open opportunity %s (%s) entered %s @ %.2f",
				s.Symbol, s.Market, s.EntryDate.Format("2006-01-02"), s.EntryPrice)
		}
	}

	filter := toFilter(cfg, today)
	filterResult := filter.Apply(batch.Signals)
	log.Printf("🎯 Conviction filter selected %d opportunities (%s)",
		len(filterResult.Opportunities), filterResult.Mode)

	portfolioCfg, err := toPortfolioConfig(cfg)
	if err != nil {
		return err
	}
	converter, err := portfolio.NewConverter(cfg.Portfolio.FXRates)
	if err != nil {
		return err
	}
	sim, err := portfolio.NewSimulator(portfolioCfg, converter)
	if err != nil {
		return err
	}

	result, err := sim.Run(batch.Signals, today)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	monitoring.ObserveSimulationDuration(time.Since(started))
	recordPortfolioMetrics(result)
	for _, t := range result.ClosedTrades {
		fileLog.Trade("%s (%s) %s -> %s: %.2f%% [%s]",
			t.Symbol, t.Market, t.EntryDate.Format("2006-01-02"),
			t.ExitDate.Format("2006-01-02"), t.PLPercent, t.ExitReason)
	}

	summary, err := analytics.Compute(result.DailyValuations, result.ClosedTrades,
		converter, portfolio.Currency(cfg.Portfolio.DisplayCurrency))
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}

	report := &reporting.Report{
		RunName:      "scan",
		Batch:        batch.Signals,
		FilterResult: &filterResult,
		Portfolio:    result,
		Summary:      &summary,
	}

	if *flags.RunMC && len(result.OpenPositions) > 0 {
		risk, err := runMonteCarlo(cfg, flags, result, converter, provider, sources)
		if err != nil {
			fileLog.Warn("monte carlo skipped: %v", err)
			log.Printf("⚠️  Monte Carlo skipped: %v", err)
		} else {
			report.Risk = risk
		}
	}

	outputReport(cfg, flags, report)
	fileLog.Info("run complete in %s", time.Since(started).Round(time.Millisecond))
	return nil
}

// buildSources walks dataRoot/<market>/*.csv and returns the catalog in
// a stable order so downstream admission is deterministic.
func buildSources(dataRoot string, markets []string, symbolFilter map[string]bool) ([]scanner.Source, error) {
	var sources []scanner.Source
	for _, market := range markets {
		dir := filepath.Join(dataRoot, market)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading data dir %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
				continue
			}
			symbol := strings.ToUpper(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
			if symbolFilter != nil && !symbolFilter[symbol] {
				continue
			}
			sources = append(sources, scanner.Source{
				Info: types.SymbolInfo{
					Symbol: symbol,
					Market: types.Market(market),
				},
				Path: filepath.Join(dir, e.Name()),
			})
		}
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Info.Market != sources[j].Info.Market {
			return sources[i].Info.Market < sources[j].Info.Market
		}
		return sources[i].Info.Symbol < sources[j].Info.Symbol
	})
	return sources, nil
}

// runMonteCarlo snapshots the open book and replays it through
// randomized forward walks. Per-position volatility is estimated from
// the symbol's trailing year of daily returns.
func runMonteCarlo(cfg *config.Config, flags *Flags, result *portfolio.Result, converter *portfolio.Converter, provider data.Provider, sources []scanner.Source) (*analytics.RiskReport, error) {
	paths := make(map[string]scanner.Source, len(sources))
	for _, src := range sources {
		paths[src.Info.Symbol] = src
	}

	displayCurrency := portfolio.Currency(cfg.Portfolio.DisplayCurrency)
	snapshot := make([]analytics.PositionSnapshot, 0, len(result.OpenPositions))
	for _, pos := range result.OpenPositions {
		value, err := converter.Convert(pos.TradeSize, pos.Currency, displayCurrency)
		if err != nil {
			return nil, err
		}
		src, ok := paths[pos.Symbol]
		if !ok {
			return nil, fmt.Errorf("no data source for open position %s", pos.Symbol)
		}
		series, err := provider.LoadSeries(src.Info, src.Path)
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, analytics.PositionSnapshot{
			Value:      value,
			Volatility: annualizedVolatility(series.Close),
		})
	}

	var src analytics.UniformSource
	if *flags.MCSeed != 0 {
		src = rand.New(rand.NewSource(*flags.MCSeed))
	}
	mc, err := analytics.NewMonteCarlo(analytics.MonteCarloConfig{
		Iterations:  cfg.MonteCarlo.Iterations,
		HorizonDays: cfg.MonteCarlo.HorizonDays,
	}, src)
	if err != nil {
		return nil, err
	}
	return mc.Run(snapshot)
}

// annualizedVolatility returns the percent volatility of the trailing
// year of daily close-to-close returns.
func annualizedVolatility(closes []float64) float64 {
	const lookback = 252
	if len(closes) > lookback+1 {
		closes = closes[len(closes)-lookback-1:]
	}
	if len(closes) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] != 0 {
			returns = append(returns, closes[i]/closes[i-1]-1)
		}
	}
	if len(returns) < 2 {
		return 0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(252) * 100
}

func recordPortfolioMetrics(result *portfolio.Result) {
	if n := len(result.DailyValuations); n > 0 {
		monitoring.UpdatePortfolioValue(result.DailyValuations[n-1].Value)
	}
	byMarket := make(map[types.Market]int)
	for _, pos := range result.OpenPositions {
		byMarket[pos.Market]++
	}
	for market, count := range byMarket {
		monitoring.UpdateOpenPositions(string(market), count)
	}
}

func outputReport(cfg *config.Config, flags *Flags, report *reporting.Report) {
	console := reporting.NewDefaultConsoleReporter()
	console.OutputOpportunities(report.FilterResult)
	console.OutputPortfolio(report.Portfolio, portfolio.Currency(cfg.Portfolio.DisplayCurrency))
	console.OutputSummary(report.Summary)
	if report.Risk != nil {
		console.OutputRiskReport(report.Risk)
	}

	if *flags.ConsoleOnly {
		return
	}

	outDir := reporting.NewDefaultPathManager().OutputDir(cfg.Output.Dir, report.RunName)
	if cfg.Output.WriteCSV {
		csvReporter := reporting.NewDefaultCSVReporter()
		writeOrWarn("trades CSV", csvReporter.WriteTradesCSV(report.Portfolio, filepath.Join(outDir, "trades.csv")))
		writeOrWarn("valuations CSV", csvReporter.WriteValuationsCSV(report.Portfolio, filepath.Join(outDir, "valuations.csv")))
	}
	if cfg.Output.WriteExcel {
		writeOrWarn("workbook", reporting.NewDefaultExcelReporter().WriteWorkbook(report, filepath.Join(outDir, "report.xlsx")))
	}
	if cfg.Output.WriteJSON {
		writeOrWarn("JSON report", reporting.NewDefaultJSONReporter().WriteReportJSON(report, filepath.Join(outDir, "report.json")))
	}
	log.Printf("💾 Reports written to %s", outDir)
}

func writeOrWarn(what string, err error) {
	if err != nil {
		log.Printf("⚠️  Failed to write %s: %v", what, err)
	}
}

func toParams(cfg *config.Config) signals.Params {
	return signals.Params{
		PeriodR:           cfg.Indicator.PeriodR,
		PeriodS:           cfg.Indicator.PeriodS,
		PeriodU:           cfg.Indicator.PeriodU,
		EntryThreshold:    cfg.Indicator.EntryThreshold,
		TakeProfitPercent: cfg.Exit.TakeProfitPercent,
		StopLossPercent:   cfg.Exit.StopLossPercent,
		MaxHoldingDays:    cfg.Exit.MaxHoldingDays,
	}
}

func toFilter(cfg *config.Config, today time.Time) *signals.Filter {
	f := signals.NewFilter()
	f.MinTrades = cfg.Conviction.MinTrades
	f.MinWinRate = cfg.Conviction.MinWinRate
	f.RecencyDays = cfg.Conviction.RecencyDays
	f.MaxScanDays = cfg.Conviction.MaxScanDays
	f.TopN = cfg.Conviction.TopN
	f.Now = func() time.Time { return today }
	return f
}

func toPortfolioConfig(cfg *config.Config) (portfolio.Config, error) {
	startDate, err := cfg.StartDate()
	if err != nil {
		return portfolio.Config{}, err
	}
	allocations := make(map[types.Market]portfolio.MarketAllocation, len(cfg.Portfolio.Markets))
	for name, m := range cfg.Portfolio.Markets {
		allocations[types.Market(name)] = portfolio.MarketAllocation{
			TradeSize: m.TradeSize,
			Currency:  portfolio.Currency(m.Currency),
		}
	}
	return portfolio.Config{
		StartDate:         startDate,
		MaxTotalPositions: cfg.Portfolio.MaxTotalPositions,
		MaxPerMarket:      cfg.Portfolio.MaxPerMarket,
		Allocations:       allocations,
		DisplayCurrency:   portfolio.Currency(cfg.Portfolio.DisplayCurrency),
	}, nil
}

func startMonitoringServer(port int, health *monitoring.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)
	addr := fmt.Sprintf(":%d", port)
	go func() {
		log.Printf("📡 Monitoring on http://localhost%s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("⚠️  Monitoring server stopped: %v", err)
		}
	}()
}

func printHeader() {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func printUsageHelp() {
	fmt.Printf("%s v%s - DTI momentum scan and portfolio simulation\n\n", AppName, AppVersion)
	fmt.Printf("USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(flag.CommandLine.Name()))
	PrintUsageExamples()
	flag.PrintDefaults()
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
		log.Println("📝 Using system environment variables")
	}
}
