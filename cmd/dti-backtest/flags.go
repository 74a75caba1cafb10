package main

import (
	"flag"
	"fmt"
	"strings"
	"time"
)

// Flags holds all command line flags for the scan-and-simulate command
type Flags struct {
	// Configuration
	ConfigFile *string
	EnvFile    *string

	// Data selection
	DataRoot *string
	Markets  *string
	Symbols  *string

	// Run controls
	Today       *string
	Workers     *int
	RunMC       *bool
	MCSeed      *int64
	ConsoleOnly *bool

	// Output options
	OutputDir   *string
	MetricsPort *int

	// Help and version
	ShowVersion *bool
	ShowHelp    *bool
}

// NewFlags creates and registers all command line flags
func NewFlags() *Flags {
	return &Flags{
		// Configuration
		ConfigFile: flag.String("config", "", "Path to JSON configuration file"),
		EnvFile:    flag.String("env", ".env", "Path to environment file"),

		// Data selection
		DataRoot: flag.String("data-root", DefaultDataRoot, "Root directory of per-market CSV data"),
		Markets:  flag.String("markets", "India,UK,US", "Comma-separated markets to scan"),
		Symbols:  flag.String("symbols", "", "Comma-separated symbol filter (empty = all)"),

		// Run controls
		Today:       flag.String("today", "", "Simulation end date (YYYY-MM-DD, empty = today)"),
		Workers:     flag.Int("workers", 0, "Scan workers (0 = one per CPU)"),
		RunMC:       flag.Bool("monte-carlo", true, "Run the forward Monte Carlo risk simulation"),
		MCSeed:      flag.Int64("mc-seed", 0, "Monte Carlo seed (0 = time-seeded)"),
		ConsoleOnly: flag.Bool("console-only", false, "Skip file output, print to console only"),

		// Output options
		OutputDir:   flag.String("output", "", "Output directory (overrides config)"),
		MetricsPort: flag.Int("metrics-port", 0, "Serve /metrics and /health on this port (0 = off)"),

		// Help and version
		ShowVersion: flag.Bool("version", false, "Show version information"),
		ShowHelp:    flag.Bool("help", false, "Show detailed help"),
	}
}

// ValidateFlags validates flag combinations before the run starts
func ValidateFlags(flags *Flags) error {
	if *flags.Today != "" {
		if _, err := time.Parse("2006-01-02", *flags.Today); err != nil {
			return fmt.Errorf("invalid -today %q: use YYYY-MM-DD", *flags.Today)
		}
	}
	if *flags.Workers < 0 {
		return fmt.Errorf("-workers must be >= 0, got %d", *flags.Workers)
	}
	if *flags.MetricsPort < 0 || *flags.MetricsPort > 65535 {
		return fmt.Errorf("-metrics-port must be in [0, 65535], got %d", *flags.MetricsPort)
	}
	if strings.TrimSpace(*flags.Markets) == "" {
		return fmt.Errorf("-markets must name at least one market")
	}
	return nil
}

// SelectedMarkets returns the market filter as a cleaned list
func (f *Flags) SelectedMarkets() []string {
	parts := strings.Split(*f.Markets, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SymbolFilter returns the symbol allow-set, or nil for no filter
func (f *Flags) SymbolFilter() map[string]bool {
	if strings.TrimSpace(*f.Symbols) == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, s := range strings.Split(*f.Symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			set[strings.ToUpper(s)] = true
		}
	}
	return set
}

// PrintUsageExamples prints common invocations
func PrintUsageExamples() {
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Scan all markets with defaults")
	fmt.Println("  dti-backtest -data-root data")
	fmt.Println()
	fmt.Println("  # UK only, fixed end date, deterministic Monte Carlo")
	fmt.Println("  dti-backtest -markets UK -today 2025-06-30 -mc-seed 42")
	fmt.Println()
	fmt.Println("  # Console output only, with metrics endpoint")
	fmt.Println("  dti-backtest -console-only -metrics-port 9090")
	fmt.Println()
}
