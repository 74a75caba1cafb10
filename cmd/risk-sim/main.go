package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ketanswebsite/signalforge-sub005/internal/analytics"
	"github.com/ketanswebsite/signalforge-sub005/pkg/reporting"
)

const (
	AppName    = "Risk Sim"
	AppVersion = "1.0.0"
)

// Flags holds all command line flags for the standalone risk simulator
type Flags struct {
	PositionsFile *string
	EnvFile       *string
	Iterations    *int
	HorizonDays   *int
	Seed          *int64
	OutputFile    *string
	ShowVersion   *bool
}

// NewFlags creates and registers all command line flags
func NewFlags() *Flags {
	return &Flags{
		PositionsFile: flag.String("positions", "", "Path to JSON portfolio snapshot (required)"),
		EnvFile:       flag.String("env", ".env", "Path to environment file"),
		Iterations:    flag.Int("iterations", 1000, "Simulated paths"),
		HorizonDays:   flag.Int("horizon", 30, "Forward horizon in trading days"),
		Seed:          flag.Int64("seed", 0, "Random seed (0 = time-seeded)"),
		OutputFile:    flag.String("output", "", "Write the risk report as JSON to this path"),
		ShowVersion:   flag.Bool("version", false, "Show version information"),
	}
}

func main() {
	flags := NewFlags()
	flag.Parse()

	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	printHeader()
	loadEnvironment(*flags.EnvFile)

	if *flags.PositionsFile == "" {
		flag.PrintDefaults()
		log.Fatalf("❌ -positions is required")
	}

	snapshot, err := loadSnapshot(*flags.PositionsFile)
	if err != nil {
		log.Fatalf("❌ Snapshot error: %v", err)
	}
	log.Printf("📂 Loaded %d positions from %s", len(snapshot), *flags.PositionsFile)

	var src analytics.UniformSource
	if *flags.Seed != 0 {
		src = rand.New(rand.NewSource(*flags.Seed))
	}
	mc, err := analytics.NewMonteCarlo(analytics.MonteCarloConfig{
		Iterations:  *flags.Iterations,
		HorizonDays: *flags.HorizonDays,
	}, src)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	risk, err := mc.Run(snapshot)
	if err != nil {
		log.Fatalf("❌ Simulation failed: %v", err)
	}

	reporting.NewDefaultConsoleReporter().OutputRiskReport(risk)

	if *flags.OutputFile != "" {
		report := &reporting.Report{RunName: "risk-sim", Risk: risk}
		if err := reporting.WriteRiskJSON(report, *flags.OutputFile); err != nil {
			log.Fatalf("❌ Failed to write %s: %v", *flags.OutputFile, err)
		}
		log.Printf("💾 Risk report written to %s", *flags.OutputFile)
	}
}

// loadSnapshot reads a JSON array of {"value": N, "volatility": N}
// entries describing the open book.
func loadSnapshot(path string) ([]analytics.PositionSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot []analytics.PositionSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("%s holds no positions", path)
	}
	return snapshot, nil
}

func printHeader() {
	fmt.Printf("🎲 %s v%s\n", strings.ToUpper(AppName), AppVersion)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("⚠️  Could not load %s (%v)", envFile, err)
		log.Println("📝 Using system environment variables")
	}
}
