package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the explicit configuration for a scan-and-simulate run.
// There is no package-level mutable state: the struct is built once,
// validated, and passed in.
type Config struct {
	Indicator  IndicatorConfig  `json:"indicator"`
	Exit       ExitConfig       `json:"exit"`
	Conviction ConvictionConfig `json:"conviction"`
	Portfolio  PortfolioConfig  `json:"portfolio"`
	MonteCarlo MonteCarloConfig `json:"monte_carlo"`
	Output     OutputConfig     `json:"output"`
}

// IndicatorConfig holds the DTI smoothing periods and entry threshold.
type IndicatorConfig struct {
	PeriodR        int     `json:"period_r"`
	PeriodS        int     `json:"period_s"`
	PeriodU        int     `json:"period_u"`
	EntryThreshold float64 `json:"entry_threshold"`
}

// ExitConfig holds the rule-backtest exit conditions.
type ExitConfig struct {
	TakeProfitPercent float64 `json:"take_profit_percent"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	MaxHoldingDays    int     `json:"max_holding_days"`
}

// ConvictionConfig holds the opportunity filter gates.
type ConvictionConfig struct {
	MinTrades   int     `json:"min_trades"`
	MinWinRate  float64 `json:"min_win_rate"`
	RecencyDays int     `json:"recency_days"`
	MaxScanDays int     `json:"max_scan_days"`
	TopN        int     `json:"top_n"`
}

// MarketConfig fixes a market's notional trade size and currency.
type MarketConfig struct {
	TradeSize float64 `json:"trade_size"`
	Currency  string  `json:"currency"`
}

// PortfolioConfig holds the simulator constraints.
type PortfolioConfig struct {
	StartDate         string                  `json:"start_date"`
	MaxTotalPositions int                     `json:"max_total_positions"`
	MaxPerMarket      int                     `json:"max_per_market"`
	Markets           map[string]MarketConfig `json:"markets"`
	DisplayCurrency   string                  `json:"display_currency"`
	FXRates           map[string]float64      `json:"fx_rates"`
}

// MonteCarloConfig sizes the forward risk simulation.
type MonteCarloConfig struct {
	Iterations  int `json:"iterations"`
	HorizonDays int `json:"horizon_days"`
}

// OutputConfig controls reporting destinations.
type OutputConfig struct {
	Dir         string `json:"dir"`
	LogDir      string `json:"log_dir"`
	MetricsPort int    `json:"metrics_port"`
	WriteExcel  bool   `json:"write_excel"`
	WriteCSV    bool   `json:"write_csv"`
	WriteJSON   bool   `json:"write_json"`
}

// Default returns the standard scanner configuration.
func Default() *Config {
	return &Config{
		Indicator: IndicatorConfig{
			PeriodR:        14,
			PeriodS:        10,
			PeriodU:        5,
			EntryThreshold: 0,
		},
		Exit: ExitConfig{
			TakeProfitPercent: 8,
			StopLossPercent:   5,
			MaxHoldingDays:    30,
		},
		Conviction: ConvictionConfig{
			MinTrades:   5,
			MinWinRate:  0.75,
			RecencyDays: 5,
			MaxScanDays: 10,
			TopN:        10,
		},
		Portfolio: PortfolioConfig{
			StartDate:         time.Now().AddDate(-1, 0, 0).Format("2006-01-02"),
			MaxTotalPositions: 30,
			MaxPerMarket:      10,
			Markets: map[string]MarketConfig{
				"India": {TradeSize: 50000, Currency: "INR"},
				"UK":    {TradeSize: 4000, Currency: "GBP"},
				"US":    {TradeSize: 5000, Currency: "USD"},
			},
			DisplayCurrency: "GBP",
			FXRates: map[string]float64{
				"GBP->INR": 105.0,
				"GBP->USD": 1.25,
				"USD->INR": 84.0,
			},
		},
		MonteCarlo: MonteCarloConfig{
			Iterations:  1000,
			HorizonDays: 30,
		},
		Output: OutputConfig{
			Dir:        "results",
			LogDir:     "logs",
			WriteExcel: true,
			WriteCSV:   true,
			WriteJSON:  true,
		},
	}
}

// Load reads a JSON config file over the defaults, then applies any
// environment overrides. An empty path keeps the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Indicator.PeriodR = getEnvInt("DTI_PERIOD_R", c.Indicator.PeriodR)
	c.Indicator.PeriodS = getEnvInt("DTI_PERIOD_S", c.Indicator.PeriodS)
	c.Indicator.PeriodU = getEnvInt("DTI_PERIOD_U", c.Indicator.PeriodU)
	c.Indicator.EntryThreshold = getEnvFloat("DTI_ENTRY_THRESHOLD", c.Indicator.EntryThreshold)

	c.Exit.TakeProfitPercent = getEnvFloat("TAKE_PROFIT_PERCENT", c.Exit.TakeProfitPercent)
	c.Exit.StopLossPercent = getEnvFloat("STOP_LOSS_PERCENT", c.Exit.StopLossPercent)
	c.Exit.MaxHoldingDays = getEnvInt("MAX_HOLDING_DAYS", c.Exit.MaxHoldingDays)

	c.Portfolio.MaxTotalPositions = getEnvInt("MAX_TOTAL_POSITIONS", c.Portfolio.MaxTotalPositions)
	c.Portfolio.MaxPerMarket = getEnvInt("MAX_PER_MARKET", c.Portfolio.MaxPerMarket)
	c.Portfolio.StartDate = getEnv("SIMULATION_START_DATE", c.Portfolio.StartDate)

	c.Output.Dir = getEnv("OUTPUT_DIR", c.Output.Dir)
	c.Output.LogDir = getEnv("LOG_DIR", c.Output.LogDir)
	c.Output.MetricsPort = getEnvInt("METRICS_PORT", c.Output.MetricsPort)
}

// Validate fails fast on malformed configuration; nothing downstream
// runs with a config that fails here.
func (c *Config) Validate() error {
	if c.Indicator.PeriodR <= 0 || c.Indicator.PeriodS <= 0 || c.Indicator.PeriodU <= 0 {
		return fmt.Errorf("DTI periods must be positive (r=%d s=%d u=%d)",
			c.Indicator.PeriodR, c.Indicator.PeriodS, c.Indicator.PeriodU)
	}
	if c.Exit.TakeProfitPercent <= 0 || c.Exit.StopLossPercent <= 0 || c.Exit.MaxHoldingDays <= 0 {
		return fmt.Errorf("exit rules must be positive (tp=%v sl=%v days=%d)",
			c.Exit.TakeProfitPercent, c.Exit.StopLossPercent, c.Exit.MaxHoldingDays)
	}
	if c.Conviction.MinTrades <= 0 || c.Conviction.RecencyDays <= 0 || c.Conviction.MaxScanDays < c.Conviction.RecencyDays {
		return fmt.Errorf("conviction gates invalid (min_trades=%d recency=%d scan_cap=%d)",
			c.Conviction.MinTrades, c.Conviction.RecencyDays, c.Conviction.MaxScanDays)
	}
	if c.Conviction.MinWinRate <= 0 || c.Conviction.MinWinRate >= 1 {
		return fmt.Errorf("min_win_rate must be in (0, 1), got %v", c.Conviction.MinWinRate)
	}
	if _, err := c.StartDate(); err != nil {
		return err
	}
	if c.Portfolio.MaxTotalPositions <= 0 || c.Portfolio.MaxPerMarket <= 0 {
		return fmt.Errorf("position caps must be positive (total=%d per_market=%d)",
			c.Portfolio.MaxTotalPositions, c.Portfolio.MaxPerMarket)
	}
	if len(c.Portfolio.Markets) == 0 {
		return fmt.Errorf("at least one market is required")
	}
	for name, m := range c.Portfolio.Markets {
		if m.TradeSize <= 0 {
			return fmt.Errorf("market %s: trade size must be positive, got %v", name, m.TradeSize)
		}
		if len(m.Currency) != 3 {
			return fmt.Errorf("market %s: currency must be a 3-letter code, got %q", name, m.Currency)
		}
	}
	if len(c.Portfolio.DisplayCurrency) != 3 {
		return fmt.Errorf("display currency must be a 3-letter code, got %q", c.Portfolio.DisplayCurrency)
	}
	if c.MonteCarlo.Iterations <= 0 || c.MonteCarlo.HorizonDays <= 0 {
		return fmt.Errorf("monte carlo sizing must be positive (iterations=%d days=%d)",
			c.MonteCarlo.Iterations, c.MonteCarlo.HorizonDays)
	}
	return nil
}

// StartDate parses the configured simulation start date.
func (c *Config) StartDate() (time.Time, error) {
	d, err := time.Parse("2006-01-02", c.Portfolio.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start_date %q: %w", c.Portfolio.StartDate, err)
	}
	return d, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
