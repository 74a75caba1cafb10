package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	start, err := cfg.StartDate()
	require.NoError(t, err)
	assert.False(t, start.IsZero())
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"indicator": {"period_r": 20, "period_s": 10, "period_u": 5},
		"portfolio": {
			"start_date": "2024-01-02",
			"max_total_positions": 12,
			"max_per_market": 4,
			"markets": {"UK": {"trade_size": 2500, "currency": "GBP"}},
			"display_currency": "GBP",
			"fx_rates": {"GBP->USD": 1.25}
		}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Indicator.PeriodR)
	assert.Equal(t, 12, cfg.Portfolio.MaxTotalPositions)
	assert.Equal(t, 4, cfg.Portfolio.MaxPerMarket)
	assert.Equal(t, "2024-01-02", cfg.Portfolio.StartDate)
	// Untouched sections keep defaults.
	assert.Equal(t, 8.0, cfg.Exit.TakeProfitPercent)
	assert.Equal(t, 1000, cfg.MonteCarlo.Iterations)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MAX_TOTAL_POSITIONS", "7")
	t.Setenv("TAKE_PROFIT_PERCENT", "12.5")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Portfolio.MaxTotalPositions)
	assert.Equal(t, 12.5, cfg.Exit.TakeProfitPercent)
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero period", func(c *Config) { c.Indicator.PeriodR = 0 }},
		{"negative stop loss", func(c *Config) { c.Exit.StopLossPercent = -5 }},
		{"bad win rate", func(c *Config) { c.Conviction.MinWinRate = 1.5 }},
		{"scan cap below window", func(c *Config) { c.Conviction.MaxScanDays = 2 }},
		{"bad start date", func(c *Config) { c.Portfolio.StartDate = "01/02/2024" }},
		{"zero cap", func(c *Config) { c.Portfolio.MaxPerMarket = 0 }},
		{"no markets", func(c *Config) { c.Portfolio.Markets = nil }},
		{"bad currency", func(c *Config) {
			c.Portfolio.Markets["UK"] = MarketConfig{TradeSize: 100, Currency: "POUNDS"}
		}},
		{"zero iterations", func(c *Config) { c.MonteCarlo.Iterations = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
