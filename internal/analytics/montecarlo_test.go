package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonteCarlo_Validation(t *testing.T) {
	_, err := NewMonteCarlo(MonteCarloConfig{Iterations: 0, HorizonDays: 30}, nil)
	assert.Error(t, err)

	_, err = NewMonteCarlo(MonteCarloConfig{Iterations: 100, HorizonDays: -1}, nil)
	assert.Error(t, err)
}

func TestMonteCarlo_RejectsBadSnapshots(t *testing.T) {
	mc, err := NewMonteCarlo(DefaultMonteCarloConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, err = mc.Run(nil)
	assert.Error(t, err)

	_, err = mc.Run([]PositionSnapshot{{Value: -100, Volatility: 20}})
	assert.Error(t, err)

	_, err = mc.Run([]PositionSnapshot{{Value: 100, Volatility: -3}})
	assert.Error(t, err)

	_, err = mc.Run([]PositionSnapshot{{Value: 0, Volatility: 20}})
	assert.Error(t, err)
}

func TestMonteCarlo_ZeroVolatilityCollapsesPercentiles(t *testing.T) {
	mc, err := NewMonteCarlo(MonteCarloConfig{Iterations: 200, HorizonDays: 30}, rand.New(rand.NewSource(7)))
	require.NoError(t, err)

	report, err := mc.Run([]PositionSnapshot{
		{Value: 6000, Volatility: 0},
		{Value: 4000, Volatility: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, report.InitialValue)
	assert.InDelta(t, 10000.0, report.ExpectedValue, 1e-9)
	assert.InDelta(t, 10000.0, report.VaR95, 1e-9)
	assert.InDelta(t, 10000.0, report.VaR99, 1e-9)
	assert.Zero(t, report.ExpectedMaxDrawdown)
	assert.Zero(t, report.WorstCaseDrawdown)
	assert.Zero(t, report.ProbabilityOfLoss)
	assert.Zero(t, report.SharpeLikeRatio)
}

func TestMonteCarlo_StatisticalBands(t *testing.T) {
	mc, err := NewMonteCarlo(MonteCarloConfig{Iterations: 4000, HorizonDays: 30}, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	report, err := mc.Run([]PositionSnapshot{{Value: 10000, Volatility: 20}})
	require.NoError(t, err)

	// Mean-zero daily returns keep the expectation near the start.
	assert.InDelta(t, 10000.0, report.ExpectedValue, 150)

	// 30-day sigma is about 6.9% of value; 1.65 and 2.33 sigma bands.
	assert.Less(t, report.VaR95, 10000.0)
	assert.Greater(t, report.VaR95, 8000.0)
	assert.Less(t, report.VaR99, report.VaR95)
	assert.LessOrEqual(t, report.ExpectedShortfall, report.VaR95)

	assert.Greater(t, report.ExpectedMaxDrawdown, 0.0)
	assert.GreaterOrEqual(t, report.WorstCaseDrawdown, report.ExpectedMaxDrawdown)
	assert.InDelta(t, 0.5, report.ProbabilityOfLoss, 0.1)
}

func TestMonteCarlo_DeterministicWithSeededSource(t *testing.T) {
	snapshot := []PositionSnapshot{
		{Value: 5000, Volatility: 25},
		{Value: 5000, Volatility: 15},
	}
	cfg := MonteCarloConfig{Iterations: 500, HorizonDays: 10}

	run := func() *RiskReport {
		mc, err := NewMonteCarlo(cfg, rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		report, err := mc.Run(snapshot)
		require.NoError(t, err)
		return report
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}
