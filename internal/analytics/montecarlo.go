package analytics

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// PositionSnapshot is one live position handed to the risk simulator:
// current value in the display currency and annualized volatility in
// percent. The snapshot is independent of the backtest pipeline.
type PositionSnapshot struct {
	Value      float64 `json:"value"`
	Volatility float64 `json:"volatility"`
}

// UniformSource yields independent uniform draws in [0, 1). Tests inject
// a deterministic source to pin percentile outputs.
type UniformSource interface {
	Float64() float64
}

// MonteCarloConfig sizes the simulation.
type MonteCarloConfig struct {
	Iterations  int
	HorizonDays int
}

// DefaultMonteCarloConfig runs 1000 paths over a 30-day horizon.
func DefaultMonteCarloConfig() MonteCarloConfig {
	return MonteCarloConfig{Iterations: 1000, HorizonDays: 30}
}

// RiskReport aggregates the simulated paths.
type RiskReport struct {
	InitialValue        float64
	ExpectedValue       float64
	VaR95               float64
	VaR99               float64
	ExpectedShortfall   float64
	ExpectedMaxDrawdown float64
	WorstCaseDrawdown   float64
	ProbabilityOfLoss   float64
	SharpeLikeRatio     float64
}

// MonteCarlo estimates forward risk by replaying the portfolio through
// randomized multi-day walks. Daily per-position returns are normal with
// mean zero and standard deviation volatility/100/sqrt(252), generated
// by a Box-Muller transform over the injected uniform source.
type MonteCarlo struct {
	cfg MonteCarloConfig
	src UniformSource

	// Box-Muller yields pairs; the spare is kept for the next draw.
	spare    float64
	hasSpare bool
}

// NewMonteCarlo builds a simulator. A nil source falls back to a
// time-seeded PRNG.
func NewMonteCarlo(cfg MonteCarloConfig, src UniformSource) (*MonteCarlo, error) {
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("horizon days must be positive, got %d", cfg.HorizonDays)
	}
	if src == nil {
		src = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MonteCarlo{cfg: cfg, src: src}, nil
}

// Run simulates the snapshot and aggregates path outcomes.
func (m *MonteCarlo) Run(snapshot []PositionSnapshot) (*RiskReport, error) {
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("empty portfolio snapshot")
	}
	initial := 0.0
	for _, p := range snapshot {
		if p.Value < 0 {
			return nil, fmt.Errorf("negative position value %v", p.Value)
		}
		if p.Volatility < 0 {
			return nil, fmt.Errorf("negative volatility %v", p.Volatility)
		}
		initial += p.Value
	}
	if initial == 0 {
		return nil, fmt.Errorf("portfolio snapshot has zero total value")
	}

	dailyVol := make([]float64, len(snapshot))
	for i, p := range snapshot {
		dailyVol[i] = p.Volatility / 100 / math.Sqrt(TradingDaysPerYear)
	}

	finals := make([]float64, m.cfg.Iterations)
	drawdowns := make([]float64, m.cfg.Iterations)
	pathReturns := make([]float64, m.cfg.Iterations)
	losses := 0

	positions := make([]float64, len(snapshot))
	for it := 0; it < m.cfg.Iterations; it++ {
		for i, p := range snapshot {
			positions[i] = p.Value
		}

		// Drawdown is tracked on a normalized base of 1.0 with the same
		// running-peak method the performance reductions use.
		peak := 1.0
		maxDD := 0.0
		for day := 0; day < m.cfg.HorizonDays; day++ {
			total := 0.0
			for i := range positions {
				positions[i] *= 1 + m.normal()*dailyVol[i]
				total += positions[i]
			}
			norm := total / initial
			if norm > peak {
				peak = norm
			}
			if dd := (peak - norm) / peak; dd > maxDD {
				maxDD = dd
			}
		}

		final := 0.0
		for _, v := range positions {
			final += v
		}
		finals[it] = final
		drawdowns[it] = maxDD * 100
		pathReturns[it] = (final - initial) / initial
		if final < initial {
			losses++
		}
	}

	sortedFinals := append([]float64(nil), finals...)
	sort.Float64s(sortedFinals)

	report := &RiskReport{
		InitialValue:        initial,
		ExpectedValue:       stat.Mean(finals, nil),
		VaR95:               stat.Quantile(0.05, stat.Empirical, sortedFinals, nil),
		VaR99:               stat.Quantile(0.01, stat.Empirical, sortedFinals, nil),
		ExpectedMaxDrawdown: stat.Mean(drawdowns, nil),
		ProbabilityOfLoss:   float64(losses) / float64(m.cfg.Iterations),
	}
	for _, dd := range drawdowns {
		if dd > report.WorstCaseDrawdown {
			report.WorstCaseDrawdown = dd
		}
	}
	report.ExpectedShortfall = expectedShortfall(sortedFinals, report.VaR95)

	meanRet := stat.Mean(pathReturns, nil)
	sdRet := stat.StdDev(pathReturns, nil)
	if sdRet > 0 {
		report.SharpeLikeRatio = meanRet / sdRet
	}
	return report, nil
}

// expectedShortfall is the mean outcome at or below the VaR threshold.
func expectedShortfall(sortedFinals []float64, threshold float64) float64 {
	sum := 0.0
	n := 0
	for _, v := range sortedFinals {
		if v > threshold {
			break
		}
		sum += v
		n++
	}
	if n == 0 {
		return threshold
	}
	return sum / float64(n)
}

// normal draws a standard normal via the Box-Muller transform, consuming
// two uniforms per pair of normals.
func (m *MonteCarlo) normal() float64 {
	if m.hasSpare {
		m.hasSpare = false
		return m.spare
	}
	u1 := m.src.Float64()
	u2 := m.src.Float64()
	for u1 <= 0 {
		u1 = m.src.Float64()
	}
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	m.spare = r * math.Sin(theta)
	m.hasSpare = true
	return r * math.Cos(theta)
}
