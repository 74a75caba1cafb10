package indicators

import (
	"fmt"
	"math"
)

// DTI computes William Blau's Directional Trend Index over aligned
// high/low series. The directional components are triple-smoothed with
// sequential EMA passes of periods r, s and u, and the oscillator is the
// smoothed net movement as a percentage of the smoothed absolute
// movement. Output length equals input length; index 0 is seeded to 0.
func DTI(high, low []float64, r, s, u int) ([]float64, error) {
	if len(high) == 0 || len(low) == 0 {
		return nil, ErrEmptySeries
	}
	if len(high) != len(low) {
		return nil, fmt.Errorf("high/low length mismatch: %d vs %d", len(high), len(low))
	}
	if r <= 0 || s <= 0 || u <= 0 {
		return nil, fmt.Errorf("DTI periods must be positive (r=%d s=%d u=%d): %w", r, s, u, ErrInvalidPeriod)
	}

	n := len(high)
	price := make([]float64, n)
	absPrice := make([]float64, n)
	for i := 1; i < n; i++ {
		hmu := math.Max(high[i]-high[i-1], 0)
		lmd := math.Max(low[i-1]-low[i], 0)
		price[i] = hmu - lmd
		absPrice[i] = math.Abs(price[i])
	}

	smoothed, err := tripleEMA(price, r, s, u)
	if err != nil {
		return nil, err
	}
	smoothedAbs, err := tripleEMA(absPrice, r, s, u)
	if err != nil {
		return nil, err
	}

	dti := make([]float64, n)
	for i := 0; i < n; i++ {
		// Zero smoothed movement is a flat market, not an error.
		if smoothedAbs[i] != 0 {
			dti[i] = 100 * smoothed[i] / smoothedAbs[i]
		}
	}
	return dti, nil
}

// tripleEMA runs three sequential EMA passes, not one combined filter.
func tripleEMA(series []float64, r, s, u int) ([]float64, error) {
	first, err := EMA(series, r)
	if err != nil {
		return nil, err
	}
	second, err := EMA(first, s)
	if err != nil {
		return nil, err
	}
	return EMA(second, u)
}
