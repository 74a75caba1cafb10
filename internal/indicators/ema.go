package indicators

import "errors"

// ErrEmptySeries is returned when an indicator is asked to operate on no data.
var ErrEmptySeries = errors.New("empty input series")

// ErrInvalidPeriod is returned for non-positive smoothing periods.
var ErrInvalidPeriod = errors.New("period must be positive")

// EMAState is an incremental exponential moving average. The first value
// pushed seeds the average directly, so there is no warm-up gap.
type EMAState struct {
	alpha       float64
	lastValue   float64
	initialized bool
}

// NewEMAState creates an incremental EMA with the standard alpha 2/(period+1).
func NewEMAState(period int) *EMAState {
	return &EMAState{
		alpha: 2.0 / float64(period+1),
	}
}

// Update folds one value into the average and returns the new EMA.
func (e *EMAState) Update(value float64) float64 {
	if !e.initialized {
		e.lastValue = value
		e.initialized = true
	} else {
		e.lastValue = (value * e.alpha) + (e.lastValue * (1 - e.alpha))
	}
	return e.lastValue
}

// LastValue returns the most recent EMA value.
func (e *EMAState) LastValue() float64 {
	return e.lastValue
}

// IsInitialized reports whether any value has been folded in yet.
func (e *EMAState) IsInitialized() bool {
	return e.initialized
}

// Reset clears the state so the next Update seeds a fresh average.
func (e *EMAState) Reset() {
	e.lastValue = 0.0
	e.initialized = false
}

// EMA computes the exponential moving average of a full series. The
// output has the same length as the input and out[0] == series[0].
func EMA(series []float64, period int) ([]float64, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	state := NewEMAState(period)
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = state.Update(v)
	}
	return out, nil
}
