package smooth

import (
	"strings"

	"github.com/rotisserie/eris"
)

// TrendInit selects how the initial trend of the Holt recurrence is estimated.
type TrendInit int

const (
	// FirstDifference uses x1 - x0.
	FirstDifference TrendInit = iota
	// FirstFourSlope uses the average slope over the first four samples.
	FirstFourSlope
	// SeriesSlope uses the average slope over the whole series.
	SeriesSlope
)

func (t TrendInit) String() string {
	switch t {
	case FirstDifference:
		return "first-difference"
	case FirstFourSlope:
		return "first-four"
	case SeriesSlope:
		return "series"
	default:
		return "unknown"
	}
}

// ParseTrendInit maps a configuration value to a TrendInit.
func ParseTrendInit(s string) (TrendInit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-difference", "first":
		return FirstDifference, nil
	case "first-four", "first-four-slope":
		return FirstFourSlope, nil
	case "series", "series-slope":
		return SeriesSlope, nil
	default:
		return 0, eris.Wrapf(ErrInvalidParameter, "trend init %q", s)
	}
}

// HoltParams configures double-exponential smoothing. Forecast is the number of
// extrapolated steps produced by WithForecast.
type HoltParams struct {
	Alpha    float64
	Gamma    float64
	Init     TrendInit
	Forecast int
}

// DoubleExponentialFilter is Holt's linear smoother.
type DoubleExponentialFilter struct {
	p HoltParams
}

// NewDoubleExponential validates p. Alpha and Gamma must lie in (0, 1].
func NewDoubleExponential(p HoltParams) (*DoubleExponentialFilter, error) {
	if p.Alpha <= 0 || p.Alpha > 1 {
		return nil, eris.Wrapf(ErrInvalidParameter, "holt alpha %g", p.Alpha)
	}
	if p.Gamma <= 0 || p.Gamma > 1 {
		return nil, eris.Wrapf(ErrInvalidParameter, "holt gamma %g", p.Gamma)
	}
	if p.Init < FirstDifference || p.Init > SeriesSlope {
		return nil, eris.Wrapf(ErrInvalidParameter, "holt trend init %d", int(p.Init))
	}
	if p.Forecast < 0 {
		return nil, eris.Wrapf(ErrInvalidParameter, "holt forecast %d", p.Forecast)
	}
	return &DoubleExponentialFilter{p: p}, nil
}

// Params returns the validated parameters.
func (f *DoubleExponentialFilter) Params() HoltParams { return f.p }

// Smooth returns the level series: output[0] = x0, output[i] = level_i.
func (f *DoubleExponentialFilter) Smooth(values []float64) []float64 {
	levels, _, _ := f.run(values)
	return levels
}

// Forecast extrapolates steps values beyond the last sample,
// F_m = level_last + m*trend_last for m = 1..steps.
func (f *DoubleExponentialFilter) Forecast(values []float64, steps int) []float64 {
	if steps <= 0 || len(values) == 0 {
		return []float64{}
	}
	_, level, trend := f.run(values)
	out := make([]float64, steps)
	for m := range out {
		out[m] = level + float64(m+1)*trend
	}
	return out
}

// WithForecast returns the smoothed series and the configured number of
// forecast steps.
func (f *DoubleExponentialFilter) WithForecast(values []float64) (smoothed, forecast []float64) {
	return f.Smooth(values), f.Forecast(values, f.p.Forecast)
}

// run returns the level series and the final level and trend.
func (f *DoubleExponentialFilter) run(values []float64) (levels []float64, level, trend float64) {
	n := len(values)
	levels = clone(values)
	if n == 0 {
		return levels, 0, 0
	}
	if n < 2 {
		return levels, values[0], 0
	}

	alpha, gamma := f.p.Alpha, f.p.Gamma
	level = values[0]
	trend = initialTrend(values, f.p.Init)
	for i := 1; i < n; i++ {
		prev := level
		level = alpha*values[i] + (1-alpha)*(prev+trend)
		trend = gamma*(level-prev) + (1-gamma)*trend
		levels[i] = level
	}
	return levels, level, trend
}

func initialTrend(values []float64, init TrendInit) float64 {
	n := len(values)
	switch init {
	case FirstFourSlope:
		m := min(4, n)
		return (values[m-1] - values[0]) / float64(m-1)
	case SeriesSlope:
		return (values[n-1] - values[0]) / float64(n-1)
	default:
		return values[1] - values[0]
	}
}
