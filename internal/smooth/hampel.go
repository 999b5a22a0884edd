package smooth

import (
	"math"
	"slices"

	"github.com/rotisserie/eris"
)

const (
	// madScale makes the MAD a consistent estimator of the standard deviation
	// for normally distributed data.
	madScale = 1.4826

	defaultThreshold = 3.0
	minThreshold     = 0.1
)

// HampelParams configures the Hampel filter.
type HampelParams struct {
	HalfWindow int
	Threshold  float64
}

// HampelFilter replaces a value with its window median when it deviates by
// more than Threshold scaled MADs.
type HampelFilter struct {
	halfWindow int
	threshold  float64
}

// NewHampel validates p. Thresholds below 0.1 fall back to 3.0.
func NewHampel(p HampelParams) (*HampelFilter, error) {
	if p.HalfWindow < 1 {
		return nil, eris.Wrapf(ErrInvalidParameter, "hampel half window %d", p.HalfWindow)
	}
	threshold := p.Threshold
	if threshold < minThreshold {
		threshold = defaultThreshold
	}
	return &HampelFilter{halfWindow: p.HalfWindow, threshold: threshold}, nil
}

// HalfWindow returns the configured half window.
func (h *HampelFilter) HalfWindow() int { return h.halfWindow }

// Threshold returns the effective threshold.
func (h *HampelFilter) Threshold() float64 { return h.threshold }

// Smooth filters values. Points closer than the half window to either end are
// copied unchanged, as is any sequence shorter than a full window.
func (h *HampelFilter) Smooth(values []float64) []float64 {
	out := clone(values)
	w := h.halfWindow
	n := len(values)
	if n < 2*w+1 {
		return out
	}

	window := make([]float64, 2*w+1)
	dev := make([]float64, 2*w+1)
	for i := w; i < n-w; i++ {
		copy(window, values[i-w:i+w+1])
		m := median(window)
		for j, v := range values[i-w : i+w+1] {
			dev[j] = math.Abs(v - m)
		}
		mad := median(dev)

		x := values[i]
		if mad == 0 {
			if x != m {
				out[i] = m
			}
			continue
		}
		if math.Abs(x-m)/(madScale*mad) > h.threshold {
			out[i] = m
		}
	}
	return out
}

// median sorts buf in place.
func median(buf []float64) float64 {
	slices.Sort(buf)
	n := len(buf)
	if n%2 == 1 {
		return buf[n/2]
	}
	return (buf[n/2-1] + buf[n/2]) / 2
}
