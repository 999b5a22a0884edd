package smooth

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// maxHalfWindow caps the window on each side of a sample.
const maxHalfWindow = 100

// SavitzkyGolayParams configures the Savitzky-Golay smoother. A HalfWindow of
// zero means half the sequence length. With Preprocess set, a Hampel pass using
// the Hampel parameters runs first.
type SavitzkyGolayParams struct {
	Order      int
	HalfWindow int
	Preprocess bool
	Hampel     HampelParams
}

// SavitzkyGolayFilter fits a local polynomial around each sample and replaces the
// sample with the fitted value.
type SavitzkyGolayFilter struct {
	order      int
	halfWindow int
	pre        *HampelFilter
}

// NewSavitzkyGolay validates p.
func NewSavitzkyGolay(p SavitzkyGolayParams) (*SavitzkyGolayFilter, error) {
	if p.Order < 1 {
		return nil, eris.Wrapf(ErrInvalidParameter, "savitzky-golay order %d", p.Order)
	}
	if p.HalfWindow < 0 {
		return nil, eris.Wrapf(ErrInvalidParameter, "savitzky-golay half window %d", p.HalfWindow)
	}
	f := &SavitzkyGolayFilter{order: p.Order, halfWindow: p.HalfWindow}
	if p.Preprocess {
		pre, err := NewHampel(p.Hampel)
		if err != nil {
			return nil, eris.Wrap(err, "smooth: savitzky-golay preprocess")
		}
		f.pre = pre
	}
	return f, nil
}

type sgKey struct{ left, right, order int }

// Smooth filters values. Windows are clipped at the sequence ends, so edge
// samples use an asymmetric fit.
func (f *SavitzkyGolayFilter) Smooth(values []float64) []float64 {
	n := len(values)
	if n < 3 {
		return clone(values)
	}
	if f.pre != nil {
		values = f.pre.Smooth(values)
	}

	h := f.halfWindow
	if h <= 0 {
		h = n / 2
	}
	h = min(h, maxHalfWindow, n/2)
	order := max(1, min(f.order, h-1))

	cache := make(map[sgKey][]float64)
	out := make([]float64, n)
	for i := range values {
		left := min(h, i)
		right := min(h, n-1-i)
		key := sgKey{left: left, right: right, order: min(order, left+right)}

		coeffs, ok := cache[key]
		if !ok {
			var err error
			coeffs, err = sgCoefficients(key.left, key.right, key.order)
			if err != nil {
				zap.L().Debug("smooth: savitzky-golay fit failed",
					zap.Int("left", key.left), zap.Int("right", key.right),
					zap.Int("order", key.order), zap.Error(err))
			}
			cache[key] = coeffs
		}
		if coeffs == nil {
			out[i] = values[i]
			continue
		}

		var sum float64
		for j, c := range coeffs {
			sum += c * values[i-left+j]
		}
		out[i] = sum
	}
	return out
}

// sgCoefficients returns the weights that evaluate the least-squares polynomial of
// the given order at the centre sample of a window spanning left samples before
// and right samples after it. They are row 0 of the design matrix pseudo-inverse.
func sgCoefficients(left, right, order int) ([]float64, error) {
	size := left + right + 1
	// Scale abscissae into [-1, 1] to keep the Vandermonde matrix conditioned.
	scale := float64(max(left, right, 1))

	design := mat.NewDense(size, order+1, nil)
	for r := 0; r < size; r++ {
		t := float64(r-left) / scale
		for c := 0; c <= order; c++ {
			design.Set(r, c, math.Pow(t, float64(c)))
		}
	}

	identity := mat.NewDense(size, size, nil)
	for r := 0; r < size; r++ {
		identity.Set(r, r, 1)
	}

	var qr mat.QR
	qr.Factorize(design)
	var pinv mat.Dense
	if err := qr.SolveTo(&pinv, false, identity); err != nil {
		return nil, eris.Wrap(err, "smooth: solve savitzky-golay system")
	}
	return mat.Row(nil, 0, &pinv), nil
}
