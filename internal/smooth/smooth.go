// Package smooth filters numeric channels of a track: Hampel outlier removal,
// Savitzky-Golay polynomial smoothing and Holt double-exponential smoothing.
package smooth

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// Sentinel errors.
var (
	ErrUnknownAlgorithm = eris.New("smooth: unknown algorithm")
	ErrInvalidParameter = eris.New("smooth: invalid parameter")
)

// Algorithm selects a smoothing strategy.
type Algorithm int

const (
	// Hampel replaces outliers with the window median.
	Hampel Algorithm = iota
	// SavitzkyGolay convolves with local least-squares polynomial coefficients.
	SavitzkyGolay
	// DoubleExponential is Holt's level and trend smoother.
	DoubleExponential
)

func (a Algorithm) String() string {
	switch a {
	case Hampel:
		return "hampel"
	case SavitzkyGolay:
		return "savitzky-golay"
	case DoubleExponential:
		return "double-exponential"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a configuration value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hampel":
		return Hampel, nil
	case "savitzky-golay", "savitzkygolay", "sg":
		return SavitzkyGolay, nil
	case "double-exponential", "doubleexponential", "holt":
		return DoubleExponential, nil
	default:
		return 0, eris.Wrapf(ErrUnknownAlgorithm, "%q", s)
	}
}

// Smoother filters one channel. The output has the same length as the input and
// the input is never modified.
type Smoother interface {
	Smooth(values []float64) []float64
}

// Config carries the parameters of every algorithm; only the selected one is used.
type Config struct {
	Algorithm     Algorithm
	Hampel        HampelParams
	SavitzkyGolay SavitzkyGolayParams
	Holt          HoltParams
}

// New validates cfg and builds the selected smoother.
func New(cfg Config) (Smoother, error) {
	var (
		s   Smoother
		err error
	)
	switch cfg.Algorithm {
	case Hampel:
		s, err = NewHampel(cfg.Hampel)
	case SavitzkyGolay:
		s, err = NewSavitzkyGolay(cfg.SavitzkyGolay)
	case DoubleExponential:
		s, err = NewDoubleExponential(cfg.Holt)
	default:
		return nil, eris.Wrapf(ErrUnknownAlgorithm, "%d", int(cfg.Algorithm))
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SmoothTrack filters latitude, longitude and elevation independently and
// reassembles the points. Timestamps are carried over unchanged.
func SmoothTrack(track geodesy.Track, s Smoother) geodesy.Track {
	lats := s.Smooth(track.Latitudes())
	lons := s.Smooth(track.Longitudes())
	eles := s.Smooth(track.Elevations())

	out := make(geodesy.Track, len(track))
	for i, p := range track {
		p.Latitude = lats[i]
		p.Longitude = lons[i]
		p.Elevation = eles[i]
		out[i] = p
	}
	return out
}

func clone(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
