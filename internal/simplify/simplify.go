// Package simplify reduces tracks to keep-masks with the Douglas-Peucker,
// Visvalingam-Whyatt and Reumann-Witkam algorithms.
package simplify

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// Sentinel errors.
var (
	ErrUnknownAlgorithm = eris.New("simplify: unknown algorithm")
	ErrNegativeEpsilon  = eris.New("simplify: epsilon must not be negative")
)

// Algorithm selects a simplification strategy.
type Algorithm int

const (
	// DouglasPeucker recursively splits at the point farthest from the chord.
	DouglasPeucker Algorithm = iota
	// VisvalingamWhyatt repeatedly removes the point with the smallest effective area.
	VisvalingamWhyatt
	// ReumannWitkam drops points inside a corridor around the current direction.
	ReumannWitkam
)

func (a Algorithm) String() string {
	switch a {
	case DouglasPeucker:
		return "douglas-peucker"
	case VisvalingamWhyatt:
		return "visvalingam-whyatt"
	case ReumannWitkam:
		return "reumann-witkam"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a configuration value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "douglas-peucker", "douglaspeucker", "rdp":
		return DouglasPeucker, nil
	case "visvalingam-whyatt", "visvalingamwhyatt":
		return VisvalingamWhyatt, nil
	case "reumann-witkam", "reumannwitkam":
		return ReumannWitkam, nil
	default:
		return 0, eris.Wrapf(ErrUnknownAlgorithm, "%q", s)
	}
}

// KeepMask marks which points of a track survive simplification.
type KeepMask []bool

// Count returns the number of kept points.
func (m KeepMask) Count() int {
	n := 0
	for _, k := range m {
		if k {
			n++
		}
	}
	return n
}

// Apply returns the kept subsequence of track. The mask must be parallel to track.
func (m KeepMask) Apply(track geodesy.Track) geodesy.Track {
	out := make(geodesy.Track, 0, m.Count())
	for i, k := range m {
		if k {
			out = append(out, track[i])
		}
	}
	return out
}

// Indices returns the positions of kept points.
func (m KeepMask) Indices() []int {
	out := make([]int, 0, m.Count())
	for i, k := range m {
		if k {
			out = append(out, i)
		}
	}
	return out
}

// Simplify runs alg over track with tolerance epsilon in metres.
func Simplify(track geodesy.Track, alg Algorithm, epsilon float64) KeepMask {
	switch alg {
	case VisvalingamWhyatt:
		return VisvalingamWhyattMask(track, epsilon)
	case ReumannWitkam:
		return ReumannWitkamMask(track, epsilon)
	default:
		return DouglasPeuckerMask(track, epsilon)
	}
}

// Simplifier is a validated algorithm/epsilon pair.
type Simplifier struct {
	alg     Algorithm
	epsilon float64
}

// NewSimplifier validates the configuration and returns a Simplifier.
func NewSimplifier(alg Algorithm, epsilon float64) (*Simplifier, error) {
	if alg < DouglasPeucker || alg > ReumannWitkam {
		return nil, eris.Wrapf(ErrUnknownAlgorithm, "%d", int(alg))
	}
	if epsilon < 0 {
		return nil, eris.Wrapf(ErrNegativeEpsilon, "%g", epsilon)
	}
	return &Simplifier{alg: alg, epsilon: epsilon}, nil
}

// Algorithm returns the configured algorithm.
func (s *Simplifier) Algorithm() Algorithm { return s.alg }

// Epsilon returns the configured tolerance in metres.
func (s *Simplifier) Epsilon() float64 { return s.epsilon }

// Simplify computes the keep-mask for track.
func (s *Simplifier) Simplify(track geodesy.Track) KeepMask {
	return Simplify(track, s.alg, s.epsilon)
}

// trivialMask returns an all-true mask for tracks that cannot be reduced, or nil.
func trivialMask(n int) KeepMask {
	if n > 2 {
		return nil
	}
	mask := make(KeepMask, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

func clampEpsilon(epsilon float64) float64 {
	if epsilon < 0 {
		return 0
	}
	return epsilon
}
