package nearest

import (
	"slices"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// Linear scans every point with the configured distance algorithm.
type Linear struct {
	points []geodesy.GeoPoint
	alg    geodesy.Algorithm
}

// NewLinear copies points into a flat index.
func NewLinear(points []geodesy.GeoPoint, alg geodesy.Algorithm) *Linear {
	return &Linear{points: slices.Clone(points), alg: alg}
}

// Len returns the number of indexed points.
func (l *Linear) Len() int { return len(l.points) }

// Nearest returns the closest point; the lowest index wins ties.
func (l *Linear) Nearest(query geodesy.GeoPoint) (Match, bool) {
	if len(l.points) == 0 {
		return Match{}, false
	}
	best := Match{Index: -1}
	for i := range l.points {
		d := geodesy.Distance(&query, &l.points[i], l.alg)
		if best.Index < 0 || d < best.Distance {
			best = Match{Point: l.points[i], Index: i, Distance: d}
		}
	}
	return best, true
}
