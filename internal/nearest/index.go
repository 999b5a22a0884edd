// Package nearest answers "closest point to a query" over an immutable set of
// track points, with a flat scan for small sets and a KD-tree for larger ones.
package nearest

import "github.com/sells-group/trackcore/internal/geodesy"

// LinearThreshold is the point count from which New builds a KD-tree.
const LinearThreshold = 20

// Match is the result of a nearest-point query.
type Match struct {
	Point    geodesy.GeoPoint `json:"point"`
	Index    int              `json:"index"`
	Distance float64          `json:"distance"`
}

// Index is an immutable nearest-neighbour structure. Nearest reports ok == false
// when the index holds no points.
type Index interface {
	Nearest(query geodesy.GeoPoint) (Match, bool)
	Len() int
}

// New picks the structure by size: a linear scan below LinearThreshold points,
// a KD-tree otherwise.
func New(points []geodesy.GeoPoint, alg geodesy.Algorithm) Index {
	if len(points) < LinearThreshold {
		return NewLinear(points, alg)
	}
	return NewKDTree(points, alg)
}
