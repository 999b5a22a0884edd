package nearest

import (
	"cmp"
	"math"
	"slices"

	"github.com/sells-group/trackcore/internal/geodesy"
)

type vec3 [3]float64

func (v vec3) dist2(o vec3) float64 {
	dx, dy, dz := v[0]-o[0], v[1]-o[1], v[2]-o[2]
	return dx*dx + dy*dy + dz*dz
}

// project places a point on the mean-radius sphere lifted by its elevation.
// With zero elevations the chord length grows monotonically with the
// haversine distance.
func project(p geodesy.GeoPoint) vec3 {
	lat := p.Latitude * math.Pi / 180
	lon := p.Longitude * math.Pi / 180
	r := geodesy.EarthRadius + p.Elevation
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	return vec3{r * cosLat * cosLon, r * cosLat * sinLon, r * sinLat}
}

type kdNode struct {
	index       int
	axis        int
	left, right *kdNode
}

// KDTree is a 3-axis median-split tree over cartesian-projected points.
type KDTree struct {
	points []geodesy.GeoPoint
	coords []vec3
	root   *kdNode
	alg    geodesy.Algorithm
}

// NewKDTree copies points and builds a balanced tree, cycling x, y, z by depth.
func NewKDTree(points []geodesy.GeoPoint, alg geodesy.Algorithm) *KDTree {
	t := &KDTree{
		points: slices.Clone(points),
		coords: make([]vec3, len(points)),
		alg:    alg,
	}
	order := make([]int, len(points))
	for i := range t.points {
		t.coords[i] = project(t.points[i])
		order[i] = i
	}
	t.root = t.build(order, 0)
	return t
}

func (t *KDTree) build(order []int, depth int) *kdNode {
	if len(order) == 0 {
		return nil
	}
	axis := depth % 3
	slices.SortFunc(order, func(a, b int) int {
		if c := cmp.Compare(t.coords[a][axis], t.coords[b][axis]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	median := len(order) / 2
	return &kdNode{
		index: order[median],
		axis:  axis,
		left:  t.build(order[:median], depth+1),
		right: t.build(order[median+1:], depth+1),
	}
}

// Len returns the number of indexed points.
func (t *KDTree) Len() int { return len(t.points) }

// Chord order only approximates the configured metric once elevations or the
// ellipsoid come in, so every point within this margin of the best chord is
// re-ranked with the real distance.
const (
	candidateSlack = 0.05
	candidateFloor = 1e-3
)

// Nearest returns the point closest to query under the tree's algorithm, the
// lowest index winning ties. The tree narrows the search to points whose chord
// is within a few percent of the shortest one.
func (t *KDTree) Nearest(query geodesy.GeoPoint) (Match, bool) {
	if t.root == nil {
		return Match{}, false
	}
	target := project(query)
	s := search{target: target, best: -1}
	s.visit(t, t.root)

	radius := math.Sqrt(s.bestD2)*(1+candidateSlack) + candidateFloor
	var candidates []int
	t.within(t.root, target, radius*radius, &candidates)

	best := Match{Index: -1}
	for _, i := range candidates {
		d := geodesy.Distance(&query, &t.points[i], t.alg)
		if best.Index < 0 || d < best.Distance || (d == best.Distance && i < best.Index) {
			best = Match{Point: t.points[i], Index: i, Distance: d}
		}
	}
	return best, true
}

// within appends every index whose chord to target is at most sqrt(r2).
func (t *KDTree) within(n *kdNode, target vec3, r2 float64, out *[]int) {
	if n == nil {
		return
	}
	c := t.coords[n.index]
	if c.dist2(target) <= r2 {
		*out = append(*out, n.index)
	}
	diff := target[n.axis] - c[n.axis]
	if diff <= 0 || diff*diff <= r2 {
		t.within(n.left, target, r2, out)
	}
	if diff >= 0 || diff*diff <= r2 {
		t.within(n.right, target, r2, out)
	}
}

type search struct {
	target vec3
	best   int
	bestD2 float64
}

func (s *search) offer(index int, d2 float64) {
	if s.best < 0 || d2 < s.bestD2 || (d2 == s.bestD2 && index < s.best) {
		s.best = index
		s.bestD2 = d2
	}
}

func (s *search) visit(t *KDTree, n *kdNode) {
	if n == nil {
		return
	}
	c := t.coords[n.index]
	s.offer(n.index, c.dist2(s.target))

	diff := s.target[n.axis] - c[n.axis]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = far, near
	}
	s.visit(t, near)
	// Equal bounds still descend so a lower-index tie on the far side is found.
	if diff*diff <= s.bestD2 {
		s.visit(t, far)
	}
}
