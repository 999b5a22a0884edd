package simplify

import "github.com/sells-group/trackcore/internal/geodesy"

type span struct{ first, last int }

// DouglasPeuckerMask keeps the first and last point and recursively every point whose
// cross-track distance to the current chord exceeds epsilon. When no interior point
// qualifies, the segment end is kept only if the chord itself is longer than epsilon.
func DouglasPeuckerMask(track geodesy.Track, epsilon float64) KeepMask {
	if mask := trivialMask(len(track)); mask != nil {
		return mask
	}
	epsilon = clampEpsilon(epsilon)

	keep := make(KeepMask, len(track))
	keep[0] = true
	keep[len(track)-1] = true

	stack := []span{{0, len(track) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.last-s.first < 2 {
			continue
		}

		first, last := &track[s.first], &track[s.last]
		maxDist := -1.0
		index := s.first
		for i := s.first + 1; i < s.last; i++ {
			if d := geodesy.DistanceToGreatCircle(&track[i], first, last); d > maxDist {
				maxDist = d
				index = i
			}
		}

		if maxDist > epsilon {
			keep[index] = true
			// Push the right half first so the left half is processed first.
			stack = append(stack, span{index, s.last}, span{s.first, index})
			continue
		}
		if geodesy.Distance(first, last, geodesy.Haversine) > epsilon {
			keep[s.last] = true
		}
	}
	return keep
}
