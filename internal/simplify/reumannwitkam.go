package simplify

import "github.com/sells-group/trackcore/internal/geodesy"

// ReumannWitkamMask slides a corridor of half-width epsilon along the great circle
// through the two most recently kept points, starting from the first and last
// points of the track. A point that leaves the corridor is kept together with the
// last point inside it, and the pair anchors the next corridor. Runs of three or
// more coincident points are kept whole so a stationary cluster is not swallowed.
//
// Every decision depends only on kept points, so simplifying the result again
// with the same epsilon removes nothing.
func ReumannWitkamMask(track geodesy.Track, epsilon float64) KeepMask {
	n := len(track)
	if mask := trivialMask(n); mask != nil {
		return mask
	}
	epsilon = clampEpsilon(epsilon)

	keep := stationaryRuns(track)
	keep[0] = true
	keep[n-1] = true

	a, b, last := 0, n-1, 0
	for j := 1; j < n-1; j++ {
		if keep[j] {
			a, b, last = last, j, j
			continue
		}
		if geodesy.DistanceToGreatCircle(&track[j], &track[a], &track[b]) <= epsilon {
			continue
		}
		keep[j-1] = true
		keep[j] = true
		a, b, last = j-1, j, j
	}
	return keep
}

// stationaryRuns marks every point of a run of three or more consecutive
// coincident points.
func stationaryRuns(track geodesy.Track) KeepMask {
	keep := make(KeepMask, len(track))
	start := 0
	for i := 1; i <= len(track); i++ {
		if i < len(track) && geodesy.Distance(&track[start], &track[i], geodesy.Haversine) == 0 {
			continue
		}
		if i-start >= 3 {
			for k := start; k < i; k++ {
				keep[k] = true
			}
		}
		start = i
	}
	return keep
}
