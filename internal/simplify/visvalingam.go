package simplify

import (
	"container/heap"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// areaEntry is a heap candidate. Entries whose version no longer matches the
// point's current version are stale and skipped.
type areaEntry struct {
	index   int
	area    float64
	version int
}

// areaHeap orders by (area, index), the same order a left-to-right linear scan
// for the minimum would pick.
type areaHeap []areaEntry

func (h areaHeap) Len() int { return len(h) }
func (h areaHeap) Less(i, j int) bool {
	if h[i].area != h[j].area {
		return h[i].area < h[j].area
	}
	return h[i].index < h[j].index
}
func (h areaHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *areaHeap) Push(x any)   { *h = append(*h, x.(areaEntry)) }
func (h *areaHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// VisvalingamWhyattMask removes interior points in order of increasing effective
// area, lowest index first on equal areas, while the smallest area is below
// epsilon squared. Every surviving interior point spans at least epsilon squared
// with its surviving neighbours, so simplifying the result again removes nothing.
func VisvalingamWhyattMask(track geodesy.Track, epsilon float64) KeepMask {
	n := len(track)
	if mask := trivialMask(n); mask != nil {
		return mask
	}
	epsilon = clampEpsilon(epsilon)
	minArea := epsilon * epsilon

	prev := make([]int, n)
	next := make([]int, n)
	version := make([]int, n)
	for i := range track {
		prev[i] = i - 1
		next[i] = i + 1
	}

	area := func(i int) float64 {
		return geodesy.TriangleArea(&track[prev[i]], &track[i], &track[next[i]], geodesy.Haversine)
	}

	h := make(areaHeap, 0, n-2)
	for i := 1; i < n-1; i++ {
		h = append(h, areaEntry{index: i, area: area(i)})
	}
	heap.Init(&h)

	keep := make(KeepMask, n)
	for i := range keep {
		keep[i] = true
	}

	for h.Len() > 0 {
		e := h[0]
		if e.version != version[e.index] {
			heap.Pop(&h)
			continue
		}
		if e.area >= minArea {
			break
		}
		heap.Pop(&h)
		keep[e.index] = false

		l, r := prev[e.index], next[e.index]
		next[l] = r
		prev[r] = l
		for _, nb := range [2]int{l, r} {
			if nb == 0 || nb == n-1 {
				continue
			}
			version[nb]++
			heap.Push(&h, areaEntry{index: nb, area: area(nb), version: version[nb]})
		}
	}
	return keep
}
