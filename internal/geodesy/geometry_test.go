package geodesy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriangleArea_SmallUsesHeron(t *testing.T) {
	a := NewPoint(0, 0, 0)
	b := NewPoint(0, 0.0005, 0)
	c := NewPoint(0.0005, 0, 0)

	leg := HorizontalDistance(&a, &b, Haversine)
	assert.Less(t, leg, heronThreshold)

	area := TriangleArea(&a, &b, &c, Haversine)
	assert.InEpsilon(t, 0.5*leg*leg, area, 1e-3)
}

func TestTriangleArea_LargeUsesSphericalExcess(t *testing.T) {
	// One octant of the sphere.
	a := NewPoint(0, 0, 0)
	b := NewPoint(0, 90, 0)
	c := NewPoint(90, 0, 0)

	want := math.Pi * EarthRadius * EarthRadius / 2
	assert.InEpsilon(t, want, TriangleArea(&a, &b, &c, Haversine), 1e-9)
}

func TestTriangleArea_Degenerate(t *testing.T) {
	a := NewPoint(46, 7, 0)
	b := NewPoint(46, 7.0001, 0)
	c := NewPoint(46, 7.0002, 0)

	area := TriangleArea(&a, &b, &c, Haversine)
	assert.False(t, math.IsNaN(area))
	assert.InDelta(t, 0, area, 0.5)

	assert.Zero(t, TriangleArea(&a, &a, &a, Haversine))
	assert.Zero(t, TriangleArea(nil, &b, &c, Haversine))

	far := NewPoint(10, 20, 0)
	assert.Zero(t, TriangleArea(&a, &a, &far, Haversine))
}

func TestDistanceToGreatCircle(t *testing.T) {
	a := NewPoint(0, 0, 0)
	b := NewPoint(0, 1, 0)

	north := NewPoint(1, 0.5, 0)
	assert.InEpsilon(t, oneDegreeOnSphere(), DistanceToGreatCircle(&north, &a, &b), 1e-9)

	south := NewPoint(-1, 0.5, 0)
	assert.InEpsilon(t, oneDegreeOnSphere(), DistanceToGreatCircle(&south, &a, &b), 1e-9)

	onLine := NewPoint(0, 0.25, 0)
	assert.InDelta(t, 0, DistanceToGreatCircle(&onLine, &a, &b), 1e-6)

	// Degenerate chord falls back to point distance.
	p := NewPoint(0.01, 0.01, 0)
	assert.InDelta(t, HorizontalDistance(&a, &p, Haversine), DistanceToGreatCircle(&p, &a, &a), 1e-9)
	assert.Zero(t, DistanceToGreatCircle(&a, &a, &b))
}

func TestDestinationPoint(t *testing.T) {
	origin := NewPoint(0, 0, 250)

	east := DestinationPoint(origin, oneDegreeOnSphere(), 90)
	assert.InDelta(t, 0, east.Latitude, 1e-9)
	assert.InDelta(t, 1, east.Longitude, 1e-9)
	assert.Equal(t, 250.0, east.Elevation)

	start := NewPoint(46.5, 7.3, 0)
	for _, bearing := range []float64{0, 45, 135, 200, 315} {
		dest := DestinationPoint(start, 5000, bearing)
		assert.InDelta(t, 5000, HorizontalDistance(&start, &dest, Haversine), 1e-6)
		assert.InDelta(t, bearing, Bearing(&start, &dest), 1e-6)
	}

	wrapped := DestinationPoint(NewPoint(0, 179.5, 0), oneDegreeOnSphere(), 90)
	assert.InDelta(t, -179.5, wrapped.Longitude, 1e-9)
}
