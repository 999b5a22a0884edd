package geodesy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var allAlgorithms = []Algorithm{Planar, Haversine, Vincenty}

func oneDegreeOnSphere() float64 { return EarthRadius * math.Pi / 180 }

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
	}{
		{"haversine", Haversine},
		{"Vincenty", Vincenty},
		{" planar ", Planar},
		{"small-distance", Planar},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotEqual(t, "unknown", got.String())
		})
	}

	_, err := ParseAlgorithm("manhattan")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestDistance_NilPoints(t *testing.T) {
	p := NewPoint(46, 7, 500)
	for _, alg := range allAlgorithms {
		assert.Zero(t, Distance(nil, &p, alg), alg.String())
		assert.Zero(t, Distance(&p, nil, alg), alg.String())
		assert.Zero(t, Distance(nil, nil, alg), alg.String())
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	points := []GeoPoint{
		NewPoint(0, 0, 0),
		NewPoint(46.5, 7.25, 1200),
		NewPoint(-33.9, 151.2, 10),
		NewPoint(89.9, -179.9, 0),
	}
	for _, p := range points {
		for _, alg := range allAlgorithms {
			assert.Zero(t, Distance(&p, &p, alg), "%s at %+v", alg, p)
		}
	}
}

func TestDistance_Symmetric(t *testing.T) {
	pairs := [][2]GeoPoint{
		{NewPoint(46, 7, 0), NewPoint(46.01, 7.02, 0)},
		{NewPoint(51.5, -0.12, 10), NewPoint(48.85, 2.35, 35)},
		{NewPoint(-54.3, -105.2, 0), NewPoint(-53.9, -104.8, 0)},
		{NewPoint(10, 179.9, 0), NewPoint(10.1, -179.9, 0)},
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		for _, alg := range allAlgorithms {
			d1 := Distance(&a, &b, alg)
			d2 := Distance(&b, &a, alg)
			assert.InDelta(t, d1, d2, 1e-6*math.Max(1, d1), "%s %+v -> %+v", alg, a, b)
		}
	}
}

func TestDistance_KnownValues(t *testing.T) {
	origin := NewPoint(0, 0, 0)
	east := NewPoint(0, 1, 0)

	assert.InDelta(t, oneDegreeOnSphere(), Distance(&origin, &east, Haversine), 1e-6)
	assert.InDelta(t, oneDegreeOnSphere(), Distance(&origin, &east, Planar), 1e-6)
	// One degree along the equator of the ellipsoid is a*pi/180.
	assert.InDelta(t, wgs84A*math.Pi/180, Distance(&origin, &east, Vincenty), 0.01)
}

func TestDistance_ElevationPythagorean(t *testing.T) {
	a := NewPoint(46, 7, 100)
	b := NewPoint(46, 7, 400)
	for _, alg := range allAlgorithms {
		assert.InDelta(t, 300, Distance(&a, &b, alg), 1e-9, alg.String())
	}

	c := NewPoint(46.001, 7, 100)
	d := NewPoint(46.001, 7, 130)
	h := HorizontalDistance(&a, &d, Haversine)
	assert.InDelta(t, math.Sqrt(h*h+30*30), Distance(&a, &d, Haversine), 1e-9)
	assert.InDelta(t, HorizontalDistance(&a, &c, Haversine), Distance(&a, &c, Haversine), 1e-9)
}

func TestDistance_VincentyAgreesWithHaversine(t *testing.T) {
	starts := []GeoPoint{
		NewPoint(45, 7, 0),
		NewPoint(50, -3, 0),
		NewPoint(-40, 145, 0),
		NewPoint(35, 139, 0),
	}
	for _, start := range starts {
		for bearing := 0.0; bearing < 360; bearing += 30 {
			end := DestinationPoint(start, 8000, bearing)
			v := Distance(&start, &end, Vincenty)
			h := Distance(&start, &end, Haversine)
			require.Positive(t, v)
			assert.Less(t, math.Abs(v-h)/h, 0.005, "start %+v bearing %.0f", start, bearing)
		}
	}
}

func TestDistance_VincentyNearAntipodal(t *testing.T) {
	a := NewPoint(0, 0, 0)
	b := NewPoint(0.5, 179.99999, 0)

	d := Distance(&a, &b, Vincenty)
	assert.False(t, math.IsNaN(d))
	assert.InDelta(t, Distance(&a, &b, Haversine), d, 1e-6)
}

func TestDistance_VincentyNonConvergenceWarns(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	a := NewPoint(0, 0, 0)
	b := NewPoint(0.5, 179.7, 0)

	d := Distance(&a, &b, Vincenty)
	assert.False(t, math.IsNaN(d))
	assert.False(t, math.IsInf(d, 0))
	h := Distance(&a, &b, Haversine)
	assert.Less(t, math.Abs(d-h)/h, 0.005)

	entries := logs.FilterMessageSnippet("did not converge").All()
	require.Len(t, entries, 1)
	assert.Equal(t, 179.7, entries[0].ContextMap()["lon2"])
}

func TestBearing(t *testing.T) {
	origin := NewPoint(0, 0, 0)
	tests := []struct {
		name string
		to   GeoPoint
		want float64
	}{
		{"north", NewPoint(1, 0, 0), 0},
		{"east", NewPoint(0, 1, 0), 90},
		{"south", NewPoint(-1, 0, 0), 180},
		{"west", NewPoint(0, -1, 0), 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Bearing(&origin, &tt.to), 1e-9)
		})
	}
	assert.Zero(t, Bearing(nil, &origin))
}

func TestDurationSpeedSlope(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	a := GeoPoint{Latitude: 0, Longitude: 0, Elevation: 0, Time: t0}
	b := GeoPoint{Latitude: 0, Longitude: 0.001, Elevation: 10, Time: t0.Add(20 * time.Second)}

	assert.Equal(t, 20*time.Second, Duration(&a, &b))

	dist := Distance(&a, &b, Haversine)
	assert.InDelta(t, dist/20, Speed(&a, &b, Haversine), 1e-9)

	h := HorizontalDistance(&a, &b, Haversine)
	assert.InDelta(t, 100*10/h, Slope(&a, &b, Haversine), 1e-9)

	noTime := NewPoint(0, 0.002, 0)
	assert.Zero(t, Duration(&a, &noTime))
	assert.Zero(t, Speed(&a, &noTime, Haversine))

	same := GeoPoint{Elevation: 50}
	assert.Zero(t, Slope(&a, &same, Haversine))
}

func TestTrackAggregates(t *testing.T) {
	t0 := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	track := Track{
		{Latitude: 46.0, Longitude: 7.0, Elevation: 1000, Time: t0},
		{Latitude: 46.001, Longitude: 7.001, Elevation: 1010},
		{Latitude: 46.002, Longitude: 7.000, Elevation: 1005, Time: t0.Add(90 * time.Second)},
	}

	want := Distance(&track[0], &track[1], Haversine) + Distance(&track[1], &track[2], Haversine)
	assert.InDelta(t, want, track.Length(Haversine), 1e-9)
	assert.Equal(t, 90*time.Second, track.Duration())

	gain, loss := track.ElevationGainLoss()
	assert.InDelta(t, 10, gain, 1e-9)
	assert.InDelta(t, 5, loss, 1e-9)

	b := track.Bounds()
	assert.Equal(t, Bounds{MinLat: 46.0, MinLon: 7.0, MaxLat: 46.002, MaxLon: 7.001}, b)

	assert.Equal(t, []float64{1000, 1010, 1005}, track.Elevations())
	assert.Equal(t, Bounds{}, Track{}.Bounds())
	assert.Zero(t, Track{}.Duration())
}
