// Package geodesy provides the point model and the earth geometry used by every
// track algorithm: distances, bearings, areas and projections.
package geodesy

import (
	"math"
	"time"
)

// GeoPoint is a single track sample. The zero Time means the sample carries no timestamp.
type GeoPoint struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
	Elevation float64   `json:"ele"`
	Time      time.Time `json:"time,omitzero"`
}

// NewPoint returns a point without timestamp.
func NewPoint(lat, lon, ele float64) GeoPoint {
	return GeoPoint{Latitude: lat, Longitude: lon, Elevation: ele}
}

// HasTime reports whether the point carries a timestamp.
func (p GeoPoint) HasTime() bool { return !p.Time.IsZero() }

// Track is an ordered sequence of points. Every operation preserves its order.
type Track []GeoPoint

// Bounds is a latitude/longitude bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat" yaml:"min_lat"`
	MinLon float64 `json:"min_lon" yaml:"min_lon"`
	MaxLat float64 `json:"max_lat" yaml:"max_lat"`
	MaxLon float64 `json:"max_lon" yaml:"max_lon"`
}

// Length returns the summed distance between consecutive points.
func (t Track) Length(alg Algorithm) float64 {
	var total float64
	for i := 1; i < len(t); i++ {
		total += Distance(&t[i-1], &t[i], alg)
	}
	return total
}

// Duration returns the time between the first and the last timestamped point.
func (t Track) Duration() time.Duration {
	var first, last *GeoPoint
	for i := range t {
		if !t[i].HasTime() {
			continue
		}
		if first == nil {
			first = &t[i]
		}
		last = &t[i]
	}
	if first == nil {
		return 0
	}
	return Duration(first, last)
}

// ElevationGainLoss returns the cumulative ascent and descent in metres.
func (t Track) ElevationGainLoss() (gain, loss float64) {
	for i := 1; i < len(t); i++ {
		d := t[i].Elevation - t[i-1].Elevation
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	return gain, loss
}

// Bounds returns the bounding box of the track. An empty track yields the zero box.
func (t Track) Bounds() Bounds {
	if len(t) == 0 {
		return Bounds{}
	}
	b := Bounds{
		MinLat: math.Inf(1), MinLon: math.Inf(1),
		MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
	}
	for _, p := range t {
		b.MinLat = math.Min(b.MinLat, p.Latitude)
		b.MaxLat = math.Max(b.MaxLat, p.Latitude)
		b.MinLon = math.Min(b.MinLon, p.Longitude)
		b.MaxLon = math.Max(b.MaxLon, p.Longitude)
	}
	return b
}

// Latitudes returns the latitude channel of the track.
func (t Track) Latitudes() []float64 {
	return t.channel(func(p GeoPoint) float64 { return p.Latitude })
}

// Longitudes returns the longitude channel of the track.
func (t Track) Longitudes() []float64 {
	return t.channel(func(p GeoPoint) float64 { return p.Longitude })
}

// Elevations returns the elevation channel of the track.
func (t Track) Elevations() []float64 {
	return t.channel(func(p GeoPoint) float64 { return p.Elevation })
}

func (t Track) channel(get func(GeoPoint) float64) []float64 {
	out := make([]float64, len(t))
	for i, p := range t {
		out[i] = get(p)
	}
	return out
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
