package geodesy

import "math"

// heronThreshold is the side length below which triangles are treated as planar.
const heronThreshold = 100.0

// TriangleArea returns the area in square metres of the triangle a, b, c.
// Small triangles (all sides below 100 m) use Heron's formula on the pairwise
// distances, larger ones the spherical excess on the mean-radius sphere.
func TriangleArea(a, b, c *GeoPoint, alg Algorithm) float64 {
	if a == nil || b == nil || c == nil {
		return 0
	}
	ab := HorizontalDistance(a, b, alg)
	bc := HorizontalDistance(b, c, alg)
	ca := HorizontalDistance(c, a, alg)

	if ab < heronThreshold && bc < heronThreshold && ca < heronThreshold {
		return heron(ab, bc, ca)
	}
	return sphericalExcess(centralAngle(a, b), centralAngle(b, c), centralAngle(c, a)) *
		EarthRadius * EarthRadius
}

func heron(x, y, z float64) float64 {
	s := (x + y + z) / 2
	v := s * (s - x) * (s - y) * (s - z)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}

// sphericalExcess applies L'Huilier's theorem to the angular side lengths.
func sphericalExcess(a, b, c float64) float64 {
	s := (a + b + c) / 2
	t := math.Tan(s/2) * math.Tan((s-a)/2) * math.Tan((s-b)/2) * math.Tan((s-c)/2)
	if t <= 0 || math.IsNaN(t) {
		return 0
	}
	return 4 * math.Atan(math.Sqrt(t))
}

// DistanceToGreatCircle returns the absolute cross-track distance in metres from p
// to the great circle through a and b. Coincident a and b degrade to the distance a-p.
func DistanceToGreatCircle(p, a, b *GeoPoint) float64 {
	if p == nil || a == nil || b == nil {
		return 0
	}
	if centralAngle(a, b) == 0 {
		return haversineDistance(a, p)
	}
	d13 := centralAngle(a, p)
	if d13 == 0 {
		return 0
	}
	theta13 := bearingRadians(a, p)
	theta12 := bearingRadians(a, b)

	x := math.Sin(d13) * math.Sin(theta13-theta12)
	x = math.Max(-1, math.Min(1, x))
	return math.Abs(math.Asin(x)) * EarthRadius
}

// DestinationPoint returns the point reached from origin after travelling distance
// metres along the initial bearing (degrees) on the mean-radius sphere. Elevation and
// time are copied from origin.
func DestinationPoint(origin GeoPoint, distance, bearing float64) GeoPoint {
	delta := distance / EarthRadius
	theta := toRadians(bearing)
	lat1 := toRadians(origin.Latitude)
	lon1 := toRadians(origin.Longitude)

	sinLat1, cosLat1 := math.Sincos(lat1)
	sinDelta, cosDelta := math.Sincos(delta)

	sinLat2 := sinLat1*cosDelta + cosLat1*sinDelta*math.Cos(theta)
	lat2 := math.Asin(math.Max(-1, math.Min(1, sinLat2)))
	lon2 := lon1 + math.Atan2(math.Sin(theta)*sinDelta*cosLat1, cosDelta-sinLat1*sinLat2)

	dest := origin
	dest.Latitude = toDegrees(lat2)
	dest.Longitude = normalizeLongitude(toDegrees(lon2))
	return dest
}

// normalizeLongitude maps degrees into [-180, 180).
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
