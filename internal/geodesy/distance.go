package geodesy

import (
	"math"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Earth model constants.
const (
	// EarthRadius is the mean earth radius in metres.
	EarthRadius = 6372795.477598

	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
	wgs84B = (1 - wgs84F) * wgs84A
)

// Vincenty iteration limits.
const (
	vincentyMaxIterations = 100
	vincentyTolerance     = 1e-12
	antipodalMargin       = 1e-4
)

// ErrUnknownAlgorithm is returned when a distance algorithm name is not recognised.
var ErrUnknownAlgorithm = eris.New("geodesy: unknown distance algorithm")

// Algorithm selects how horizontal distances are computed.
type Algorithm int

const (
	// Haversine is the great-circle distance on the mean-radius sphere.
	Haversine Algorithm = iota
	// Planar is the equirectangular small-distance approximation.
	Planar
	// Vincenty is the iterative inverse solution on the WGS84 ellipsoid.
	Vincenty
)

func (a Algorithm) String() string {
	switch a {
	case Haversine:
		return "haversine"
	case Planar:
		return "planar"
	case Vincenty:
		return "vincenty"
	default:
		return "unknown"
	}
}

// ParseAlgorithm maps a configuration value to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "haversine":
		return Haversine, nil
	case "planar", "small-distance":
		return Planar, nil
	case "vincenty":
		return Vincenty, nil
	default:
		return 0, eris.Wrapf(ErrUnknownAlgorithm, "%q", s)
	}
}

// Distance returns the distance in metres between two points, including the
// elevation difference as a Pythagorean term. A nil point yields 0.
func Distance(p1, p2 *GeoPoint, alg Algorithm) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	h := HorizontalDistance(p1, p2, alg)
	dEle := p2.Elevation - p1.Elevation
	if dEle == 0 {
		return h
	}
	return math.Sqrt(h*h + dEle*dEle)
}

// HorizontalDistance returns the distance in metres ignoring elevation.
func HorizontalDistance(p1, p2 *GeoPoint, alg Algorithm) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	switch alg {
	case Planar:
		return planarDistance(p1, p2)
	case Vincenty:
		return vincentyDistance(p1, p2)
	default:
		return haversineDistance(p1, p2)
	}
}

// centralAngle returns the haversine angular distance in radians.
func centralAngle(p1, p2 *GeoPoint) float64 {
	lat1 := toRadians(p1.Latitude)
	lat2 := toRadians(p2.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(p2.Longitude - p1.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func haversineDistance(p1, p2 *GeoPoint) float64 {
	return EarthRadius * centralAngle(p1, p2)
}

func planarDistance(p1, p2 *GeoPoint) float64 {
	dLat := toRadians(p2.Latitude - p1.Latitude)
	dLon := normalizeRadians(toRadians(p2.Longitude - p1.Longitude))
	meanLat := toRadians(p1.Latitude+p2.Latitude) / 2

	x := dLon * math.Cos(meanLat)
	return EarthRadius * math.Sqrt(x*x+dLat*dLat)
}

func vincentyDistance(p1, p2 *GeoPoint) float64 {
	l := normalizeRadians(toRadians(p2.Longitude - p1.Longitude))
	if math.Abs(l) >= math.Pi-antipodalMargin {
		// Nearly antipodal longitudes make lambda oscillate; use the sphere.
		return haversineDistance(p1, p2)
	}

	u1 := math.Atan((1 - wgs84F) * math.Tan(toRadians(p1.Latitude)))
	u2 := math.Atan((1 - wgs84F) * math.Tan(toRadians(p2.Latitude)))
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cos2Alpha, cos2SigmaM float64
	converged := false
	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda := math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Sqrt(t1*t1 + t2*t2)
		if sinSigma == 0 {
			return 0
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cos2Alpha = 1 - sinAlpha*sinAlpha
		if cos2Alpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cos2Alpha
		} else {
			cos2SigmaM = 0 // equatorial line
		}
		c := wgs84F / 16 * cos2Alpha * (4 + wgs84F*(4-3*cos2Alpha))
		prev := lambda
		lambda = l + (1-c)*wgs84F*sinAlpha*
			(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-prev) < vincentyTolerance {
			converged = true
			break
		}
	}
	if !converged {
		zap.L().Warn("geodesy: vincenty did not converge, using last approximation",
			zap.Float64("lat1", p1.Latitude), zap.Float64("lon1", p1.Longitude),
			zap.Float64("lat2", p2.Latitude), zap.Float64("lon2", p2.Longitude),
		)
	}

	uSq := cos2Alpha * (wgs84A*wgs84A - wgs84B*wgs84B) / (wgs84B * wgs84B)
	a := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	b := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := b * sinSigma * (cos2SigmaM + b/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		b/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))

	return wgs84B * a * (sigma - deltaSigma)
}

// Bearing returns the initial great-circle bearing from p1 to p2 in degrees [0, 360).
func Bearing(p1, p2 *GeoPoint) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	return toDegrees(bearingRadians(p1, p2))
}

// bearingRadians returns the initial bearing in radians normalised to [0, 2pi).
func bearingRadians(p1, p2 *GeoPoint) float64 {
	lat1 := toRadians(p1.Latitude)
	lat2 := toRadians(p2.Latitude)
	dLon := toRadians(p2.Longitude - p1.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	theta := math.Atan2(y, x)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	if theta >= 2*math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}

// Duration returns the elapsed time from p1 to p2, or 0 if either lacks a timestamp.
func Duration(p1, p2 *GeoPoint) time.Duration {
	if p1 == nil || p2 == nil || !p1.HasTime() || !p2.HasTime() {
		return 0
	}
	return p2.Time.Sub(p1.Time)
}

// Speed returns the speed in m/s between two points, 0 without a positive duration.
func Speed(p1, p2 *GeoPoint, alg Algorithm) float64 {
	d := Duration(p1, p2)
	if d <= 0 {
		return 0
	}
	return Distance(p1, p2, alg) / d.Seconds()
}

// Slope returns the grade from p1 to p2 in percent, 0 for coincident horizontal positions.
func Slope(p1, p2 *GeoPoint, alg Algorithm) float64 {
	if p1 == nil || p2 == nil {
		return 0
	}
	h := HorizontalDistance(p1, p2, alg)
	if h == 0 {
		return 0
	}
	return 100 * (p2.Elevation - p1.Elevation) / h
}

// normalizeRadians maps an angle into (-pi, pi].
func normalizeRadians(r float64) float64 {
	r = math.Mod(r, 2*math.Pi)
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r <= -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
