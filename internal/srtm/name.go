package srtm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

var tileNamePattern = regexp.MustCompile(`^([NS])(\d{2})([EW])(\d{3})$`)

// TileKey is the signed south-west corner of a tile in whole degrees.
type TileKey struct {
	Lat int `json:"lat"`
	Lon int `json:"lon"`
}

// KeyForCoordinate floors both axes, so negative fractions round away from the
// equator and the prime meridian.
func KeyForCoordinate(lat, lon float64) TileKey {
	return TileKey{Lat: int(math.Floor(lat)), Lon: int(math.Floor(lon))}
}

// NameForCoordinate returns the name of the tile containing lat, lon,
// e.g. (-54.3, -105.2) -> "S55W106".
func NameForCoordinate(lat, lon float64) string {
	return KeyForCoordinate(lat, lon).Name()
}

// Name formats the key as <N|S>dd<E|W>ddd.
func (k TileKey) Name() string {
	ns, lat := "N", k.Lat
	if lat < 0 {
		ns, lat = "S", -lat
	}
	ew, lon := "E", k.Lon
	if lon < 0 {
		ew, lon = "W", -lon
	}
	return fmt.Sprintf("%s%02d%s%03d", ns, lat, ew, lon)
}

// ParseName parses a tile name, with or without a .hgt or .hgt.zip suffix.
func ParseName(name string) (TileKey, error) {
	base := strings.ToUpper(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, ".ZIP")
	base = strings.TrimSuffix(base, ".HGT")

	m := tileNamePattern.FindStringSubmatch(base)
	if m == nil {
		return TileKey{}, eris.Wrapf(ErrInvalidTileName, "%q", name)
	}
	lat, _ := strconv.Atoi(m[2])
	lon, _ := strconv.Atoi(m[4])
	if lat > 90 || lon > 180 {
		return TileKey{}, eris.Wrapf(ErrInvalidTileName, "%q out of range", name)
	}
	if m[1] == "S" {
		lat = -lat
	}
	if m[3] == "W" {
		lon = -lon
	}
	return TileKey{Lat: lat, Lon: lon}, nil
}
