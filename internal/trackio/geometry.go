package trackio

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// SRID is the spatial reference of every encoded geometry (WGS84).
const SRID = 4326

// LineString converts a track to an XYZ line string (lon, lat, elevation).
func LineString(track geodesy.Track) *geom.LineString {
	flat := make([]float64, 0, len(track)*3)
	for _, p := range track {
		flat = append(flat, p.Longitude, p.Latitude, p.Elevation)
	}
	return geom.NewLineStringFlat(geom.XYZ, flat).SetSRID(SRID)
}

// EncodeEWKB encodes a track as little-endian EWKB.
func EncodeEWKB(track geodesy.Track) ([]byte, error) {
	data, err := ewkb.Marshal(LineString(track), ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "trackio: encode EWKB")
	}
	return data, nil
}

// EncodeGeoJSON encodes a track as a GeoJSON Feature with the given properties.
func EncodeGeoJSON(track geodesy.Track, props map[string]any) ([]byte, error) {
	feature := &geojson.Feature{
		Geometry:   LineString(track),
		Properties: props,
	}
	data, err := json.Marshal(feature)
	if err != nil {
		return nil, eris.Wrap(err, "trackio: encode GeoJSON")
	}
	return data, nil
}

// DecodeEWKB reverses EncodeEWKB.
func DecodeEWKB(data []byte) (geodesy.Track, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "trackio: decode EWKB")
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, eris.Errorf("trackio: expected LineString, got %T", g)
	}

	stride := ls.Stride()
	flat := ls.FlatCoords()
	track := make(geodesy.Track, 0, ls.NumCoords())
	for i := 0; i+1 < len(flat); i += stride {
		var ele float64
		if stride > 2 {
			ele = flat[i+2]
		}
		track = append(track, geodesy.NewPoint(flat[i+1], flat[i], ele))
	}
	return track, nil
}
