// Package trackio loads tracks from GPX and shapefiles and encodes them as
// GeoJSON or EWKB geometries.
package trackio

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tkrajina/gpxgo/gpx"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// ErrUnsupportedFormat is returned for file extensions without a reader.
var ErrUnsupportedFormat = eris.New("trackio: unsupported file format")

// ReadFile loads every track in path, choosing the reader by extension.
func ReadFile(path string) ([]geodesy.Track, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gpx":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "trackio: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadGPX(f)
	case ".shp":
		return ReadShapefile(path)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
}

// ReadGPX returns one track per track segment followed by one per route.
// Empty segments and routes are skipped. Missing elevations read as 0.
func ReadGPX(r io.Reader) ([]geodesy.Track, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "trackio: read gpx")
	}
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, eris.Wrap(err, "trackio: parse gpx")
	}

	var tracks []geodesy.Track
	for _, trk := range doc.Tracks {
		for _, seg := range trk.Segments {
			if t := fromGPXPoints(seg.Points); len(t) > 0 {
				tracks = append(tracks, t)
			}
		}
	}
	for _, rte := range doc.Routes {
		if t := fromGPXPoints(rte.Points); len(t) > 0 {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

func fromGPXPoints(points []gpx.GPXPoint) geodesy.Track {
	track := make(geodesy.Track, 0, len(points))
	for i := range points {
		p := &points[i]
		gp := geodesy.NewPoint(p.Latitude, p.Longitude, p.Elevation.Value())
		gp.Time = p.Timestamp
		track = append(track, gp)
	}
	return track
}

// WriteGPX writes tracks as GPX 1.1, one track with one segment each.
func WriteGPX(w io.Writer, tracks []geodesy.Track) error {
	doc := &gpx.GPX{Creator: "trackcore"}
	for _, t := range tracks {
		seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(t))}
		for _, p := range t {
			var pt gpx.GPXPoint
			pt.Latitude = p.Latitude
			pt.Longitude = p.Longitude
			pt.Elevation = *gpx.NewNullableFloat64(p.Elevation)
			pt.Timestamp = p.Time
			seg.Points = append(seg.Points, pt)
		}
		doc.Tracks = append(doc.Tracks, gpx.GPXTrack{Segments: []gpx.GPXTrackSegment{seg}})
	}

	data, err := doc.ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return eris.Wrap(err, "trackio: encode gpx")
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return eris.Wrap(err, "trackio: write gpx")
	}
	return nil
}
