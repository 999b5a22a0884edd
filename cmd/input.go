package main

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/trackio"
)

// parseCoord parses "LAT,LON" or "LAT,LON,ELE" in decimal degrees and metres.
func parseCoord(s string) (geodesy.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return geodesy.GeoPoint{}, eris.Errorf("coordinate %q: want LAT,LON[,ELE]", s)
	}

	values := make([]float64, 3)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geodesy.GeoPoint{}, eris.Wrapf(err, "coordinate %q", s)
		}
		values[i] = v
	}
	if values[0] < -90 || values[0] > 90 {
		return geodesy.GeoPoint{}, eris.Errorf("coordinate %q: latitude out of range", s)
	}
	if values[1] < -180 || values[1] > 180 {
		return geodesy.GeoPoint{}, eris.Errorf("coordinate %q: longitude out of range", s)
	}
	return geodesy.NewPoint(values[0], values[1], values[2]), nil
}

// isCoord reports whether arg looks like a coordinate rather than a file name.
func isCoord(arg string) bool {
	_, err := parseCoord(arg)
	return err == nil
}

// loadTracks reads every track of a GPX or shapefile, failing when the file holds none.
func loadTracks(path string) ([]geodesy.Track, error) {
	tracks, err := trackio.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, eris.Errorf("%s: no tracks found", path)
	}
	return tracks, nil
}
