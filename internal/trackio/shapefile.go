package trackio

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// ReadShapefile returns one track per polyline part. Point records are
// collected, in file order, into one trailing track.
func ReadShapefile(path string) ([]geodesy.Track, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "trackio: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	var (
		tracks  []geodesy.Track
		points  geodesy.Track
		skipped int
	)
	for reader.Next() {
		_, shape := reader.Shape()
		switch s := shape.(type) {
		case *shp.Point:
			points = append(points, geodesy.NewPoint(s.Y, s.X, 0))
		case *shp.PointZ:
			points = append(points, geodesy.NewPoint(s.Y, s.X, s.Z))
		default:
			parts := shapeTracks(shape)
			if parts == nil {
				skipped++
				continue
			}
			tracks = append(tracks, parts...)
		}
	}
	if len(points) > 0 {
		tracks = append(tracks, points)
	}

	if skipped > 0 {
		zap.L().Debug("trackio: skipped shapefile records",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return tracks, nil
}

// shapeTracks splits a line shape into one track per part. It returns nil for
// shapes that carry no line geometry.
func shapeTracks(shape shp.Shape) []geodesy.Track {
	switch s := shape.(type) {
	case *shp.PolyLine:
		if s == nil {
			return nil
		}
		return splitParts(s.Parts, s.Points, nil)
	case *shp.PolyLineZ:
		if s == nil {
			return nil
		}
		return splitParts(s.Parts, s.Points, s.ZArray)
	default:
		return nil
	}
}

func splitParts(parts []int32, pts []shp.Point, z []float64) []geodesy.Track {
	if len(parts) == 0 || len(pts) == 0 {
		return nil
	}
	tracks := make([]geodesy.Track, 0, len(parts))
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start >= end || end > int32(len(pts)) {
			zap.L().Debug("trackio: skipping malformed polyline part", zap.Int("part", i))
			continue
		}

		track := make(geodesy.Track, 0, end-start)
		for j := start; j < end; j++ {
			var ele float64
			if int(j) < len(z) {
				ele = z[j]
			}
			track = append(track, geodesy.NewPoint(pts[j].Y, pts[j].X, ele))
		}
		tracks = append(tracks, track)
	}
	return tracks
}
