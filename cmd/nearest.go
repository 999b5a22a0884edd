package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/nearest"
)

var nearestAlgorithm string

var nearestCmd = &cobra.Command{
	Use:   "nearest FILE LAT,LON[,ELE]",
	Short: "Find the track point closest to a coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := resolveDistance(nearestAlgorithm)
		if err != nil {
			return err
		}
		query, err := parseCoord(args[1])
		if err != nil {
			return err
		}
		tracks, err := loadTracks(args[0])
		if err != nil {
			return err
		}

		hit, err := findNearest(tracks, query, alg)
		if err != nil {
			return err
		}
		return printNearest(cmd.OutOrStdout(), hit)
	},
}

func init() {
	nearestCmd.Flags().StringVar(&nearestAlgorithm, "algorithm", "", "distance algorithm for the reported distance (default from config)")
	rootCmd.AddCommand(nearestCmd)
}

// trackHit locates a match within a multi-track file.
type trackHit struct {
	Track int
	Point int
	Match nearest.Match
}

// findNearest indexes the points of all tracks together and maps the match
// back to its track.
func findNearest(tracks []geodesy.Track, query geodesy.GeoPoint, alg geodesy.Algorithm) (trackHit, error) {
	var (
		points  []geodesy.GeoPoint
		offsets []int
	)
	for _, t := range tracks {
		offsets = append(offsets, len(points))
		points = append(points, t...)
	}

	m, ok := nearest.New(points, alg).Nearest(query)
	if !ok {
		return trackHit{}, eris.New("no points to search")
	}

	hit := trackHit{Match: m}
	for i, off := range offsets {
		if m.Index >= off {
			hit.Track = i
			hit.Point = m.Index - off
		}
	}
	return hit, nil
}

func printNearest(w io.Writer, hit trackHit) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "track %d point %d: %.6f,%.6f (%.1f m ele) at %.1f m\n",
		hit.Track, hit.Point,
		hit.Match.Point.Latitude, hit.Match.Point.Longitude, hit.Match.Point.Elevation,
		hit.Match.Distance,
	)
	return err
}
