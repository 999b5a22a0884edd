package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/srtm"
)

var (
	elevationMode    string
	elevationDataDir string
	elevationOutput  string
)

var elevationCmd = &cobra.Command{
	Use:   "elevation FILE|LAT,LON...",
	Short: "Look up SRTM elevations for coordinates or for every point of a track file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grid, err := newGrid(elevationDataDir, elevationMode)
		if err != nil {
			return err
		}
		defer func() {
			st := grid.Cache().Stats()
			zap.L().Info("srtm cache",
				zap.Int("tiles", st.Entries),
				zap.Int64("hits", st.Hits),
				zap.Int64("misses", st.Misses),
			)
		}()

		if isCoord(args[0]) {
			points := make(geodesy.Track, len(args))
			for i, arg := range args {
				p, err := parseCoord(arg)
				if err != nil {
					return err
				}
				points[i] = p
			}
			return printElevations(cmd.OutOrStdout(), points, grid.Elevations(points))
		}

		tracks, err := loadTracks(args[0])
		if err != nil {
			return err
		}
		if elevationOutput != "" {
			return writeGPXFile(elevationOutput, applyElevations(grid, tracks))
		}
		for _, t := range tracks {
			if err := printElevations(cmd.OutOrStdout(), t, grid.Elevations(t)); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	elevationCmd.Flags().StringVar(&elevationMode, "mode", "", "nearest or average (default from config)")
	elevationCmd.Flags().StringVar(&elevationDataDir, "data-dir", "", "directory holding .hgt or .hgt.zip tiles (default from config)")
	elevationCmd.Flags().StringVarP(&elevationOutput, "output", "o", "", "write the track with replaced elevations to this GPX file")
	rootCmd.AddCommand(elevationCmd)
}

// newGrid builds an on-disk grid, falling back to the configured directory and mode.
func newGrid(dir, mode string) (*srtm.Grid, error) {
	m := srtm.AverageNeighbours
	if cfg != nil {
		if dir == "" {
			dir = cfg.SRTM.DataDir
		}
		configured, err := cfg.SRTMMode()
		if err != nil {
			return nil, err
		}
		m = configured
	}
	if mode != "" {
		parsed, err := srtm.ParseMode(mode)
		if err != nil {
			return nil, err
		}
		m = parsed
	}
	if dir == "" {
		dir = "."
	}
	return srtm.NewOSGrid(dir, srtm.WithMode(m)), nil
}

// applyElevations replaces each point's elevation with the grid value where
// one is available.
func applyElevations(grid *srtm.Grid, tracks []geodesy.Track) []geodesy.Track {
	out := make([]geodesy.Track, len(tracks))
	for i, t := range tracks {
		samples := grid.Elevations(t)
		nt := make(geodesy.Track, len(t))
		for j, p := range t {
			if samples[j].Valid {
				p.Elevation = samples[j].Elevation
			}
			nt[j] = p
		}
		out[i] = nt
	}
	return out
}

func printElevations(w io.Writer, points geodesy.Track, samples []srtm.Sample) error {
	for i, p := range points {
		value := "-"
		if samples[i].Valid {
			value = fmt.Sprintf("%.1f", samples[i].Elevation)
		}
		if _, err := fmt.Fprintf(w, "%.6f,%.6f\t%s\n", p.Latitude, p.Longitude, value); err != nil {
			return err
		}
	}
	return nil
}
