package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/smooth"
	"github.com/sells-group/trackcore/internal/trackio"
)

var (
	smoothAlgorithm     string
	smoothElevationOnly bool
	smoothOutput        string
)

var smoothCmd = &cobra.Command{
	Use:   "smooth FILE",
	Short: "Smooth track coordinates and elevations and write the result as GPX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSmoother(smoothAlgorithm)
		if err != nil {
			return err
		}
		tracks, err := loadTracks(args[0])
		if err != nil {
			return err
		}

		smoothed := smoothTracks(tracks, s, smoothElevationOnly)
		zap.L().Info("smoothed tracks",
			zap.String("file", args[0]),
			zap.Int("tracks", len(smoothed)),
			zap.Bool("elevation_only", smoothElevationOnly),
		)

		if smoothOutput != "" {
			return writeGPXFile(smoothOutput, smoothed)
		}
		return trackio.WriteGPX(cmd.OutOrStdout(), smoothed)
	},
}

func init() {
	smoothCmd.Flags().StringVar(&smoothAlgorithm, "algorithm", "", "hampel, savitzky-golay or holt (default from config)")
	smoothCmd.Flags().BoolVar(&smoothElevationOnly, "elevation-only", false, "leave coordinates untouched")
	smoothCmd.Flags().StringVarP(&smoothOutput, "output", "o", "", "output GPX file (default stdout)")
	rootCmd.AddCommand(smoothCmd)
}

// resolveSmoother builds the configured smoother with an optional algorithm override.
func resolveSmoother(override string) (smooth.Smoother, error) {
	var params smooth.Config
	if cfg != nil {
		p, err := cfg.SmoothParams()
		if err != nil {
			return nil, err
		}
		params = p
	}
	if override != "" {
		alg, err := smooth.ParseAlgorithm(override)
		if err != nil {
			return nil, err
		}
		params.Algorithm = alg
	}
	return smooth.New(params)
}

func smoothTracks(tracks []geodesy.Track, s smooth.Smoother, elevationOnly bool) []geodesy.Track {
	out := make([]geodesy.Track, len(tracks))
	for i, track := range tracks {
		if !elevationOnly {
			out[i] = smooth.SmoothTrack(track, s)
			continue
		}
		eles := s.Smooth(track.Elevations())
		t := make(geodesy.Track, len(track))
		for j, p := range track {
			p.Elevation = eles[j]
			t[j] = p
		}
		out[i] = t
	}
	return out
}
