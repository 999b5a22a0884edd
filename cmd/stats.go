package main

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/trackcore/internal/geodesy"
)

var (
	statsFormat    string
	statsAlgorithm string
)

var statsCmd = &cobra.Command{
	Use:   "stats FILE",
	Short: "Print length, duration, climb and bounds of every track in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := resolveDistance(statsAlgorithm)
		if err != nil {
			return err
		}
		tracks, err := loadTracks(args[0])
		if err != nil {
			return err
		}
		return writeStats(cmd.OutOrStdout(), computeStats(args[0], tracks, alg), statsFormat)
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", formatText, "output format: text, json or yaml")
	statsCmd.Flags().StringVar(&statsAlgorithm, "algorithm", "", "distance algorithm (default from config)")
	rootCmd.AddCommand(statsCmd)
}

// trackStats summarises one track.
type trackStats struct {
	File     string         `json:"file" yaml:"file"`
	Track    int            `json:"track" yaml:"track"`
	Points   int            `json:"points" yaml:"points"`
	Length   float64        `json:"length_m" yaml:"length_m"`
	Duration float64        `json:"duration_s" yaml:"duration_s"`
	Speed    float64        `json:"avg_speed_mps" yaml:"avg_speed_mps"`
	Gain     float64        `json:"gain_m" yaml:"gain_m"`
	Loss     float64        `json:"loss_m" yaml:"loss_m"`
	Bounds   geodesy.Bounds `json:"bounds" yaml:"bounds"`
}

func computeStats(file string, tracks []geodesy.Track, alg geodesy.Algorithm) []trackStats {
	out := make([]trackStats, len(tracks))
	for i, t := range tracks {
		gain, loss := t.ElevationGainLoss()
		s := trackStats{
			File:     file,
			Track:    i,
			Points:   len(t),
			Length:   t.Length(alg),
			Duration: t.Duration().Seconds(),
			Gain:     gain,
			Loss:     loss,
			Bounds:   t.Bounds(),
		}
		if s.Duration > 0 {
			s.Speed = s.Length / s.Duration
		}
		out[i] = s
	}
	return out
}

func writeStats(w io.Writer, stats []trackStats, format string) error {
	if format != formatText {
		return writeStructured(w, format, stats)
	}

	p := message.NewPrinter(language.English)
	for _, s := range stats {
		_, err := p.Fprintf(w,
			"%s track %d\n  points:   %d\n  length:   %.1f m\n  duration: %.0f s\n  speed:    %.2f m/s\n  climb:    +%.1f m / -%.1f m\n  bounds:   %.6f,%.6f to %.6f,%.6f\n",
			s.File, s.Track, s.Points, s.Length, s.Duration, s.Speed, s.Gain, s.Loss,
			s.Bounds.MinLat, s.Bounds.MinLon, s.Bounds.MaxLat, s.Bounds.MaxLon,
		)
		if err != nil {
			return eris.Wrap(err, "write stats")
		}
	}
	return nil
}
