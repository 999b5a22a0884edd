package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/trackcore/internal/geodesy"
)

var distanceAlgorithm string

var distanceCmd = &cobra.Command{
	Use:   "distance LAT,LON[,ELE] LAT,LON[,ELE]",
	Short: "Measure the distance and initial bearing between two points",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := resolveDistance(distanceAlgorithm)
		if err != nil {
			return err
		}
		from, err := parseCoord(args[0])
		if err != nil {
			return err
		}
		to, err := parseCoord(args[1])
		if err != nil {
			return err
		}
		return printDistance(cmd.OutOrStdout(), from, to, alg)
	},
}

func init() {
	distanceCmd.Flags().StringVar(&distanceAlgorithm, "algorithm", "", "distance algorithm: planar, haversine or vincenty (default from config)")
	rootCmd.AddCommand(distanceCmd)
}

// resolveDistance returns the override when set, else the configured algorithm.
func resolveDistance(override string) (geodesy.Algorithm, error) {
	if override != "" {
		return geodesy.ParseAlgorithm(override)
	}
	if cfg == nil {
		return geodesy.Haversine, nil
	}
	return cfg.DistanceAlgorithm()
}

func printDistance(w io.Writer, from, to geodesy.GeoPoint, alg geodesy.Algorithm) error {
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "algorithm:  %s\ndistance:   %.1f m\nhorizontal: %.1f m\nbearing:    %.2f°\n",
		alg,
		geodesy.Distance(&from, &to, alg),
		geodesy.HorizontalDistance(&from, &to, alg),
		geodesy.Bearing(&from, &to),
	)
	return err
}
