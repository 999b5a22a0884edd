package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trackcore/internal/geodesy"
	"github.com/sells-group/trackcore/internal/simplify"
	"github.com/sells-group/trackcore/internal/trackio"
)

var (
	simplifyAlgorithm string
	simplifyEpsilon   float64
	simplifyFormat    string
	simplifyOutDir    string
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify FILE...",
	Short: "Reduce track points with Douglas-Peucker, Visvalingam-Whyatt or Reumann-Witkam",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := resolveSimplifier(simplifyAlgorithm, simplifyEpsilon, cmd.Flags().Changed("epsilon"))
		if err != nil {
			return err
		}

		results, err := simplifyFiles(cmd.Context(), args, s, cfg.Batch.Concurrency)
		if err != nil {
			return err
		}
		if simplifyOutDir != "" {
			if err := writeSimplifiedGPX(simplifyOutDir, results); err != nil {
				return err
			}
		}
		return writeSimplified(cmd.OutOrStdout(), results, simplifyFormat)
	},
}

func init() {
	simplifyCmd.Flags().StringVar(&simplifyAlgorithm, "algorithm", "", "douglas-peucker, visvalingam-whyatt or reumann-witkam (default from config)")
	simplifyCmd.Flags().Float64Var(&simplifyEpsilon, "epsilon", 0, "tolerance in metres (default from config)")
	simplifyCmd.Flags().StringVar(&simplifyFormat, "format", "summary", "output format: summary, geojson or ewkb")
	simplifyCmd.Flags().StringVar(&simplifyOutDir, "out", "", "directory for simplified GPX files")
	rootCmd.AddCommand(simplifyCmd)
}

// simplifiedTrack is one simplified track of an input file.
type simplifiedTrack struct {
	File  string
	Index int
	Total int
	Mask  simplify.KeepMask
	Track geodesy.Track
}

// resolveSimplifier merges flag overrides into the configured simplifier.
func resolveSimplifier(algorithm string, epsilon float64, epsilonSet bool) (*simplify.Simplifier, error) {
	alg, eps := simplify.DouglasPeucker, 0.0
	if cfg != nil {
		s, err := cfg.Simplifier()
		if err != nil {
			return nil, err
		}
		alg, eps = s.Algorithm(), s.Epsilon()
	}
	if algorithm != "" {
		parsed, err := simplify.ParseAlgorithm(algorithm)
		if err != nil {
			return nil, err
		}
		alg = parsed
	}
	if epsilonSet {
		eps = epsilon
	}
	return simplify.NewSimplifier(alg, eps)
}

// simplifyFiles simplifies every track of every file with at most concurrency
// files in flight. Results keep the order of paths.
func simplifyFiles(ctx context.Context, paths []string, s *simplify.Simplifier, concurrency int) ([][]simplifiedTrack, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	zap.L().Info("simplifying files",
		zap.Int("files", len(paths)),
		zap.String("algorithm", s.Algorithm().String()),
		zap.Float64("epsilon", s.Epsilon()),
		zap.Int("concurrency", concurrency),
	)

	results := make([][]simplifiedTrack, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tracks, err := loadTracks(path)
			if err != nil {
				return err
			}
			out := make([]simplifiedTrack, len(tracks))
			for j, track := range tracks {
				mask := s.Simplify(track)
				out[j] = simplifiedTrack{
					File:  path,
					Index: j,
					Total: len(track),
					Mask:  mask,
					Track: mask.Apply(track),
				}
			}
			results[i] = out
			zap.L().Debug("simplified file", zap.String("file", path), zap.Int("tracks", len(tracks)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "simplify")
	}
	return results, nil
}

func writeSimplified(w io.Writer, results [][]simplifiedTrack, format string) error {
	for _, file := range results {
		for _, r := range file {
			switch format {
			case "summary":
				if _, err := fmt.Fprintf(w, "%s track %d: kept %d of %d points\n", r.File, r.Index, r.Mask.Count(), r.Total); err != nil {
					return err
				}
			case "geojson":
				data, err := trackio.EncodeGeoJSON(r.Track, map[string]any{
					"file":  r.File,
					"track": r.Index,
					"kept":  r.Mask.Count(),
					"total": r.Total,
				})
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
					return err
				}
			case "ewkb":
				data, err := trackio.EncodeEWKB(r.Track)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintf(w, "%s\n", hex.EncodeToString(data)); err != nil {
					return err
				}
			default:
				return eris.Errorf("unknown format %q", format)
			}
		}
	}
	return nil
}

// writeSimplifiedGPX writes <dir>/<base>.simplified.gpx for each input file.
func writeSimplifiedGPX(dir string, results [][]simplifiedTrack) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create %s", dir)
	}
	for _, file := range results {
		if len(file) == 0 {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(file[0].File), filepath.Ext(file[0].File))
		path := filepath.Join(dir, base+".simplified.gpx")

		tracks := make([]geodesy.Track, len(file))
		for i, r := range file {
			tracks[i] = r.Track
		}
		if err := writeGPXFile(path, tracks); err != nil {
			return err
		}
		zap.L().Info("wrote simplified track", zap.String("path", path))
	}
	return nil
}

func writeGPXFile(path string, tracks []geodesy.Track) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := trackio.WriteGPX(f, tracks); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	return nil
}
