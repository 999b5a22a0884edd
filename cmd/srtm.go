package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/srtm"
)

var srtmInfoFormat string

var srtmCmd = &cobra.Command{
	Use:   "srtm",
	Short: "Inspect and package SRTM elevation tiles",
}

var srtmNameCmd = &cobra.Command{
	Use:   "name LAT,LON...",
	Short: "Print the tile name covering each coordinate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			p, err := parseCoord(arg)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), srtm.NameForCoordinate(p.Latitude, p.Longitude)); err != nil {
				return err
			}
		}
		return nil
	},
}

var srtmInfoCmd = &cobra.Command{
	Use:   "info FILE.hgt[.zip]",
	Short: "Print the resolution, height range and void count of a tile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tile, err := readTileFile(afero.NewOsFs(), args[0])
		if err != nil {
			return err
		}
		return writeTileSummary(cmd.OutOrStdout(), tile.Summary(), srtmInfoFormat)
	},
}

var srtmPackCmd = &cobra.Command{
	Use:   "pack FILE.hgt...",
	Short: "Compress raw tiles into .hgt.zip archives next to them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		for _, path := range args {
			out, err := packTile(fs, path)
			if err != nil {
				return err
			}
			zap.L().Info("packed tile", zap.String("source", path), zap.String("archive", out))
		}
		return nil
	},
}

func init() {
	srtmInfoCmd.Flags().StringVar(&srtmInfoFormat, "format", formatText, "output format: text, json or yaml")
	srtmCmd.AddCommand(srtmNameCmd, srtmInfoCmd, srtmPackCmd)
	rootCmd.AddCommand(srtmCmd)
}

// tileName derives the canonical tile name from a file path such as
// data/n46e007.hgt.zip.
func tileName(path string) (string, error) {
	key, err := srtm.ParseName(filepath.Base(path))
	if err != nil {
		return "", err
	}
	return key.Name(), nil
}

// readTileFile decodes a raw or zipped tile.
func readTileFile(fs afero.Fs, path string) (*srtm.Tile, error) {
	name, err := tileName(path)
	if err != nil {
		return nil, err
	}

	var data []byte
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		data, err = srtm.ReadZip(fs, path)
	} else {
		data, err = afero.ReadFile(fs, path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return srtm.DecodeTile(name, data)
}

// packTile writes <dir>/<NAME>.hgt.zip for a raw tile and returns its path.
func packTile(fs afero.Fs, path string) (string, error) {
	tile, err := readTileFile(fs, path)
	if err != nil {
		return "", err
	}
	out := filepath.Join(filepath.Dir(path), tile.Name()+".hgt.zip")
	if err := srtm.WriteZip(fs, out, tile); err != nil {
		return "", err
	}
	return out, nil
}

func writeTileSummary(w io.Writer, s srtm.TileSummary, format string) error {
	if format != formatText {
		return writeStructured(w, format, s)
	}
	_, err := fmt.Fprintf(w, "tile:       %s\nsize:       %dx%d\nresolution: %d arc-seconds\nrange:      %d to %d m\nvoids:      %d\n",
		s.Name, s.Size, s.Size, s.Resolution, s.Min, s.Max, s.Voids)
	return err
}
