package srtm

import (
	"io"
	"math"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sells-group/trackcore/internal/geodesy"
)

// Mode selects how a coordinate is turned into a height.
type Mode int

const (
	// NearestOnly returns the sample of the rounded cell.
	NearestOnly Mode = iota
	// AverageNeighbours blends the cell with up to three neighbours.
	AverageNeighbours
)

func (m Mode) String() string {
	switch m {
	case NearestOnly:
		return "nearest"
	case AverageNeighbours:
		return "average"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "nearest-only", "none":
		return NearestOnly, nil
	case "average", "average-neighbours", "average-neighbors", "neighbours":
		return AverageNeighbours, nil
	default:
		return 0, eris.Wrapf(ErrUnknownMode, "%q", s)
	}
}

// Sample is the result of an elevation query.
type Sample struct {
	Valid     bool    `json:"valid"`
	Elevation float64 `json:"elevation"`
}

var noSample = Sample{Valid: false, Elevation: NoElevation}

// Grid resolves elevations from tiles stored in a filesystem.
type Grid struct {
	fs    afero.Fs
	mode  Mode
	cache *TileCache
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithMode sets the lookup mode. The default is AverageNeighbours.
func WithMode(m Mode) GridOption {
	return func(g *Grid) { g.mode = m }
}

// WithCache shares an existing tile cache.
func WithCache(c *TileCache) GridOption {
	return func(g *Grid) { g.cache = c }
}

// NewGrid reads tiles from the root of fs.
func NewGrid(fs afero.Fs, opts ...GridOption) *Grid {
	g := &Grid{fs: fs, mode: AverageNeighbours}
	for _, opt := range opts {
		opt(g)
	}
	if g.cache == nil {
		g.cache = NewTileCache()
	}
	return g
}

// NewOSGrid reads tiles from a directory on disk.
func NewOSGrid(dir string, opts ...GridOption) *Grid {
	return NewGrid(afero.NewBasePathFs(afero.NewOsFs(), dir), opts...)
}

// Mode returns the lookup mode.
func (g *Grid) Mode() Mode { return g.mode }

// Cache returns the tile cache.
func (g *Grid) Cache() *TileCache { return g.cache }

// Tile returns the named tile, loading it on first use. Missing or unreadable
// tiles come back empty and stay cached as such.
func (g *Grid) Tile(name string) *Tile {
	return g.cache.Load(name, g.load)
}

// Elevation returns the height at lat, lon.
func (g *Grid) Elevation(lat, lon float64) Sample {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return noSample
	}
	t := g.Tile(NameForCoordinate(lat, lon))
	if !t.Valid() {
		return noSample
	}

	var (
		v  float64
		ok bool
	)
	if g.mode == NearestOnly {
		v, ok = t.nearest(lat, lon)
	} else {
		v, ok = t.average(lat, lon)
	}
	if !ok {
		return noSample
	}
	return Sample{Valid: true, Elevation: v}
}

// Elevations resolves every point of track, in order.
func (g *Grid) Elevations(track geodesy.Track) []Sample {
	out := make([]Sample, len(track))
	for i, p := range track {
		out[i] = g.Elevation(p.Latitude, p.Longitude)
	}
	return out
}

func (g *Grid) load(name string) *Tile {
	data, err := g.read(name)
	if err != nil {
		zap.L().Warn("srtm: tile unavailable", zap.String("tile", name), zap.Error(err))
		return EmptyTile(name)
	}
	t, err := DecodeTile(name, data)
	if err != nil {
		zap.L().Warn("srtm: tile malformed", zap.String("tile", name), zap.Error(err))
		return EmptyTile(name)
	}
	zap.L().Debug("srtm: tile loaded",
		zap.String("tile", name),
		zap.Int("resolution", t.Resolution()),
	)
	return t
}

// read returns the raw bytes of <name>.hgt, falling back to the first .hgt
// entry of <name>.hgt.zip.
func (g *Grid) read(name string) ([]byte, error) {
	data, err := afero.ReadFile(g.fs, name+".hgt")
	if err == nil {
		return data, nil
	}
	data, zerr := ReadZip(g.fs, name+".hgt.zip")
	if zerr != nil {
		return nil, eris.Wrapf(zerr, "srtm: read %s (plain: %v)", name, err)
	}
	return data, nil
}

// ReadZip returns the first .hgt entry of the archive at p.
func ReadZip(fs afero.Fs, p string) ([]byte, error) {
	f, err := fs.Open(p)
	if err != nil {
		return nil, eris.Wrap(err, "srtm: open archive")
	}
	defer f.Close() //nolint:errcheck

	info, err := f.Stat()
	if err != nil {
		return nil, eris.Wrap(err, "srtm: stat archive")
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, eris.Wrap(err, "srtm: open zip")
	}
	for _, zf := range zr.File {
		if !strings.EqualFold(path.Ext(zf.Name), ".hgt") {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, eris.Wrapf(err, "srtm: open entry %s", zf.Name)
		}
		defer rc.Close() //nolint:errcheck
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, eris.Wrapf(err, "srtm: read entry %s", zf.Name)
		}
		return data, nil
	}
	return nil, eris.Errorf("srtm: no .hgt entry in %s", p)
}

// WriteZip stores a tile as <name>.hgt inside a zip archive at p.
func WriteZip(fs afero.Fs, p string, t *Tile) error {
	f, err := fs.Create(p)
	if err != nil {
		return eris.Wrap(err, "srtm: create archive")
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create(t.Name() + ".hgt")
	if err != nil {
		_ = f.Close()
		return eris.Wrap(err, "srtm: create entry")
	}
	if _, err := w.Write(t.Encode()); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "srtm: write entry")
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "srtm: finish archive")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "srtm: close archive")
	}
	return nil
}
