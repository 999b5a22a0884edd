// Package srtm reads SRTM .hgt elevation tiles and answers elevation queries
// with nearest-sample or inverse-distance weighted lookups.
package srtm

import (
	"encoding/binary"
	"math"

	"github.com/rotisserie/eris"
)

const (
	// NoElevation marks a sample that could not be resolved. It lies outside the
	// int16 range so it never collides with a stored height.
	NoElevation = -32769

	// voidSample is the in-file marker for missing data.
	voidSample int16 = -32768

	// Size3 is the edge length of a 3 arc-second tile.
	Size3 = 1201
	// Size1 is the edge length of a 1 arc-second tile.
	Size1 = 3601
)

// Sentinel errors.
var (
	ErrInvalidTileSize = eris.New("srtm: invalid tile size")
	ErrInvalidTileName = eris.New("srtm: invalid tile name")
	ErrUnknownMode     = eris.New("srtm: unknown lookup mode")
)

// Tile is one 1x1 degree elevation grid. Row 0 is the north edge and column 0
// the west edge. DecodeTile fills every row. A tile from NewTile allocates a row
// on its first Set and reads it as void until then. A tile of size 0 is the
// empty "no data" tile.
type Tile struct {
	name string
	size int
	rows [][]int16
}

// TileSummary describes the contents of a tile.
type TileSummary struct {
	Name       string `json:"name" yaml:"name"`
	Size       int    `json:"size" yaml:"size"`
	Resolution int    `json:"resolution" yaml:"resolution"`
	Min        int16  `json:"min" yaml:"min"`
	Max        int16  `json:"max" yaml:"max"`
	Voids      int    `json:"voids" yaml:"voids"`
}

// NewTile returns an all-void tile of the given edge length.
func NewTile(name string, size int) (*Tile, error) {
	if size != Size3 && size != Size1 {
		return nil, eris.Wrapf(ErrInvalidTileSize, "edge %d", size)
	}
	return &Tile{name: name, size: size, rows: make([][]int16, size)}, nil
}

// EmptyTile returns the no-data tile for name.
func EmptyTile(name string) *Tile {
	return &Tile{name: name}
}

// DecodeTile parses raw big-endian .hgt bytes. Only 1201x1201 and 3601x3601
// grids are accepted.
func DecodeTile(name string, data []byte) (*Tile, error) {
	var size int
	switch len(data) {
	case Size3 * Size3 * 2:
		size = Size3
	case Size1 * Size1 * 2:
		size = Size1
	default:
		return nil, eris.Wrapf(ErrInvalidTileSize, "%s: %d bytes", name, len(data))
	}

	t := &Tile{name: name, size: size, rows: make([][]int16, size)}
	for r := 0; r < size; r++ {
		row := make([]int16, size)
		off := r * size * 2
		for c := range row {
			row[c] = int16(binary.BigEndian.Uint16(data[off+c*2:]))
		}
		t.rows[r] = row
	}
	return t, nil
}

// Encode returns the tile in .hgt layout. Unallocated rows are written as void.
func (t *Tile) Encode() []byte {
	out := make([]byte, t.size*t.size*2)
	for r := 0; r < t.size; r++ {
		for c := 0; c < t.size; c++ {
			v := voidSample
			if t.rows[r] != nil {
				v = t.rows[r][c]
			}
			binary.BigEndian.PutUint16(out[(r*t.size+c)*2:], uint16(v))
		}
	}
	return out
}

// Name returns the canonical tile name.
func (t *Tile) Name() string { return t.name }

// Size returns the edge length in samples, 0 for the empty tile.
func (t *Tile) Size() int { return t.size }

// Valid reports whether the tile holds a grid.
func (t *Tile) Valid() bool { return t != nil && t.size > 0 }

// Resolution returns arc-seconds per cell: 3, 1, or 0 for the empty tile.
func (t *Tile) Resolution() int {
	if t.size == 0 {
		return 0
	}
	return 3600 / (t.size - 1)
}

// Sample returns the stored height at row, col. ok is false for void cells and
// coordinates outside the grid.
func (t *Tile) Sample(row, col int) (int16, bool) {
	if row < 0 || row >= t.size || col < 0 || col >= t.size {
		return voidSample, false
	}
	r := t.rows[row]
	if r == nil || r[col] == voidSample {
		return voidSample, false
	}
	return r[col], true
}

// Set stores v at row, col, allocating the row on first use.
func (t *Tile) Set(row, col int, v int16) {
	if row < 0 || row >= t.size || col < 0 || col >= t.size {
		return
	}
	if t.rows[row] == nil {
		r := make([]int16, t.size)
		for i := range r {
			r[i] = voidSample
		}
		t.rows[row] = r
	}
	t.rows[row][col] = v
}

// position returns the fractional row and column of lat, lon inside the tile.
// The fraction north of the south edge counts rows up from the bottom; the
// fraction east of the west edge counts columns from the left.
func (t *Tile) position(lat, lon float64) (row, col float64) {
	cells := float64(t.size - 1)
	north := lat - math.Floor(lat)
	east := lon - math.Floor(lon)
	return cells - north*cells, east * cells
}

// CellFor maps a coordinate to the nearest grid cell.
func (t *Tile) CellFor(lat, lon float64) (row, col int) {
	cells := float64(t.size - 1)
	north := lat - math.Floor(lat)
	east := lon - math.Floor(lon)
	return t.size - 1 - int(math.Round(north*cells)), int(math.Round(east * cells))
}

// nearest returns the sample of the rounded cell.
func (t *Tile) nearest(lat, lon float64) (float64, bool) {
	r, c := t.CellFor(lat, lon)
	v, ok := t.Sample(r, c)
	return float64(v), ok
}

// minCellDistance keeps weights finite at exact cell centres.
const minCellDistance = 0.001

// average weights the containing cell and up to three neighbours, picked by the
// side of the cell centre the query falls on, by inverse squared distance in
// cell units. Void cells are left out of the sum.
func (t *Tile) average(lat, lon float64) (float64, bool) {
	fr, fc := t.position(lat, lon)
	r, c := t.CellFor(lat, lon)
	sr := sign(fr - float64(r))
	sc := sign(fc - float64(c))

	cells := [4][2]int{{r, c}}
	count := 1
	if sr != 0 {
		cells[count] = [2]int{r + sr, c}
		count++
	}
	if sc != 0 {
		cells[count] = [2]int{r, c + sc}
		count++
	}
	if sr != 0 && sc != 0 {
		cells[count] = [2]int{r + sr, c + sc}
		count++
	}

	var sum, weights float64
	for _, cell := range cells[:count] {
		v, ok := t.Sample(cell[0], cell[1])
		if !ok {
			continue
		}
		d := math.Max(math.Hypot(fr-float64(cell[0]), fc-float64(cell[1])), minCellDistance)
		w := 1 / (d * d)
		sum += w * float64(v)
		weights += w
	}
	if weights == 0 {
		return NoElevation, false
	}
	return sum / weights, true
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Summary scans the tile for its height range and void count.
func (t *Tile) Summary() TileSummary {
	s := TileSummary{Name: t.name, Size: t.size, Resolution: t.Resolution()}
	first := true
	for r := 0; r < t.size; r++ {
		for c := 0; c < t.size; c++ {
			v, ok := t.Sample(r, c)
			if !ok {
				s.Voids++
				continue
			}
			if first || v < s.Min {
				s.Min = v
			}
			if first || v > s.Max {
				s.Max = v
			}
			first = false
		}
	}
	return s
}
