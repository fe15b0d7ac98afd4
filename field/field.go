// Package field turns the flattened per-timestep grids written by the
// simulation's analyzer into 2D frames which can be drawn as heatmaps.
package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/nanoflow/geom"
)

// ErrShape is returned when a row does not contain exactly one value per
// grid cell.
var ErrShape = errors.New("row length does not match grid dimensions")

// Frame is a 2D slice through one timestep, stored row-major. Columns run
// along the first selected axis and rows along the second.
type Frame struct {
	Rows, Cols int
	Vals       []float64
}

// At returns the value at row r and column c.
func (f *Frame) At(r, c int) float64 {
	return f.Vals[r*f.Cols+c]
}

// Row returns row r. The returned slice aliases the frame.
func (f *Frame) Row(r int) []float64 {
	return f.Vals[r*f.Cols : (r+1)*f.Cols]
}

// Series is every timestep of a table, reshaped into frames.
type Series struct {
	Dims   [3]int
	Axes   [2]int
	Frames []Frame
}

// NewSeries reshapes every row of a table into a Frame. dims gives the
// number of cells along x, y, and z and a0 and a1 the axes which are kept.
// The remaining axis is averaged over; if it has a single cell, this is an
// exact reshape.
func NewSeries(rows [][]float64, dims [3]int, a0, a1 int) (*Series, error) {
	if a0 < 0 || a0 > 2 || a1 < 0 || a1 > 2 || a0 == a1 {
		return nil, fmt.Errorf("Invalid axis pair (%d, %d).", a0, a1)
	}
	for i := 0; i < 3; i++ {
		if dims[i] <= 0 {
			return nil, fmt.Errorf("Invalid grid dimensions %v.", dims)
		}
	}

	g := geom.NewGrid(dims)
	drop := 3 - a0 - a1

	s := &Series{Dims: dims, Axes: [2]int{a0, a1}}
	s.Frames = make([]Frame, len(rows))

	for i, row := range rows {
		if len(row) != g.Volume {
			return nil, fmt.Errorf(
				"%w: row %d has %d values, but dimensions %v require %d",
				ErrShape, i, len(row), dims, g.Volume,
			)
		}

		f := &s.Frames[i]
		f.Rows, f.Cols = dims[a1], dims[a0]
		f.Vals = make([]float64, f.Rows*f.Cols)

		var coord [3]int
		for r := 0; r < f.Rows; r++ {
			for c := 0; c < f.Cols; c++ {
				sum := 0.0
				for k := 0; k < dims[drop]; k++ {
					coord[a0], coord[a1], coord[drop] = c, r, k
					sum += row[g.Idx(coord[0], coord[1], coord[2])]
				}
				f.Vals[r*f.Cols+c] = sum / float64(dims[drop])
			}
		}
	}

	return s, nil
}

// Len returns the number of timesteps.
func (s *Series) Len() int { return len(s.Frames) }

// Range returns the minimum and maximum value across every frame. It is
// used as a fixed color scale so frames do not rescale during playback.
func (s *Series) Range() (lo, hi float64) {
	vals := make([][]float64, len(s.Frames))
	for i := range s.Frames {
		vals[i] = s.Frames[i].Vals
	}
	return sliceRange(vals)
}

// Profiles returns the mean over rows of every frame: one value per column.
func (s *Series) Profiles() [][]float64 {
	profs := make([][]float64, len(s.Frames))
	for i := range s.Frames {
		f := &s.Frames[i]
		prof := make([]float64, f.Cols)
		for r := 0; r < f.Rows; r++ {
			floats.Add(prof, f.Row(r))
		}
		floats.Scale(1/float64(f.Rows), prof)
		profs[i] = prof
	}
	return profs
}

// ProfileRange returns the minimum and maximum of every profile.
func (s *Series) ProfileRange() (lo, hi float64) {
	return sliceRange(s.Profiles())
}

// Coords returns the cell-center positions of the columns in units of cells.
func (s *Series) Coords() []float64 {
	n := s.Dims[s.Axes[0]]
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) + 0.5
	}
	return xs
}

func sliceRange(vals [][]float64) (lo, hi float64) {
	first := true
	for _, xs := range vals {
		if len(xs) == 0 {
			continue
		}
		min, max := floats.Min(xs), floats.Max(xs)
		if first || min < lo {
			lo = min
		}
		if first || max > hi {
			hi = max
		}
		first = false
	}
	return lo, hi
}
