package geom

import (
	"math"
)

// Grid provides an interface for reasoning over a 1D slice as if it were a
// 3D grid. The x index varies fastest, then y, then z, which is the layout
// the simulation's analyzer uses when flattening its bins.
type Grid struct {
	Width                [3]int
	Length, Area, Volume int
}

// NewGrid returns a new Grid instance.
func NewGrid(width [3]int) *Grid {
	g := &Grid{}
	g.Init(width)
	return g
}

// Init initializes a Grid instance.
func (g *Grid) Init(width [3]int) {
	g.Width = width

	g.Length = width[0]
	g.Area = width[0] * width[1]
	g.Volume = width[0] * width[1] * width[2]
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return x + y*g.Length + z*g.Area
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (0 <= x && 0 <= y && 0 <= z) &&
		(x < g.Width[0] && y < g.Width[1] && z < g.Width[2])
}

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx % g.Length
	y = (idx % g.Area) / g.Length
	z = idx / g.Area
	return x, y, z
}

// BinGrid is a Grid laid over a physical domain [0, Extent) with fixed-width
// bins along each axis.
type BinGrid struct {
	Grid
	Extent, BinWidth [3]float64
}

// NewBinGrid creates a BinGrid with bins[i] bins spanning extent[i] along
// each axis. A bin count of 1 disables binning along that axis: every
// coordinate maps to bin 0 regardless of its value.
func NewBinGrid(extent [3]float64, bins [3]int) *BinGrid {
	bg := &BinGrid{Extent: extent}
	bg.Grid.Init(bins)
	for i := 0; i < 3; i++ {
		bg.BinWidth[i] = extent[i] / float64(bins[i])
	}
	return bg
}

// Bin returns the bin index of a point and true, or false if the point lies
// outside the domain along a binned axis.
func (bg *BinGrid) Bin(x [3]float64) (idx int, ok bool) {
	var b [3]int
	for i := 0; i < 3; i++ {
		if bg.Width[i] == 1 {
			continue
		}
		f := math.Floor(x[i] / bg.BinWidth[i])
		if f < 0 || f >= float64(bg.Width[i]) || math.IsNaN(f) {
			return -1, false
		}
		b[i] = int(f)
	}
	return bg.IdxCheck(b[0], b[1], b[2])
}

// Center returns the physical position of the center of bin idx. Unbinned
// axes report the center of the domain.
func (bg *BinGrid) Center(idx int) [3]float64 {
	var b [3]int
	b[0], b[1], b[2] = bg.Coords(idx)
	var x [3]float64
	for i := 0; i < 3; i++ {
		x[i] = (float64(b[i]) + 0.5) * bg.BinWidth[i]
	}
	return x
}

// BinnedAxes returns the axes which have more than one bin.
func (bg *BinGrid) BinnedAxes() []int {
	axes := []int{}
	for i := 0; i < 3; i++ {
		if bg.Width[i] > 1 {
			axes = append(axes, i)
		}
	}
	return axes
}
