package geom

import (
	"fmt"
)

// Point is a position in 3D space.
type Point [3]float64

// Edge is a line segment between two points, given by their indices within
// a Wireframe's Points slice.
type Edge [2]int

// Wireframe is a point-and-edge-list mesh used for visually inspecting a
// simulation domain. It is not used for any calculation.
type Wireframe struct {
	Points []Point
	Edges  []Edge
}

// Box describes a simulation domain and the cells it is divided into.
type Box struct {
	Origin, Width, CellWidth [3]float64
}

var (
	// Corners of a cuboid as multiples of its widths. The first four are the
	// low-z face.
	boxCornerOffsets = [8][3]float64{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
	}

	boxEdges = [12]Edge{
		{0, 1}, {1, 5}, {5, 4}, {4, 0}, // bottom
		{3, 2}, {2, 6}, {6, 7}, {7, 3}, // top
		{0, 3}, {1, 2}, {4, 7}, {5, 6}, // vertical
	}

	cellEdges = [12]Edge{
		{0, 1}, {1, 2}, {2, 3}, {3, 0}, // bottom
		{4, 5}, {5, 6}, {6, 7}, {7, 4}, // top
		{0, 4}, {1, 5}, {2, 6}, {3, 7}, // vertical
	}
)

// Validate returns an error if cells cannot be laid out inside the box.
func (b *Box) Validate() error {
	for i, name := range []string{"X", "Y", "Z"} {
		if b.Width[i] != 0 && b.CellWidth[i] == 0 {
			return fmt.Errorf(
				"Box has a non-zero %s width, %g, but a cell %s width of 0.",
				name, b.Width[i], name,
			)
		}
	}
	return nil
}

// CellCounts returns the number of cells along each axis. Partial cells are
// truncated away and an axis with zero width contains exactly one layer.
func (b *Box) CellCounts() [3]int {
	var n [3]int
	for i := 0; i < 3; i++ {
		if b.Width[i] == 0 {
			n[i] = 1
			continue
		}
		n[i] = int(b.Width[i] / b.CellWidth[i])
		if n[i] < 0 {
			n[i] = -n[i]
		}
	}
	return n
}

// CellCount returns the total number of cells in the box.
func (b *Box) CellCount() int {
	n := b.CellCounts()
	return n[0] * n[1] * n[2]
}

// NewWireframe builds the outline of the box and, if cells is true, the
// outline of every cell inside it. Validate should be called first: a zero
// cell width on a non-degenerate axis produces a meaningless count.
func NewWireframe(b *Box, cells bool) *Wireframe {
	n := 1
	if cells {
		n += b.CellCount()
	}

	w := &Wireframe{
		Points: make([]Point, 0, 8*n),
		Edges:  make([]Edge, 0, 12*n),
	}

	w.addCuboid(b.Origin, b.Width, &boxEdges)
	if !cells {
		return w
	}

	counts := b.CellCounts()
	for i := 0; i < counts[0]; i++ {
		for j := 0; j < counts[1]; j++ {
			for k := 0; k < counts[2]; k++ {
				corner := [3]float64{
					b.Origin[0] + float64(i)*b.CellWidth[0],
					b.Origin[1] + float64(j)*b.CellWidth[1],
					b.Origin[2] + float64(k)*b.CellWidth[2],
				}
				w.addCuboid(corner, b.CellWidth, &cellEdges)
			}
		}
	}

	return w
}

// addCuboid appends the eight corners of a cuboid and the given edges,
// offset to the new corners.
func (w *Wireframe) addCuboid(origin, width [3]float64, edges *[12]Edge) {
	start := len(w.Points)
	for _, off := range boxCornerOffsets {
		w.Points = append(w.Points, Point{
			origin[0] + off[0]*width[0],
			origin[1] + off[1]*width[1],
			origin[2] + off[2]*width[2],
		})
	}
	for _, e := range edges {
		w.Edges = append(w.Edges, Edge{start + e[0], start + e[1]})
	}
}

// Project returns the coordinates of both ends of every edge along the two
// given axes, e.g. (0, 1) for the xy-plane.
func (w *Wireframe) Project(a0, a1 int) (xs, ys [][2]float64) {
	xs = make([][2]float64, len(w.Edges))
	ys = make([][2]float64, len(w.Edges))
	for i, e := range w.Edges {
		p, q := &w.Points[e[0]], &w.Points[e[1]]
		xs[i] = [2]float64{p[a0], q[a0]}
		ys[i] = [2]float64{p[a1], q[a1]}
	}
	return xs, ys
}
