package geom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireframeCounts(t *testing.T) {
	table := []struct {
		box   Box
		cells [3]int
	}{
		{Box{Width: [3]float64{1, 1, 1}, CellWidth: [3]float64{1, 1, 1}},
			[3]int{1, 1, 1}},
		{Box{Width: [3]float64{4, 2, 6}, CellWidth: [3]float64{2, 1, 3}},
			[3]int{2, 2, 2}},
		{Box{Origin: [3]float64{-1, 5, 3},
			Width: [3]float64{180, 90, 0}, CellWidth: [3]float64{3, 3, 0}},
			[3]int{60, 30, 1}},
		{Box{Width: [3]float64{10, 10, 0}, CellWidth: [3]float64{5, 2, 7}},
			[3]int{2, 5, 1}},
		// Partial cells are truncated.
		{Box{Width: [3]float64{10, 3, 3}, CellWidth: [3]float64{3, 1, 2}},
			[3]int{3, 3, 1}},
		{Box{Width: [3]float64{-6, 2, 2}, CellWidth: [3]float64{2, 2, 2}},
			[3]int{3, 1, 1}},
	}

	for i, test := range table {
		require.NoError(t, test.box.Validate())
		assert.Equal(t, test.cells, test.box.CellCounts(), "%d) cell counts", i)

		n := test.cells[0] * test.cells[1] * test.cells[2]
		w := NewWireframe(&test.box, true)
		if len(w.Points) != 8+8*n {
			t.Errorf("%d) %d points, not %d", i, len(w.Points), 8+8*n)
		}
		if len(w.Edges) != 12+12*n {
			t.Errorf("%d) %d edges, not %d", i, len(w.Edges), 12+12*n)
		}

		for j, e := range w.Edges {
			if e[0] < 0 || e[1] >= len(w.Points) || e[1] < 0 || e[0] >= len(w.Points) {
				t.Fatalf("%d) edge %d, %v, is out of range", i, j, e)
			}
		}
	}
}

func TestWireframeNoCells(t *testing.T) {
	b := &Box{Width: [3]float64{4, 4, 4}, CellWidth: [3]float64{1, 1, 1}}
	w := NewWireframe(b, false)
	assert.Len(t, w.Points, 8)
	assert.Len(t, w.Edges, 12)
}

func TestWireframeOutline(t *testing.T) {
	b := &Box{
		Origin: [3]float64{1, 2, 3},
		Width:  [3]float64{2, 4, 6}, CellWidth: [3]float64{2, 4, 6},
	}
	w := NewWireframe(b, true)

	outline := []Point{
		{1, 2, 3}, {3, 2, 3}, {3, 6, 3}, {1, 6, 3},
		{1, 2, 9}, {3, 2, 9}, {3, 6, 9}, {1, 6, 9},
	}
	if diff := cmp.Diff(outline, w.Points[:8]); diff != "" {
		t.Errorf("box corners mismatch (-want +got):\n%s", diff)
	}
	// The single cell coincides with the box.
	if diff := cmp.Diff(outline, w.Points[8:]); diff != "" {
		t.Errorf("cell corners mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, Edge{0, 1}, w.Edges[0])
	assert.Equal(t, Edge{5, 6}, w.Edges[11])
	assert.Equal(t, Edge{8, 9}, w.Edges[12])
	assert.Equal(t, Edge{11, 15}, w.Edges[23])
}

func TestWireframeDegenerateDepth(t *testing.T) {
	for _, depth := range []float64{0, 1, 3.5} {
		b := &Box{
			Width:     [3]float64{6, 3, 0},
			CellWidth: [3]float64{3, 3, depth},
		}
		require.NoError(t, b.Validate())
		assert.Equal(t, [3]int{2, 1, 1}, b.CellCounts())

		w := NewWireframe(b, true)
		assert.Len(t, w.Points, 8+8*2)
		for _, p := range w.Points[8:12] {
			assert.Equal(t, 0.0, p[2])
		}
	}
}

func TestBoxValidate(t *testing.T) {
	b := &Box{Width: [3]float64{1, 1, 1}, CellWidth: [3]float64{1, 0, 1}}
	assert.Error(t, b.Validate())

	b = &Box{Width: [3]float64{1, 1, 0}, CellWidth: [3]float64{1, 1, 0}}
	assert.NoError(t, b.Validate())
}

func TestWireframeProject(t *testing.T) {
	b := &Box{Width: [3]float64{1, 2, 3}, CellWidth: [3]float64{1, 2, 3}}
	w := NewWireframe(b, false)
	xs, ys := w.Project(0, 2)
	require.Len(t, xs, 12)
	assert.Equal(t, [2]float64{0, 1}, xs[0])
	assert.Equal(t, [2]float64{0, 0}, ys[0])
	// Edge (1, 5) runs along z.
	assert.Equal(t, [2]float64{1, 1}, xs[1])
	assert.Equal(t, [2]float64{0, 3}, ys[1])
}
