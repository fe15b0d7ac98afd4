// Package profile bins per-point simulation output into coarse spatial
// profiles.
package profile

import (
	"github.com/phil-mansfield/nanoflow/geom"
)

// EmptyBinCount is the count substituted for bins which received no points
// before dividing. An empty bin therefore has a mean of 0 rather than NaN.
const EmptyBinCount = 1

// Accumulator keeps a running sum and count for every bin of a BinGrid.
type Accumulator struct {
	Grid    *geom.BinGrid
	Sums    []float64
	Counts  []int64
	Dropped int
}

// NewAccumulator returns an empty Accumulator over the given grid.
func NewAccumulator(g *geom.BinGrid) *Accumulator {
	return &Accumulator{
		Grid:   g,
		Sums:   make([]float64, g.Volume),
		Counts: make([]int64, g.Volume),
	}
}

// Add adds a sample at position x. Samples outside the grid are dropped and
// counted in Dropped. Returns true if the sample was binned.
func (acc *Accumulator) Add(x [3]float64, val float64) bool {
	idx, ok := acc.Grid.Bin(x)
	if !ok {
		acc.Dropped++
		return false
	}
	acc.Sums[idx] += val
	acc.Counts[idx]++
	return true
}

// Means returns the mean of every bin, with empty bins reading as 0.
func (acc *Accumulator) Means() []float64 {
	means := make([]float64, len(acc.Sums))
	for i := range means {
		n := acc.Counts[i]
		if n == 0 {
			n = EmptyBinCount
		}
		means[i] = acc.Sums[i] / float64(n)
	}
	return means
}

// Reset clears every bin.
func (acc *Accumulator) Reset() {
	for i := range acc.Sums {
		acc.Sums[i] = 0
		acc.Counts[i] = 0
	}
	acc.Dropped = 0
}
