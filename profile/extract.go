package profile

import (
	"fmt"
	"log"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phil-mansfield/nanoflow/geom"
	"github.com/phil-mansfield/nanoflow/io"
)

// Magnitude can be used as an Extractor's Component to average the length
// of the vector field instead of a single component.
const Magnitude = -1

// Extractor computes per-bin means of one component of a per-point vector
// field for a sequence of VTU snapshots.
type Extractor struct {
	Grid      *geom.BinGrid
	Field     string
	Component int

	// Output is the file results are written to. With a single binned axis,
	// one line is appended per snapshot as soon as it has been processed.
	// Otherwise a profile grid is written after the last snapshot.
	Output string
}

// Result holds the means and counts of every processed snapshot.
type Result struct {
	Means   [][]float64
	Counts  [][]int64
	Dropped int
}

// NewExtractor creates an Extractor binning the given domain.
func NewExtractor(
	extent [3]float64, bins [3]int, field string, component int, out string,
) *Extractor {
	return &Extractor{
		Grid:      geom.NewBinGrid(extent, bins),
		Field:     field,
		Component: component,
		Output:    out,
	}
}

// OneDimensional returns true if exactly one axis is binned.
func (ex *Extractor) OneDimensional() bool {
	return len(ex.Grid.BinnedAxes()) == 1
}

// Accumulate adds every point of a snapshot to acc.
func (ex *Extractor) Accumulate(pc *io.PointCloud, acc *Accumulator) error {
	arr, err := pc.Array(ex.Field)
	if err != nil {
		return err
	}
	if arr.Len() != len(pc.Points) {
		return fmt.Errorf(
			"Array '%s' has %d entries, but there are %d points.",
			ex.Field, arr.Len(), len(pc.Points),
		)
	} else if ex.Component >= arr.Components {
		return fmt.Errorf(
			"Cannot use component %d of '%s', which has %d components.",
			ex.Component, ex.Field, arr.Components,
		)
	}

	for i, x := range pc.Points {
		acc.Add(x, ex.value(arr, i))
	}
	return nil
}

func (ex *Extractor) value(arr *io.DataArray, i int) float64 {
	if ex.Component >= 0 {
		return arr.At(i, ex.Component)
	}
	sum := 0.0
	for c := 0; c < arr.Components; c++ {
		v := arr.At(i, c)
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Run processes every file in order and writes the results to Output. Files
// should already be sorted with SortSnapshots.
func (ex *Extractor) Run(files []string) (*Result, error) {
	res := &Result{
		Means:  make([][]float64, 0, len(files)),
		Counts: make([][]int64, 0, len(files)),
	}
	acc := NewAccumulator(ex.Grid)
	oneD := ex.OneDimensional()

	for i, fname := range files {
		pc, err := io.ReadVTU(fname)
		if err != nil {
			return nil, err
		}

		acc.Reset()
		if err = ex.Accumulate(pc, acc); err != nil {
			return nil, fmt.Errorf("%s: %w", fname, err)
		}
		if acc.Dropped > 0 {
			log.Printf(
				"%d points in %s are outside the domain.", acc.Dropped, fname,
			)
		}

		means := acc.Means()
		res.Means = append(res.Means, means)
		res.Counts = append(res.Counts, append([]int64{}, acc.Counts...))
		res.Dropped += acc.Dropped

		if oneD {
			if err = io.AppendRow(ex.Output, means); err != nil {
				return nil, err
			}
		}

		log.Printf("Processed %d/%d files", i+1, len(files))
	}

	if !oneD {
		hd := io.NewProfileHeader(
			ex.Grid.Extent, ex.Grid.Width, ex.Component, len(res.Means),
		)
		err := io.WriteProfileGrid(ex.Output, hd, res.Means, res.Counts)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// SnapshotIndex returns the number between the last '_' in a file's name and
// its extension, e.g. 120 for "out_0120.vtu".
func SnapshotIndex(fname string) (int, error) {
	base := filepath.Base(fname)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	i := strings.LastIndex(base, "_")
	if i == -1 {
		return -1, fmt.Errorf("File name '%s' has no '_<index>' suffix.", fname)
	}
	n, err := strconv.Atoi(base[i+1:])
	if err != nil {
		return -1, fmt.Errorf(
			"File name '%s' does not end in an integer index.", fname,
		)
	}
	return n, nil
}

// SortSnapshots returns the files sorted by their snapshot index.
func SortSnapshots(files []string) ([]string, error) {
	idxs := make([]int, len(files))
	for i, fname := range files {
		n, err := SnapshotIndex(fname)
		if err != nil {
			return nil, err
		}
		idxs[i] = n
	}

	order := make([]int, len(files))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return idxs[order[i]] < idxs[order[j]]
	})

	sorted := make([]string, len(files))
	for i, j := range order {
		sorted[i] = files[j]
	}
	return sorted, nil
}

// FindSnapshots returns the sorted files in dir which match pattern.
func FindSnapshots(dir, pattern string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	} else if len(files) == 0 {
		return nil, fmt.Errorf("No files in %s match '%s'.", dir, pattern)
	}
	return SortSnapshots(files)
}
