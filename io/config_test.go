package io

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gcfg.v1"
)

func TestExampleConfigsParse(t *testing.T) {
	grid := DefaultGridWrapper()
	require.NoError(t, gcfg.ReadStringInto(grid, ExampleGridFile))
	assert.Equal(t, 180.0, grid.Grid.XWidth)
	assert.True(t, grid.Grid.Cells)
	assert.True(t, grid.Grid.ValidCellWidths())

	jobs := DefaultJobsWrapper()
	require.NoError(t, gcfg.ReadStringInto(jobs, ExampleJobsFile))
	jobs.Jobs.SetDefaults()
	assert.Equal(t, DefaultThreads, jobs.Jobs.Threads)
	assert.Equal(t, "cm2_tiny", jobs.Jobs.SmallPartition)

	anim := DefaultAnimateWrapper()
	require.NoError(t, gcfg.ReadStringInto(anim, ExampleAnimateFile))
	assert.Equal(t, [3]int{50, 1, 1}, anim.Animate.Cells())
	assert.True(t, anim.Animate.ValidAxes())

	prof := DefaultProfileWrapper()
	require.NoError(t, gcfg.ReadStringInto(prof, ExampleProfileFile))
	assert.Equal(t, "velocity", prof.Profile.Field)
	assert.Equal(t, [3]int{50, 1, 1}, prof.Profile.Bins())
	assert.True(t, prof.Profile.ValidBins())
}

func TestReadJobsConfig(t *testing.T) {
	fname := writeFile(t, "jobs.cfg", `[Jobs]
Name = scaling
Input = input.xml
Threads = 4
Threads = 32
DryRun = true
`)
	con, err := ReadJobsConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 32}, con.Threads)
	assert.Equal(t, 16, con.ThreadCutoff)
	assert.Equal(t, ".", con.Output)

	fname = writeFile(t, "jobs.cfg", "[Jobs]\nName = bad name\nInput = x\n")
	_, err = ReadJobsConfig(fname)
	assert.Error(t, err)

	fname = writeFile(t, "jobs.cfg", "[Jobs]\nName = a\nInput = x\nThreads = 0\n")
	_, err = ReadJobsConfig(fname)
	assert.Error(t, err)
}

func TestReadAnimateConfig(t *testing.T) {
	base := `[Animate]
Density = d.csv
Velocity = v.csv
XCells = 2
YCells = 1
ZCells = 2
Output = out.avi
`
	con, err := ReadAnimateConfig(writeFile(t, "a.cfg", base))
	require.NoError(t, err)
	assert.Equal(t, "XY", con.Axes)
	assert.Equal(t, 10, con.FPS)

	bad := []string{
		strings.Replace(base, "Output = out.avi", "", 1),
		strings.Replace(base, "XCells = 2", "XCells = 0", 1),
		base + "Axes = XX\n",
		base + "Quantity = Pressure\n",
		base + "SkipColumns = -1\n",
	}
	for i, text := range bad {
		if _, err := ReadAnimateConfig(writeFile(t, "a.cfg", text)); err == nil {
			t.Errorf("%d) expected an error", i)
		}
	}

	con, err = ReadAnimateConfig(writeFile(t, "a.cfg",
		strings.Replace(base, "Output = out.avi", "FrameDir = frames", 1)))
	require.NoError(t, err)
	assert.Equal(t, "frames", con.FrameDir)
}

func TestReadProfileConfig(t *testing.T) {
	base := "[Profile]\nInput = dir\nOutput = out.csv\nXWidth = 30\n"
	con, err := ReadProfileConfig(writeFile(t, "p.cfg", base+"XBins = 50\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, con.Component)
	assert.Equal(t, [3]float64{30, 0, 0}, con.Extent())

	// No binned axis.
	_, err = ReadProfileConfig(writeFile(t, "p.cfg", base))
	assert.Error(t, err)
	// Binned axis with no width.
	_, err = ReadProfileConfig(writeFile(t, "p.cfg", base+"YBins = 5\n"))
	assert.Error(t, err)
	_, err = ReadProfileConfig(writeFile(t, "p.cfg", base+"XBins = 5\nComponent = 3\n"))
	assert.Error(t, err)
}

func TestReadGridConfig(t *testing.T) {
	base := "[Grid]\nOutput = g.vtk\nXWidth = 4\nYWidth = 4\nCellXWidth = 1\n"
	_, err := ReadGridConfig(writeFile(t, "g.cfg", base))
	assert.Error(t, err, "missing CellYWidth")

	con, err := ReadGridConfig(writeFile(t, "g.cfg", base+"CellYWidth = 2\n"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, con.ZWidth)
}

func TestParsePlane(t *testing.T) {
	table := []struct {
		str    string
		a0, a1 int
		ok     bool
	}{
		{"XY", 0, 1, true},
		{"zx", 2, 0, true},
		{" YZ ", 1, 2, true},
		{"XX", -1, -1, false},
		{"X", -1, -1, false},
		{"XW", -1, -1, false},
	}

	for i, test := range table {
		a0, a1, err := ParsePlane(test.str)
		if a0 != test.a0 || a1 != test.a1 || (err == nil) != test.ok {
			t.Errorf("%d) ParsePlane(%q) = (%d, %d, %v)",
				i, test.str, a0, a1, err)
		}
	}
}
