package io

import (
	"fmt"
	"strings"

	"gopkg.in/gcfg.v1"
)

const (
	ExampleGridFile = `[Grid]

#######################
# Required Parameters #
#######################

# File the wireframe will be written to, as a legacy ASCII .vtk POLYDATA file
# which ParaView can open directly.
Output = path/to/grid.vtk

# Lowermost corner of the simulation domain.
X = 0
Y = 0
Z = 0

# Width of the domain in each dimension. Set ZWidth to 0 for a 2D domain: a
# single layer of cells will be drawn.
XWidth = 180
YWidth = 90
ZWidth = 0

# Width of a single linked cell. Cells which do not fit entirely inside the
# domain are not drawn.
CellXWidth = 3
CellYWidth = 3
CellZWidth = 0

#######################
# Optional Parameters #
#######################

# Draw only the outline of the domain.
# Cells = false

# Writes a preview of the wireframe projected onto a plane. Must be one of
# [ XY | XZ | YZ ]. Default is XY.
# PlotFile = grid.png
# PlotPlane = XY

# LogFile = log.out
# ProfileFile = prof.out`

	ExampleJobsFile = `[Jobs]

#######################
# Required Parameters #
#######################

# Base name of the jobs. Each job is named <Name>_<Threads> and written to
# <Name>_<Threads>.sh inside Output.
Name = parallel

# Simulation input file passed to the executable.
Input = ../input/reyleigh_3D_short.xml

# Directory the job scripts are written to.
Output = .

#######################
# Optional Parameters #
#######################

# Thread counts to sweep over. Repeat the variable once per value. Default is
# 1, 2, 4, 8, 16, 28, 56.
# Threads = 1
# Threads = 2

# Jobs with fewer threads than ThreadCutoff are sent to the small cluster,
# the rest to the large one.
# ThreadCutoff = 16
# SmallCluster = cm2_tiny
# SmallPartition = cm2_tiny
# LargeCluster = cm2
# LargePartition = cm2_std

# Executable = src/MolSim
# Arguments = -x -s 4 -p
# Memory = 200mb
# TimeLimit = 00:30:00
# MailUser = someone@example.com

# Command used to submit each script. With DryRun set, scripts are written
# but not submitted.
# SubmitCommand = sbatch
# DryRun = false

# LogFile = log.out
# ProfileFile = prof.out`

	ExampleAnimateFile = `[Animate]

#######################
# Required Parameters #
#######################

# Tables written by the simulation's analyzer. Every line is one timestep.
# Files ending in .csv are comma separated, anything else is whitespace
# separated.
Density = results/analysis_density.csv
Velocity = results/analysis_velocity.csv

# Bin counts the analyzer was configured with.
XCells = 50
YCells = 1
ZCells = 1

# The two axes which are kept in the heatmap, given as [ X | Y | Z ]. The
# first is drawn horizontally. A third axis with more than one cell is
# averaged over.
Axes = XZ

# Output .avi file (MJPEG). If FrameDir is set instead, numbered PNG files
# are written there.
Output = density.avi

#######################
# Optional Parameters #
#######################

# FrameDir = path/to/frames

# Which table to draw: [ Density | Velocity ].
# Quantity = Density

# Number of leading values of every line to ignore.
# SkipColumns = 0

# Title = Velocity Profile along x axis
# XLabel = x-Axis
# YLabel =

# Adds a panel with the mean along the vertical axis below the heatmap.
# ProfilePanel = false

# Frame geometry.
# Width = 640
# Height = 480
# FPS = 10

# Opens an interactive window with every frame's mean profile after the
# animation has been written. Requires python and matplotlib.
# Display = false

# LogFile = log.out
# ProfileFile = prof.out`

	ExampleProfileFile = `[Profile]

#######################
# Required Parameters #
#######################

# Directory containing the .vtu files written by the simulation. Files must
# end in _<number>.vtu and are processed in numeric order.
Input = path/to/vtu/dir

# Output file. With a single binned axis, one comma separated line per file
# is appended. Otherwise a binary profile grid is written at the end.
Output = velocity_profile.csv

# Size of the simulation domain.
XWidth = 30
YWidth = 30
ZWidth = 1

# Number of bins along each axis. An axis with a single bin is not binned.
XBins = 50
YBins = 1
ZBins = 1

#######################
# Optional Parameters #
#######################

# Name of the point data array and the component which is averaged. A
# negative component averages the magnitude of the vector instead.
# Field = velocity
# Component = 1

# Glob pattern used to find files in Input.
# Pattern = *.vtu

# Plots every 1D profile after extraction. Requires python and matplotlib.
# PlotFile = profile.png

# LogFile = log.out
# ProfileFile = prof.out`
)

type SharedConfig struct {
	// Required
	Output string
	// Optional
	LogFile, ProfileFile string
}

func (con *SharedConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SharedConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SharedConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type GridConfig struct {
	SharedConfig

	// Required
	X, Y, Z                            float64
	XWidth, YWidth, ZWidth             float64
	CellXWidth, CellYWidth, CellZWidth float64

	// Optional
	Cells     bool
	PlotFile  string
	PlotPlane string
}

type GridWrapper struct {
	Grid GridConfig
}

func DefaultGridWrapper() *GridWrapper {
	con := GridConfig{}
	con.Cells = true
	con.PlotPlane = "XY"
	return &GridWrapper{con}
}

func (con *GridConfig) ValidPlotPlane() bool {
	_, _, err := ParsePlane(con.PlotPlane)
	return err == nil
}

// ValidCellWidths returns true if every axis with a non-zero width has a
// non-zero cell width.
func (con *GridConfig) ValidCellWidths() bool {
	return !(con.XWidth != 0 && con.CellXWidth == 0) &&
		!(con.YWidth != 0 && con.CellYWidth == 0) &&
		!(con.ZWidth != 0 && con.CellZWidth == 0)
}

type JobsConfig struct {
	SharedConfig

	// Required
	Name, Input string

	// Optional
	Threads                      []int
	ThreadCutoff                 int
	SmallCluster, SmallPartition string
	LargeCluster, LargePartition string
	Executable, Arguments        string
	Memory, TimeLimit, MailUser  string
	SubmitCommand                string
	DryRun                       bool
}

type JobsWrapper struct {
	Jobs JobsConfig
}

var DefaultThreads = []int{1, 2, 4, 8, 16, 28, 56}

// DefaultJobsWrapper returns a JobsWrapper with its defaults set. Threads is
// left empty since gcfg appends multi-valued variables; call SetDefaults
// after reading.
func DefaultJobsWrapper() *JobsWrapper {
	con := JobsConfig{}
	con.Output = "."
	con.ThreadCutoff = 16
	con.SmallCluster, con.SmallPartition = "cm2_tiny", "cm2_tiny"
	con.LargeCluster, con.LargePartition = "cm2", "cm2_std"
	con.Executable = "src/MolSim"
	con.Arguments = "-x -s 4 -p"
	con.Memory = "200mb"
	con.TimeLimit = "00:30:00"
	con.SubmitCommand = "sbatch"
	return &JobsWrapper{con}
}

// SetDefaults fills in any defaults which cannot be set before parsing.
func (con *JobsConfig) SetDefaults() {
	if len(con.Threads) == 0 {
		con.Threads = append([]int{}, DefaultThreads...)
	}
}

func (con *JobsConfig) ValidName() bool {
	return con.Name != "" && !strings.ContainsAny(con.Name, "/ \t")
}
func (con *JobsConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *JobsConfig) ValidThreads() bool {
	for _, t := range con.Threads {
		if t <= 0 {
			return false
		}
	}
	return true
}
func (con *JobsConfig) ValidThreadCutoff() bool {
	return con.ThreadCutoff > 0
}
func (con *JobsConfig) ValidClusters() bool {
	return con.SmallCluster != "" && con.SmallPartition != "" &&
		con.LargeCluster != "" && con.LargePartition != ""
}
func (con *JobsConfig) ValidSubmitCommand() bool {
	return con.DryRun || con.SubmitCommand != ""
}

type AnimateConfig struct {
	SharedConfig

	// Required
	Density, Velocity      string
	XCells, YCells, ZCells int
	Axes                   string

	// Optional
	FrameDir              string
	Quantity              string
	SkipColumns           int
	Title, XLabel, YLabel string
	ProfilePanel          bool
	Width, Height, FPS    int
	Display               bool
}

type AnimateWrapper struct {
	Animate AnimateConfig
}

func DefaultAnimateWrapper() *AnimateWrapper {
	con := AnimateConfig{}
	con.Axes = "XY"
	con.Quantity = "Density"
	con.Width, con.Height = 640, 480
	con.FPS = 10
	return &AnimateWrapper{con}
}

// ValidOutput overrides SharedConfig.ValidOutput: a frame directory can be
// given instead of an output file.
func (con *AnimateConfig) ValidOutput() bool {
	return con.Output != "" || con.FrameDir != ""
}
func (con *AnimateConfig) ValidDensity() bool {
	return con.Density != ""
}
func (con *AnimateConfig) ValidVelocity() bool {
	return con.Velocity != ""
}
func (con *AnimateConfig) ValidCells() bool {
	return con.XCells > 0 && con.YCells > 0 && con.ZCells > 0
}
func (con *AnimateConfig) ValidAxes() bool {
	_, _, err := ParsePlane(con.Axes)
	return err == nil
}
func (con *AnimateConfig) ValidQuantity() bool {
	q := strings.ToLower(con.Quantity)
	return q == "density" || q == "velocity"
}
func (con *AnimateConfig) ValidSkipColumns() bool {
	return con.SkipColumns >= 0
}
func (con *AnimateConfig) ValidGeometry() bool {
	return con.Width > 0 && con.Height > 0 && con.FPS > 0
}

// Cells returns the bin counts as an array.
func (con *AnimateConfig) Cells() [3]int {
	return [3]int{con.XCells, con.YCells, con.ZCells}
}

type ProfileConfig struct {
	SharedConfig

	// Required
	Input                  string
	XWidth, YWidth, ZWidth float64
	XBins, YBins, ZBins    int

	// Optional
	Field     string
	Component int
	Pattern   string
	PlotFile  string
}

type ProfileWrapper struct {
	Profile ProfileConfig
}

func DefaultProfileWrapper() *ProfileWrapper {
	con := ProfileConfig{}
	con.Field = "velocity"
	con.Component = 1
	con.Pattern = "*.vtu"
	con.XBins, con.YBins, con.ZBins = 1, 1, 1
	return &ProfileWrapper{con}
}

func (con *ProfileConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *ProfileConfig) ValidBins() bool {
	if con.XBins <= 0 || con.YBins <= 0 || con.ZBins <= 0 {
		return false
	}
	return con.XBins > 1 || con.YBins > 1 || con.ZBins > 1
}

// ValidWidths returns true if every binned axis has a positive width.
func (con *ProfileConfig) ValidWidths() bool {
	return !(con.XBins > 1 && con.XWidth <= 0) &&
		!(con.YBins > 1 && con.YWidth <= 0) &&
		!(con.ZBins > 1 && con.ZWidth <= 0)
}
func (con *ProfileConfig) ValidField() bool {
	return con.Field != ""
}
func (con *ProfileConfig) ValidComponent() bool {
	return con.Component < 3
}

// Extent returns the domain widths as an array.
func (con *ProfileConfig) Extent() [3]float64 {
	return [3]float64{con.XWidth, con.YWidth, con.ZWidth}
}

// Bins returns the bin counts as an array.
func (con *ProfileConfig) Bins() [3]int {
	return [3]int{con.XBins, con.YBins, con.ZBins}
}

// ParsePlane converts a two-letter axis string, like "XZ", into axis indices.
func ParsePlane(str string) (a0, a1 int, err error) {
	s := strings.ToUpper(strings.Trim(str, " "))
	if len(s) != 2 {
		return -1, -1, fmt.Errorf(
			"Axis pair '%s' must be two of [X | Y | Z], e.g. 'XY'.", str,
		)
	}

	axes := [2]int{}
	for i := range axes {
		switch s[i] {
		case 'X':
			axes[i] = 0
		case 'Y':
			axes[i] = 1
		case 'Z':
			axes[i] = 2
		default:
			return -1, -1, fmt.Errorf(
				"Axis '%c' in '%s' is not one of [X | Y | Z].", s[i], str,
			)
		}
	}

	if axes[0] == axes[1] {
		return -1, -1, fmt.Errorf("Axis pair '%s' repeats an axis.", str)
	}
	return axes[0], axes[1], nil
}

// ReadGridConfig reads and validates a [Grid] config file.
func ReadGridConfig(fname string) (*GridConfig, error) {
	wrap := DefaultGridWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Grid

	switch {
	case !con.ValidOutput():
		return nil, fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidCellWidths():
		return nil, fmt.Errorf(
			"Every axis with a non-zero width needs a non-zero cell width.",
		)
	case !con.ValidPlotPlane():
		return nil, fmt.Errorf("Invalid 'PlotPlane' value, '%s'.", con.PlotPlane)
	}
	return con, nil
}

// ReadJobsConfig reads and validates a [Jobs] config file.
func ReadJobsConfig(fname string) (*JobsConfig, error) {
	wrap := DefaultJobsWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Jobs
	con.SetDefaults()

	switch {
	case !con.ValidName():
		return nil, fmt.Errorf("Invalid/non-existent 'Name' value.")
	case !con.ValidInput():
		return nil, fmt.Errorf("Invalid/non-existent 'Input' value.")
	case !con.ValidOutput():
		return nil, fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidThreads():
		return nil, fmt.Errorf("All 'Threads' values must be positive.")
	case !con.ValidThreadCutoff():
		return nil, fmt.Errorf("'ThreadCutoff' must be positive.")
	case !con.ValidClusters():
		return nil, fmt.Errorf("Cluster and partition names cannot be empty.")
	case !con.ValidSubmitCommand():
		return nil, fmt.Errorf(
			"'SubmitCommand' must be set unless 'DryRun' is true.",
		)
	}
	return con, nil
}

// ReadAnimateConfig reads and validates an [Animate] config file.
func ReadAnimateConfig(fname string) (*AnimateConfig, error) {
	wrap := DefaultAnimateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Animate

	switch {
	case !con.ValidDensity():
		return nil, fmt.Errorf("Invalid/non-existent 'Density' value.")
	case !con.ValidVelocity():
		return nil, fmt.Errorf("Invalid/non-existent 'Velocity' value.")
	case !con.ValidOutput():
		return nil, fmt.Errorf(
			"You must set either a valid 'Output' or a valid 'FrameDir'.",
		)
	case !con.ValidCells():
		return nil, fmt.Errorf(
			"'XCells', 'YCells', and 'ZCells' must all be positive.",
		)
	case !con.ValidAxes():
		return nil, fmt.Errorf("Invalid 'Axes' value, '%s'.", con.Axes)
	case !con.ValidQuantity():
		return nil, fmt.Errorf(
			"'Quantity' must be one of [ Density | Velocity ], not '%s'.",
			con.Quantity,
		)
	case !con.ValidSkipColumns():
		return nil, fmt.Errorf("'SkipColumns' cannot be negative.")
	case !con.ValidGeometry():
		return nil, fmt.Errorf("'Width', 'Height', and 'FPS' must be positive.")
	}
	return con, nil
}

// ReadProfileConfig reads and validates a [Profile] config file.
func ReadProfileConfig(fname string) (*ProfileConfig, error) {
	wrap := DefaultProfileWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	con := &wrap.Profile

	switch {
	case !con.ValidInput():
		return nil, fmt.Errorf("Invalid/non-existent 'Input' value.")
	case !con.ValidOutput():
		return nil, fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidBins():
		return nil, fmt.Errorf(
			"Bin counts must be positive and at least one must be above 1.",
		)
	case !con.ValidWidths():
		return nil, fmt.Errorf("Every binned axis needs a positive width.")
	case !con.ValidField():
		return nil, fmt.Errorf("Invalid/non-existent 'Field' value.")
	case !con.ValidComponent():
		return nil, fmt.Errorf(
			"'Component' must be 0, 1, 2, or negative, not %d.", con.Component,
		)
	}
	return con, nil
}
