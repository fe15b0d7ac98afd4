package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/nanoflow/batch"
	"github.com/phil-mansfield/nanoflow/field"
	"github.com/phil-mansfield/nanoflow/geom"
	"github.com/phil-mansfield/nanoflow/io"
	"github.com/phil-mansfield/nanoflow/profile"
	"github.com/phil-mansfield/nanoflow/render"
)

type FileGroup struct {
	log, prof *os.File
}

// Open redirects logging and starts CPU profiling if the config asks for it.
func (fg *FileGroup) Open(con *io.SharedConfig) {
	var err error

	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func (fg *FileGroup) Close() {
	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		grid, jobs, animate, prof string
		exampleConfig             string
	)
	vars := map[string]*string{
		"Grid":          &grid,
		"Jobs":          &jobs,
		"Animate":       &animate,
		"Profile":       &prof,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(&grid, "Grid", "", "Configuration file for [Grid] mode.")
	flag.StringVar(&jobs, "Jobs", "", "Configuration file for [Jobs] mode.")
	flag.StringVar(
		&animate, "Animate", "", "Configuration file for [Animate] mode.",
	)
	flag.StringVar(
		&prof, "Profile", "", "Configuration file for [Profile] mode.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are 'Grid', "+
			"'Jobs', 'Animate', and 'Profile'.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	fg := &FileGroup{}
	defer fg.Close()

	switch modeName {
	case "Grid":
		con, err := io.ReadGridConfig(grid)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.Open(&con.SharedConfig)
		gridMain(con)
	case "Jobs":
		con, err := io.ReadJobsConfig(jobs)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.Open(&con.SharedConfig)
		jobsMain(con)
	case "Animate":
		con, err := io.ReadAnimateConfig(animate)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.Open(&con.SharedConfig)
		animateMain(con)
	case "Profile":
		con, err := io.ReadProfileConfig(prof)
		if err != nil {
			log.Fatal(err.Error())
		}
		fg.Open(&con.SharedConfig)
		profileMain(con)
	case "ExampleConfig":
		switch exampleConfig {
		case "Grid":
			fmt.Println(io.ExampleGridFile)
		case "Jobs":
			fmt.Println(io.ExampleJobsFile)
		case "Animate":
			fmt.Println(io.ExampleAnimateFile)
		case "Profile":
			fmt.Println(io.ExampleProfileFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. Only recognized " +
					"arguments are 'Grid', 'Jobs', 'Animate', and 'Profile'.",
			)
		}
	default:
		panic("Impossible")
	}
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but nanoflow "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func gridMain(con *io.GridConfig) {
	log.Println("Running Grid main.")

	b := &geom.Box{
		Origin:    [3]float64{con.X, con.Y, con.Z},
		Width:     [3]float64{con.XWidth, con.YWidth, con.ZWidth},
		CellWidth: [3]float64{con.CellXWidth, con.CellYWidth, con.CellZWidth},
	}
	if err := b.Validate(); err != nil {
		log.Fatal(err.Error())
	}

	w := geom.NewWireframe(b, con.Cells)
	log.Printf(
		"Built %d cells: %d points and %d edges.",
		b.CellCount(), len(w.Points), len(w.Edges),
	)

	err := io.WriteWireframeVTK(con.Output, "nanoflow grid", w)
	if err != nil {
		log.Fatal(err.Error())
	}

	if con.PlotFile != "" {
		a0, a1, err := io.ParsePlane(con.PlotPlane)
		if err != nil {
			log.Fatal(err.Error())
		}
		render.PlotWireframe(con.PlotFile, w, a0, a1)
	}
}

func jobsMain(con *io.JobsConfig) {
	log.Println("Running Jobs main.")

	s := batch.NewSweep(con.Name, con.Input, con.Threads)
	s.Cutoff = con.ThreadCutoff
	s.Small = batch.Cluster{Name: con.SmallCluster, Partition: con.SmallPartition}
	s.Large = batch.Cluster{Name: con.LargeCluster, Partition: con.LargePartition}
	s.Executable, s.Arguments = con.Executable, con.Arguments
	s.Memory, s.TimeLimit, s.MailUser = con.Memory, con.TimeLimit, con.MailUser

	var sub batch.Submitter
	if con.DryRun {
		sub = &batch.DryRunSubmitter{Command: con.SubmitCommand}
	} else {
		sub = &batch.CommandSubmitter{Command: con.SubmitCommand}
	}

	if err := os.MkdirAll(con.Output, 0755); err != nil {
		log.Fatal(err.Error())
	}
	paths, err := s.Run(con.Output, sub)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Generated %d job scripts.", len(paths))
}

func animateMain(con *io.AnimateConfig) {
	log.Println("Running Animate main.")

	a0, a1, err := io.ParsePlane(con.Axes)
	if err != nil {
		log.Fatal(err.Error())
	}
	cells := con.Cells()
	width := cells[0] * cells[1] * cells[2]

	density := readSeries(con.Density, width, con.SkipColumns, cells, a0, a1)
	velocity := readSeries(con.Velocity, width, con.SkipColumns, cells, a0, a1)

	opt := &render.Options{
		Title:  con.Title,
		XLabel: con.XLabel, YLabel: con.YLabel,
		Width: con.Width, Height: con.Height,
		ProfilePanel: con.ProfilePanel,
	}
	if strings.ToLower(con.Quantity) == "velocity" {
		opt.Quantity = render.Velocity
	}

	anim, err := render.NewAnimation(density, velocity, opt)
	if err != nil {
		log.Fatal(err.Error())
	}
	lo, hi := anim.Range()
	log.Printf("%d frames with color scale [%g, %g].", anim.Len(), lo, hi)

	var sink render.FrameSink
	if con.FrameDir != "" {
		sink, err = render.NewPNGSink(con.FrameDir, strings.ToLower(con.Quantity))
	} else {
		sink, err = render.NewMJPEGSink(con.Output, con.Width, con.Height, con.FPS)
	}
	if err != nil {
		log.Fatal(err.Error())
	}

	if err = anim.Render(sink); err != nil {
		log.Fatal(err.Error())
	}
	if err = sink.Close(); err != nil {
		log.Fatal(err.Error())
	}

	if con.Display {
		anim.Show(con.FPS)
	}
}

func readSeries(
	fname string, width, skip int, cells [3]int, a0, a1 int,
) *field.Series {
	rows, err := io.ReadTable(fname, width, skip)
	if err != nil {
		log.Fatal(err.Error())
	}
	s, err := field.NewSeries(rows, cells, a0, a1)
	if err != nil {
		log.Fatalf("%s: %s", fname, err.Error())
	}
	log.Printf("Read %d timesteps from %s.", s.Len(), fname)
	return s
}

func profileMain(con *io.ProfileConfig) {
	log.Println("Running Profile main.")

	files, err := profile.FindSnapshots(con.Input, con.Pattern)
	if err != nil {
		log.Fatal(err.Error())
	}

	ex := profile.NewExtractor(
		con.Extent(), con.Bins(), con.Field, con.Component, con.Output,
	)
	res, err := ex.Run(files)
	if err != nil {
		log.Fatal(err.Error())
	}
	if res.Dropped > 0 {
		log.Printf("%d points in total were outside the domain.", res.Dropped)
	}

	if con.PlotFile != "" {
		if !ex.OneDimensional() {
			log.Println("'PlotFile' is only used when a single axis is binned.")
			return
		}
		axis := ex.Grid.BinnedAxes()[0]
		xs := make([]float64, ex.Grid.Volume)
		for i := range xs {
			xs[i] = ex.Grid.Center(i)[axis]
		}

		lo, hi := floats.Min(res.Means[0]), floats.Max(res.Means[0])
		for _, means := range res.Means[1:] {
			lo = min(lo, floats.Min(means))
			hi = max(hi, floats.Max(means))
		}
		render.PlotProfiles(
			con.PlotFile, xs, res.Means, lo, hi,
			fmt.Sprintf("'%s' profile", con.Field), "Position", "Mean",
		)
	}
}
