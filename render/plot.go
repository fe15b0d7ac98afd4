package render

import (
	"fmt"
	"strconv"
	"strings"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/nanoflow/geom"
)

var axisNames = [3]string{"x", "y", "z"}

// Show opens a matplotlib window which plays the heatmaps frame by frame on
// the fixed color scale, fps frames per second. With ProfilePanel set, the
// mean profile is animated below the heatmap on its own fixed y-scale. Show
// blocks until the window is closed.
func (a *Animation) Show(fps int) {
	plt.Reset()
	for _, line := range a.showScript(fps) {
		plt.InsertLine(line)
	}
	plt.Show()
	plt.Reset()
}

// showScript returns the python lines which draw the animation.
func (a *Animation) showScript(fps int) []string {
	if fps <= 0 {
		fps = 1
	}
	frames := make([]string, a.Len())
	for i := range a.Series.Frames {
		f := &a.Series.Frames[i]
		rows := make([]string, f.Rows)
		for r := range rows {
			rows[r] = pyList(f.Row(r))
		}
		frames[i] = "[" + strings.Join(rows, ",") + "]"
	}

	lines := []string{
		"import matplotlib.animation as animation",
		"frames = np.array([" + strings.Join(frames, ",") + "])",
		fmt.Sprintf("lo, hi = %s, %s", pyFloat(a.lo), pyFloat(a.hi)),
	}
	if a.ProfilePanel {
		profs := make([]string, len(a.profs))
		for i := range a.profs {
			profs[i] = pyList(a.profs[i])
		}
		lines = append(lines,
			"profs = np.array(["+strings.Join(profs, ",")+"])",
			"xs = np.array("+pyList(a.Series.Coords())+")",
			fmt.Sprintf("plo, phi = %s, %s", pyFloat(a.plo), pyFloat(a.phi)),
			"fig, (ax, pax) = plt.subplots(2, 1, gridspec_kw={'height_ratios': [2, 1]})",
		)
	} else {
		lines = append(lines, "fig, ax = plt.subplots()")
	}

	lines = append(lines,
		"fig.colorbar(ax.pcolor(frames[0], vmin=lo, vmax=hi), ax=ax)",
		"def draw(i):",
		"    ax.clear()",
		fmt.Sprintf("    ax.set_title(%q)", a.Title),
		fmt.Sprintf("    ax.set_xlabel(%q)", a.XLabel),
		fmt.Sprintf("    ax.set_ylabel(%q)", a.YLabel),
		"    ax.text(0.01, 0.99, 't = %d/%d' % (i + 1, len(frames)), "+
			"transform=ax.transAxes, va='top')",
	)
	if a.ProfilePanel {
		lines = append(lines,
			"    pax.clear()",
			"    pax.plot(xs, profs[i], 'b')",
			"    pax.set_xlim(0, len(xs))",
			"    pax.set_ylim(plo, phi)",
		)
	}
	lines = append(lines,
		"    return ax.pcolor(frames[i], vmin=lo, vmax=hi)",
		fmt.Sprintf(
			"ani = animation.FuncAnimation(fig, draw, frames=len(frames), "+
				"interval=%d)", 1000/fps,
		),
	)
	return lines
}

func pyList(xs []float64) string {
	toks := make([]string, len(xs))
	for i, x := range xs {
		toks[i] = pyFloat(x)
	}
	return "[" + strings.Join(toks, ",") + "]"
}

func pyFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// PlotProfiles draws one line per profile with fixed y-limits. If fname is
// empty the figure is shown interactively instead of saved.
func PlotProfiles(
	fname string, xs []float64, profs [][]float64, lo, hi float64,
	title, xLabel, yLabel string,
) {
	plt.Reset()
	plt.Figure()
	for i, prof := range profs {
		if i == len(profs)-1 {
			plt.Plot(xs, prof, "r", plt.LW(3))
		} else {
			plt.Plot(xs, prof, "k", plt.LW(1))
		}
	}

	lo, hi = widen(lo, hi)
	plt.YLim(lo, hi)
	plt.Title(title)
	plt.XLabel(xLabel, plt.FontSize(16))
	plt.YLabel(yLabel, plt.FontSize(16))
	plt.Grid(plt.Axis("y"))

	finish(fname)
}

// PlotWireframe draws the projection of a wireframe onto the plane spanned
// by axes a0 and a1.
func PlotWireframe(fname string, w *geom.Wireframe, a0, a1 int) {
	xs, ys := w.Project(a0, a1)

	plt.Reset()
	plt.Figure(plt.FigSize(8, 8))
	for i := range xs {
		plt.Plot(xs[i][:], ys[i][:], "k", plt.LW(1))
	}

	if len(w.Points) > 0 {
		lo0, hi0 := pointRange(w.Points, a0)
		lo1, hi1 := pointRange(w.Points, a1)
		lo0, hi0 = widen(lo0, hi0)
		lo1, hi1 = widen(lo1, hi1)
		plt.XLim(lo0, hi0)
		plt.YLim(lo1, hi1)
	}
	plt.XLabel(axisNames[a0], plt.FontSize(16))
	plt.YLabel(axisNames[a1], plt.FontSize(16))

	finish(fname)
}

func pointRange(pts []geom.Point, axis int) (lo, hi float64) {
	lo, hi = pts[0][axis], pts[0][axis]
	for _, p := range pts {
		if p[axis] < lo {
			lo = p[axis]
		}
		if p[axis] > hi {
			hi = p[axis]
		}
	}
	return lo, hi
}

// finish shows or saves the current figure and clears the script.
func finish(fname string) {
	if fname == "" {
		plt.Show()
	} else {
		plt.SaveFig(fname)
		plt.Execute()
	}
	plt.Reset()
}
