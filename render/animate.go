// Package render draws reshaped simulation fields as animated heatmaps.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"log"

	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/phil-mansfield/nanoflow/field"
)

// ErrTimestepMismatch is returned when the density and velocity tables do not
// contain the same number of timesteps.
var ErrTimestepMismatch = errors.New(
	"density and velocity tables have different timestep counts",
)

type Quantity int

const (
	Density Quantity = iota
	Velocity
)

const (
	// frameDPI is the resolution heatmaps are rasterized at. Frame sizes
	// are given in pixels.
	frameDPI           = 96
	colorBarWidth      = 80
	paletteColors      = 255
	captionX, captionY = 8, 16
)

// Options control the appearance of every frame.
type Options struct {
	Quantity              Quantity
	Title, XLabel, YLabel string
	// Width and Height are the size of a whole frame in pixels.
	Width, Height int
	// ProfilePanel stacks the mean profile of each frame below its heatmap.
	ProfilePanel bool
}

// Animation is a sequence of heatmaps drawn on a shared, fixed color scale.
type Animation struct {
	Options
	Series *field.Series

	lo, hi   float64
	plo, phi float64
	profs    [][]float64
	cm       palette.ColorMap
	pal      palette.Palette
}

// NewAnimation checks that density and velocity cover the same timesteps and
// prepares the quantity selected in opt for rendering. Color and profile
// scales are computed once here and never change between frames.
func NewAnimation(
	density, velocity *field.Series, opt *Options,
) (*Animation, error) {
	if density.Len() != velocity.Len() {
		return nil, fmt.Errorf(
			"%w: %d density rows and %d velocity rows",
			ErrTimestepMismatch, density.Len(), velocity.Len(),
		)
	}
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf(
			"Invalid frame size %d x %d.", opt.Width, opt.Height,
		)
	}

	a := &Animation{Options: *opt}
	switch opt.Quantity {
	case Density:
		a.Series = density
	case Velocity:
		a.Series = velocity
	default:
		return nil, fmt.Errorf("Unknown quantity %d.", opt.Quantity)
	}

	a.lo, a.hi = widen(a.Series.Range())
	a.profs = a.Series.Profiles()
	a.plo, a.phi = widen(a.Series.ProfileRange())

	a.cm = moreland.SmoothBlueRed()
	a.cm.SetMin(a.lo)
	a.cm.SetMax(a.hi)
	a.pal = a.cm.Palette(paletteColors)

	return a, nil
}

// widen keeps a range from being empty, which neither plotting library can
// scale to.
func widen(lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo, lo + 1
	}
	return lo, hi
}

// Len returns the number of frames.
func (a *Animation) Len() int { return a.Series.Len() }

// Range returns the fixed color scale.
func (a *Animation) Range() (lo, hi float64) { return a.lo, a.hi }

// Render draws every frame in order and hands it to sink. The sink is not
// closed.
func (a *Animation) Render(sink FrameSink) error {
	for i := 0; i < a.Len(); i++ {
		img, err := a.Frame(i)
		if err != nil {
			return err
		}
		if err = sink.WriteFrame(img); err != nil {
			return err
		}
		if (i+1)%100 == 0 || i+1 == a.Len() {
			log.Printf("Rendered %d/%d frames", i+1, a.Len())
		}
	}
	return nil
}

// Frame draws frame i.
func (a *Animation) Frame(i int) (*image.RGBA, error) {
	dst := image.NewRGBA(image.Rect(0, 0, a.Width, a.Height))
	imagedraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, imagedraw.Src)

	heatHeight := a.Height
	if a.ProfilePanel {
		heatHeight = 2 * a.Height / 3
	}

	heat := a.heatmap(i, a.Width, heatHeight)
	imagedraw.Draw(
		dst, image.Rect(0, 0, a.Width, heatHeight),
		heat, heat.Bounds().Min, imagedraw.Src,
	)

	if a.ProfilePanel {
		prof, err := a.profilePanel(i, a.Width, a.Height-heatHeight)
		if err != nil {
			return nil, err
		}
		imagedraw.Draw(
			dst, image.Rect(0, heatHeight, a.Width, a.Height),
			prof, prof.Bounds().Min, imagedraw.Src,
		)
	}

	addLabel(dst, captionX, captionY,
		fmt.Sprintf("t = %d/%d", i+1, a.Len()), color.Black)
	return dst, nil
}

func (a *Animation) heatmap(i, w, h int) image.Image {
	p := plot.New()
	p.Title.Text = a.Title
	p.X.Label.Text = a.XLabel
	p.Y.Label.Text = a.YLabel

	hm := plotter.NewHeatMap(frameGrid{&a.Series.Frames[i]}, a.pal)
	hm.Min, hm.Max = a.lo, a.hi
	p.Add(hm)

	cb := plot.New()
	cb.HideX()
	cb.Add(&plotter.ColorBar{ColorMap: a.cm, Vertical: true})

	c := vgimg.NewWith(vgimg.UseWH(pixels(w), pixels(h)), vgimg.UseDPI(frameDPI))
	dc := draw.New(c)
	bar := pixels(colorBarWidth)
	p.Draw(draw.Crop(dc, 0, -bar, 0, 0))
	cb.Draw(draw.Crop(dc, pixels(w)-bar, 0, 0, 0))
	return c.Image()
}

// pixels converts a pixel count to a length on a frameDPI canvas.
func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / frameDPI
}

func (a *Animation) profilePanel(i, w, h int) (image.Image, error) {
	xs, ys := a.Series.Coords(), a.profs[i]
	xMax := float64(len(xs))
	if len(xs) < 2 {
		// A line needs two points.
		xs, ys = []float64{0, xMax}, []float64{ys[0], ys[0]}
	}

	graph := chart.Chart{
		Width:  w,
		Height: h,
		XAxis: chart.XAxis{
			Name:  a.XLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  "mean",
			Range: &chart.ContinuousRange{Min: a.plo, Max: a.phi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}

	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return png.Decode(buf)
}

// frameGrid adapts a Frame to plotter.GridXYZ. Cells are centered on
// half-integer coordinates.
type frameGrid struct{ f *field.Frame }

func (g frameGrid) Dims() (c, r int)   { return g.f.Cols, g.f.Rows }
func (g frameGrid) Z(c, r int) float64 { return g.f.At(r, c) }
func (g frameGrid) X(c int) float64    { return float64(c) + 0.5 }
func (g frameGrid) Y(r int) float64    { return float64(r) + 0.5 }

func addLabel(img *image.RGBA, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}
