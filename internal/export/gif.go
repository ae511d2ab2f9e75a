package export

import (
	"fmt"
	"image"
	"image/color/palette"
	imagedraw "image/draw"
	"image/gif"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/brownsim/internal/dynamo"
)

type GIFOptions struct {
	Width, Height int
	LineWidth     float64
	// Delay between frames in milliseconds.
	Delay int
	// Stride renders every Stride-th step as a frame; the last step is
	// always included.
	Stride     int
	Projection Projection
	// Lo and Hi bound both plot axes. Equal values fit the data.
	Lo, Hi float64
}

func DefaultGIFOptions() GIFOptions {
	return GIFOptions{
		Width:      480,
		Height:     480,
		LineWidth:  2,
		Delay:      120,
		Stride:     1,
		Projection: ProjectXY,
		Lo:         -1,
		Hi:         1,
	}
}

// BoundsFor picks axis limits covering the canonical box of params.
func BoundsFor(params dynamo.Params) (lo, hi float64) {
	if params.EffectiveWrap() == dynamo.WrapNone {
		return 0, 0
	}
	return params.EffectiveWrap().Bounds(params.Box)
}

// RenderGIF animates the growing projected walk of every particle. walks is
// particles × steps, as returned by Trajectory.ByParticle.
func RenderGIF(w io.Writer, walks [][]dynamo.Vec3, opts GIFOptions) error {
	if len(walks) == 0 || len(walks[0]) == 0 {
		return fmt.Errorf("export: empty trajectory")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("export: frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.Stride < 1 {
		opts.Stride = 1
	}

	projected := make([]plotter.XYs, len(walks))
	for i, walk := range walks {
		projected[i] = opts.Projection.Points(walk)
	}

	lo, hi := opts.Lo, opts.Hi
	if lo >= hi {
		lo, hi = fitBounds(projected)
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, num := range frameLengths(len(walks[0]), opts.Stride) {
		frame, err := renderFrame(projected, num, lo, hi, opts)
		if err != nil {
			return err
		}
		anim.Image = append(anim.Image, frame)
		// gif delays are in hundredths of a second
		anim.Delay = append(anim.Delay, opts.Delay/10)
	}

	return gif.EncodeAll(w, anim)
}

// frameLengths lists how many samples of each walk every frame shows.
func frameLengths(steps, stride int) []int {
	var out []int
	for num := 1; num <= steps; num += stride {
		out = append(out, num)
	}
	if out[len(out)-1] != steps {
		out = append(out, steps)
	}
	return out
}

func renderFrame(walks []plotter.XYs, num int, lo, hi float64, opts GIFOptions) (*image.Paletted, error) {
	p := plot.New()
	p.X.Label.Text = opts.Projection.AxisLabel(0)
	p.Y.Label.Text = opts.Projection.AxisLabel(1)
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	for i, walk := range walks {
		line, err := plotter.NewLine(walk[:num])
		if err != nil {
			return nil, fmt.Errorf("export: particle %d: %w", i, err)
		}
		line.LineStyle.Width = vg.Points(opts.LineWidth)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
	}

	c := vgimg.NewWith(
		vgimg.UseWH(vg.Points(float64(opts.Width)), vg.Points(float64(opts.Height))),
		vgimg.UseDPI(72),
	)
	p.Draw(draw.New(c))

	img := c.Image()
	frame := image.NewPaletted(img.Bounds(), palette.Plan9)
	imagedraw.Draw(frame, img.Bounds(), img, img.Bounds().Min, imagedraw.Src)
	return frame, nil
}

func fitBounds(walks []plotter.XYs) (lo, hi float64) {
	lo, hi = walks[0][0].X, walks[0][0].X
	for _, walk := range walks {
		for _, pt := range walk {
			lo = min(lo, pt.X, pt.Y)
			hi = max(hi, pt.X, pt.Y)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := 0.05 * (hi - lo)
	return lo - pad, hi + pad
}
