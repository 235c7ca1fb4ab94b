package convergence

import (
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotCurve renders the study points as an estimate-vs-samples curve with
// the analytical constant drawn as a reference line, and saves it to path
// (format chosen by extension, e.g. .png).
func PlotCurve(points []Point, exact float64, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("no study points to plot")
	}

	p := hplot.New()
	p.Title.Text = "Mean distance estimate vs sample count"
	p.X.Label.Text = "samples"
	p.Y.Label.Text = "estimate"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Samples)
		xys[i].Y = pt.Estimate
	}

	curve, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("failed to build curve: %w", err)
	}
	curve.Color = color.NRGBA{0, 0, 255, 255}

	ref, err := plotter.NewLine(plotter.XYs{
		{X: float64(points[0].Samples), Y: exact},
		{X: float64(points[len(points)-1].Samples), Y: exact},
	})
	if err != nil {
		return fmt.Errorf("failed to build reference line: %w", err)
	}
	ref.Color = color.NRGBA{255, 0, 0, 255}
	ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(curve, ref, hplot.NewGrid())
	p.Legend.Add("estimate", curve)
	p.Legend.Add("analytical", ref)

	if err := p.Save(15*vg.Centimeter, -1, path); err != nil {
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}
	return nil
}

// PlotHistogram renders a distance histogram to path
func PlotHistogram(h *hbook.H1D, path string) error {
	p := hplot.New()
	p.Title.Text = "Distance spectrum"
	p.X.Label.Text = "distance"

	hh := hplot.NewH1D(h)
	hh.Color = color.NRGBA{0, 0, 255, 255}
	p.Add(hh, hplot.NewGrid())

	if err := p.Save(10*vg.Centimeter, -1, path); err != nil {
		return fmt.Errorf("failed to save histogram %s: %w", path, err)
	}
	return nil
}
