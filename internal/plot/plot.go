// Package plot renders training artifacts as PNG images.
package plot

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveLossCurve writes a per-epoch loss curve to path. Each series maps a
// legend label to its per-epoch values; series may have different lengths.
func SaveLossCurve(path, title string, series map[string][]float64) error {
	if len(series) == 0 {
		return fmt.Errorf("loss curve: no series to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "epoch"
	p.Y.Label.Text = "loss"
	p.Add(plotter.NewGrid())

	palette := []color.RGBA{
		{R: 20, G: 80, B: 200, A: 255},
		{R: 200, G: 30, B: 30, A: 255},
		{R: 40, G: 120, B: 40, A: 255},
		{R: 120, G: 120, B: 120, A: 255},
	}

	labels := make([]string, 0, len(series))
	for label := range series {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for i, label := range labels {
		values := series[label]
		xys := make(plotter.XYs, 0, len(values))
		for epoch, v := range values {
			xys = append(xys, plotter.XY{X: float64(epoch + 1), Y: v})
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("loss curve: %w", err)
		}
		line.Color = palette[i%len(palette)]
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(label, line)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("loss curve: %w", err)
	}
	return nil
}
