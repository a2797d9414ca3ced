package charts

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

const groupWidth = 0.8

// renderBars draws a grouped bar chart with gonum/plot: one group per row,
// one bar per series
func (cg *ChartGenerator) renderBars(w io.Writer, fig resolver.Figure, format Format) error {
	if len(fig.Series) == 0 || len(fig.Series[0].X) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, fig.Title)
	}

	p := plot.New()
	p.Title.Text = fig.Title
	p.X.Label.Text = fig.XLabel
	p.Y.Label.Text = fig.YLabel
	p.Legend.Top = true

	x := newXAxis(fig.Series[0].X)
	rows := len(x.labels)

	// Bar width is in canvas units; share the group width between series
	plotWidth := vg.Points(float64(cg.width)) * 0.8
	slot := plotWidth / vg.Length(rows)
	barWidth := slot * groupWidth / vg.Length(len(fig.Series))

	for i, s := range fig.Series {
		ys, err := yValues(s.Name, s.Y)
		if err != nil {
			return err
		}
		values := make(plotter.Values, rows)
		for j := range values {
			if j < len(ys) && !math.IsNaN(ys[j]) {
				values[j] = ys[j]
			}
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("failed to create bars for %s: %w", s.Name, err)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = barWidth * vg.Length(float64(i)-float64(len(fig.Series)-1)/2)

		p.Add(bars)
		p.Legend.Add(s.Name, bars)
	}

	p.NominalX(categoryLabels(x.labels)...)
	p.Add(plotter.NewGrid())

	writer, err := p.WriterTo(vg.Points(float64(cg.width)), vg.Points(float64(cg.height)), string(format))
	if err != nil {
		return fmt.Errorf("failed to create plot writer: %w", err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// categoryLabels blanks out labels so at most maxCategoryTicks are shown
func categoryLabels(labels []string) []string {
	step := (len(labels) + maxCategoryTicks - 1) / maxCategoryTicks
	if step <= 1 {
		return labels
	}
	out := make([]string, len(labels))
	for i := 0; i < len(labels); i += step {
		out[i] = labels[i]
	}
	return out
}
