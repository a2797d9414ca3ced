package charts

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

const maxCategoryTicks = 12

// renderXY draws line and scatter figures with go-chart
func (cg *ChartGenerator) renderXY(w io.Writer, fig resolver.Figure, format Format) error {
	if len(fig.Series) == 0 {
		return ErrNoData
	}
	x := newXAxis(fig.Series[0].X)

	var series []chart.Series
	var allX, allY []float64
	for i, s := range fig.Series {
		ys, err := yValues(s.Name, s.Y)
		if err != nil {
			return err
		}

		var xs, kept []float64
		for j := range ys {
			if j >= len(x.values) || math.IsNaN(x.values[j]) || math.IsNaN(ys[j]) {
				continue
			}
			xs = append(xs, x.values[j])
			kept = append(kept, ys[j])
		}
		if len(xs) == 0 {
			continue
		}
		allX = append(allX, xs...)
		allY = append(allY, kept...)

		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			Style:   seriesStyle(fig.Kind, i),
			XValues: xs,
			YValues: kept,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: %s", ErrNoData, fig.Title)
	}

	if annotations := cg.annotationValues(fig, x); len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Name:        "Annotations",
			Annotations: annotations,
		})
	}

	xlo, xhi, _ := extent(allX)
	ylo, yhi, _ := extent(allY)
	xlo, xhi = pad(xlo, xhi)
	ylo, yhi = pad(ylo, yhi)

	graph := chart.Chart{
		Title: fig.Title,
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: drawing.ColorBlack,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  cg.width,
		Height: cg.height,
		XAxis: chart.XAxis{
			Name:           fig.XLabel,
			NameStyle:      chart.Style{FontSize: 11},
			Style:          chart.Style{FontSize: 9},
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			ValueFormatter: x.formatter(),
			Ticks:          x.ticks(),
		},
		YAxis: chart.YAxis{
			Name:      fig.YLabel,
			NameStyle: chart.Style{FontSize: 11},
			Style:     chart.Style{FontSize: 9},
			Range:     &chart.ContinuousRange{Min: ylo, Max: yhi},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var chartFormat chart.RendererProvider = chart.PNG
	if format == SVG {
		chartFormat = chart.SVG
	}
	if err := graph.Render(chartFormat, w); err != nil {
		return fmt.Errorf("failed to render chart %q: %w", fig.Title, err)
	}
	return nil
}

func seriesStyle(kind resolver.PlotKind, i int) chart.Style {
	color := chart.GetDefaultColor(i)
	if kind == resolver.Scatter {
		return chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    color,
		}
	}
	return chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
	}
}

// annotationValues places the Start/End labels on the x axis
func (cg *ChartGenerator) annotationValues(fig resolver.Figure, x xAxis) []chart.Value2 {
	var out []chart.Value2
	for _, a := range fig.Annotations {
		ys, err := yValues(a.Series, []interface{}{a.Y})
		if err != nil || math.IsNaN(ys[0]) {
			continue
		}
		xv, ok := x.position(a.X)
		if !ok {
			continue
		}
		out = append(out, chart.Value2{
			XValue: xv,
			YValue: ys[0],
			Label:  fmt.Sprintf("%s (%s)", a.Text, a.Series),
		})
	}
	return out
}

// position finds where an x value sits on the axis
func (x xAxis) position(v interface{}) (float64, bool) {
	switch x.kind {
	case axisNumeric:
		f, ok := numericValues([]interface{}{v})
		if !ok || len(f) == 0 || math.IsNaN(f[0]) {
			return 0, false
		}
		return f[0], true
	default:
		label := fmt.Sprint(v)
		for i, l := range x.labels {
			if l == label && !math.IsNaN(x.values[i]) {
				return x.values[i], true
			}
		}
	}
	return 0, false
}

func (x xAxis) formatter() chart.ValueFormatter {
	switch x.kind {
	case axisTime:
		return func(v interface{}) string {
			if f, ok := v.(float64); ok {
				return time.Unix(0, int64(f)).UTC().Format("2006-01-02")
			}
			return ""
		}
	case axisCategory:
		return func(v interface{}) string {
			if f, ok := v.(float64); ok {
				i := int(f)
				if i >= 0 && i < len(x.labels) {
					return x.labels[i]
				}
			}
			return ""
		}
	}
	return chart.FloatValueFormatter
}

// ticks returns explicit ticks for category axes, thinned so labels do not
// overlap. Other axes use go-chart's automatic ticks.
func (x xAxis) ticks() []chart.Tick {
	if x.kind != axisCategory || len(x.labels) == 0 {
		return nil
	}
	step := (len(x.labels) + maxCategoryTicks - 1) / maxCategoryTicks
	var ticks []chart.Tick
	for i := 0; i < len(x.labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: x.labels[i]})
	}
	return ticks
}
