package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

// Snippet builds an embeddable ECharts fragment for the figure. id ends up
// in JavaScript identifiers, so it must not contain dashes.
func (cg *ChartGenerator) Snippet(fig resolver.Figure, id string) (ChartSnippet, error) {
	chart, err := cg.echart(fig, id)
	if err != nil {
		return ChartSnippet{}, err
	}
	snippet := chart.RenderSnippet()
	return ChartSnippet{
		ID:     id,
		Title:  fig.Title,
		Div:    snippet.Element,
		Script: snippet.Script,
		HTML:   snippet.Element + "\n" + snippet.Script,
	}, nil
}

// Page writes a standalone HTML document holding the figure
func (cg *ChartGenerator) Page(w io.Writer, fig resolver.Figure) error {
	chart, err := cg.echart(fig, "chart")
	if err != nil {
		return err
	}
	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render chart page: %w", err)
	}
	return nil
}

func (cg *ChartGenerator) echart(fig resolver.Figure, id string) (render.Renderer, error) {
	if len(fig.Series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, fig.Title)
	}

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fig.Title,
			ChartID:   id,
			Width:     fmt.Sprintf("%dpx", cg.width),
			Height:    fmt.Sprintf("%dpx", cg.height),
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{Title: fig.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: fig.XLabel}),
		charts.WithYAxisOpts(opts.YAxis{Name: fig.YLabel}),
	}

	labels := make([]string, len(fig.Series[0].X))
	for i, v := range fig.Series[0].X {
		labels[i] = dataset.FormatValue(v)
	}

	switch fig.Kind {
	case resolver.Scatter:
		c := charts.NewScatter()
		c.SetGlobalOptions(global...)
		c.SetXAxis(labels)
		for _, s := range fig.Series {
			data := make([]opts.ScatterData, len(s.Y))
			for i, v := range s.Y {
				data[i] = opts.ScatterData{Value: v, SymbolSize: 8}
			}
			c.AddSeries(s.Name, data, markPoints(fig, s.Name)...)
		}
		return c, nil

	case resolver.Bar:
		c := charts.NewBar()
		c.SetGlobalOptions(global...)
		c.SetXAxis(labels)
		for _, s := range fig.Series {
			data := make([]opts.BarData, len(s.Y))
			for i, v := range s.Y {
				data[i] = opts.BarData{Value: v}
			}
			c.AddSeries(s.Name, data, markPoints(fig, s.Name)...)
		}
		return c, nil

	default:
		c := charts.NewLine()
		c.SetGlobalOptions(global...)
		c.SetXAxis(labels)
		for _, s := range fig.Series {
			data := make([]opts.LineData, len(s.Y))
			for i, v := range s.Y {
				data[i] = opts.LineData{Value: v}
			}
			c.AddSeries(s.Name, data, markPoints(fig, s.Name)...)
		}
		return c, nil
	}
}

// markPoints turns the figure's annotations for one series into labelled
// mark points
func markPoints(fig resolver.Figure, series string) []charts.SeriesOpts {
	var items []opts.MarkPointNameCoordItem
	for _, a := range fig.Annotations {
		if a.Series != series || a.Y == nil {
			continue
		}
		items = append(items, opts.MarkPointNameCoordItem{
			Name:       a.Text,
			Coordinate: []interface{}{dataset.FormatValue(a.X), a.Y},
			Label: &opts.Label{
				Show:      opts.Bool(true),
				Formatter: types.FuncStr(a.Text),
			},
		})
	}
	if len(items) == 0 {
		return nil
	}
	return []charts.SeriesOpts{charts.WithMarkPointNameCoordItemOpts(items...)}
}
