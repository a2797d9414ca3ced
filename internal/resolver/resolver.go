// Package resolver turns a dataset and the user's chart selections into
// figure descriptors for the rendering layer.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
)

// ErrInvalidRequest marks selections that cannot be resolved against the
// dataset: unknown columns, bad filter bounds, unknown plot options
var ErrInvalidRequest = errors.New("invalid chart request")

// AxisSelection names the x column and the y columns to plot
type AxisSelection struct {
	X string   `json:"x"`
	Y []string `json:"y"`
}

// Request is everything the user picked for one render
type Request struct {
	Axes         AxisSelection `json:"axes"`
	FilterColumn string        `json:"filter_column"`
	Filter       *FilterRange  `json:"filter,omitempty"`
	Kind         PlotKind      `json:"kind"`
	Mode         DisplayMode   `json:"mode"`
}

// Actionable reports whether the selection is complete enough to draw
func (r Request) Actionable() bool {
	return r.Axes.X != "" && len(r.Axes.Y) > 0
}

// Series is one named sequence of points
type Series struct {
	Name string        `json:"name"`
	X    []interface{} `json:"x"`
	Y    []interface{} `json:"y"`
}

// Annotation labels a single point of a series
type Annotation struct {
	Series string      `json:"series"`
	Text   string      `json:"text"`
	X      interface{} `json:"x"`
	Y      interface{} `json:"y"`
}

// Figure describes one chart
type Figure struct {
	Kind        PlotKind     `json:"kind"`
	Title       string       `json:"title"`
	XLabel      string       `json:"x_label"`
	YLabel      string       `json:"y_label"`
	Series      []Series     `json:"series"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Result is the outcome of one resolution
type Result struct {
	// Figures is empty when the request is not actionable
	Figures []Figure

	// Data is the dataset after filtering; downloads are taken from it
	Data *dataset.Dataset

	FilterColumn string

	// Filter holds the applied bounds, nil when no filter ran
	Filter *FilterRange
}

// Normalize trims names and drops empty and repeated y columns, keeping
// first occurrence order
func (r Request) Normalize() Request {
	r.Axes.X = strings.TrimSpace(r.Axes.X)
	r.FilterColumn = strings.TrimSpace(r.FilterColumn)

	seen := make(map[string]bool, len(r.Axes.Y))
	ys := make([]string, 0, len(r.Axes.Y))
	for _, y := range r.Axes.Y {
		y = strings.TrimSpace(y)
		if y == "" || seen[y] {
			continue
		}
		seen[y] = true
		ys = append(ys, y)
	}
	r.Axes.Y = ys
	return r
}

// Resolve validates the selection, applies the filter and builds the
// figures. Any failure aborts the whole resolution.
func Resolve(ds *dataset.Dataset, req Request) (*Result, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: no dataset", ErrInvalidRequest)
	}
	req = req.Normalize()

	if req.Axes.X != "" && !ds.HasColumn(req.Axes.X) {
		return nil, fmt.Errorf("%w: unknown x column %q", ErrInvalidRequest, req.Axes.X)
	}
	for _, y := range req.Axes.Y {
		if !ds.HasColumn(y) {
			return nil, fmt.Errorf("%w: unknown y column %q", ErrInvalidRequest, y)
		}
	}

	data, applied, err := ApplyFilter(ds, req.FilterColumn, req.Filter)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Data:         data,
		FilterColumn: req.FilterColumn,
		Filter:       applied,
	}
	if !req.Actionable() {
		return result, nil
	}

	figures, err := buildFigures(data, req)
	if err != nil {
		return nil, err
	}
	result.Figures = figures
	return result, nil
}

func buildFigures(data *dataset.Dataset, req Request) ([]Figure, error) {
	x := req.Axes.X
	xs, err := data.Values(x)
	if err != nil {
		return nil, fmt.Errorf("read x column: %w", err)
	}

	series := make([]Series, 0, len(req.Axes.Y))
	for _, y := range req.Axes.Y {
		ys, err := data.Values(y)
		if err != nil {
			return nil, fmt.Errorf("read y column: %w", err)
		}
		series = append(series, Series{Name: y, X: xs, Y: ys})
	}

	if req.Mode == Multiple {
		figures := make([]Figure, 0, len(series))
		for _, s := range series {
			figures = append(figures, Figure{
				Kind:   req.Kind,
				Title:  fmt.Sprintf("%s vs %s", s.Name, x),
				XLabel: x,
				YLabel: s.Name,
				Series: []Series{s},
			})
		}
		return figures, nil
	}

	fig := Figure{
		Kind:   req.Kind,
		Title:  fmt.Sprintf("%s vs %s", strings.Join(req.Axes.Y, ", "), x),
		XLabel: x,
		YLabel: "Values",
		Series: series,
	}
	for _, s := range series {
		fig.Annotations = append(fig.Annotations, endpoints(s)...)
	}
	return []Figure{fig}, nil
}

// endpoints marks the first and last point of a series
func endpoints(s Series) []Annotation {
	n := len(s.X)
	if n == 0 {
		return nil
	}
	return []Annotation{
		{Series: s.Name, Text: "Start", X: s.X[0], Y: s.Y[0]},
		{Series: s.Name, Text: "End", X: s.X[n-1], Y: s.Y[n-1]},
	}
}
