// Package charts renders resolver figures: interactive ECharts snippets and
// pages through go-echarts, static PNG/SVG line and scatter charts through
// go-chart, and grouped bar charts through gonum/plot.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

// Format selects the output of a static render
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat accepts "png" or "svg", case-insensitively
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", fmt.Errorf("unsupported image format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var (
	// ErrNoData is returned when a figure has no plottable points
	ErrNoData = errors.New("no data to plot")

	// ErrNotNumeric is returned when y values are not numbers
	ErrNotNumeric = errors.New("y values must be numeric")
)

// ChartGenerator renders figures at a fixed size
type ChartGenerator struct {
	width  int
	height int
	log    *logger.Logger
}

// NewChartGenerator creates a new chart generator. Sizes are in pixels.
func NewChartGenerator(width, height int) *ChartGenerator {
	if width <= 0 {
		width = 900
	}
	if height <= 0 {
		height = 450
	}
	return &ChartGenerator{
		width:  width,
		height: height,
		log:    logger.Component("charts"),
	}
}

// Image writes a static rendering of the figure
func (cg *ChartGenerator) Image(w io.Writer, fig resolver.Figure, format Format) error {
	cg.log.Debug("Rendering static chart", logger.Fields{
		"title":  fig.Title,
		"kind":   fig.Kind.String(),
		"format": string(format),
		"series": len(fig.Series),
	})

	if fig.Kind == resolver.Bar {
		return cg.renderBars(w, fig, format)
	}
	return cg.renderXY(w, fig, format)
}
