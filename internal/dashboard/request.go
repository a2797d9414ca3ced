package dashboard

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

// ParseRequest reads a chart request from query or form values.
// filter_column falls back to defaultFilterColumn. A missing min or max
// leaves that side open; both missing means the full observed range.
func ParseRequest(values url.Values, defaultFilterColumn string) (resolver.Request, error) {
	kind, err := resolver.ParsePlotKind(values.Get("kind"))
	if err != nil {
		return resolver.Request{}, err
	}
	mode, err := resolver.ParseDisplayMode(values.Get("mode"))
	if err != nil {
		return resolver.Request{}, err
	}

	req := resolver.Request{
		Axes: resolver.AxisSelection{
			X: values.Get("x"),
			Y: values["y"],
		},
		FilterColumn: defaultFilterColumn,
		Kind:         kind,
		Mode:         mode,
	}
	if fc := strings.TrimSpace(values.Get("filter_column")); fc != "" {
		req.FilterColumn = fc
	}

	minText := strings.TrimSpace(values.Get("min"))
	maxText := strings.TrimSpace(values.Get("max"))
	if minText != "" || maxText != "" {
		lo, err := parseBound("min", minText, math.Inf(-1))
		if err != nil {
			return resolver.Request{}, err
		}
		hi, err := parseBound("max", maxText, math.Inf(1))
		if err != nil {
			return resolver.Request{}, err
		}
		req.Filter = &resolver.FilterRange{Min: lo, Max: hi}
	}

	return req.Normalize(), nil
}

func parseBound(name, text string, open float64) (float64, error) {
	if text == "" {
		return open, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) {
		return 0, fmt.Errorf("%w: %s %q is not a number", resolver.ErrInvalidRequest, name, text)
	}
	return v, nil
}

// EncodeRequest is the inverse of ParseRequest. Open bounds are left out.
func EncodeRequest(req resolver.Request) url.Values {
	values := url.Values{}
	if req.Axes.X != "" {
		values.Set("x", req.Axes.X)
	}
	for _, y := range req.Axes.Y {
		values.Add("y", y)
	}
	values.Set("kind", req.Kind.String())
	values.Set("mode", req.Mode.String())
	if req.FilterColumn != "" {
		values.Set("filter_column", req.FilterColumn)
	}
	if req.Filter != nil {
		if !math.IsInf(req.Filter.Min, 0) {
			values.Set("min", formatFloat(req.Filter.Min))
		}
		if !math.IsInf(req.Filter.Max, 0) {
			values.Set("max", formatFloat(req.Filter.Max))
		}
	}
	return values
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
