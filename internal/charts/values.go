package charts

import (
	"fmt"
	"math"
	"time"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
)

type axisKind int

const (
	axisCategory axisKind = iota
	axisNumeric
	axisTime
)

// xAxis is an x column projected onto a plottable axis. Category axes
// plot rows at their index and carry the labels.
type xAxis struct {
	kind   axisKind
	values []float64
	times  []time.Time
	labels []string
}

func newXAxis(values []interface{}) xAxis {
	labels := make([]string, len(values))
	for i, v := range values {
		labels[i] = dataset.FormatValue(v)
	}

	if floats, ok := numericValues(values); ok {
		return xAxis{kind: axisNumeric, values: floats, labels: labels}
	}
	if times, ok := dataset.ParseTimes(values); ok {
		floats := make([]float64, len(times))
		for i, t := range times {
			floats[i] = math.NaN()
			if values[i] != nil {
				floats[i] = float64(t.UnixNano())
			}
		}
		return xAxis{kind: axisTime, values: floats, times: times, labels: labels}
	}

	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}
	return xAxis{kind: axisCategory, values: index, labels: labels}
}

// numericValues converts ints and floats; nil becomes NaN. Any other type
// makes the column non-numeric.
func numericValues(values []interface{}) ([]float64, bool) {
	out := make([]float64, len(values))
	seen := 0
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			out[i] = math.NaN()
		case int:
			out[i] = float64(x)
			seen++
		case float64:
			out[i] = x
			seen++
		default:
			return nil, false
		}
	}
	return out, seen > 0 || len(values) == 0
}

// yValues converts a series to floats. Booleans plot as 0/1.
func yValues(name string, values []interface{}) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		switch x := v.(type) {
		case nil:
			out[i] = math.NaN()
		case int:
			out[i] = float64(x)
		case float64:
			out[i] = x
		case bool:
			if x {
				out[i] = 1
			}
		default:
			return nil, fmt.Errorf("%w: column %q holds %T", ErrNotNumeric, name, v)
		}
	}
	return out, nil
}

// extent returns the finite min and max of values
func extent(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, lo <= hi
}

// pad widens a zero-width range so axes can be drawn
func pad(lo, hi float64) (float64, float64) {
	if lo != hi {
		return lo, hi
	}
	delta := math.Abs(lo) * 0.1
	if delta == 0 {
		delta = 1
	}
	return lo - delta, hi + delta
}
