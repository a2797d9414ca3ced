package dataset

import (
	"fmt"
	"math"

	"github.com/tobgu/qframe"
	"github.com/tobgu/qframe/types"
)

// Bounds returns the observed minimum and maximum of a numeric column,
// ignoring nulls
func (d *Dataset) Bounds(name string) (lo, hi float64, err error) {
	values, err := d.Floats(name)
	if err != nil {
		return 0, 0, err
	}

	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%w: %q", ErrNoValues, name)
	}
	return lo, hi, nil
}

// FilterRange keeps the rows whose value in the numeric column lies in
// [lo, hi]. Null values never match.
func (d *Dataset) FilterRange(name string, lo, hi float64) (*Dataset, error) {
	kind, err := d.Kind(name)
	if err != nil {
		return nil, err
	}
	if kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, kind)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || lo > hi {
		return nil, fmt.Errorf("invalid range [%v, %v] for column %q", lo, hi, name)
	}

	// Comparator arguments must match the column type
	var loArg, hiArg interface{} = lo, hi
	if d.frame.ColumnTypeMap()[name] == types.Int {
		loArg, hiArg = saturatingInt(math.Ceil(lo)), saturatingInt(math.Floor(hi))
	}

	filtered := d.frame.Filter(qframe.And(
		qframe.Filter{Column: name, Comparator: ">=", Arg: loArg},
		qframe.Filter{Column: name, Comparator: "<=", Arg: hiArg},
	))
	if filtered.Err != nil {
		return nil, &LoadError{Op: "filter", Err: filtered.Err}
	}
	return d.derive(filtered), nil
}

// Head returns the first n rows
func (d *Dataset) Head(n int) *Dataset {
	if n < 0 {
		n = 0
	}
	if n >= d.Len() {
		return d
	}
	return d.derive(d.frame.Slice(0, n))
}

// Rows returns every row formatted for display, in column order
func (d *Dataset) Rows() ([][]string, error) {
	cols := make([][]string, len(d.columns))
	for i, name := range d.columns {
		values, err := d.Strings(name)
		if err != nil {
			return nil, err
		}
		cols[i] = values
	}

	rows := make([][]string, d.Len())
	for r := range rows {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows, nil
}

// saturatingInt converts f to int, pinning values outside the int range
// (including infinities) to the nearest limit
func saturatingInt(f float64) int {
	switch {
	case f >= float64(math.MaxInt):
		return math.MaxInt
	case f <= float64(math.MinInt):
		return math.MinInt
	}
	return int(f)
}
