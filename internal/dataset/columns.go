package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tobgu/qframe/types"
)

// Kind classifies the scalar values held by a column
type Kind int

const (
	KindText Kind = iota
	KindNumeric
	KindBool
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBool:
		return "bool"
	case KindTemporal:
		return "temporal"
	default:
		return "text"
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// timeLayouts are tried in order when deciding whether a text column is temporal
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006-01",
}

// detectTimeLayout returns the first layout that parses every non-null
// value. A column with no non-null values is not temporal.
func detectTimeLayout(values []*string) (string, bool) {
	for _, layout := range timeLayouts {
		seen := 0
		ok := true
		for _, v := range values {
			if v == nil {
				continue
			}
			if _, err := time.Parse(layout, *v); err != nil {
				ok = false
				break
			}
			seen++
		}
		if ok && seen > 0 {
			return layout, true
		}
	}
	return "", false
}

// rawStrings returns the values of a string or enum column; nil marks null
func (d *Dataset) rawStrings(name string) []*string {
	out := make([]*string, d.frame.Len())
	switch d.frame.ColumnTypeMap()[name] {
	case types.String:
		view, err := d.frame.StringView(name)
		if err != nil {
			return out
		}
		for i := range out {
			out[i] = view.ItemAt(i)
		}
	case types.Enum:
		view, err := d.frame.EnumView(name)
		if err != nil {
			return out
		}
		for i := range out {
			out[i] = view.ItemAt(i)
		}
	}
	return out
}

// Values returns the column as scalars: int, float64, bool or string, with
// nil for nulls. Temporal columns are returned as their original strings.
func (d *Dataset) Values(name string) ([]interface{}, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	n := d.frame.Len()
	out := make([]interface{}, n)
	switch d.frame.ColumnTypeMap()[name] {
	case types.Int:
		view, err := d.frame.IntView(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out[i] = view.ItemAt(i)
		}
	case types.Float:
		view, err := d.frame.FloatView(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if v := view.ItemAt(i); !math.IsNaN(v) {
				out[i] = v
			}
		}
	case types.Bool:
		view, err := d.frame.BoolView(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out[i] = view.ItemAt(i)
		}
	default:
		for i, s := range d.rawStrings(name) {
			if s != nil {
				out[i] = *s
			}
		}
	}
	return out, nil
}

// Floats returns a numeric column as float64 values; nulls are NaN
func (d *Dataset) Floats(name string) ([]float64, error) {
	kind, err := d.Kind(name)
	if err != nil {
		return nil, err
	}
	if kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, kind)
	}

	n := d.frame.Len()
	out := make([]float64, n)
	if d.frame.ColumnTypeMap()[name] == types.Int {
		view, err := d.frame.IntView(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			out[i] = float64(view.ItemAt(i))
		}
		return out, nil
	}

	view, err := d.frame.FloatView(name)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		out[i] = view.ItemAt(i)
	}
	return out, nil
}

// Times returns a temporal column parsed with its detected layout. Nulls
// are reported as false in valid.
func (d *Dataset) Times(name string) (values []time.Time, valid []bool, err error) {
	kind, err := d.Kind(name)
	if err != nil {
		return nil, nil, err
	}
	if kind != KindTemporal {
		return nil, nil, fmt.Errorf("column %q is %s, not temporal", name, kind)
	}

	layout := d.layouts[name]
	raw := d.rawStrings(name)
	values = make([]time.Time, len(raw))
	valid = make([]bool, len(raw))
	for i, s := range raw {
		if s == nil {
			continue
		}
		t, err := time.Parse(layout, *s)
		if err != nil {
			return nil, nil, fmt.Errorf("column %q row %d: %w", name, i, err)
		}
		values[i] = t
		valid[i] = true
	}
	return values, valid, nil
}

// Strings returns the column formatted for display; nulls are empty
func (d *Dataset) Strings(name string) ([]string, error) {
	values, err := d.Values(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v)
	}
	return out, nil
}

// FormatValue renders a scalar produced by Values
func FormatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// ParseTimes converts scalars produced by Values into times when every
// non-null value is a string in one common layout. Nulls map to the zero
// time.
func ParseTimes(values []interface{}) ([]time.Time, bool) {
	raw := make([]*string, len(values))
	for i, v := range values {
		switch s := v.(type) {
		case nil:
		case string:
			raw[i] = &s
		default:
			return nil, false
		}
	}
	layout, ok := detectTimeLayout(raw)
	if !ok {
		return nil, false
	}

	out := make([]time.Time, len(values))
	for i, s := range raw {
		if s != nil {
			out[i], _ = time.Parse(layout, *s)
		}
	}
	return out, true
}
