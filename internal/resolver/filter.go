package resolver

import (
	"errors"
	"fmt"
	"math"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
)

// FilterRange is an inclusive numeric range on the filter column
type FilterRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies inside the range
func (r FilterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// FilterBounds returns the observed range of the filter column. ok is false
// when the column is not part of the dataset or holds no values.
func FilterBounds(ds *dataset.Dataset, column string) (FilterRange, bool, error) {
	if ds == nil || column == "" || !ds.HasColumn(column) {
		return FilterRange{}, false, nil
	}
	lo, hi, err := ds.Bounds(column)
	if errors.Is(err, dataset.ErrNoValues) {
		return FilterRange{}, false, nil
	}
	if err != nil {
		return FilterRange{}, false, fmt.Errorf("%w: filter column: %w", ErrInvalidRequest, err)
	}
	return FilterRange{Min: lo, Max: hi}, true, nil
}

// ApplyFilter keeps the rows whose filter column value lies in r. A nil r
// selects the full observed range, which still drops rows where the column
// is null.
//
// When the column is absent the dataset is returned unchanged and applied
// is nil. Otherwise applied holds the bounds actually used: r clamped to the
// observed range, so they are always finite.
func ApplyFilter(ds *dataset.Dataset, column string, r *FilterRange) (filtered *dataset.Dataset, applied *FilterRange, err error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("%w: no dataset", ErrInvalidRequest)
	}

	observed, ok, err := FilterBounds(ds, column)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return ds, nil, nil
	}

	want := observed
	if r != nil {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return nil, nil, fmt.Errorf("%w: filter bounds must be numbers", ErrInvalidRequest)
		}
		if r.Min > r.Max {
			return nil, nil, fmt.Errorf("%w: filter minimum %v is greater than maximum %v", ErrInvalidRequest, r.Min, r.Max)
		}
		want = *r
	}

	bounds := FilterRange{
		Min: math.Max(want.Min, observed.Min),
		Max: math.Min(want.Max, observed.Max),
	}
	if bounds.Min > bounds.Max {
		// Requested range misses the data entirely: no rows, bounds pinned
		// to the nearest observed edge
		bounds = FilterRange{
			Min: clamp(want.Min, observed.Min, observed.Max),
			Max: clamp(want.Max, observed.Min, observed.Max),
		}
		return ds.Head(0), &bounds, nil
	}

	filtered, err = ds.FilterRange(column, bounds.Min, bounds.Max)
	if err != nil {
		return nil, nil, fmt.Errorf("filter %q: %w", column, err)
	}
	return filtered, &bounds, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
