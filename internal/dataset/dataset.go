// Package dataset wraps a qframe.QFrame with the column-level operations
// the dashboard needs: kind detection, value extraction, numeric bounds,
// range filtering, previews and CSV/XLSX export.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tobgu/qframe"
	qfcsv "github.com/tobgu/qframe/config/csv"
	"github.com/tobgu/qframe/types"
)

var (
	// ErrLoad classifies every failure while reading or processing uploaded data
	ErrLoad = errors.New("data load/processing failure")

	// ErrEmpty is returned for input without a header row
	ErrEmpty = errors.New("no columns to parse from file")

	// ErrUnknownColumn is returned when a column name is not in the dataset
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNotNumeric is returned when a numeric operation targets a non-numeric column
	ErrNotNumeric = errors.New("column is not numeric")

	// ErrNoValues is returned when a column has no usable values for the operation
	ErrNoValues = errors.New("column has no values")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadError wraps any failure while parsing or manipulating uploaded data.
// errors.Is(err, ErrLoad) is true for every LoadError.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// Dataset is an immutable table of named columns backed by a qframe.
// Filtering and slicing return new datasets.
type Dataset struct {
	frame   qframe.QFrame
	columns []string
	kinds   map[string]Kind
	layouts map[string]string
}

// Load parses data according to the filename extension: .xlsx is read as a
// workbook, everything else as CSV
func Load(r io.Reader, filename string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return LoadXLSX(r)
	}
	return LoadCSV(r)
}

// LoadCSV parses a CSV stream. Column types are inferred by qframe; empty
// cells become nulls.
func LoadCSV(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Op: "read", Err: err}
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &LoadError{Op: "parse", Err: ErrEmpty}
	}

	frame := qframe.ReadCSV(bytes.NewReader(raw),
		qfcsv.EmptyNull(true),
		qfcsv.IgnoreEmptyLines(true),
	)
	if frame.Err != nil {
		return nil, &LoadError{Op: "parse", Err: frame.Err}
	}
	return fromFrame(frame), nil
}

func fromFrame(frame qframe.QFrame) *Dataset {
	d := &Dataset{
		frame:   frame,
		columns: frame.ColumnNames(),
		kinds:   make(map[string]Kind),
		layouts: make(map[string]string),
	}
	typeMap := frame.ColumnTypeMap()
	for _, name := range d.columns {
		switch typeMap[name] {
		case types.Int, types.Float:
			d.kinds[name] = KindNumeric
		case types.Bool:
			d.kinds[name] = KindBool
		default:
			d.kinds[name] = KindText
			if layout, ok := detectTimeLayout(d.rawStrings(name)); ok {
				d.kinds[name] = KindTemporal
				d.layouts[name] = layout
			}
		}
	}
	return d
}

// derive builds a dataset from a derived frame, keeping detected kinds
func (d *Dataset) derive(frame qframe.QFrame) *Dataset {
	return &Dataset{
		frame:   frame,
		columns: d.columns,
		kinds:   d.kinds,
		layouts: d.layouts,
	}
}

// Columns returns the column names in file order
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return d.frame.Len()
}

// HasColumn reports whether name is a column of the dataset
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.kinds[name]
	return ok
}

// Kind returns the kind of a column
func (d *Dataset) Kind(name string) (Kind, error) {
	k, ok := d.kinds[name]
	if !ok {
		return KindText, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return k, nil
}

// Schema returns every column with its kind, in file order
func (d *Dataset) Schema() []ColumnInfo {
	out := make([]ColumnInfo, 0, len(d.columns))
	for _, name := range d.columns {
		out = append(out, ColumnInfo{Name: name, Kind: d.kinds[name]})
	}
	return out
}

// ColumnInfo describes one column
type ColumnInfo struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}
