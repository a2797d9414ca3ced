package dataset

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

const salesCSV = `date,units,price,region,promo
2024-01-01,3,2.5,north,true
2024-01-02,7,3.25,south,false
2024-01-03,1,1.75,north,false
2024-01-04,9,4.5,east,true
2024-01-05,5,2.0,south,true
`

func loadSales(t *testing.T) *Dataset {
	t.Helper()
	ds, err := LoadCSV(strings.NewReader(salesCSV))
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	return ds
}

func TestLoadCSVKinds(t *testing.T) {
	ds := loadSales(t)

	if ds.Len() != 5 {
		t.Fatalf("Expected 5 rows, got %d", ds.Len())
	}
	wantCols := []string{"date", "units", "price", "region", "promo"}
	if !reflect.DeepEqual(ds.Columns(), wantCols) {
		t.Errorf("Expected columns %v, got %v", wantCols, ds.Columns())
	}

	wantKinds := map[string]Kind{
		"date":   KindTemporal,
		"units":  KindNumeric,
		"price":  KindNumeric,
		"region": KindText,
		"promo":  KindBool,
	}
	for col, want := range wantKinds {
		got, err := ds.Kind(col)
		if err != nil {
			t.Fatalf("Kind(%q) failed: %v", col, err)
		}
		if got != want {
			t.Errorf("Kind(%q) = %s, want %s", col, got, want)
		}
	}

	if _, err := ds.Kind("missing"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Expected ErrUnknownColumn, got %v", err)
	}
}

func TestLoadCSVStripsBOM(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader("\ufeffx,y\n1,2\n"))
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if !ds.HasColumn("x") {
		t.Errorf("Expected column 'x' after BOM removal, got %v", ds.Columns())
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "whitespace only", input: "  \n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !errors.Is(err, ErrLoad) {
				t.Errorf("Expected ErrLoad classification, got %v", err)
			}
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("Expected ErrEmpty cause, got %v", err)
			}
			var loadErr *LoadError
			if !errors.As(err, &loadErr) || loadErr.Op != "parse" {
				t.Errorf("Expected *LoadError with op 'parse', got %#v", err)
			}
		})
	}
}

func TestValues(t *testing.T) {
	ds := loadSales(t)

	units, err := ds.Values("units")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if units[0] != 3 || units[4] != 5 {
		t.Errorf("Unexpected unit values %v", units)
	}

	dates, err := ds.Values("date")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if dates[0] != "2024-01-01" {
		t.Errorf("Expected temporal column to keep its text, got %v", dates[0])
	}

	if _, err := ds.Floats("region"); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Expected ErrNotNumeric, got %v", err)
	}

	times, valid, err := ds.Times("date")
	if err != nil {
		t.Fatalf("Times failed: %v", err)
	}
	if !valid[4] || times[4].Day() != 5 {
		t.Errorf("Unexpected parsed time %v", times[4])
	}
}

func TestTextNulls(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader("name,score\nann,1\n,2\nbob,3\n"))
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	names, err := ds.Values("name")
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	if names[1] != nil {
		t.Errorf("Expected empty cell to be null, got %#v", names[1])
	}
}

func TestBounds(t *testing.T) {
	ds := loadSales(t)

	lo, hi, err := ds.Bounds("price")
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}
	if lo != 1.75 || hi != 4.5 {
		t.Errorf("Expected bounds [1.75, 4.5], got [%v, %v]", lo, hi)
	}

	if _, _, err := ds.Bounds("region"); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Expected ErrNotNumeric, got %v", err)
	}
}

func TestFilterRangeKeepsValuesInside(t *testing.T) {
	ds := loadSales(t)
	all, _ := ds.Floats("price")

	ranges := [][2]float64{
		{1.75, 4.5},
		{2.0, 3.25},
		{2.1, 2.4},
		{4.5, 4.5},
		{-10, 0},
		{0, 100},
	}
	for _, r := range ranges {
		filtered, err := ds.FilterRange("price", r[0], r[1])
		if err != nil {
			t.Fatalf("FilterRange(%v) failed: %v", r, err)
		}

		expected := 0
		for _, v := range all {
			if v >= r[0] && v <= r[1] {
				expected++
			}
		}
		if filtered.Len() != expected {
			t.Errorf("FilterRange(%v) kept %d rows, want %d", r, filtered.Len(), expected)
		}

		kept, _ := filtered.Floats("price")
		for _, v := range kept {
			if v < r[0] || v > r[1] {
				t.Errorf("FilterRange(%v) kept out-of-range value %v", r, v)
			}
		}
	}
}

func TestFilterRangeIntColumn(t *testing.T) {
	ds := loadSales(t)

	filtered, err := ds.FilterRange("units", 2.5, 7.5)
	if err != nil {
		t.Fatalf("FilterRange failed: %v", err)
	}
	units, _ := filtered.Values("units")
	want := []interface{}{3, 7, 5}
	if !reflect.DeepEqual(units, want) {
		t.Errorf("Expected units %v, got %v", want, units)
	}

	// Kinds survive filtering
	if k, _ := filtered.Kind("date"); k != KindTemporal {
		t.Errorf("Expected date to stay temporal, got %s", k)
	}
}

func TestFilterRangeIntColumnExtremeBounds(t *testing.T) {
	ds := loadSales(t)

	tests := []struct {
		name   string
		lo, hi float64
		want   []interface{}
	}{
		{name: "unbounded", lo: math.Inf(-1), hi: math.Inf(1), want: []interface{}{3, 7, 1, 9, 5}},
		{name: "huge upper", lo: 2, hi: 1e300, want: []interface{}{3, 7, 9, 5}},
		{name: "huge lower", lo: -1e300, hi: 5, want: []interface{}{3, 1, 5}},
		{name: "open upper", lo: 6, hi: math.Inf(1), want: []interface{}{7, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := ds.FilterRange("units", tt.lo, tt.hi)
			if err != nil {
				t.Fatalf("FilterRange failed: %v", err)
			}
			units, _ := filtered.Values("units")
			if !reflect.DeepEqual(units, tt.want) {
				t.Errorf("Expected units %v, got %v", tt.want, units)
			}
		})
	}
}

func TestSaturatingInt(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{in: 3, want: 3},
		{in: -4, want: -4},
		{in: math.Inf(1), want: math.MaxInt},
		{in: math.Inf(-1), want: math.MinInt},
		{in: 1e300, want: math.MaxInt},
		{in: -1e300, want: math.MinInt},
	}

	for _, tt := range tests {
		if got := saturatingInt(tt.in); got != tt.want {
			t.Errorf("saturatingInt(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFilterRangeErrors(t *testing.T) {
	ds := loadSales(t)

	if _, err := ds.FilterRange("region", 0, 1); !errors.Is(err, ErrNotNumeric) {
		t.Errorf("Expected ErrNotNumeric, got %v", err)
	}
	if _, err := ds.FilterRange("nope", 0, 1); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("Expected ErrUnknownColumn, got %v", err)
	}
	if _, err := ds.FilterRange("price", 3, 2); err == nil {
		t.Error("Expected error for inverted range")
	}
	if _, err := ds.FilterRange("price", math.NaN(), 2); err == nil {
		t.Error("Expected error for NaN bound")
	}
}

func TestHead(t *testing.T) {
	ds := loadSales(t)

	if got := ds.Head(2).Len(); got != 2 {
		t.Errorf("Expected 2 rows, got %d", got)
	}
	if got := ds.Head(50).Len(); got != 5 {
		t.Errorf("Expected all 5 rows, got %d", got)
	}
	if got := ds.Head(-1).Len(); got != 0 {
		t.Errorf("Expected 0 rows for negative n, got %d", got)
	}

	rows, err := ds.Head(1).Rows()
	if err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	want := []string{"2024-01-01", "3", "2.5", "north", "true"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("Expected first row %v, got %v", want, rows[0])
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ds := loadSales(t)
	filtered, err := ds.FilterRange("price", 2.0, 4.5)
	if err != nil {
		t.Fatalf("FilterRange failed: %v", err)
	}

	var buf bytes.Buffer
	if err := filtered.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	reparsed, err := LoadCSV(&buf)
	if err != nil {
		t.Fatalf("LoadCSV of exported data failed: %v", err)
	}
	assertSameData(t, filtered, reparsed)
}

func TestXLSXRoundTrip(t *testing.T) {
	ds, err := LoadCSV(strings.NewReader("date,units,price,region\n2024-01-01,3,2.5,north\n2024-01-02,7,3.25,south\n"))
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}

	var buf bytes.Buffer
	if err := ds.WriteXLSX(&buf); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	reparsed, err := Load(&buf, "export.XLSX")
	if err != nil {
		t.Fatalf("Load of workbook failed: %v", err)
	}
	assertSameData(t, ds, reparsed)
}

func TestLoadXLSXRejectsGarbage(t *testing.T) {
	_, err := LoadXLSX(strings.NewReader("not a workbook"))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("Expected ErrLoad, got %v", err)
	}
}

func assertSameData(t *testing.T, want, got *Dataset) {
	t.Helper()
	if got.Len() != want.Len() {
		t.Fatalf("Expected %d rows, got %d", want.Len(), got.Len())
	}
	if !reflect.DeepEqual(got.Columns(), want.Columns()) {
		t.Fatalf("Expected columns %v, got %v", want.Columns(), got.Columns())
	}
	for _, col := range want.Columns() {
		wv, _ := want.Values(col)
		gv, _ := got.Values(col)
		if !reflect.DeepEqual(wv, gv) {
			t.Errorf("Column %q: expected %v, got %v", col, wv, gv)
		}
	}
}

func TestParseTimes(t *testing.T) {
	times, ok := ParseTimes([]interface{}{"01/02/2024", nil, "03/15/2024"})
	if !ok {
		t.Fatal("Expected values to parse as times")
	}
	if times[2].Month() != 3 || times[2].Day() != 15 {
		t.Errorf("Unexpected time %v", times[2])
	}
	if !times[1].IsZero() {
		t.Errorf("Expected zero time for null, got %v", times[1])
	}

	if _, ok := ParseTimes([]interface{}{"2024-01-01", "soon"}); ok {
		t.Error("Expected mixed values to be rejected")
	}
	if _, ok := ParseTimes([]interface{}{1, 2}); ok {
		t.Error("Expected numbers to be rejected")
	}
}
