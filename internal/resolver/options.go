package resolver

import (
	"fmt"
	"strings"
)

// PlotKind selects how series are drawn
type PlotKind int

const (
	Line PlotKind = iota
	Scatter
	Bar
)

// PlotKinds lists every kind in menu order
var PlotKinds = []PlotKind{Line, Scatter, Bar}

func (k PlotKind) String() string {
	switch k {
	case Scatter:
		return "scatter"
	case Bar:
		return "bar"
	default:
		return "line"
	}
}

// Label returns the menu label for the kind
func (k PlotKind) Label() string {
	switch k {
	case Scatter:
		return "Scatter Plot"
	case Bar:
		return "Bar Plot"
	default:
		return "Line Plot"
	}
}

func (k PlotKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParsePlotKind accepts a menu label ("Bar Plot") or a short name ("bar").
// An empty string selects Line.
func ParsePlotKind(s string) (PlotKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "line", "line plot":
		return Line, nil
	case "scatter", "scatter plot":
		return Scatter, nil
	case "bar", "bar plot":
		return Bar, nil
	}
	return Line, fmt.Errorf("%w: unknown plot type %q", ErrInvalidRequest, s)
}

// DisplayMode selects one combined figure or one figure per y column
type DisplayMode int

const (
	Single DisplayMode = iota
	Multiple
)

// DisplayModes lists every mode in menu order
var DisplayModes = []DisplayMode{Single, Multiple}

func (m DisplayMode) String() string {
	if m == Multiple {
		return "multiple"
	}
	return "single"
}

// Label returns the menu label for the mode
func (m DisplayMode) Label() string {
	if m == Multiple {
		return "Multiple Graphs"
	}
	return "Single Graph"
}

func (m DisplayMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseDisplayMode accepts "Single Graph", "Multiple Graphs", "single" or
// "multiple". An empty string selects Single.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "single", "single graph":
		return Single, nil
	case "multiple", "multiple graphs", "multi":
		return Multiple, nil
	}
	return Single, fmt.Errorf("%w: unknown display option %q", ErrInvalidRequest, s)
}
