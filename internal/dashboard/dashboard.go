package dashboard

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"github.com/OmarSajjad/datavisualiser/internal/charts"
	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

const (
	pageTitle    = "Simple Data Dashboard"
	noFileNotice = "Please upload a CSV file."
)

// PageData is everything the page template reads
type PageData struct {
	Title   string
	Version string
	CSS     template.CSS

	Filename string
	RowCount int

	Info  string
	Error string

	Preview   *Preview
	Form      *SelectionForm
	Charts    []ChartView
	Downloads []Download

	// Query is the encoded request, reused by the insights form
	Query           template.URL
	InsightsEnabled bool
	Insights        template.HTML
}

// Preview is the head of the dataset
type Preview struct {
	Columns []dataset.ColumnInfo
	Rows    [][]string
}

// SelectionForm mirrors the current request so the form keeps its state
type SelectionForm struct {
	Columns []ColumnOption

	HasFilter    bool
	FilterColumn string
	Min          string
	Max          string
	ObservedMin  string
	ObservedMax  string

	Kinds []Option
	Modes []Option
}

// ColumnOption is one entry in the x and y pickers
type ColumnOption struct {
	Name string
	X    bool
	Y    bool
}

// Option is one entry of the plot type and display pickers
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// ChartView is one rendered figure with its static export links
type ChartView struct {
	Title string
	HTML  template.HTML
	PNG   template.URL
	SVG   template.URL
	Page  template.URL
}

// Download is one filtered data export link
type Download struct {
	Label    string
	Filename string
	URL      template.URL
}

// Options configures a Dashboard
type Options struct {
	PreviewRows     int
	InsightsEnabled bool
	Version         string
}

// Dashboard assembles pages from a dataset and a chart request
type Dashboard struct {
	builder *HTMLBuilder
	charts  *charts.ChartGenerator
	opts    Options
	log     *logger.Logger
}

// New creates a Dashboard
func New(builder *HTMLBuilder, generator *charts.ChartGenerator, opts Options) *Dashboard {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 5
	}
	return &Dashboard{
		builder: builder,
		charts:  generator,
		opts:    opts,
		log:     logger.Component("dashboard"),
	}
}

// Builder returns the HTML builder used for rendering
func (d *Dashboard) Builder() *HTMLBuilder {
	return d.builder
}

func (d *Dashboard) base() *PageData {
	return &PageData{
		Title:   pageTitle,
		Version: d.opts.Version,
	}
}

// Empty is the page shown before any file is uploaded
func (d *Dashboard) Empty() *PageData {
	page := d.base()
	page.Info = noFileNotice
	return page
}

// Failure is the page shown when loading or resolving fails. It carries
// the message only: no preview, charts or downloads.
func (d *Dashboard) Failure(filename string, err error) *PageData {
	page := d.base()
	page.Filename = filename
	page.Error = err.Error()
	return page
}

// Build resolves req against ds and assembles the page. On error nothing
// is returned but the error; callers render Failure instead.
func (d *Dashboard) Build(filename string, ds *dataset.Dataset, req resolver.Request) (*PageData, *resolver.Result, error) {
	result, err := resolver.Resolve(ds, req)
	if err != nil {
		return nil, nil, err
	}

	page := d.base()
	page.Filename = filename
	page.RowCount = ds.Len()

	head, err := ds.Head(d.opts.PreviewRows).Rows()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build preview: %w", err)
	}
	page.Preview = &Preview{Columns: ds.Schema(), Rows: head}

	form, err := d.selectionForm(ds, req, result)
	if err != nil {
		return nil, nil, err
	}
	page.Form = form

	query := EncodeRequest(req)
	for i, fig := range result.Figures {
		view, err := d.chartView(fig, i, query)
		if err != nil {
			return nil, nil, err
		}
		page.Charts = append(page.Charts, view)
	}

	page.Query = template.URL(query.Encode())
	page.Downloads = downloads(query)
	page.InsightsEnabled = d.opts.InsightsEnabled

	d.log.Debug("Page assembled", logger.Fields{
		"rows":    result.Data.Len(),
		"figures": len(result.Figures),
		"kind":    req.Kind.String(),
		"mode":    req.Mode.String(),
	})
	return page, result, nil
}

// Render writes page to w
func (d *Dashboard) Render(w io.Writer, page *PageData) error {
	return d.builder.Render(w, page)
}

func (d *Dashboard) selectionForm(ds *dataset.Dataset, req resolver.Request, result *resolver.Result) (*SelectionForm, error) {
	x := req.Axes.X
	columns := ds.Columns()
	if x == "" && len(columns) > 0 {
		x = columns[0]
	}
	ys := make(map[string]bool, len(req.Axes.Y))
	for _, y := range req.Axes.Y {
		ys[y] = true
	}

	form := &SelectionForm{FilterColumn: result.FilterColumn}
	for _, name := range columns {
		form.Columns = append(form.Columns, ColumnOption{Name: name, X: name == x, Y: ys[name]})
	}

	observed, ok, err := resolver.FilterBounds(ds, result.FilterColumn)
	if err != nil {
		return nil, err
	}
	if ok {
		form.HasFilter = true
		form.ObservedMin = formatFloat(observed.Min)
		form.ObservedMax = formatFloat(observed.Max)
		applied := observed
		if result.Filter != nil {
			applied = *result.Filter
		}
		form.Min = formatFloat(applied.Min)
		form.Max = formatFloat(applied.Max)
	}

	for _, k := range resolver.PlotKinds {
		form.Kinds = append(form.Kinds, Option{Value: k.String(), Label: k.Label(), Selected: k == req.Kind})
	}
	for _, m := range resolver.DisplayModes {
		form.Modes = append(form.Modes, Option{Value: m.String(), Label: m.Label(), Selected: m == req.Mode})
	}
	return form, nil
}

func (d *Dashboard) chartView(fig resolver.Figure, index int, query url.Values) (ChartView, error) {
	snippet, err := d.charts.Snippet(fig, "chart_"+strconv.Itoa(index))
	if err != nil {
		return ChartView{}, fmt.Errorf("failed to render %q: %w", fig.Title, err)
	}
	link := func(path string) template.URL {
		q := cloneValues(query)
		q.Set("index", strconv.Itoa(index))
		return template.URL(path + "?" + q.Encode())
	}
	return ChartView{
		Title: fig.Title,
		HTML:  template.HTML(snippet.HTML),
		PNG:   link("/chart.png"),
		SVG:   link("/chart.svg"),
		Page:  link("/chart.html"),
	}, nil
}

func downloads(query url.Values) []Download {
	link := func(format string) template.URL {
		q := cloneValues(query)
		q.Set("format", format)
		return template.URL("/download?" + q.Encode())
	}
	return []Download{
		{Label: "Download filtered data as CSV", Filename: "filtered_data.csv", URL: link("csv")},
		{Label: "Download filtered data as Excel", Filename: "filtered_data.xlsx", URL: link("xlsx")},
	}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// IsRequestError reports whether err was caused by the input rather than
// by the server: an unreadable file or an impossible selection.
func IsRequestError(err error) bool {
	return errors.Is(err, dataset.ErrLoad) ||
		errors.Is(err, resolver.ErrInvalidRequest) ||
		errors.Is(err, dataset.ErrUnknownColumn) ||
		errors.Is(err, dataset.ErrNotNumeric)
}
