package main

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/OmarSajjad/datavisualiser/internal/charts"
	"github.com/OmarSajjad/datavisualiser/internal/config"
	"github.com/OmarSajjad/datavisualiser/internal/dashboard"
	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
)

type renderOptions struct {
	x            string
	y            []string
	kind         string
	mode         string
	filterColumn string
	min          string
	max          string
	format       string
	out          string
	data         bool
}

func newRenderCmd() *cobra.Command {
	var opts renderOptions
	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Write one chart file per resolved figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			written, err := render(cfg, args[0], opts)
			if err != nil {
				return err
			}
			for _, path := range written {
				pterm.Success.Println(path)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.x, "x", "", "column for the x axis")
	f.StringArrayVar(&opts.y, "y", nil, "column for the y axis, repeat for more")
	f.StringVar(&opts.kind, "kind", "line", "plot type: line, scatter or bar")
	f.StringVar(&opts.mode, "mode", "single", "display option: single or multiple")
	f.StringVar(&opts.filterColumn, "filter-column", "", "numeric column to filter on (default FILTER_COLUMN)")
	f.StringVar(&opts.min, "min", "", "lower filter bound")
	f.StringVar(&opts.max, "max", "", "upper filter bound")
	f.StringVar(&opts.format, "format", "png", "output format: png, svg or html")
	f.StringVar(&opts.out, "out", ".", "output directory")
	f.BoolVar(&opts.data, "data", false, "also write the filtered rows as filtered_data.csv")
	cmd.MarkFlagRequired("x")
	cmd.MarkFlagRequired("y")
	return cmd
}

// render resolves the request against the file and writes the figures to
// opts.out, returning the written paths
func render(cfg *config.Config, path string, opts renderOptions) ([]string, error) {
	ds, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	values := url.Values{
		"x":             {opts.x},
		"y":             opts.y,
		"kind":          {opts.kind},
		"mode":          {opts.mode},
		"filter_column": {opts.filterColumn},
		"min":           {opts.min},
		"max":           {opts.max},
	}
	req, err := dashboard.ParseRequest(values, cfg.FilterColumn)
	if err != nil {
		return nil, err
	}
	result, err := resolver.Resolve(ds, req)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(opts.format)
	var image charts.Format
	if format != "html" {
		if image, err = charts.ParseFormat(format); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(opts.out, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	generator := charts.NewChartGenerator(cfg.ChartWidth, cfg.ChartHeight)
	var written []string
	for i, fig := range result.Figures {
		var buf bytes.Buffer
		if format == "html" {
			err = generator.Page(&buf, fig)
		} else {
			err = generator.Image(&buf, fig, image)
		}
		if err != nil {
			return written, fmt.Errorf("failed to render %q: %w", fig.Title, err)
		}

		target := filepath.Join(opts.out, fmt.Sprintf("figure_%d.%s", i+1, format))
		if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}

	if opts.data {
		var buf bytes.Buffer
		if err := result.Data.WriteCSV(&buf); err != nil {
			return written, err
		}
		target := filepath.Join(opts.out, "filtered_data.csv")
		if err := os.WriteFile(target, buf.Bytes(), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}

func loadFile(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return dataset.Load(f, filepath.Base(path))
}
