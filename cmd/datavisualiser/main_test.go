package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"

	"github.com/OmarSajjad/datavisualiser/internal/config"
	"github.com/OmarSajjad/datavisualiser/internal/dataset"
)

const readingsCSV = `date,value,other,column_name
2024-01-01,10,1.5,1
2024-01-02,11,2.5,2
2024-01-03,9,3.5,3
2024-01-04,12,4.5,4
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "readings.csv")
	if err := os.WriteFile(path, []byte(readingsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig() *config.Config {
	return &config.Config{FilterColumn: "column_name", ChartWidth: 400, ChartHeight: 200}
}

func TestRender(t *testing.T) {
	input := writeFixture(t)

	tests := []struct {
		name      string
		opts      renderOptions
		wantFiles []string
	}{
		{
			name:      "single png",
			opts:      renderOptions{x: "date", y: []string{"value", "other"}, format: "png"},
			wantFiles: []string{"figure_1.png"},
		},
		{
			name:      "multiple svg",
			opts:      renderOptions{x: "date", y: []string{"value", "other"}, mode: "multiple", format: "svg"},
			wantFiles: []string{"figure_1.svg", "figure_2.svg"},
		},
		{
			name:      "bar html with data",
			opts:      renderOptions{x: "date", y: []string{"value"}, kind: "bar", format: "html", data: true},
			wantFiles: []string{"figure_1.html", "filtered_data.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.out = t.TempDir()
			written, err := render(testConfig(), input, tt.opts)
			if err != nil {
				t.Fatalf("render() error = %v", err)
			}
			if len(written) != len(tt.wantFiles) {
				t.Fatalf("wrote %v, want %v", written, tt.wantFiles)
			}
			for i, name := range tt.wantFiles {
				if filepath.Base(written[i]) != name {
					t.Errorf("file %d = %s, want %s", i, written[i], name)
				}
				info, err := os.Stat(written[i])
				if err != nil || info.Size() == 0 {
					t.Errorf("%s missing or empty", written[i])
				}
			}
		})
	}
}

func TestRenderFilteredData(t *testing.T) {
	out := t.TempDir()
	_, err := render(testConfig(), writeFixture(t), renderOptions{
		x: "date", y: []string{"value"}, min: "2", max: "3", format: "png", out: out, data: true,
	})
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}

	f, err := os.Open(filepath.Join(out, "filtered_data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ds, err := dataset.LoadCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 2 {
		t.Errorf("rows = %d, want 2", ds.Len())
	}
}

func TestRenderErrors(t *testing.T) {
	input := writeFixture(t)
	tests := []struct {
		name string
		path string
		opts renderOptions
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), renderOptions{x: "date", y: []string{"value"}}},
		{"unknown column", input, renderOptions{x: "date", y: []string{"nope"}}},
		{"bad format", input, renderOptions{x: "date", y: []string{"value"}, format: "gif"}},
		{"bad kind", input, renderOptions{x: "date", y: []string{"value"}, kind: "pie", format: "png"}},
		{"inverted filter", input, renderOptions{x: "date", y: []string{"value"}, min: "3", max: "1", format: "png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.out = t.TempDir()
			if _, err := render(testConfig(), tt.path, tt.opts); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPreview(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	var buf bytes.Buffer
	if err := preview(&buf, writeFixture(t), 2); err != nil {
		t.Fatalf("preview() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"4 rows, 4 columns", "column_name", "numeric", "2024-01-02"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "2024-01-03") {
		t.Error("preview should stop after 2 rows")
	}
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "render", "preview"} {
		if !names[want] {
			t.Errorf("missing %s command", want)
		}
	}

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"render", writeFixture(t)})
	if err := root.Execute(); err == nil {
		t.Error("render without --x and --y should fail")
	}
}
