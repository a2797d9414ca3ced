package storage

import "testing"

func TestSessionPaths(t *testing.T) {
	if got := SessionPrefix("abc"); got != "sessions/abc/" {
		t.Errorf("SessionPrefix = %q", got)
	}

	tests := []struct {
		filename string
		expected string
	}{
		{"data.csv", "sessions/abc/data.csv"},
		{"nested/dir/data.csv", "sessions/abc/data.csv"},
		{"../../etc/passwd", "sessions/abc/passwd"},
	}
	for _, tt := range tests {
		if got := SessionFilePath("abc", tt.filename); got != tt.expected {
			t.Errorf("SessionFilePath(%q) = %q, expected %q", tt.filename, got, tt.expected)
		}
	}
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"sessions/a/b.csv", "sessions/a/b.csv", false},
		{"/sessions/a/", "sessions/a", false},
		{"sessions\\a\\b.csv", "sessions/a/b.csv", false},
		{"../x", "x", false},
		{"", "", true},
		{"/", "", true},
	}

	for _, tt := range tests {
		got, err := cleanPath(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("cleanPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.expected {
			t.Errorf("cleanPath(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestGetContentType(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"filtered_data.csv", "text/csv"},
		{"DATA.CSV", "text/csv"},
		{"filtered_data.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{"chart.png", "image/png"},
		{"chart.svg", "image/svg+xml"},
		{"notes.md", "text/markdown"},
		{"blob", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := GetContentType(tt.filename); got != tt.expected {
				t.Errorf("GetContentType(%s) = %s, expected %s", tt.filename, got, tt.expected)
			}
		})
	}
}
