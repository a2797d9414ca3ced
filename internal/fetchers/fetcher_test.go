package fetchers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newTestFetcher(maxBytes int64) *CSVFetcher {
	client := NewHTTPClient(5 * time.Second)
	client.SetRetryWaitTime(time.Millisecond)
	client.SetRetryMaxWaitTime(5 * time.Millisecond)
	return NewCSVFetcher(client, maxBytes)
}

func TestFetchCSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("date,value\n2024-01-01,1\n"))
	}))
	defer server.Close()

	file, err := newTestFetcher(1<<20).Fetch(context.Background(), server.URL+"/exports/sales.csv")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if file.Filename != "sales.csv" {
		t.Errorf("Expected filename 'sales.csv', got %q", file.Filename)
	}
	if !strings.HasPrefix(string(file.Data), "date,value") {
		t.Errorf("Unexpected body %q", file.Data)
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("a\n1\n"))
	}))
	defer server.Close()

	file, err := newTestFetcher(1<<20).Fetch(context.Background(), server.URL+"/data")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
	if file.Filename != "import.csv" {
		t.Errorf("Expected fallback filename 'import.csv', got %q", file.Filename)
	}
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.csv":
			http.NotFound(w, r)
		case "/big.csv":
			w.Write([]byte(strings.Repeat("x", 2048)))
		default:
			w.Write([]byte("a\n1\n"))
		}
	}))
	defer server.Close()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{name: "not found", url: server.URL + "/missing.csv"},
		{name: "too large", url: server.URL + "/big.csv", wantErr: ErrTooLarge},
		{name: "file scheme", url: "file:///etc/passwd"},
		{name: "ftp scheme", url: "ftp://example.com/data.csv"},
		{name: "no host", url: "http:///data.csv"},
		{name: "garbage", url: "://"},
	}

	fetcher := newTestFetcher(1024)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetcher.Fetch(context.Background(), tt.url)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestRemoteFilename(t *testing.T) {
	tests := []struct {
		rawURL      string
		contentType string
		expected    string
	}{
		{"https://example.com/a/report.csv", "", "report.csv"},
		{"https://example.com/a/Report.XLSX", "", "Report.XLSX"},
		{"https://example.com/export?id=1", "text/csv; charset=utf-8", "import.csv"},
		{"https://example.com/export", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "import.xlsx"},
		{"https://example.com/", "", "import.csv"},
	}

	for _, tt := range tests {
		u, err := url.Parse(tt.rawURL)
		if err != nil {
			t.Fatalf("bad test URL %q: %v", tt.rawURL, err)
		}
		if got := remoteFilename(u, tt.contentType); got != tt.expected {
			t.Errorf("remoteFilename(%q, %q) = %q, expected %q", tt.rawURL, tt.contentType, got, tt.expected)
		}
	}
}
