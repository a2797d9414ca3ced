package fetchers

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/OmarSajjad/datavisualiser/internal/logger"
)

// ErrTooLarge is returned when a remote file exceeds the upload limit
var ErrTooLarge = errors.New("remote file exceeds upload limit")

// RemoteFile is a downloaded data file
type RemoteFile struct {
	Filename string
	Data     []byte
}

// NewHTTPClient creates the resty client used for remote imports
func NewHTTPClient(timeout time.Duration) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(2 * time.Second)
	client.SetRetryMaxWaitTime(10 * time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if errors.Is(err, resty.ErrResponseBodyTooLarge) {
			return false
		}
		return err != nil || (r != nil && r.StatusCode() >= 500)
	})
	return client
}

// CSVFetcher downloads CSV and XLSX files over HTTP(S)
type CSVFetcher struct {
	client   *resty.Client
	maxBytes int64
	log      *logger.Logger
}

// NewCSVFetcher creates a fetcher refusing bodies larger than maxBytes
func NewCSVFetcher(client *resty.Client, maxBytes int64) *CSVFetcher {
	client.SetResponseBodyLimit(int(maxBytes))
	return &CSVFetcher{
		client:   client,
		maxBytes: maxBytes,
		log:      logger.Component("fetchers"),
	}
}

// Fetch downloads rawURL. Only http and https URLs are accepted and any
// non-2xx response is an error.
func (f *CSVFetcher) Fetch(ctx context.Context, rawURL string) (*RemoteFile, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL %q has no host", rawURL)
	}

	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/csv, application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, */*").
		Get(u.String())
	if errors.Is(err, resty.ErrResponseBodyTooLarge) {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u.Redacted(), err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("fetching %s returned status %d", u.Redacted(), resp.StatusCode())
	}

	body := resp.Body()
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, f.maxBytes)
	}

	filename := remoteFilename(u, resp.Header().Get("Content-Type"))
	f.log.Info("Fetched remote file", logger.Fields{
		"url":      u.Redacted(),
		"file":     filename,
		"bytes":    len(body),
		"duration": time.Since(start).String(),
	})
	return &RemoteFile{Filename: filename, Data: body}, nil
}

// remoteFilename picks the name the upload is stored under. The URL path
// wins when it ends in .csv or .xlsx, otherwise the content type decides.
func remoteFilename(u *url.URL, contentType string) string {
	base := path.Base(u.Path)
	switch strings.ToLower(path.Ext(base)) {
	case ".csv", ".xlsx":
		return base
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.Contains(mediaType, "spreadsheetml") {
		return "import.xlsx"
	}
	return "import.csv"
}
