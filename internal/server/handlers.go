package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/OmarSajjad/datavisualiser/internal/charts"
	"github.com/OmarSajjad/datavisualiser/internal/dashboard"
	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/fetchers"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/resolver"
	"github.com/OmarSajjad/datavisualiser/internal/session"
)

var (
	errBadParameter = errors.New("bad parameter")
	errNoFigure     = errors.New("no figure at that index")
	errImport       = errors.New("import failed")
	errInsights     = errors.New("insights unavailable")
)

// statusFor maps an error to the HTTP status reported for it
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNoDataset), errors.Is(err, errNoFigure):
		return http.StatusNotFound
	case errors.Is(err, errFileTooLarge), errors.Is(err, fetchers.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errImport), errors.Is(err, errInsights):
		return http.StatusBadGateway
	case dashboard.IsRequestError(err),
		errors.Is(err, errBadParameter),
		errors.Is(err, charts.ErrNotNumeric),
		errors.Is(err, charts.ErrNoData):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// HandleRoot serves the dashboard page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upload, err := s.currentUpload(r)
	if errors.Is(err, session.ErrNoDataset) {
		s.renderPage(w, http.StatusOK, s.Dashboard.Empty())
		return
	}
	if err != nil {
		s.renderFailure(w, "", err)
		return
	}

	page, _, err := s.buildPage(r, upload)
	if err != nil {
		s.renderFailure(w, upload.Filename, err)
		return
	}
	s.renderPage(w, http.StatusOK, page)
}

// HandleUpload replaces the session dataset with an uploaded file
func (s *Server) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filename, data, err := s.readUpload(w, r)
	if err != nil {
		s.renderFailure(w, "", err)
		return
	}
	s.storeUpload(w, r, filename, data)
}

// HandleImport replaces the session dataset with a file fetched from a URL
func (s *Server) HandleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawURL := strings.TrimSpace(r.FormValue("url"))
	if rawURL == "" {
		s.renderFailure(w, "", fmt.Errorf("%w: url is required", errBadParameter))
		return
	}

	remote, err := s.Fetcher.Fetch(r.Context(), rawURL)
	if err != nil {
		if !errors.Is(err, fetchers.ErrTooLarge) {
			err = fmt.Errorf("%w: %w", errImport, err)
		}
		s.renderFailure(w, "", err)
		return
	}
	s.storeUpload(w, r, remote.Filename, remote.Data)
}

func (s *Server) storeUpload(w http.ResponseWriter, r *http.Request, filename string, data []byte) {
	id := s.ensureSession(w, r)
	if _, err := s.Sessions.Put(r.Context(), id, filename, data); err != nil {
		// the session no longer holds a dataset
		s.renderFailure(w, "", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleReset discards the session dataset
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if id := sessionID(r); id != "" {
		if err := s.Sessions.Delete(r.Context(), id); err != nil {
			s.log.Warn("Failed to delete session data", logger.Fields{"error": err.Error()})
		}
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// figuresResponse is the JSON body of /api/figures
type figuresResponse struct {
	Filename     string                `json:"filename"`
	Rows         int                   `json:"rows"`
	FilteredRows int                   `json:"filtered_rows"`
	Columns      []dataset.ColumnInfo  `json:"columns"`
	FilterColumn string                `json:"filter_column,omitempty"`
	Filter       *resolver.FilterRange `json:"filter,omitempty"`
	Figures      []resolver.Figure     `json:"figures"`
}

// HandleFigures returns the resolved figure descriptors as JSON
func (s *Server) HandleFigures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upload, result, err := s.resolve(r)
	if err != nil {
		s.writeJSONError(w, err)
		return
	}

	figures := result.Figures
	if figures == nil {
		figures = []resolver.Figure{}
	}
	writeJSON(w, http.StatusOK, figuresResponse{
		Filename:     upload.Filename,
		Rows:         upload.Dataset.Len(),
		FilteredRows: result.Data.Len(),
		Columns:      upload.Dataset.Schema(),
		FilterColumn: result.FilterColumn,
		Filter:       result.Filter,
		Figures:      figures,
	})
}

// HandleChart renders one figure as PNG, SVG or a standalone HTML page.
// The figure is picked with the index query parameter, default 0.
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	index := 0
	if v := r.URL.Query().Get("index"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, fmt.Errorf("%w: index %q", errBadParameter, v))
			return
		}
		index = n
	}

	_, result, err := s.resolve(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if index >= len(result.Figures) {
		s.writeError(w, fmt.Errorf("%w: %d", errNoFigure, index))
		return
	}
	fig := result.Figures[index]

	var buf bytes.Buffer
	contentType := "text/html; charset=utf-8"
	switch ext := strings.TrimPrefix(path.Ext(r.URL.Path), "."); ext {
	case "html":
		err = s.Charts.Page(&buf, fig)
	default:
		var format charts.Format
		format, err = charts.ParseFormat(ext)
		if err != nil {
			err = fmt.Errorf("%w: %w", errBadParameter, err)
			break
		}
		contentType = format.ContentType()
		err = s.Charts.Image(&buf, fig, format)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	buf.WriteTo(w)
}

// HandleDownload sends the filtered data as CSV (default) or XLSX
func (s *Server) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_, result, err := s.resolve(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	filename, data, err := exportData(result.Data, r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Debug("Serving download", logger.Fields{"file": filename, "rows": result.Data.Len()})
	writeAttachment(w, filename, data)
}

// HandleInsights asks the model to describe the current data and charts
// and renders the dashboard with its answer
func (s *Server) HandleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Insights == nil {
		http.Error(w, "Insights are not configured", http.StatusServiceUnavailable)
		return
	}

	upload, err := s.currentUpload(r)
	if err != nil {
		s.renderFailure(w, "", err)
		return
	}
	page, result, err := s.buildPage(r, upload)
	if err != nil {
		s.renderFailure(w, upload.Filename, err)
		return
	}

	markdown, err := s.Insights.Describe(r.Context(), result.Data, result.Figures)
	if err != nil {
		s.renderFailure(w, upload.Filename, fmt.Errorf("%w: %w", errInsights, err))
		return
	}
	page.Insights, err = s.Dashboard.Builder().RenderMarkdown(markdown)
	if err != nil {
		s.renderFailure(w, upload.Filename, err)
		return
	}
	s.renderPage(w, http.StatusOK, page)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"version":   s.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"sessions":  s.Sessions.Len(),
		"checks": map[string]string{
			"storage":  s.Config.StorageMode,
			"insights": strconv.FormatBool(s.Insights != nil),
		},
	})
}

// buildPage resolves the query of r against the upload
func (s *Server) buildPage(r *http.Request, upload *session.Upload) (*dashboard.PageData, *resolver.Result, error) {
	req, err := dashboard.ParseRequest(r.URL.Query(), s.Config.FilterColumn)
	if err != nil {
		return nil, nil, err
	}
	return s.Dashboard.Build(upload.Filename, upload.Dataset, req)
}

// resolve loads the session dataset and resolves the query of r against it
func (s *Server) resolve(r *http.Request) (*session.Upload, *resolver.Result, error) {
	upload, err := s.currentUpload(r)
	if err != nil {
		return nil, nil, err
	}
	req, err := dashboard.ParseRequest(r.URL.Query(), s.Config.FilterColumn)
	if err != nil {
		return nil, nil, err
	}
	result, err := resolver.Resolve(upload.Dataset, req)
	if err != nil {
		return nil, nil, err
	}
	return upload, result, nil
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page *dashboard.PageData) {
	var buf bytes.Buffer
	if err := s.Dashboard.Render(&buf, page); err != nil {
		s.log.Error("Failed to render page", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) renderFailure(w http.ResponseWriter, filename string, err error) {
	status := statusFor(err)
	s.logFailure(status, err)
	s.renderPage(w, status, s.Dashboard.Failure(filename, err))
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logFailure(status, err)
	http.Error(w, "Error: "+err.Error(), status)
}

func (s *Server) writeJSONError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logFailure(status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logFailure(status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed", err, logger.Fields{"status": status})
		return
	}
	s.log.Warn("Request rejected", logger.Fields{"status": status, "error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Component("server").Error("Failed to encode JSON response", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
