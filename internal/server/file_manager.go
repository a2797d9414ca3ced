package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/session"
	"github.com/OmarSajjad/datavisualiser/internal/storage"
)

// multipart parts above this size spill to temporary files
const multipartMemory = 8 << 20

// errFileTooLarge is reported when an upload exceeds MAX_UPLOAD_MB
var errFileTooLarge = errors.New("file too large")

// sessionID returns the id from the session cookie, or "" if there is
// none or it is malformed
func sessionID(r *http.Request) string {
	c, err := r.Cookie(session.CookieName)
	if err != nil || !session.ValidID(c.Value) {
		return ""
	}
	return c.Value
}

// ensureSession returns the request's session id, issuing a new cookie
// when the request has none
func (s *Server) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if id := sessionID(r); id != "" {
		return id
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// currentUpload returns the dataset of the request's session
func (s *Server) currentUpload(r *http.Request) (*session.Upload, error) {
	id := sessionID(r)
	if id == "" {
		return nil, session.ErrNoDataset
	}
	return s.Sessions.Get(r.Context(), id)
}

// readUpload reads the multipart "file" field, bounded by MAX_UPLOAD_MB
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, error) {
	limit := s.Config.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, fmt.Errorf("%w: limit is %d MB", errFileTooLarge, s.Config.MaxUploadMB)
		}
		return "", nil, &dataset.LoadError{Op: "upload", Err: err}
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, &dataset.LoadError{Op: "upload", Err: fmt.Errorf("no file in request: %w", err)}
	}
	defer file.Close()

	if header.Size > limit {
		return "", nil, fmt.Errorf("%w: limit is %d MB", errFileTooLarge, s.Config.MaxUploadMB)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", nil, fmt.Errorf("%w: limit is %d MB", errFileTooLarge, s.Config.MaxUploadMB)
	}
	return header.Filename, data, nil
}

// writeAttachment sends data as a file download
func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", storage.GetContentType(filename))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(filename)))
	w.Write(data)
}

// exportData encodes the dataset as CSV or XLSX and returns the file name
// to offer it under
func exportData(ds *dataset.Dataset, format string) (string, []byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "", "csv":
		if err := ds.WriteCSV(&buf); err != nil {
			return "", nil, err
		}
		return "filtered_data.csv", buf.Bytes(), nil
	case "xlsx":
		if err := ds.WriteXLSX(&buf); err != nil {
			return "", nil, err
		}
		return "filtered_data.xlsx", buf.Bytes(), nil
	default:
		return "", nil, fmt.Errorf("%w: unknown download format %q", errBadParameter, format)
	}
}
