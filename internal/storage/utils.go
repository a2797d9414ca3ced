package storage

import (
	"fmt"
	"path"
	"strings"
)

const sessionsRoot = "sessions"

// SessionPrefix returns the folder holding every file of a session
// Format: sessions/<id>/
func SessionPrefix(sessionID string) string {
	return sessionsRoot + "/" + sessionID + "/"
}

// SessionFilePath returns where an uploaded file of a session is kept
func SessionFilePath(sessionID, filename string) string {
	return SessionPrefix(sessionID) + path.Base(filename)
}

// cleanPath normalizes a relative storage path. Leading "../" elements are
// dropped so the result always stays inside the storage root.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", fmt.Errorf("invalid storage path %q", p)
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	case ".md":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
