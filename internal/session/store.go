// Package session keeps the dataset each browser session uploaded. Raw
// uploads are persisted through a storage client so sessions survive a
// restart; parsed datasets are cached in memory and expire when idle.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/logger"
	"github.com/OmarSajjad/datavisualiser/internal/storage"
)

// CookieName is the cookie carrying the session id
const CookieName = "dv_session"

// ErrNoDataset is returned when a session has no uploaded file
var ErrNoDataset = errors.New("no dataset uploaded")

// Upload is the dataset a session is working with
type Upload struct {
	Filename string
	Dataset  *dataset.Dataset
}

type entry struct {
	upload   *Upload
	lastSeen time.Time
}

// Store maps session ids to uploads
type Store struct {
	storage storage.StorageClient
	ttl     time.Duration
	now     func() time.Time
	log     *logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// NewStore creates a session store persisting uploads through client.
// A zero ttl disables expiry.
func NewStore(client storage.StorageClient, ttl time.Duration) *Store {
	return &Store{
		storage: client,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.Component("session"),
		entries: make(map[string]*entry),
	}
}

// NewID returns a fresh session id
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an id produced by NewID
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Put parses an upload and makes it the session's dataset. A file that
// fails to parse also discards whatever the session held before.
func (s *Store) Put(ctx context.Context, id, filename string, raw []byte) (*Upload, error) {
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid session id %q", id)
	}
	filename = path.Base(filename)

	ds, err := dataset.Load(bytes.NewReader(raw), filename)
	if err != nil {
		if delErr := s.Delete(ctx, id); delErr != nil {
			s.log.Warn("Failed to discard previous upload", logger.Fields{"session": id, "error": delErr.Error()})
		}
		return nil, err
	}

	if err := s.storage.DeletePrefix(ctx, storage.SessionPrefix(id)); err != nil {
		return nil, fmt.Errorf("failed to replace previous upload: %w", err)
	}
	if err := s.storage.StoreFile(ctx, storage.SessionFilePath(id, filename), raw); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	upload := &Upload{Filename: filename, Dataset: ds}
	s.mu.Lock()
	s.entries[id] = &entry{upload: upload, lastSeen: s.now()}
	s.mu.Unlock()

	s.log.Info("Dataset uploaded", logger.Fields{
		"session": id,
		"file":    filename,
		"rows":    ds.Len(),
		"columns": len(ds.Columns()),
	})
	return upload, nil
}

// Get returns the session's dataset, reloading it from storage when it is
// not cached
func (s *Store) Get(ctx context.Context, id string) (*Upload, error) {
	if !ValidID(id) {
		return nil, ErrNoDataset
	}

	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		e.lastSeen = s.now()
		s.mu.Unlock()
		return e.upload, nil
	}
	s.mu.Unlock()

	files, err := s.storage.ListDir(ctx, storage.SessionPrefix(id))
	if err != nil {
		return nil, fmt.Errorf("failed to look up session files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoDataset
	}

	raw, err := s.storage.GetFile(ctx, files[0])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoDataset
	}
	if err != nil {
		return nil, err
	}

	filename := path.Base(files[0])
	ds, err := dataset.Load(bytes.NewReader(raw), filename)
	if err != nil {
		return nil, err
	}

	upload := &Upload{Filename: filename, Dataset: ds}
	s.mu.Lock()
	s.entries[id] = &entry{upload: upload, lastSeen: s.now()}
	s.mu.Unlock()

	s.log.Debug("Session restored from storage", logger.Fields{"session": id, "file": filename})
	return upload, nil
}

// Delete discards the session's dataset and stored files
func (s *Store) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()

	if err := s.storage.DeletePrefix(ctx, storage.SessionPrefix(id)); err != nil {
		return fmt.Errorf("failed to delete session files: %w", err)
	}
	return nil
}

// Len returns the number of cached sessions
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep discards sessions idle for longer than the ttl and returns how
// many were removed
func (s *Store) Sweep(ctx context.Context, now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}

	var expired []string
	s.mu.Lock()
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			expired = append(expired, id)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if err := s.storage.DeletePrefix(ctx, storage.SessionPrefix(id)); err != nil {
			s.log.Error("Failed to delete expired session files", err, logger.Fields{"session": id})
		}
	}
	if len(expired) > 0 {
		s.log.Info("Expired idle sessions", logger.Fields{"count": len(expired)})
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is cancelled
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(ctx, now)
		}
	}
}
