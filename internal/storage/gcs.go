package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/OmarSajjad/datavisualiser/internal/logger"
)

// GCSClient keeps files as objects in a Google Cloud Storage bucket
type GCSClient struct {
	client *storage.Client
	bucket string
	log    *logger.Logger
}

// NewGCSClient creates a new GCS client
func NewGCSClient(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCSClient, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("GCS bucket name is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSClient{
		client: client,
		bucket: bucketName,
		log:    logger.Component("storage.gcs"),
	}, nil
}

// Close closes the GCS client
func (g *GCSClient) Close() error {
	return g.client.Close()
}

// StoreFile uploads a file to the bucket
func (g *GCSClient) StoreFile(ctx context.Context, filePath string, fileData []byte) error {
	objectPath, err := cleanPath(filePath)
	if err != nil {
		return err
	}

	g.log.Debug("Storing file to GCS", logger.Fields{
		"object": fmt.Sprintf("gs://%s/%s", g.bucket, objectPath),
		"bytes":  len(fileData),
	})

	writer := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	writer.ContentType = GetContentType(objectPath)
	writer.CacheControl = "private, no-store"
	writer.Metadata = map[string]string{
		"uploaded-at": time.Now().UTC().Format(time.RFC3339),
	}

	if _, err := writer.Write(fileData); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write file to GCS: %w", err)
	}

	// Close finalizes the upload
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS file upload: %w", err)
	}
	return nil
}

// GetFile downloads an object from the bucket
func (g *GCSClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	objectPath, err := cleanPath(filePath)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(g.bucket).Object(objectPath).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create reader for file %s: %w", objectPath, err)
	}
	defer reader.Close()

	fileData, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", objectPath, err)
	}
	return fileData, nil
}

// ListDir lists object names below prefix
func (g *GCSClient) ListDir(ctx context.Context, prefix string) ([]string, error) {
	objectPrefix, err := cleanPath(prefix)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(prefix, "/") {
		objectPrefix += "/"
	}

	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: objectPrefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		names = append(names, attrs.Name)
	}

	sort.Strings(names)
	return names, nil
}

// DeletePrefix deletes every object below prefix
func (g *GCSClient) DeletePrefix(ctx context.Context, prefix string) error {
	names, err := g.ListDir(ctx, prefix)
	if err != nil {
		return err
	}

	bucket := g.client.Bucket(g.bucket)
	for _, name := range names {
		err := bucket.Object(name).Delete(ctx)
		if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}

	g.log.Debug("Deleted objects", logger.Fields{"prefix": prefix, "count": len(names)})
	return nil
}

// FileExists checks if an object exists
func (g *GCSClient) FileExists(ctx context.Context, filePath string) (bool, error) {
	objectPath, err := cleanPath(filePath)
	if err != nil {
		return false, err
	}

	_, err = g.client.Bucket(g.bucket).Object(objectPath).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", objectPath, err)
	}
	return true, nil
}
