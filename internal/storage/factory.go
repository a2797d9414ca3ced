package storage

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/OmarSajjad/datavisualiser/internal/config"
)

// DeploymentMode represents where uploaded files are kept
type DeploymentMode string

const (
	DeploymentLocal DeploymentMode = "local"
	DeploymentGCS   DeploymentMode = "gcs"
)

// NewStorageClient creates a storage client based on the configured STORAGE_MODE
func NewStorageClient(ctx context.Context, cfg *config.Config) (StorageClient, error) {
	switch DeploymentMode(cfg.StorageMode) {
	case DeploymentLocal, "":
		localClient, err := NewLocalStorageClient(cfg.LocalDataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
		}
		return localClient, nil

	case DeploymentGCS:
		var opts []option.ClientOption
		if cfg.GCPProjectID != "" {
			opts = append(opts, option.WithQuotaProject(cfg.GCPProjectID))
		}
		gcsClient, err := NewGCSClient(ctx, cfg.GCSBucket, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported storage mode: %s", cfg.StorageMode)
	}
}
