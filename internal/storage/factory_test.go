package storage

import (
	"context"
	"path/filepath"
	"testing"

	"google.golang.org/api/option"

	"github.com/OmarSajjad/datavisualiser/internal/config"
)

func TestNewStorageClient_Local(t *testing.T) {
	cfg := &config.Config{
		StorageMode:  "local",
		LocalDataDir: filepath.Join(t.TempDir(), "data"),
	}

	client, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create local storage client: %v", err)
	}
	defer client.Close()

	if _, ok := client.(*LocalStorageClient); !ok {
		t.Errorf("Expected LocalStorageClient, got %T", client)
	}
}

func TestNewStorageClient_GCS(t *testing.T) {
	cfg := &config.Config{
		StorageMode:  "gcs",
		GCPProjectID: "test-project",
		GCSBucket:    "test-bucket",
	}

	// Without credentials in the test environment this is expected to fail;
	// the logic path is still exercised
	client, err := NewStorageClient(context.Background(), cfg)
	if err != nil {
		t.Logf("GCS client creation failed as expected in test environment: %v", err)
		return
	}
	defer client.Close()

	if _, ok := client.(*GCSClient); !ok {
		t.Errorf("Expected GCSClient, got %T", client)
	}
}

func TestNewStorageClient_UnsupportedMode(t *testing.T) {
	cfg := &config.Config{StorageMode: "s3"}

	if _, err := NewStorageClient(context.Background(), cfg); err == nil {
		t.Error("Expected error for unsupported storage mode")
	}
}

func TestNewGCSClient(t *testing.T) {
	ctx := context.Background()

	if _, err := NewGCSClient(ctx, ""); err == nil {
		t.Error("Expected error for missing bucket")
	}

	client, err := NewGCSClient(ctx, "test-bucket",
		option.WithoutAuthentication(),
		option.WithEndpoint("http://127.0.0.1:1/storage/v1/"),
	)
	if err != nil {
		t.Fatalf("NewGCSClient failed: %v", err)
	}
	if client.bucket != "test-bucket" {
		t.Errorf("Expected bucket 'test-bucket', got %q", client.bucket)
	}
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
