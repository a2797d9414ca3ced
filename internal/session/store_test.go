package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/OmarSajjad/datavisualiser/internal/dataset"
	"github.com/OmarSajjad/datavisualiser/internal/storage"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, storage.StorageClient) {
	t.Helper()
	client, err := storage.NewLocalStorageClient(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return NewStore(client, ttl), client
}

func TestPutAndGet(t *testing.T) {
	store, client := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := NewID()

	upload, err := store.Put(ctx, id, "sales.csv", []byte("x,y\n1,2\n3,4\n"))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if upload.Filename != "sales.csv" || upload.Dataset.Len() != 2 {
		t.Errorf("Unexpected upload %+v", upload)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != upload {
		t.Error("Expected cached upload")
	}

	exists, err := client.FileExists(ctx, storage.SessionFilePath(id, "sales.csv"))
	if err != nil || !exists {
		t.Errorf("Expected raw upload in storage, exists=%v err=%v", exists, err)
	}
}

func TestPutReplacesPreviousUpload(t *testing.T) {
	store, client := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := NewID()

	if _, err := store.Put(ctx, id, "first.csv", []byte("a\n1\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := store.Put(ctx, id, "second.csv", []byte("b\n2\n3\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	files, err := client.ListDir(ctx, storage.SessionPrefix(id))
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "second.csv" {
		t.Errorf("Expected only second.csv to be stored, got %v", files)
	}

	got, _ := store.Get(ctx, id)
	if !got.Dataset.HasColumn("b") {
		t.Errorf("Expected the second dataset, got columns %v", got.Dataset.Columns())
	}
}

func TestFailedPutDiscardsPreviousDataset(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := NewID()

	if _, err := store.Put(ctx, id, "good.csv", []byte("a\n1\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, err := store.Put(ctx, id, "bad.csv", []byte(""))
	if !errors.Is(err, dataset.ErrLoad) {
		t.Fatalf("Expected ErrLoad, got %v", err)
	}

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Expected ErrNoDataset after failed upload, got %v", err)
	}
}

func TestGetRestoresFromStorage(t *testing.T) {
	store, client := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := NewID()

	if _, err := store.Put(ctx, id, "data.csv", []byte("x,y\n1,2\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A fresh store over the same storage simulates a restart
	restarted := NewStore(client, time.Hour)
	got, err := restarted.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after restart failed: %v", err)
	}
	if got.Filename != "data.csv" || got.Dataset.Len() != 1 {
		t.Errorf("Unexpected restored upload %+v", got)
	}
	if restarted.Len() != 1 {
		t.Errorf("Expected restored session to be cached, got %d", restarted.Len())
	}
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	for _, id := range []string{NewID(), "", "not-a-uuid", "../../etc"} {
		if _, err := store.Get(ctx, id); !errors.Is(err, ErrNoDataset) {
			t.Errorf("Get(%q): expected ErrNoDataset, got %v", id, err)
		}
	}

	if _, err := store.Put(ctx, "../../etc", "x.csv", []byte("a\n1\n")); err == nil {
		t.Error("Expected Put to reject an invalid id")
	}
}

func TestDelete(t *testing.T) {
	store, client := newTestStore(t, time.Hour)
	ctx := context.Background()
	id := NewID()

	if _, err := store.Put(ctx, id, "data.csv", []byte("a\n1\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Expected ErrNoDataset after delete, got %v", err)
	}
	files, _ := client.ListDir(ctx, storage.SessionPrefix(id))
	if len(files) != 0 {
		t.Errorf("Expected stored files to be removed, got %v", files)
	}
}

func TestSweep(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := start
	store.now = func() time.Time { return clock }

	idle, active := NewID(), NewID()
	for _, id := range []string{idle, active} {
		if _, err := store.Put(ctx, id, "d.csv", []byte("a\n1\n")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	clock = start.Add(50 * time.Minute)
	if _, err := store.Get(ctx, active); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if n := store.Sweep(ctx, start.Add(30*time.Minute)); n != 0 {
		t.Errorf("Expected nothing to expire yet, got %d", n)
	}
	if n := store.Sweep(ctx, start.Add(90*time.Minute)); n != 1 {
		t.Errorf("Expected 1 expired session, got %d", n)
	}

	if _, err := store.Get(ctx, idle); !errors.Is(err, ErrNoDataset) {
		t.Errorf("Expected idle session to be gone, got %v", err)
	}
	if _, err := store.Get(ctx, active); err != nil {
		t.Errorf("Expected active session to survive, got %v", err)
	}
}

func TestSweepDisabled(t *testing.T) {
	store, _ := newTestStore(t, 0)
	ctx := context.Background()

	if _, err := store.Put(ctx, NewID(), "d.csv", []byte("a\n1\n")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if n := store.Sweep(ctx, time.Now().Add(1000*time.Hour)); n != 0 {
		t.Errorf("Expected no expiry with zero ttl, got %d", n)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store, _ := newTestStore(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		store.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
