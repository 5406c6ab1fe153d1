package sqlite_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pkarip/imagewall/internal/domain"
	"github.com/pkarip/imagewall/internal/repository/sqlite"
)

// Verify that *sqlite.AssetStore implements domain.AssetStore at compile time.
var _ domain.AssetStore = (*sqlite.AssetStore)(nil)

func TestAssetStore_StoreAndGet(t *testing.T) {
	db := newTestDB(t)
	store := sqlite.NewAssetStore(db, "http://localhost:8080")
	ctx := context.Background()

	data := []byte("fake image bytes")
	asset, err := store.Store(ctx, data, "image/png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if asset.Handle == "" {
		t.Fatal("expected a handle")
	}
	if !strings.HasPrefix(asset.URL, "http://localhost:8080/assets/") {
		t.Fatalf("unexpected URL %q", asset.URL)
	}

	got, contentType, err := store.Get(ctx, asset.Handle)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("stored bytes do not round-trip")
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %q", contentType)
	}
}

func TestAssetStore_DeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := sqlite.NewAssetStore(db, "http://localhost:8080")
	ctx := context.Background()

	asset, err := store.Store(ctx, []byte("bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := store.Delete(ctx, asset.Handle); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// Deleting the same handle again must still succeed.
	if err := store.Delete(ctx, asset.Handle); err != nil {
		t.Fatalf("second Delete: %v", err)
	}

	_, _, err = store.Get(ctx, asset.Handle)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAssetStore_UniqueHandles(t *testing.T) {
	db := newTestDB(t)
	store := sqlite.NewAssetStore(db, "http://localhost:8080")
	ctx := context.Background()

	a, err := store.Store(ctx, []byte("one"), "image/png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	b, err := store.Store(ctx, []byte("two"), "image/png")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if a.Handle == b.Handle {
		t.Fatal("expected distinct handles")
	}
}
