package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/pkarip/imagewall/internal/domain"
	"github.com/pkarip/imagewall/internal/repository/sqlite"
)

func seedImages(t *testing.T, db *sqlite.DB, ownerID int64, titles ...string) []int64 {
	t.Helper()
	records := make([]*domain.ImageRecord, len(titles))
	for i, title := range titles {
		records[i] = &domain.ImageRecord{
			OwnerID:     ownerID,
			Title:       title,
			AssetURL:    "/assets/" + title,
			AssetHandle: title,
			SortOrder:   i + 1,
		}
	}
	if err := db.Images().CreateBatch(context.Background(), records); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	ids := make([]int64, len(records))
	for i, r := range records {
		if r.ID == 0 {
			t.Fatal("expected record ID to be set")
		}
		ids[i] = r.ID
	}
	return ids
}

func ordersByTitle(t *testing.T, db *sqlite.DB, ownerID int64) map[string]int {
	t.Helper()
	images, err := db.Images().ListByOwner(context.Background(), ownerID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	got := make(map[string]int, len(images))
	for _, img := range images {
		got[img.Title] = img.SortOrder
	}
	return got
}

func TestImageRepository_CreateBatchAndList(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")

	seedImages(t, db, owner, "a", "b", "c")

	images, err := db.Images().ListByOwner(context.Background(), owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(images))
	}
	for i, img := range images {
		if img.SortOrder != i+1 {
			t.Fatalf("expected sort order %d at position %d, got %d", i+1, i, img.SortOrder)
		}
		if img.CreatedAt.IsZero() {
			t.Fatal("expected created_at to be set")
		}
	}
}

func TestImageRepository_GetByIDForOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	ids := seedImages(t, db, owner, "a")

	ctx := context.Background()

	if _, err := db.Images().GetByIDForOwner(ctx, ids[0], owner); err != nil {
		t.Fatalf("GetByIDForOwner: %v", err)
	}

	// A foreign owner must get the same error as a missing record.
	_, err := db.Images().GetByIDForOwner(ctx, ids[0], other)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	_, err = db.Images().GetByIDForOwner(ctx, 9999, owner)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
}

func TestImageRepository_DeleteAndCompact(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ids := seedImages(t, db, owner, "a", "b", "c", "d")

	// Remove the record at position 2; everything above shifts down.
	if err := db.Images().DeleteAndCompact(context.Background(), ids[1], owner, 2); err != nil {
		t.Fatalf("DeleteAndCompact: %v", err)
	}

	got := ordersByTitle(t, db, owner)
	want := map[string]int{"a": 1, "c": 2, "d": 3}
	for title, order := range want {
		if got[title] != order {
			t.Fatalf("expected %s at order %d, got %d", title, order, got[title])
		}
	}
}

func TestImageRepository_DeleteAndCompact_WrongOwner(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	ids := seedImages(t, db, owner, "a", "b")

	err := db.Images().DeleteAndCompact(context.Background(), ids[0], other, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Nothing may have been written, including the compaction step.
	got := ordersByTitle(t, db, owner)
	if got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("expected orders unchanged, got %v", got)
	}
}

func TestImageRepository_SetOrders(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ids := seedImages(t, db, owner, "a", "b", "c")

	err := db.Images().SetOrders(context.Background(), []domain.OrderUpdate{
		{ID: ids[0], SortOrder: 3},
		{ID: ids[1], SortOrder: 1},
		{ID: ids[2], SortOrder: 2},
	})
	if err != nil {
		t.Fatalf("SetOrders: %v", err)
	}

	got := ordersByTitle(t, db, owner)
	want := map[string]int{"a": 3, "b": 1, "c": 2}
	for title, order := range want {
		if got[title] != order {
			t.Fatalf("expected %s at order %d, got %d", title, order, got[title])
		}
	}
}

func TestImageRepository_SetOrders_MissingIDRollsBack(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ids := seedImages(t, db, owner, "a", "b")

	err := db.Images().SetOrders(context.Background(), []domain.OrderUpdate{
		{ID: ids[0], SortOrder: 2},
		{ID: 9999, SortOrder: 1},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// The first update must have been rolled back with the batch.
	got := ordersByTitle(t, db, owner)
	if got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("expected orders unchanged after rollback, got %v", got)
	}
}

func TestImageRepository_CountOwnedBy(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	ownerIDs := seedImages(t, db, owner, "a", "b")
	otherIDs := seedImages(t, db, other, "x")

	ctx := context.Background()
	images := db.Images()

	count, err := images.CountOwnedBy(ctx, ownerIDs, owner)
	if err != nil {
		t.Fatalf("CountOwnedBy: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 owned, got %d", count)
	}

	mixed := append(append([]int64{}, ownerIDs...), otherIDs...)
	count, err = images.CountOwnedBy(ctx, mixed, owner)
	if err != nil {
		t.Fatalf("CountOwnedBy mixed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 owned in mixed set, got %d", count)
	}
}

func TestImageRepository_UpdateTitleLeavesOrderAndAsset(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ids := seedImages(t, db, owner, "a", "b")

	ctx := context.Background()
	if err := db.Images().UpdateTitle(ctx, ids[1], "renamed"); err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}

	got, err := db.Images().GetByID(ctx, ids[1])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "renamed" {
		t.Fatalf("expected title renamed, got %q", got.Title)
	}
	if got.SortOrder != 2 {
		t.Fatalf("expected order untouched, got %d", got.SortOrder)
	}
	if got.AssetHandle != "b" {
		t.Fatalf("expected asset handle untouched, got %q", got.AssetHandle)
	}
}

func TestImageRepository_UpdateAsset(t *testing.T) {
	db := newTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	ids := seedImages(t, db, owner, "a")

	ctx := context.Background()
	if err := db.Images().UpdateAsset(ctx, ids[0], "new title", "/assets/new", "new"); err != nil {
		t.Fatalf("UpdateAsset: %v", err)
	}

	got, err := db.Images().GetByID(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "new title" || got.AssetHandle != "new" || got.AssetURL != "/assets/new" {
		t.Fatalf("unexpected record after UpdateAsset: %+v", got)
	}
	if got.SortOrder != 1 {
		t.Fatalf("expected order untouched, got %d", got.SortOrder)
	}
}
