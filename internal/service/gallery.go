package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkarip/imagewall/internal/domain"
)

const (
	maxImageSize   = 10 * 1024 * 1024 // 10MB per file
	maxUploadFiles = 20
	defaultTitle   = "Untitled"
)

var allowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// UploadFile is one file of an upload batch, paired with its title by index.
type UploadFile struct {
	Data        []byte
	ContentType string
	Title       string
}

// DeleteResult reports the outcome of a delete. The record is always gone
// when err is nil; AssetCleanupErr is set when the stored bytes could not be
// removed. The database is authoritative, so cleanup failure is not fatal.
type DeleteResult struct {
	AssetCleanupErr error
}

// ReplaceResult reports the outcome of an asset replacement.
type ReplaceResult struct {
	Record          *domain.ImageRecord
	AssetCleanupErr error // old asset could not be removed
}

// GalleryService orchestrates the per-user ordered image collection.
//
// It is the sole owner of the ordering invariant: for each owner the set of
// sort orders is exactly {1..N}. Append and delete maintain the invariant
// themselves; reorder authorizes the batch and applies it verbatim, trusting
// the client to submit a complete dense payload (documented contract, no
// gap closure on our side).
type GalleryService struct {
	images domain.ImageRepository
	assets domain.AssetStore
	locks  *ownerLocks
}

// NewGalleryService creates a new GalleryService.
func NewGalleryService(images domain.ImageRepository, assets domain.AssetStore) *GalleryService {
	return &GalleryService{
		images: images,
		assets: assets,
		locks:  newOwnerLocks(),
	}
}

// List returns the owner's images in gallery order.
func (s *GalleryService) List(ctx context.Context, ownerID int64) ([]domain.ImageRecord, error) {
	return s.images.ListByOwner(ctx, ownerID)
}

// Get returns one image after an ownership check. A foreign-owned record is
// reported as not found.
func (s *GalleryService) Get(ctx context.Context, ownerID, id int64) (*domain.ImageRecord, error) {
	return s.images.GetByIDForOwner(ctx, id, ownerID)
}

// Upload stores a batch of files and appends one record per file at the end
// of the owner's gallery, in input sequence.
//
// All asset store calls happen before any record is written. If any store
// call fails the whole batch is aborted: no records are created and the
// already-stored assets are deleted again (best-effort).
func (s *GalleryService) Upload(ctx context.Context, ownerID int64, files []UploadFile) ([]domain.ImageRecord, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files to save", domain.ErrInvalidInput)
	}
	if len(files) > maxUploadFiles {
		return nil, fmt.Errorf("%w: at most %d files per upload", domain.ErrInvalidInput, maxUploadFiles)
	}
	for i, f := range files {
		if len(f.Data) == 0 {
			return nil, fmt.Errorf("%w: file %d is empty", domain.ErrInvalidInput, i+1)
		}
		if len(f.Data) > maxImageSize {
			return nil, fmt.Errorf("%w: file %d exceeds 10MB limit", domain.ErrInvalidInput, i+1)
		}
		if !allowedContentTypes[f.ContentType] {
			return nil, fmt.Errorf("%w: file %d has unsupported type %s", domain.ErrInvalidInput, i+1, f.ContentType)
		}
	}

	stored := make([]*domain.StoredAsset, 0, len(files))
	for i, f := range files {
		asset, err := s.assets.Store(ctx, f.Data, f.ContentType)
		if err != nil {
			s.discardAssets(ctx, stored)
			return nil, fmt.Errorf("store asset %d: %w", i+1, err)
		}
		stored = append(stored, asset)
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	count, err := s.images.CountByOwner(ctx, ownerID)
	if err != nil {
		s.discardAssets(ctx, stored)
		return nil, fmt.Errorf("count images: %w", err)
	}

	records := make([]*domain.ImageRecord, len(files))
	for i, f := range files {
		title := strings.TrimSpace(f.Title)
		if title == "" {
			title = defaultTitle
		}
		records[i] = &domain.ImageRecord{
			OwnerID:     ownerID,
			Title:       title,
			AssetURL:    stored[i].URL,
			AssetHandle: stored[i].Handle,
			SortOrder:   count + i + 1,
		}
	}

	if err := s.images.CreateBatch(ctx, records); err != nil {
		s.discardAssets(ctx, stored)
		return nil, fmt.Errorf("create image records: %w", err)
	}

	out := make([]domain.ImageRecord, len(records))
	for i, r := range records {
		out[i] = *r
	}
	return out, nil
}

// EditTitle changes the title of an owned record. Order and asset reference
// are never touched.
func (s *GalleryService) EditTitle(ctx context.Context, ownerID, id int64, title string) (*domain.ImageRecord, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}

	record, err := s.images.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.images.UpdateTitle(ctx, record.ID, title); err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}

	record.Title = title
	return record, nil
}

// Replace swaps the stored asset of an owned record and sets a new title.
// The record keeps its position.
//
// The new asset is stored first. If the record lookup or the database update
// fails afterwards, the new asset is deleted again so nothing is orphaned.
// Removing the old asset is best-effort and reported via AssetCleanupErr.
func (s *GalleryService) Replace(ctx context.Context, ownerID, id int64, title string, data []byte, contentType string) (*ReplaceResult, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image file is required", domain.ErrInvalidInput)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image exceeds 10MB limit", domain.ErrInvalidInput)
	}
	if !allowedContentTypes[contentType] {
		return nil, fmt.Errorf("%w: unsupported type %s", domain.ErrInvalidInput, contentType)
	}

	newAsset, err := s.assets.Store(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store asset: %w", err)
	}

	record, err := s.images.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		// The new asset is already upstream; take it back out.
		if delErr := s.assets.Delete(ctx, newAsset.Handle); delErr != nil {
			slog.Warn("compensating asset delete failed", "handle", newAsset.Handle, "error", delErr)
		}
		return nil, err
	}
	oldHandle := record.AssetHandle

	if err := s.images.UpdateAsset(ctx, record.ID, title, newAsset.URL, newAsset.Handle); err != nil {
		if delErr := s.assets.Delete(ctx, newAsset.Handle); delErr != nil {
			slog.Warn("compensating asset delete failed", "handle", newAsset.Handle, "error", delErr)
		}
		return nil, fmt.Errorf("update record: %w", err)
	}

	record.Title = title
	record.AssetURL = newAsset.URL
	record.AssetHandle = newAsset.Handle

	result := &ReplaceResult{Record: record}
	if err := s.assets.Delete(ctx, oldHandle); err != nil {
		slog.Warn("old asset cleanup failed", "handle", oldHandle, "error", err)
		result.AssetCleanupErr = err
	}
	return result, nil
}

// Delete removes an owned record and closes the order gap it leaves.
// The stored bytes are deleted best-effort before the record; the database
// stays authoritative either way.
func (s *GalleryService) Delete(ctx context.Context, ownerID, id int64) (*DeleteResult, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	record, err := s.images.GetByIDForOwner(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	if err := s.assets.Delete(ctx, record.AssetHandle); err != nil {
		slog.Warn("asset cleanup failed", "handle", record.AssetHandle, "error", err)
		result.AssetCleanupErr = err
	}

	if err := s.images.DeleteAndCompact(ctx, record.ID, ownerID, record.SortOrder); err != nil {
		return nil, fmt.Errorf("delete record: %w", err)
	}
	return result, nil
}

// Reorder applies a bulk set of (id, order) pairs for the owner.
//
// Every id must resolve to a record of the caller, otherwise the whole batch
// is rejected with ErrForbidden and nothing is written. The pairs are applied
// verbatim; submitting a payload that keeps the order set dense is the
// client's contract.
func (s *GalleryService) Reorder(ctx context.Context, ownerID int64, updates []domain.OrderUpdate) error {
	if len(updates) == 0 {
		return fmt.Errorf("%w: empty updates payload", domain.ErrInvalidInput)
	}

	seen := make(map[int64]bool, len(updates))
	ids := make([]int64, 0, len(updates))
	for _, u := range updates {
		if u.SortOrder < 1 {
			return fmt.Errorf("%w: order must be at least 1", domain.ErrInvalidInput)
		}
		if seen[u.ID] {
			return fmt.Errorf("%w: duplicate image id %d", domain.ErrInvalidInput, u.ID)
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}

	unlock := s.locks.lock(ownerID)
	defer unlock()

	owned, err := s.images.CountOwnedBy(ctx, ids, ownerID)
	if err != nil {
		return fmt.Errorf("authorize reorder: %w", err)
	}
	if owned != len(ids) {
		return fmt.Errorf("%w: batch references images not owned by caller", domain.ErrForbidden)
	}

	if err := s.images.SetOrders(ctx, updates); err != nil {
		return fmt.Errorf("apply reorder: %w", err)
	}
	return nil
}

// discardAssets best-effort deletes assets stored during an aborted batch.
func (s *GalleryService) discardAssets(ctx context.Context, stored []*domain.StoredAsset) {
	for _, a := range stored {
		if err := s.assets.Delete(ctx, a.Handle); err != nil {
			slog.Warn("discard stored asset failed", "handle", a.Handle, "error", err)
		}
	}
}
