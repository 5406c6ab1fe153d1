package domain

import (
	"context"
	"time"
)

// ImageRecord holds metadata about one image in a user's gallery.
//
// SortOrder values for a given owner always form the dense sequence 1..N
// where N is the owner's record count. The GalleryService owns that
// invariant; the repository is plain persistence.
type ImageRecord struct {
	ID          int64
	OwnerID     int64
	Title       string
	AssetURL    string // retrievable URL for the stored bytes
	AssetHandle string // opaque deletion handle understood by the AssetStore
	SortOrder   int    // position in the owner's gallery, starts at 1
	CreatedAt   time.Time
}

// OrderUpdate is one (record, position) pair of a bulk reorder.
type OrderUpdate struct {
	ID        int64
	SortOrder int
}

// ImageRepository handles image metadata persistence. It enforces no
// ordering invariant of its own; callers go through the gallery service.
type ImageRepository interface {
	// CreateBatch inserts all records atomically and fills in IDs and
	// creation timestamps. Either every record is created or none is.
	CreateBatch(ctx context.Context, images []*ImageRecord) error
	GetByID(ctx context.Context, id int64) (*ImageRecord, error)
	// GetByIDForOwner returns ErrNotFound when the record does not exist
	// or belongs to a different owner, without distinguishing the two.
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*ImageRecord, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]ImageRecord, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	UpdateTitle(ctx context.Context, id int64, title string) error
	// UpdateAsset replaces title and asset reference, leaving order untouched.
	UpdateAsset(ctx context.Context, id int64, title, assetURL, assetHandle string) error
	// DeleteAndCompact removes the record and decrements the sort order of
	// every record of the same owner above the removed position, in one
	// transaction.
	DeleteAndCompact(ctx context.Context, id, ownerID int64, sortOrder int) error
	// SetOrders applies all pairs in one transaction; no partial writes.
	SetOrders(ctx context.Context, updates []OrderUpdate) error
	// CountOwnedBy reports how many of the given ids belong to ownerID.
	CountOwnedBy(ctx context.Context, ids []int64, ownerID int64) (int, error)
}

// StoredAsset is the result of a successful asset store call.
type StoredAsset struct {
	URL    string // public URL the front-end can fetch
	Handle string // deletion handle
}

// AssetStore abstracts the external object store holding raw image bytes.
// The initial implementation stores BLOBs in SQLite; this interface allows
// swapping to filesystem, S3, or another backend later.
type AssetStore interface {
	// Store never partially succeeds: on error no asset exists upstream.
	Store(ctx context.Context, data []byte, contentType string) (*StoredAsset, error)
	// Delete is idempotent: deleting a missing asset is success, so retries
	// and compensation after partial failures are safe.
	Delete(ctx context.Context, handle string) error
	// Get returns the bytes and content type for a handle.
	Get(ctx context.Context, handle string) ([]byte, string, error)
}
