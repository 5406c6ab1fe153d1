package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkarip/imagewall/internal/domain"
)

// AssetStore implements domain.AssetStore using SQLite BLOBs. Stored assets
// are served back over HTTP under publicBase + "/assets/" + handle.
type AssetStore struct {
	db         *sql.DB
	publicBase string
}

// NewAssetStore creates an asset store backed by the given database.
// publicBase is the externally reachable base URL of this server, without a
// trailing slash (e.g. "https://gallery.example.com").
func NewAssetStore(db *DB, publicBase string) *AssetStore {
	return &AssetStore{db: db.SqlDB, publicBase: publicBase}
}

func (s *AssetStore) Store(ctx context.Context, data []byte, contentType string) (*domain.StoredAsset, error) {
	handle := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO asset_blobs (handle, content_type, data, created_at) VALUES (?, ?, ?, ?)",
		handle, contentType, data, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: save blob: %v", domain.ErrAssetStore, err)
	}
	return &domain.StoredAsset{
		URL:    s.publicBase + "/assets/" + handle,
		Handle: handle,
	}, nil
}

// Delete removes the blob for the handle. A missing blob is not an error so
// compensation paths and retries stay idempotent.
func (s *AssetStore) Delete(ctx context.Context, handle string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM asset_blobs WHERE handle = ?", handle)
	if err != nil {
		return fmt.Errorf("%w: delete blob: %v", domain.ErrAssetStore, err)
	}
	return nil
}

func (s *AssetStore) Get(ctx context.Context, handle string) ([]byte, string, error) {
	var data []byte
	var contentType string
	err := s.db.QueryRowContext(ctx,
		"SELECT data, content_type FROM asset_blobs WHERE handle = ?", handle,
	).Scan(&data, &contentType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: get blob: %v", domain.ErrAssetStore, err)
	}
	return data, contentType, nil
}
