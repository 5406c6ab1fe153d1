package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pkarip/imagewall/internal/domain"
)

// ImageRepository implements domain.ImageRepository using SQLite.
//
// Bulk mutations (CreateBatch, DeleteAndCompact, SetOrders) run inside a
// transaction so a failure cannot leave a partial write behind. Ordering
// semantics live in the gallery service, not here.
type ImageRepository struct {
	db *sql.DB
}

func (r *ImageRepository) CreateBatch(ctx context.Context, images []*domain.ImageRecord) error {
	if len(images) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, img := range images {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO images (owner_id, title, asset_url, asset_handle, sort_order, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			img.OwnerID, img.Title, img.AssetURL, img.AssetHandle, img.SortOrder, now,
		)
		if err != nil {
			return fmt.Errorf("insert image: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("get last insert id: %w", err)
		}
		img.ID = id
		img.CreatedAt = now
	}

	return tx.Commit()
}

const imageColumns = "id, owner_id, title, asset_url, asset_handle, sort_order, created_at"

func (r *ImageRepository) GetByID(ctx context.Context, id int64) (*domain.ImageRecord, error) {
	return scanImage(r.db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE id = ?", id))
}

func (r *ImageRepository) GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.ImageRecord, error) {
	return scanImage(r.db.QueryRowContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE id = ? AND owner_id = ?", id, ownerID))
}

func scanImage(row *sql.Row) (*domain.ImageRecord, error) {
	img := &domain.ImageRecord{}
	err := row.Scan(&img.ID, &img.OwnerID, &img.Title, &img.AssetURL,
		&img.AssetHandle, &img.SortOrder, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query image: %w", err)
	}
	return img, nil
}

func (r *ImageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.ImageRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+imageColumns+" FROM images WHERE owner_id = ? ORDER BY sort_order", ownerID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var images []domain.ImageRecord
	for rows.Next() {
		var img domain.ImageRecord
		if err := rows.Scan(&img.ID, &img.OwnerID, &img.Title, &img.AssetURL,
			&img.AssetHandle, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *ImageRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM images WHERE owner_id = ?", ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return count, nil
}

func (r *ImageRepository) UpdateTitle(ctx context.Context, id int64, title string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE images SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return requireRow(result)
}

func (r *ImageRepository) UpdateAsset(ctx context.Context, id int64, title, assetURL, assetHandle string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE images SET title = ?, asset_url = ?, asset_handle = ? WHERE id = ?",
		title, assetURL, assetHandle, id)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return requireRow(result)
}

func (r *ImageRepository) DeleteAndCompact(ctx context.Context, id, ownerID int64, sortOrder int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"DELETE FROM images WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	if err := requireRow(result); err != nil {
		return err
	}

	// Close the gap left by the removed position.
	_, err = tx.ExecContext(ctx,
		"UPDATE images SET sort_order = sort_order - 1 WHERE owner_id = ? AND sort_order > ?",
		ownerID, sortOrder)
	if err != nil {
		return fmt.Errorf("compact orders: %w", err)
	}

	return tx.Commit()
}

func (r *ImageRepository) SetOrders(ctx context.Context, updates []domain.OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range updates {
		result, err := tx.ExecContext(ctx,
			"UPDATE images SET sort_order = ? WHERE id = ?", u.SortOrder, u.ID)
		if err != nil {
			return fmt.Errorf("set order for image %d: %w", u.ID, err)
		}
		if err := requireRow(result); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ImageRepository) CountOwnedBy(ctx context.Context, ids []int64, ownerID int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, ownerID)

	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM images WHERE id IN ("+placeholders+") AND owner_id = ?",
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owned images: %w", err)
	}
	return count, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
