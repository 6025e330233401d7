package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

const itemColumns = "id, collection_id, status, latest_version, published_revision_id, published_at, created_at, updated_at"

// ItemRepository handles persistence for collection items. Like pages, item
// data lives in the revision store; the row carries publish state only.
type ItemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// Insert creates a new item row
func (r *ItemRepository) Insert(ctx context.Context, item *models.CollectionItem) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TableCollectionItem, itemColumns)

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.CollectionID,
		item.Status,
		item.LatestVersion,
		item.PublishedRevisionID,
		item.PublishedAt,
		item.CreatedAt,
		item.UpdatedAt,
	)
	return err
}

// FindOne retrieves an item by ID
func (r *ItemRepository) FindOne(ctx context.Context, tx *sql.Tx, id string) (*models.CollectionItem, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", itemColumns, constants.TableCollectionItem)
	return r.queryOne(ctx, tx, query, id)
}

// ListByCollection returns all items of a collection, newest first
func (r *ItemRepository) ListByCollection(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE collection_id = ? ORDER BY created_at DESC",
		itemColumns, constants.TableCollectionItem)

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.CollectionItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListPublishedByCollection returns only items with a published pointer
func (r *ItemRepository) ListPublishedByCollection(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE collection_id = ? AND status = ? AND published_revision_id IS NOT NULL
		ORDER BY published_at DESC`,
		itemColumns, constants.TableCollectionItem)

	rows, err := r.db.QueryContext(ctx, query, collectionID, constants.StatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.CollectionItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetLock retrieves an item by ID and locks the row (SELECT ... FOR UPDATE)
func (r *ItemRepository) GetLock(ctx context.Context, tx *sql.Tx, id string) (*models.CollectionItem, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required for locking item %s", id)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1 FOR UPDATE", itemColumns, constants.TableCollectionItem)
	return r.queryOne(ctx, tx, query, id)
}

// UpdateTipTx advances the item's latest version inside the revision transaction
func (r *ItemRepository) UpdateTipTx(ctx context.Context, tx *sql.Tx, id string, latestVersion int) error {
	query := fmt.Sprintf("UPDATE %s SET latest_version = ?, updated_at = ? WHERE id = ?", constants.TableCollectionItem)
	_, err := tx.ExecContext(ctx, query, latestVersion, time.Now(), id)
	return err
}

// PublishTx advances the tip, flips status and moves the published pointer
func (r *ItemRepository) PublishTx(ctx context.Context, tx *sql.Tx, id string, latestVersion int, revisionID string, publishedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET latest_version = ?, status = ?, published_revision_id = ?, published_at = ?, updated_at = ?
		WHERE id = ?`, constants.TableCollectionItem)
	_, err := tx.ExecContext(ctx, query, latestVersion, constants.StatusPublished, revisionID, publishedAt, time.Now(), id)
	return err
}

// Unpublish returns the item to DRAFT and clears the published pointer
func (r *ItemRepository) Unpublish(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, published_revision_id = NULL, published_at = NULL, updated_at = ?
		WHERE id = ?`, constants.TableCollectionItem)
	_, err := r.db.ExecContext(ctx, query, constants.StatusDraft, time.Now(), id)
	return err
}

// Delete removes an item row
func (r *ItemRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableCollectionItem)
	_, err := executor(r.db, tx).ExecContext(ctx, query, id)
	return err
}

// DeleteRevisionsTx removes all revisions of an item inside a transaction
func (r *ItemRepository) DeleteRevisionsTx(ctx context.Context, tx *sql.Tx, itemID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = ?", constants.TableItemRevision)
	_, err := tx.ExecContext(ctx, query, itemID)
	return err
}

func (r *ItemRepository) queryOne(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (*models.CollectionItem, error) {
	rows, err := executor(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanItem(rows)
}

func scanItem(rows *sql.Rows) (*models.CollectionItem, error) {
	var item models.CollectionItem
	if err := rows.Scan(
		&item.ID,
		&item.CollectionID,
		&item.Status,
		&item.LatestVersion,
		&item.PublishedRevisionID,
		&item.PublishedAt,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &item, nil
}
