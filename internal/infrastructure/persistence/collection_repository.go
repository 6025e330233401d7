package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// CollectionRepository handles persistence for collections. The field schema
// is embedded on the collection row as JSON (schema_json), not a child table.
type CollectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new CollectionRepository
func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// Insert creates a new collection row
func (r *CollectionRepository) Insert(ctx context.Context, coll *models.Collection) error {
	schemaJSON, err := json.Marshal(coll.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode collection schema: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, site_id, slug, name, schema_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, constants.TableCollection)

	_, err = r.db.ExecContext(ctx, query,
		coll.ID, coll.SiteID, coll.Slug, coll.Name, schemaJSON, coll.CreatedAt, coll.UpdatedAt)
	return err
}

// UpdateSchema replaces the embedded field schema. Stored item data is never
// touched here: deleting a field leaves orphan keys in items, which surface
// as compatibility warnings instead of data loss.
func (r *CollectionRepository) UpdateSchema(ctx context.Context, id string, fields []models.CollectionField) error {
	schemaJSON, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode collection schema: %w", err)
	}

	query := fmt.Sprintf("UPDATE %s SET schema_json = ?, updated_at = ? WHERE id = ?", constants.TableCollection)
	_, err = r.db.ExecContext(ctx, query, schemaJSON, time.Now(), id)
	return err
}

// FindOne retrieves a collection by ID
func (r *CollectionRepository) FindOne(ctx context.Context, id string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, site_id, slug, name, schema_json, created_at, updated_at
		FROM %s WHERE id = ? LIMIT 1`, constants.TableCollection)
	return r.queryOne(ctx, query, id)
}

// FindBySiteAndSlug retrieves a collection by its site and slug
func (r *CollectionRepository) FindBySiteAndSlug(ctx context.Context, siteID, slug string) (*models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, site_id, slug, name, schema_json, created_at, updated_at
		FROM %s WHERE site_id = ? AND slug = ? LIMIT 1`, constants.TableCollection)
	return r.queryOne(ctx, query, siteID, slug)
}

// ListBySite returns all collections of a site
func (r *CollectionRepository) ListBySite(ctx context.Context, siteID string) ([]models.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, site_id, slug, name, schema_json, created_at, updated_at
		FROM %s WHERE site_id = ? ORDER BY name`, constants.TableCollection)

	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := make([]models.Collection, 0)
	for rows.Next() {
		coll, err := scanCollection(rows.Scan)
		if err != nil {
			return nil, err
		}
		collections = append(collections, *coll)
	}
	return collections, rows.Err()
}

// Delete removes a collection row
func (r *CollectionRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableCollection)
	_, err := executor(r.db, tx).ExecContext(ctx, query, id)
	return err
}

func (r *CollectionRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*models.Collection, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	coll, err := scanCollection(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return coll, nil
}

func scanCollection(scan func(dest ...interface{}) error) (*models.Collection, error) {
	var coll models.Collection
	var schemaJSON []byte
	if err := scan(
		&coll.ID,
		&coll.SiteID,
		&coll.Slug,
		&coll.Name,
		&schemaJSON,
		&coll.CreatedAt,
		&coll.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(schemaJSON) > 0 {
		if err := json.Unmarshal(schemaJSON, &coll.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode schema for collection %s: %w", coll.ID, err)
		}
	}
	if coll.Fields == nil {
		coll.Fields = []models.CollectionField{}
	}
	return &coll, nil
}
