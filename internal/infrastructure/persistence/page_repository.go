package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

const pageColumns = "id, site_id, slug, title, status, latest_version, published_revision_id, published_at, created_at, updated_at"

// PageRepository handles persistence for builder pages. Content itself lives
// in the revision store; this table carries publish state and the published
// pointer.
type PageRepository struct {
	db *sql.DB
}

// NewPageRepository creates a new PageRepository
func NewPageRepository(db *sql.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Insert creates a new page row
func (r *PageRepository) Insert(ctx context.Context, page *models.Page) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		constants.TablePage, pageColumns)

	_, err := r.db.ExecContext(ctx, query,
		page.ID,
		page.SiteID,
		page.Slug,
		page.Title,
		page.Status,
		page.LatestVersion,
		page.PublishedRevisionID,
		page.PublishedAt,
		page.CreatedAt,
		page.UpdatedAt,
	)
	return err
}

// FindOne retrieves a page by ID
func (r *PageRepository) FindOne(ctx context.Context, tx *sql.Tx, id string) (*models.Page, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1", pageColumns, constants.TablePage)
	return r.queryOne(ctx, tx, query, id)
}

// FindBySiteAndSlug retrieves a page by its site and slug
func (r *PageRepository) FindBySiteAndSlug(ctx context.Context, siteID, slug string) (*models.Page, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE site_id = ? AND slug = ? LIMIT 1", pageColumns, constants.TablePage)
	return r.queryOne(ctx, nil, query, siteID, slug)
}

// ListBySite returns all pages of a site, newest first
func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]models.Page, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE site_id = ? ORDER BY created_at DESC", pageColumns, constants.TablePage)

	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := make([]models.Page, 0)
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *page)
	}
	return pages, rows.Err()
}

// GetLock retrieves a page by ID and locks the row (SELECT ... FOR UPDATE).
// Serializes version allocation for concurrent saves of the same document.
func (r *PageRepository) GetLock(ctx context.Context, tx *sql.Tx, id string) (*models.Page, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction required for locking page %s", id)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ? LIMIT 1 FOR UPDATE", pageColumns, constants.TablePage)
	return r.queryOne(ctx, tx, query, id)
}

// UpdateTipTx advances the page's latest version inside the revision transaction
func (r *PageRepository) UpdateTipTx(ctx context.Context, tx *sql.Tx, id string, latestVersion int) error {
	query := fmt.Sprintf("UPDATE %s SET latest_version = ?, updated_at = ? WHERE id = ?", constants.TablePage)
	_, err := tx.ExecContext(ctx, query, latestVersion, time.Now(), id)
	return err
}

// PublishTx advances the tip, flips status to PUBLISHED and moves the
// published pointer, all inside the revision transaction.
func (r *PageRepository) PublishTx(ctx context.Context, tx *sql.Tx, id string, latestVersion int, revisionID string, publishedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET latest_version = ?, status = ?, published_revision_id = ?, published_at = ?, updated_at = ?
		WHERE id = ?`, constants.TablePage)
	_, err := tx.ExecContext(ctx, query, latestVersion, constants.StatusPublished, revisionID, publishedAt, time.Now(), id)
	return err
}

// Unpublish returns the page to DRAFT and clears the published pointer.
// History is untouched.
func (r *PageRepository) Unpublish(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET status = ?, published_revision_id = NULL, published_at = NULL, updated_at = ?
		WHERE id = ?`, constants.TablePage)
	_, err := r.db.ExecContext(ctx, query, constants.StatusDraft, time.Now(), id)
	return err
}

// UpdateMeta updates a page's slug and title
func (r *PageRepository) UpdateMeta(ctx context.Context, id, slug, title string) error {
	query := fmt.Sprintf("UPDATE %s SET slug = ?, title = ?, updated_at = ? WHERE id = ?", constants.TablePage)
	_, err := r.db.ExecContext(ctx, query, slug, title, time.Now(), id)
	return err
}

// Delete removes a page and, via the service layer, its revisions
func (r *PageRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TablePage)
	_, err := executor(r.db, tx).ExecContext(ctx, query, id)
	return err
}

// DeleteRevisionsTx removes all revisions of a page inside a transaction
func (r *PageRepository) DeleteRevisionsTx(ctx context.Context, tx *sql.Tx, pageID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE document_id = ?", constants.TablePageRevision)
	_, err := tx.ExecContext(ctx, query, pageID)
	return err
}

func (r *PageRepository) queryOne(ctx context.Context, tx *sql.Tx, query string, args ...interface{}) (*models.Page, error) {
	rows, err := executor(r.db, tx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanPage(rows)
}

func scanPage(rows *sql.Rows) (*models.Page, error) {
	var page models.Page
	if err := rows.Scan(
		&page.ID,
		&page.SiteID,
		&page.Slug,
		&page.Title,
		&page.Status,
		&page.LatestVersion,
		&page.PublishedRevisionID,
		&page.PublishedAt,
		&page.CreatedAt,
		&page.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &page, nil
}
