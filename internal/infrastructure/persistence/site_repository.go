package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// SiteRepository handles persistence for tenant sites
type SiteRepository struct {
	db *sql.DB
}

// NewSiteRepository creates a new SiteRepository
func NewSiteRepository(db *sql.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// Insert creates a new site row
func (r *SiteRepository) Insert(ctx context.Context, site *models.Site) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, slug, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, constants.TableSite)

	_, err := r.db.ExecContext(ctx, query, site.ID, site.Slug, site.Name, site.CreatedAt, site.UpdatedAt)
	return err
}

// FindOne retrieves a site by ID
func (r *SiteRepository) FindOne(ctx context.Context, id string) (*models.Site, error) {
	query := fmt.Sprintf("SELECT id, slug, name, created_at, updated_at FROM %s WHERE id = ? LIMIT 1", constants.TableSite)
	return r.queryOne(ctx, query, id)
}

// FindBySlug retrieves a site by slug
func (r *SiteRepository) FindBySlug(ctx context.Context, slug string) (*models.Site, error) {
	query := fmt.Sprintf("SELECT id, slug, name, created_at, updated_at FROM %s WHERE slug = ? LIMIT 1", constants.TableSite)
	return r.queryOne(ctx, query, slug)
}

// List returns all sites
func (r *SiteRepository) List(ctx context.Context) ([]models.Site, error) {
	query := fmt.Sprintf("SELECT id, slug, name, created_at, updated_at FROM %s ORDER BY name", constants.TableSite)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]models.Site, 0)
	for rows.Next() {
		var site models.Site
		if err := rows.Scan(&site.ID, &site.Slug, &site.Name, &site.CreatedAt, &site.UpdatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (r *SiteRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*models.Site, error) {
	var site models.Site
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&site.ID, &site.Slug, &site.Name, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &site, nil
}
