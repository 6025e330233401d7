package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// SiteService manages the tenant containers. Thin by design; sites mostly
// exist to scope pages and collections.
type SiteService struct {
	sites *persistence.SiteRepository
}

// NewSiteService creates a new SiteService
func NewSiteService(sites *persistence.SiteRepository) *SiteService {
	return &SiteService{sites: sites}
}

// Create makes a new site with a unique slug
func (s *SiteService) Create(ctx context.Context, slug, name string) (*models.Site, error) {
	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, errors.NewValidationError("slug", "Slug is required")
	}

	existing, err := s.sites.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("Site", "slug", slug)
	}

	now := time.Now()
	site := &models.Site{
		ID:        utils.GenerateID(),
		Slug:      slug,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sites.Insert(ctx, site); err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}

	log.Printf("✅ Created site %s (%s)", site.Name, site.Slug)
	return site, nil
}

// Get returns one site by ID
func (s *SiteService) Get(ctx context.Context, id string) (*models.Site, error) {
	site, err := s.sites.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if site == nil {
		return nil, errors.NewNotFoundError("Site", id)
	}
	return site, nil
}

// GetBySlug returns one site by slug
func (s *SiteService) GetBySlug(ctx context.Context, slug string) (*models.Site, error) {
	site, err := s.sites.FindBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if site == nil {
		return nil, errors.NewNotFoundError("Site", slug)
	}
	return site, nil
}

// List returns all sites
func (s *SiteService) List(ctx context.Context) ([]models.Site, error) {
	return s.sites.List(ctx)
}
