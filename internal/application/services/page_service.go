package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sitewise/backend/internal/domain/content"
	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/auth"
	"github.com/sitewise/backend/pkg/componentregistry"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// PageService manages builder pages: draft saves, the revision history,
// publish state and rollback. All revision writes go through one transaction
// that locks the page row, so version numbers stay strictly increasing under
// concurrent saves.
type PageService struct {
	pages     *persistence.PageRepository
	revisions *persistence.RevisionRepository
	sites     *persistence.SiteRepository
	schedules *persistence.ScheduleRepository
	txManager *persistence.TransactionManager
	registry  *componentregistry.Registry
}

// NewPageService creates a new PageService
func NewPageService(pages *persistence.PageRepository, revisions *persistence.RevisionRepository,
	sites *persistence.SiteRepository, schedules *persistence.ScheduleRepository,
	txManager *persistence.TransactionManager, registry *componentregistry.Registry) *PageService {
	return &PageService{
		pages:     pages,
		revisions: revisions,
		sites:     sites,
		schedules: schedules,
		txManager: txManager,
		registry:  registry,
	}
}

// Create makes a new draft page with an empty version 1 revision
func (s *PageService) Create(ctx context.Context, siteID, slug, title string, user auth.UserSession) (*models.Page, error) {
	site, err := s.sites.FindOne(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if site == nil {
		return nil, errors.NewNotFoundError("Site", siteID)
	}

	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, errors.NewValidationError("slug", "Slug is required")
	}
	existing, err := s.pages.FindBySiteAndSlug(ctx, siteID, slug)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("Page", "slug", slug)
	}

	now := time.Now()
	page := &models.Page{
		ID:            utils.GenerateID(),
		SiteID:        siteID,
		Slug:          slug,
		Title:         title,
		Status:        constants.StatusDraft,
		LatestVersion: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.pages.Insert(ctx, page); err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// Seed the history with an empty envelope so every page has a version 1
	empty, err := content.EmptyContent().Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize empty content: %w", err)
	}
	rev, err := s.saveDraftRaw(ctx, page.ID, empty, nil, user)
	if err != nil {
		return nil, err
	}
	page.LatestVersion = rev.Version

	log.Printf("✅ Created page %s (%s) on site %s", page.Title, page.Slug, site.Slug)
	return page, nil
}

// SaveDraft validates the envelope strictly and appends it as a new revision.
// Invalid content is rejected before anything is written.
func (s *PageService) SaveDraft(ctx context.Context, pageID string, raw interface{}, note *string, user auth.UserSession) (*models.Revision, error) {
	result := content.Validate(raw)
	if !result.Valid {
		return nil, errors.NewValidationError("content", result.Error)
	}

	serialized, err := result.Content.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}
	return s.saveDraftRaw(ctx, pageID, serialized, note, user)
}

func (s *PageService) saveDraftRaw(ctx context.Context, pageID string, serialized json.RawMessage, note *string, user auth.UserSession) (*models.Revision, error) {
	var rev *models.Revision
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		page, err := s.pages.GetLock(ctx, tx, pageID)
		if err != nil {
			return fmt.Errorf("failed to lock page: %w", err)
		}
		if page == nil {
			return errors.NewNotFoundError("Page", pageID)
		}

		rev, err = appendRevisionTx(ctx, tx, s.revisions, pageID, serialized, note, user.ID)
		if err != nil {
			return err
		}
		return s.pages.UpdateTipTx(ctx, tx, pageID, rev.Version)
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("💾 Saved draft v%d for page %s", rev.Version, pageID)
	return rev, nil
}

// Publish puts a revision live. With raw content the envelope is validated,
// appended as a new revision and published in one step, so callers can publish
// in-memory content they never saved as a draft. With raw nil, revisionID
// names an existing revision to publish; empty means the latest. Either way
// the target content must pass strict validation before the pointer flips.
func (s *PageService) Publish(ctx context.Context, pageID string, raw interface{}, revisionID string, user auth.UserSession) (*models.Page, error) {
	var serialized json.RawMessage
	if raw != nil {
		result := content.Validate(raw)
		if !result.Valid {
			return nil, errors.NewValidationError("content", fmt.Sprintf("Cannot publish invalid content: %s", result.Error))
		}
		var err error
		serialized, err = result.Content.Serialize()
		if err != nil {
			return nil, fmt.Errorf("failed to serialize content: %w", err)
		}
	}

	var page *models.Page
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		var err error
		page, err = s.pages.GetLock(ctx, tx, pageID)
		if err != nil {
			return fmt.Errorf("failed to lock page: %w", err)
		}
		if page == nil {
			return errors.NewNotFoundError("Page", pageID)
		}

		var rev *models.Revision
		tip := page.LatestVersion
		if serialized != nil {
			rev, err = appendRevisionTx(ctx, tx, s.revisions, pageID, serialized, nil, user.ID)
			if err != nil {
				return err
			}
			tip = rev.Version
		} else {
			if revisionID == "" {
				rev, err = s.revisions.Latest(ctx, tx, pageID)
			} else {
				rev, err = s.revisions.FindByID(ctx, tx, revisionID)
			}
			if err != nil {
				return fmt.Errorf("failed to load revision: %w", err)
			}
			if rev == nil || rev.DocumentID != pageID {
				return errors.NewNotFoundError("Revision", revisionID)
			}
			if result := content.ValidateRaw(rev.Content); !result.Valid {
				return errors.NewValidationError("content", fmt.Sprintf("Cannot publish invalid content: %s", result.Error))
			}
		}

		now := time.Now()
		if err := s.pages.PublishTx(ctx, tx, pageID, tip, rev.ID, now); err != nil {
			return fmt.Errorf("failed to publish page: %w", err)
		}

		page.Status = constants.StatusPublished
		page.LatestVersion = tip
		page.PublishedRevisionID = &rev.ID
		page.PublishedAt = &now
		page.UpdatedAt = now
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 Published page %s (revision %s)", pageID, *page.PublishedRevisionID)
	return page, nil
}

// Unpublish takes a page offline. The revision history is untouched.
func (s *PageService) Unpublish(ctx context.Context, pageID string) (*models.Page, error) {
	page, err := s.pages.FindOne(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if page == nil {
		return nil, errors.NewNotFoundError("Page", pageID)
	}

	if err := s.pages.Unpublish(ctx, pageID); err != nil {
		return nil, fmt.Errorf("failed to unpublish page: %w", err)
	}
	page.Status = constants.StatusDraft
	page.PublishedRevisionID = nil
	page.PublishedAt = nil

	log.Printf("📴 Unpublished page %s", pageID)
	return page, nil
}

// Rollback appends a copy of an older revision as the newest version. The
// source is named by revision id or by version number; it stays in the
// history, nothing is ever rewound in place. Fails closed when the source is
// missing or belongs to another page.
func (s *PageService) Rollback(ctx context.Context, pageID, revisionID string, version int, user auth.UserSession) (*models.Revision, error) {
	var rev *models.Revision
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		page, err := s.pages.GetLock(ctx, tx, pageID)
		if err != nil {
			return fmt.Errorf("failed to lock page: %w", err)
		}
		if page == nil {
			return errors.NewNotFoundError("Page", pageID)
		}

		var source *models.Revision
		if revisionID != "" {
			source, err = s.revisions.FindByID(ctx, tx, revisionID)
		} else {
			source, err = s.revisions.FindByVersion(ctx, tx, pageID, version)
		}
		if err != nil {
			return fmt.Errorf("failed to load revision: %w", err)
		}
		if source == nil || source.DocumentID != pageID {
			ref := revisionID
			if ref == "" {
				ref = fmt.Sprintf("version %d", version)
			}
			return errors.NewNotFoundError("Revision", ref)
		}

		rev, err = appendRevisionTx(ctx, tx, s.revisions, pageID, source.Content, rollbackNote(source.Version), user.ID)
		if err != nil {
			return err
		}
		return s.pages.UpdateTipTx(ctx, tx, pageID, rev.Version)
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("⏪ Rolled back page %s (new v%d)", pageID, rev.Version)
	return rev, nil
}

// Get returns one page by ID
func (s *PageService) Get(ctx context.Context, pageID string) (*models.Page, error) {
	page, err := s.pages.FindOne(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if page == nil {
		return nil, errors.NewNotFoundError("Page", pageID)
	}
	return page, nil
}

// ListBySite returns all pages of a site
func (s *PageService) ListBySite(ctx context.Context, siteID string) ([]models.Page, error) {
	return s.pages.ListBySite(ctx, siteID)
}

// ListRevisions returns a page's revision history, newest first
func (s *PageService) ListRevisions(ctx context.Context, pageID string) ([]models.Revision, error) {
	if _, err := s.Get(ctx, pageID); err != nil {
		return nil, err
	}
	return s.revisions.ListByDocument(ctx, pageID)
}

// GetDraft returns the newest revision, the content an editor resumes from
func (s *PageService) GetDraft(ctx context.Context, pageID string) (*models.Revision, error) {
	if _, err := s.Get(ctx, pageID); err != nil {
		return nil, err
	}
	rev, err := s.revisions.Latest(ctx, nil, pageID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if rev == nil {
		return nil, errors.NewNotFoundError("Revision", "latest")
	}
	return rev, nil
}

// CheckCompatibility reconciles a page's newest revision against the live
// component registry. Warnings are advisory; stale content still loads.
func (s *PageService) CheckCompatibility(ctx context.Context, pageID string) (*content.CompatibilityResult, error) {
	rev, err := s.GetDraft(ctx, pageID)
	if err != nil {
		return nil, err
	}

	var envelope content.BuilderContent
	if err := json.Unmarshal(rev.Content, &envelope); err != nil {
		return nil, errors.NewValidationError("content", "Stored content is not a builder envelope")
	}

	result := content.CheckCompatibility(envelope, s.registry.Slugs())
	return &result, nil
}

// UpdateMeta changes a page's slug and title without touching content
func (s *PageService) UpdateMeta(ctx context.Context, pageID, slug, title string) (*models.Page, error) {
	page, err := s.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}

	slug = normalizeSlug(slug)
	if slug == "" {
		return nil, errors.NewValidationError("slug", "Slug is required")
	}
	if slug != page.Slug {
		existing, err := s.pages.FindBySiteAndSlug(ctx, page.SiteID, slug)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if existing != nil {
			return nil, errors.NewConflictError("Page", "slug", slug)
		}
	}

	if err := s.pages.UpdateMeta(ctx, pageID, slug, title); err != nil {
		return nil, fmt.Errorf("failed to update page: %w", err)
	}
	page.Slug = slug
	page.Title = title
	return page, nil
}

// Delete removes a page, its revision history and any pending schedules
func (s *PageService) Delete(ctx context.Context, pageID string) error {
	if _, err := s.Get(ctx, pageID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := s.pages.DeleteRevisionsTx(ctx, tx, pageID); err != nil {
			return err
		}
		if err := s.schedules.DeleteByDocument(ctx, tx, pageID); err != nil {
			return err
		}
		return s.pages.Delete(ctx, tx, pageID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}

	log.Printf("🗑️ Deleted page %s", pageID)
	return nil
}

// PublicPage is the page payload served to visitors: metadata plus blocks
// resolved against the registry, with placeholders for unknown types.
type PublicPage struct {
	Slug        string                  `json:"slug"`
	Title       string                  `json:"title"`
	PublishedAt *time.Time              `json:"published_at"`
	Blocks      []content.ResolvedBlock `json:"blocks"`
}

// PublicBySlug serves the published snapshot of a page. Reads go through
// the published pointer only; draft saves after publish are invisible here.
func (s *PageService) PublicBySlug(ctx context.Context, siteSlug, pageSlug string) (*PublicPage, error) {
	site, err := s.sites.FindBySlug(ctx, siteSlug)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if site == nil {
		return nil, errors.NewNotFoundError("Site", siteSlug)
	}

	page, err := s.pages.FindBySiteAndSlug(ctx, site.ID, normalizeSlug(pageSlug))
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if page == nil || page.Status != constants.StatusPublished || page.PublishedRevisionID == nil {
		return nil, errors.NewNotFoundError("Page", pageSlug)
	}

	rev, err := s.revisions.FindByID(ctx, nil, *page.PublishedRevisionID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if rev == nil {
		return nil, errors.NewNotFoundError("Revision", *page.PublishedRevisionID)
	}

	var raw interface{}
	if err := json.Unmarshal(rev.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse stored content: %w", err)
	}

	blocks := content.ResolveContent(raw, func(slug string) bool {
		_, ok := s.registry.GetType(slug)
		return ok
	})

	return &PublicPage{
		Slug:        page.Slug,
		Title:       page.Title,
		PublishedAt: page.PublishedAt,
		Blocks:      blocks,
	}, nil
}

// normalizeSlug lowercases and trims a slug
func normalizeSlug(slug string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(slug)), "/")
}
