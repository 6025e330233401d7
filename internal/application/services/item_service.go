package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/auth"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// ItemService manages collection items with the same revision and publish
// semantics as pages. Item snapshots hold the field data map instead of a
// builder envelope; validation runs against the collection schema plus the
// collection's expression rules.
type ItemService struct {
	items       *persistence.ItemRepository
	revisions   *persistence.RevisionRepository
	collections *persistence.CollectionRepository
	schedules   *persistence.ScheduleRepository
	txManager   *persistence.TransactionManager
	validation  *ValidationService
}

// NewItemService creates a new ItemService
func NewItemService(items *persistence.ItemRepository, revisions *persistence.RevisionRepository,
	collections *persistence.CollectionRepository, schedules *persistence.ScheduleRepository,
	txManager *persistence.TransactionManager, validation *ValidationService) *ItemService {
	return &ItemService{
		items:       items,
		revisions:   revisions,
		collections: collections,
		schedules:   schedules,
		txManager:   txManager,
		validation:  validation,
	}
}

// ItemSaveResult is the outcome of a draft save: the new revision plus any
// advisory schema-drift warnings
type ItemSaveResult struct {
	Item     *models.CollectionItem `json:"item"`
	Revision *models.Revision       `json:"revision"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Create makes a new item with the given data as its version 1 revision
func (s *ItemService) Create(ctx context.Context, collectionID string, data map[string]interface{}, user auth.UserSession) (*ItemSaveResult, error) {
	coll, err := s.collections.FindOne(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if coll == nil {
		return nil, errors.NewNotFoundError("Collection", collectionID)
	}

	warnings, err := s.validation.ValidateItemData(ctx, coll, data)
	if err != nil {
		return nil, err
	}

	serialized, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize item data: %w", err)
	}

	now := time.Now()
	item := &models.CollectionItem{
		ID:            utils.GenerateID(),
		CollectionID:  collectionID,
		Status:        constants.StatusDraft,
		LatestVersion: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.items.Insert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	rev, err := s.saveDraftRaw(ctx, item.ID, serialized, nil, user)
	if err != nil {
		return nil, err
	}
	item.LatestVersion = rev.Version

	log.Printf("✅ Created item %s in collection %s", item.ID, coll.Slug)
	return &ItemSaveResult{Item: item, Revision: rev, Warnings: warnings}, nil
}

// SaveDraft validates the data and appends it as a new revision
func (s *ItemService) SaveDraft(ctx context.Context, itemID string, data map[string]interface{}, note *string, user auth.UserSession) (*ItemSaveResult, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	coll, err := s.collections.FindOne(ctx, item.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if coll == nil {
		return nil, errors.NewNotFoundError("Collection", item.CollectionID)
	}

	warnings, err := s.validation.ValidateItemData(ctx, coll, data)
	if err != nil {
		return nil, err
	}

	serialized, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize item data: %w", err)
	}

	rev, err := s.saveDraftRaw(ctx, itemID, serialized, note, user)
	if err != nil {
		return nil, err
	}
	item.LatestVersion = rev.Version

	return &ItemSaveResult{Item: item, Revision: rev, Warnings: warnings}, nil
}

func (s *ItemService) saveDraftRaw(ctx context.Context, itemID string, serialized json.RawMessage, note *string, user auth.UserSession) (*models.Revision, error) {
	var rev *models.Revision
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		item, err := s.items.GetLock(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("failed to lock item: %w", err)
		}
		if item == nil {
			return errors.NewNotFoundError("CollectionItem", itemID)
		}

		rev, err = appendRevisionTx(ctx, tx, s.revisions, itemID, serialized, note, user.ID)
		if err != nil {
			return err
		}
		return s.items.UpdateTipTx(ctx, tx, itemID, rev.Version)
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("💾 Saved draft v%d for item %s", rev.Version, itemID)
	return rev, nil
}

// Publish puts an item revision live. With data the record is validated,
// appended as a new revision and published in one step; with data nil,
// revisionID names an existing revision (empty for the latest).
func (s *ItemService) Publish(ctx context.Context, itemID string, data map[string]interface{}, revisionID string, user auth.UserSession) (*models.CollectionItem, error) {
	var serialized json.RawMessage
	if data != nil {
		item, err := s.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		coll, err := s.collections.FindOne(ctx, item.CollectionID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if coll == nil {
			return nil, errors.NewNotFoundError("Collection", item.CollectionID)
		}
		if _, err := s.validation.ValidateItemData(ctx, coll, data); err != nil {
			return nil, err
		}
		serialized, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize item data: %w", err)
		}
	}

	var item *models.CollectionItem
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		var err error
		item, err = s.items.GetLock(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("failed to lock item: %w", err)
		}
		if item == nil {
			return errors.NewNotFoundError("CollectionItem", itemID)
		}

		var rev *models.Revision
		tip := item.LatestVersion
		if serialized != nil {
			rev, err = appendRevisionTx(ctx, tx, s.revisions, itemID, serialized, nil, user.ID)
			if err != nil {
				return err
			}
			tip = rev.Version
		} else {
			if revisionID == "" {
				rev, err = s.revisions.Latest(ctx, tx, itemID)
			} else {
				rev, err = s.revisions.FindByID(ctx, tx, revisionID)
			}
			if err != nil {
				return fmt.Errorf("failed to load revision: %w", err)
			}
			if rev == nil || rev.DocumentID != itemID {
				return errors.NewNotFoundError("Revision", revisionID)
			}
		}

		now := time.Now()
		if err := s.items.PublishTx(ctx, tx, itemID, tip, rev.ID, now); err != nil {
			return fmt.Errorf("failed to publish item: %w", err)
		}
		item.LatestVersion = tip

		item.Status = constants.StatusPublished
		item.PublishedRevisionID = &rev.ID
		item.PublishedAt = &now
		item.UpdatedAt = now
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("🚀 Published item %s (revision %s)", itemID, *item.PublishedRevisionID)
	return item, nil
}

// Unpublish takes an item offline, keeping its history
func (s *ItemService) Unpublish(ctx context.Context, itemID string) (*models.CollectionItem, error) {
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.items.Unpublish(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to unpublish item: %w", err)
	}
	item.Status = constants.StatusDraft
	item.PublishedRevisionID = nil
	item.PublishedAt = nil

	log.Printf("📴 Unpublished item %s", itemID)
	return item, nil
}

// Rollback appends a copy of an older revision as the newest version. The
// source is named by revision id or by version number.
func (s *ItemService) Rollback(ctx context.Context, itemID, revisionID string, version int, user auth.UserSession) (*models.Revision, error) {
	var rev *models.Revision
	err := s.txManager.WithRetry(func(tx *sql.Tx) error {
		item, err := s.items.GetLock(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("failed to lock item: %w", err)
		}
		if item == nil {
			return errors.NewNotFoundError("CollectionItem", itemID)
		}

		var source *models.Revision
		if revisionID != "" {
			source, err = s.revisions.FindByID(ctx, tx, revisionID)
		} else {
			source, err = s.revisions.FindByVersion(ctx, tx, itemID, version)
		}
		if err != nil {
			return fmt.Errorf("failed to load revision: %w", err)
		}
		if source == nil || source.DocumentID != itemID {
			ref := revisionID
			if ref == "" {
				ref = fmt.Sprintf("version %d", version)
			}
			return errors.NewNotFoundError("Revision", ref)
		}

		rev, err = appendRevisionTx(ctx, tx, s.revisions, itemID, source.Content, rollbackNote(source.Version), user.ID)
		if err != nil {
			return err
		}
		return s.items.UpdateTipTx(ctx, tx, itemID, rev.Version)
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("⏪ Rolled back item %s (new v%d)", itemID, rev.Version)
	return rev, nil
}

// Get returns one item by ID
func (s *ItemService) Get(ctx context.Context, itemID string) (*models.CollectionItem, error) {
	item, err := s.items.FindOne(ctx, nil, itemID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("CollectionItem", itemID)
	}
	return item, nil
}

// ListByCollection returns all items of a collection
func (s *ItemService) ListByCollection(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	return s.items.ListByCollection(ctx, collectionID)
}

// ListRevisions returns an item's revision history, newest first
func (s *ItemService) ListRevisions(ctx context.Context, itemID string) ([]models.Revision, error) {
	if _, err := s.Get(ctx, itemID); err != nil {
		return nil, err
	}
	return s.revisions.ListByDocument(ctx, itemID)
}

// GetDraft returns an item's newest revision
func (s *ItemService) GetDraft(ctx context.Context, itemID string) (*models.Revision, error) {
	if _, err := s.Get(ctx, itemID); err != nil {
		return nil, err
	}
	rev, err := s.revisions.Latest(ctx, nil, itemID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if rev == nil {
		return nil, errors.NewNotFoundError("Revision", "latest")
	}
	return rev, nil
}

// Delete removes an item, its revisions and any pending schedules
func (s *ItemService) Delete(ctx context.Context, itemID string) error {
	if _, err := s.Get(ctx, itemID); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(func(tx *sql.Tx) error {
		if err := s.items.DeleteRevisionsTx(ctx, tx, itemID); err != nil {
			return err
		}
		if err := s.schedules.DeleteByDocument(ctx, tx, itemID); err != nil {
			return err
		}
		return s.items.Delete(ctx, tx, itemID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	log.Printf("🗑️ Deleted item %s", itemID)
	return nil
}

// PublicItem is a published item as served to visitors
type PublicItem struct {
	ID          string                 `json:"id"`
	Data        map[string]interface{} `json:"data"`
	PublishedAt *time.Time             `json:"published_at"`
}

// PublicList serves the published snapshots of a collection's items. Each
// item is read through its published pointer; drafts and unpublished items
// are invisible here.
func (s *ItemService) PublicList(ctx context.Context, collectionID string) ([]PublicItem, error) {
	items, err := s.items.ListPublishedByCollection(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	public := make([]PublicItem, 0, len(items))
	for _, item := range items {
		if item.PublishedRevisionID == nil {
			continue
		}
		rev, err := s.revisions.FindByID(ctx, nil, *item.PublishedRevisionID)
		if err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if rev == nil {
			log.Printf("⚠️ Item %s points at missing revision %s", item.ID, *item.PublishedRevisionID)
			continue
		}

		var data map[string]interface{}
		if err := json.Unmarshal(rev.Content, &data); err != nil {
			log.Printf("⚠️ Item %s has unreadable published data: %v", item.ID, err)
			continue
		}
		public = append(public, PublicItem{ID: item.ID, Data: data, PublishedAt: item.PublishedAt})
	}
	return public, nil
}
