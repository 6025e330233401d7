package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/utils"
)

// CollectionService manages collection definitions and their field schemas.
// Schema edits never touch stored item data; items written under an older
// schema keep their extra keys and are reconciled on read.
type CollectionService struct {
	collections *persistence.CollectionRepository
	items       *persistence.ItemRepository
	rules       *persistence.RuleRepository
	sites       *persistence.SiteRepository
	txManager   *persistence.TransactionManager
	validation  *ValidationService
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(collections *persistence.CollectionRepository, items *persistence.ItemRepository,
	rules *persistence.RuleRepository, sites *persistence.SiteRepository,
	txManager *persistence.TransactionManager, validation *ValidationService) *CollectionService {
	return &CollectionService{
		collections: collections,
		items:       items,
		rules:       rules,
		sites:       sites,
		txManager:   txManager,
		validation:  validation,
	}
}

// Create makes a new collection with the given field schema
func (s *CollectionService) Create(ctx context.Context, siteID, slug, name string, fields []models.CollectionField) (*models.Collection, error) {
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
	existing, err := s.collections.FindBySiteAndSlug(ctx, siteID, slug)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("Collection", "slug", slug)
	}

	if err := validateFields(fields); err != nil {
		return nil, err
	}

	now := time.Now()
	coll := &models.Collection{
		ID:        utils.GenerateID(),
		SiteID:    siteID,
		Slug:      slug,
		Name:      name,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.collections.Insert(ctx, coll); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Created collection %s (%s) with %d fields", coll.Name, coll.Slug, len(fields))
	return coll, nil
}

// Get returns one collection by ID
func (s *CollectionService) Get(ctx context.Context, id string) (*models.Collection, error) {
	coll, err := s.collections.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if coll == nil {
		return nil, errors.NewNotFoundError("Collection", id)
	}
	return coll, nil
}

// GetBySiteAndSlug returns one collection by its site and slug
func (s *CollectionService) GetBySiteAndSlug(ctx context.Context, siteID, slug string) (*models.Collection, error) {
	coll, err := s.collections.FindBySiteAndSlug(ctx, siteID, normalizeSlug(slug))
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if coll == nil {
		return nil, errors.NewNotFoundError("Collection", slug)
	}
	return coll, nil
}

// ListBySite returns all collections of a site
func (s *CollectionService) ListBySite(ctx context.Context, siteID string) ([]models.Collection, error) {
	return s.collections.ListBySite(ctx, siteID)
}

// UpdateSchema replaces a collection's field schema. Stored item data is not
// rewritten; the save-time validator reports drift as warnings instead.
func (s *CollectionService) UpdateSchema(ctx context.Context, id string, fields []models.CollectionField) (*models.Collection, error) {
	coll, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateFields(fields); err != nil {
		return nil, err
	}

	if err := s.collections.UpdateSchema(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("failed to update schema: %w", err)
	}
	coll.Fields = fields

	log.Printf("📐 Updated schema of collection %s (%d fields)", coll.Slug, len(fields))
	return coll, nil
}

// Delete removes a collection along with its items, revisions and rules
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	coll, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	items, err := s.items.ListByCollection(ctx, id)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	err = s.txManager.WithTransaction(func(tx *sql.Tx) error {
		for _, item := range items {
			if err := s.items.DeleteRevisionsTx(ctx, tx, item.ID); err != nil {
				return err
			}
			if err := s.items.Delete(ctx, tx, item.ID); err != nil {
				return err
			}
		}
		return s.collections.Delete(ctx, tx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	// Rules are not FK-bound; clean them up outside the item transaction
	rules, err := s.rules.ListByCollection(ctx, id)
	if err == nil {
		for _, rule := range rules {
			if err := s.rules.Delete(ctx, rule.ID); err != nil {
				log.Printf("⚠️ Failed to delete rule %s: %v", rule.ID, err)
			}
		}
	}

	log.Printf("🗑️ Deleted collection %s with %d items", coll.Slug, len(items))
	return nil
}

// CreateRule adds a validation rule to a collection after compiling its
// expression
func (s *CollectionService) CreateRule(ctx context.Context, collectionID, name, condition, errorMessage string) (*models.ValidationRule, error) {
	if _, err := s.Get(ctx, collectionID); err != nil {
		return nil, err
	}
	if err := s.validation.ValidateRuleCondition(condition); err != nil {
		return nil, err
	}
	if errorMessage == "" {
		errorMessage = fmt.Sprintf("Validation rule '%s' failed", name)
	}

	rule := &models.ValidationRule{
		ID:           utils.GenerateID(),
		CollectionID: collectionID,
		Name:         name,
		Active:       true,
		Condition:    condition,
		ErrorMessage: errorMessage,
	}
	if err := s.rules.Insert(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}
	return rule, nil
}

// UpdateRule changes a validation rule, recompiling the expression
func (s *CollectionService) UpdateRule(ctx context.Context, ruleID, name, condition, errorMessage string, active bool) (*models.ValidationRule, error) {
	rule, err := s.rules.FindOne(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if rule == nil {
		return nil, errors.NewNotFoundError("ValidationRule", ruleID)
	}
	if err := s.validation.ValidateRuleCondition(condition); err != nil {
		return nil, err
	}

	rule.Name = name
	rule.Condition = condition
	rule.ErrorMessage = errorMessage
	rule.Active = active
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes a validation rule
func (s *CollectionService) DeleteRule(ctx context.Context, ruleID string) error {
	rule, err := s.rules.FindOne(ctx, ruleID)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if rule == nil {
		return errors.NewNotFoundError("ValidationRule", ruleID)
	}
	return s.rules.Delete(ctx, ruleID)
}

// ListRules returns a collection's validation rules
func (s *CollectionService) ListRules(ctx context.Context, collectionID string) ([]models.ValidationRule, error) {
	if _, err := s.Get(ctx, collectionID); err != nil {
		return nil, err
	}
	return s.rules.ListByCollection(ctx, collectionID)
}

// validateFields checks a field schema: non-empty unique keys, known types,
// options present where the type needs them
func validateFields(fields []models.CollectionField) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			return errors.NewValidationError("fields", "Field key is required")
		}
		if seen[f.Key] {
			return errors.NewValidationError("fields", fmt.Sprintf("Duplicate field key '%s'", f.Key))
		}
		seen[f.Key] = true

		if !constants.ValidCollectionFieldTypes[f.Type] {
			return errors.NewValidationError(f.Key, fmt.Sprintf("Unknown field type '%s'", f.Type))
		}
		needsOptions := f.Type == constants.FieldTypeSelect || f.Type == constants.FieldTypeMultiSelect
		if needsOptions && len(f.Options) == 0 {
			return errors.NewValidationError(f.Key, fmt.Sprintf("Field '%s' needs at least one option", f.Key))
		}
	}
	return nil
}
