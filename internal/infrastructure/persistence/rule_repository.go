package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/constants"
)

// RuleRepository handles persistence for collection validation rules
type RuleRepository struct {
	db *sql.DB
}

// NewRuleRepository creates a new RuleRepository
func NewRuleRepository(db *sql.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

// Insert creates a new validation rule
func (r *RuleRepository) Insert(ctx context.Context, rule *models.ValidationRule) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, collection_id, name, active, cond, error_message)
		VALUES (?, ?, ?, ?, ?, ?)`, constants.TableValidationRule)

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.CollectionID, rule.Name, rule.Active, rule.Condition, rule.ErrorMessage)
	return err
}

// Update replaces a rule's definition
func (r *RuleRepository) Update(ctx context.Context, rule *models.ValidationRule) error {
	query := fmt.Sprintf(`
		UPDATE %s SET name = ?, active = ?, cond = ?, error_message = ?
		WHERE id = ?`, constants.TableValidationRule)

	_, err := r.db.ExecContext(ctx, query,
		rule.Name, rule.Active, rule.Condition, rule.ErrorMessage, rule.ID)
	return err
}

// Delete removes a rule
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", constants.TableValidationRule)
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// FindOne retrieves a rule by ID
func (r *RuleRepository) FindOne(ctx context.Context, id string) (*models.ValidationRule, error) {
	query := fmt.Sprintf(`
		SELECT id, collection_id, name, active, cond, error_message
		FROM %s WHERE id = ? LIMIT 1`, constants.TableValidationRule)

	var rule models.ValidationRule
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rule.ID, &rule.CollectionID, &rule.Name, &rule.Active, &rule.Condition, &rule.ErrorMessage)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListByCollection returns all rules of a collection
func (r *RuleRepository) ListByCollection(ctx context.Context, collectionID string) ([]models.ValidationRule, error) {
	query := fmt.Sprintf(`
		SELECT id, collection_id, name, active, cond, error_message
		FROM %s WHERE collection_id = ? ORDER BY name`, constants.TableValidationRule)

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]models.ValidationRule, 0)
	for rows.Next() {
		var rule models.ValidationRule
		if err := rows.Scan(&rule.ID, &rule.CollectionID, &rule.Name, &rule.Active, &rule.Condition, &rule.ErrorMessage); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}
