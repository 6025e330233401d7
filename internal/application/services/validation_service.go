package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/expression"
	"github.com/sitewise/backend/pkg/utils"
)

// ValidationService checks collection item data against the collection schema
// and evaluates expression-based validation rules on save.
type ValidationService struct {
	engine *expression.Engine
	rules  *persistence.RuleRepository
}

// NewValidationService creates a new ValidationService
func NewValidationService(engine *expression.Engine, rules *persistence.RuleRepository) *ValidationService {
	return &ValidationService{engine: engine, rules: rules}
}

// ValidateItemData checks item data against the collection schema, then runs
// the collection's active validation rules. Schema violations and failed
// rules return an error; keys not in the schema are kept and only reported
// as warnings, so a schema edit never silently drops stored data.
func (s *ValidationService) ValidateItemData(ctx context.Context, coll *models.Collection, data map[string]interface{}) ([]string, error) {
	warnings := []string{}

	for _, field := range coll.Fields {
		value, present := data[field.Key]
		if !present || value == nil {
			if field.Required {
				return warnings, errors.NewValidationError(field.Key, fmt.Sprintf("Field '%s' is required", field.Label))
			}
			continue
		}
		if err := checkFieldValue(field, value); err != nil {
			return warnings, err
		}
	}

	for key := range data {
		if _, ok := coll.FieldByKey(key); !ok {
			warnings = append(warnings, fmt.Sprintf("Field '%s' is not in the collection schema", key))
		}
	}

	if err := s.evaluateRules(ctx, coll.ID, data); err != nil {
		return warnings, err
	}
	return warnings, nil
}

// evaluateRules runs every active rule of the collection against the item
// data. A rule that fails to evaluate is skipped with a warning; a broken
// expression must not lock editors out of their content.
func (s *ValidationService) evaluateRules(ctx context.Context, collectionID string, data map[string]interface{}) error {
	rules, err := s.rules.ListByCollection(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("failed to load validation rules: %w", err)
	}

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		ok, err := s.engine.EvaluateCondition(rule.Condition, data)
		if err != nil {
			log.Printf("⚠️ Validation rule '%s' failed to evaluate: %v", rule.Name, err)
			continue
		}
		if !ok {
			return errors.NewValidationError(rule.Name, rule.ErrorMessage)
		}
	}
	return nil
}

// ValidateRuleCondition compiles a rule expression without evaluating it
func (s *ValidationService) ValidateRuleCondition(condition string) error {
	if err := s.engine.Validate(condition); err != nil {
		return errors.NewValidationError("condition", fmt.Sprintf("Invalid expression: %v", err))
	}
	return nil
}

func checkFieldValue(field models.CollectionField, value interface{}) error {
	switch field.Type {
	case constants.FieldTypeText, constants.FieldTypeRichText:
		if _, ok := value.(string); !ok {
			return typeError(field, "a string")
		}
	case constants.FieldTypeNumber:
		if _, ok := utils.ToFloat(value); !ok {
			return typeError(field, "a number")
		}
	case constants.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return typeError(field, "a boolean")
		}
	case constants.FieldTypeDate:
		str, ok := value.(string)
		if !ok || !parseableDate(str) {
			return typeError(field, "an ISO date")
		}
	case constants.FieldTypeSelect:
		str, ok := value.(string)
		if !ok {
			return typeError(field, "a string")
		}
		if !contains(field.Options, str) {
			return errors.NewValidationError(field.Key, fmt.Sprintf("Value '%s' is not an option of '%s'", str, field.Label))
		}
	case constants.FieldTypeMultiSelect:
		items, ok := value.([]interface{})
		if !ok {
			return typeError(field, "an array")
		}
		for _, item := range items {
			str, ok := item.(string)
			if !ok || !contains(field.Options, str) {
				return errors.NewValidationError(field.Key, fmt.Sprintf("Value '%v' is not an option of '%s'", item, field.Label))
			}
		}
	}
	return nil
}

func typeError(field models.CollectionField, expected string) error {
	return errors.NewValidationError(field.Key, fmt.Sprintf("Field '%s' must be %s", field.Label, expected))
}

func parseableDate(s string) bool {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func contains(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
