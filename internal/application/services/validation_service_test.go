package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/internal/infrastructure/persistence"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/errors"
	"github.com/sitewise/backend/pkg/expression"
)

func newValidationService(t *testing.T) (*ValidationService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewValidationService(expression.NewEngine(), persistence.NewRuleRepository(db))
	return svc, mock, func() { db.Close() }
}

func ruleColumns() []string {
	return []string{"id", "collection_id", "name", "active", "cond", "error_message"}
}

func expectNoRules(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT id, collection_id, name, active, cond, error_message").
		WillReturnRows(sqlmock.NewRows(ruleColumns()))
}

func postsCollection() *models.Collection {
	return &models.Collection{
		ID:     "coll-1",
		SiteID: "site-1",
		Slug:   "posts",
		Name:   "Posts",
		Fields: []models.CollectionField{
			{Key: "title", Label: "Title", Type: constants.FieldTypeText, Required: true},
			{Key: "price", Label: "Price", Type: constants.FieldTypeNumber},
			{Key: "live", Label: "Live", Type: constants.FieldTypeBoolean},
			{Key: "published_on", Label: "Published On", Type: constants.FieldTypeDate},
			{Key: "category", Label: "Category", Type: constants.FieldTypeSelect, Options: []string{"news", "opinion"}},
			{Key: "tags", Label: "Tags", Type: constants.FieldTypeMultiSelect, Options: []string{"go", "web"}},
		},
	}
}

func TestValidateItemDataAcceptsWellTyped(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()
	expectNoRules(mock)

	warnings, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"title":        "Hello",
		"price":        12.5,
		"live":         true,
		"published_on": "2026-08-30",
		"category":     "news",
		"tags":         []interface{}{"go", "web"},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateItemDataRequiredField(t *testing.T) {
	svc, _, cleanup := newValidationService(t)
	defer cleanup()

	_, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"price": 1.0,
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Contains(t, err.Error(), "required")
}

func TestValidateItemDataTypeMismatches(t *testing.T) {
	svc, _, cleanup := newValidationService(t)
	defer cleanup()

	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"text gets number", map[string]interface{}{"title": 42}},
		{"number gets string", map[string]interface{}{"title": "t", "price": "cheap"}},
		{"boolean gets string", map[string]interface{}{"title": "t", "live": "yes"}},
		{"date not parseable", map[string]interface{}{"title": "t", "published_on": "yesterday"}},
		{"select outside options", map[string]interface{}{"title": "t", "category": "sports"}},
		{"multiselect not array", map[string]interface{}{"title": "t", "tags": "go"}},
		{"multiselect bad member", map[string]interface{}{"title": "t", "tags": []interface{}{"go", "rust"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateItemData(context.Background(), postsCollection(), tt.data)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestValidateItemDataDateFormats(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()
	expectNoRules(mock)
	expectNoRules(mock)

	for _, value := range []string{"2026-08-30", "2026-08-30T12:00:00Z"} {
		_, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
			"title":        "t",
			"published_on": value,
		})
		assert.NoError(t, err, value)
	}
}

func TestValidateItemDataUnknownKeysWarnOnly(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()
	expectNoRules(mock)

	warnings, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"title":     "Hello",
		"old_field": "kept around",
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "old_field")
	assert.Contains(t, warnings[0], "not in the collection schema")
}

func TestValidateItemDataFailingRuleBlocksSave(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, collection_id, name, active, cond, error_message").
		WillReturnRows(sqlmock.NewRows(ruleColumns()).
			AddRow("rule-1", "coll-1", "title-length", true, `LEN(title) >= 3`, "Title too short"))

	_, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"title": "ab",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title too short")
}

func TestValidateItemDataInactiveRuleIgnored(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, collection_id, name, active, cond, error_message").
		WillReturnRows(sqlmock.NewRows(ruleColumns()).
			AddRow("rule-1", "coll-1", "title-length", false, `LEN(title) >= 3`, "Title too short"))

	_, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"title": "ab",
	})
	assert.NoError(t, err)
}

func TestValidateItemDataBrokenRuleSkipped(t *testing.T) {
	svc, mock, cleanup := newValidationService(t)
	defer cleanup()

	// LEN on a number fails at evaluation time; the save must still go through.
	mock.ExpectQuery("SELECT id, collection_id, name, active, cond, error_message").
		WillReturnRows(sqlmock.NewRows(ruleColumns()).
			AddRow("rule-1", "coll-1", "bad-rule", true, `LEN(price) > 0`, "never fires"))

	_, err := svc.ValidateItemData(context.Background(), postsCollection(), map[string]interface{}{
		"title": "Hello",
		"price": 10.0,
	})
	assert.NoError(t, err)
}

func TestValidateRuleCondition(t *testing.T) {
	svc, _, cleanup := newValidationService(t)
	defer cleanup()

	assert.NoError(t, svc.ValidateRuleCondition(`LEN(title) >= 3`))

	err := svc.ValidateRuleCondition(`title >`)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
