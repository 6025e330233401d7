package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSelectDefaults(t *testing.T) {
	q := From("_Page").Build()
	assert.Equal(t, "SELECT * FROM _Page", q.SQL)
	assert.Empty(t, q.Params)
}

func TestBuildSelectFull(t *testing.T) {
	q := From("_Page").
		Select([]string{"id", "slug"}).
		Where("site_id = ?", "site-1").
		Where("status = ?", "PUBLISHED").
		OrderBy("created_at", "DESC").
		Limit(10).
		Build()

	assert.Equal(t, "SELECT id, slug FROM _Page WHERE site_id = ? AND status = ? ORDER BY created_at DESC LIMIT 10", q.SQL)
	assert.Equal(t, []interface{}{"site-1", "PUBLISHED"}, q.Params)
}

func TestBuildInsertDeterministicColumnOrder(t *testing.T) {
	values := map[string]interface{}{
		"slug":    "home",
		"id":      "page-1",
		"site_id": "site-1",
	}

	for i := 0; i < 10; i++ {
		q := Insert("_Page", values).Build()
		assert.Equal(t, "INSERT INTO _Page (id, site_id, slug) VALUES (?, ?, ?)", q.SQL)
		assert.Equal(t, []interface{}{"page-1", "site-1", "home"}, q.Params)
	}
}

func TestBuildUpdateSetBeforeWhereParams(t *testing.T) {
	q := Update("_Page").
		Set(map[string]interface{}{"title": "Home", "slug": "home"}).
		Where("id = ?", "page-1").
		Build()

	assert.Equal(t, "UPDATE _Page SET slug = ?, title = ? WHERE id = ?", q.SQL)
	assert.Equal(t, []interface{}{"home", "Home", "page-1"}, q.Params)
}

func TestBuildDelete(t *testing.T) {
	q := Delete("_PageRevision").
		Where("document_id = ?", "page-1").
		OrderBy("version", "ASC").
		Limit(1).
		Build()

	assert.Equal(t, "DELETE FROM _PageRevision WHERE document_id = ? ORDER BY version ASC LIMIT 1", q.SQL)
	assert.Equal(t, []interface{}{"page-1"}, q.Params)
}

func TestBuildDeleteWithoutWhere(t *testing.T) {
	q := Delete("_Session").Build()
	assert.Equal(t, "DELETE FROM _Session", q.SQL)
	assert.Empty(t, q.Params)
}
