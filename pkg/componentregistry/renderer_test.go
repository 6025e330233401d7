package componentregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Registry {
	t.Helper()
	catalog := `[
		{
			"slug": "hero",
			"version": "1.0.0",
			"status": "stable",
			"label": "Hero",
			"prop_schema": [
				{"name": "title", "type": "string", "default": "Untitled"},
				{"name": "items", "type": "array", "default": "[\"a\",\"b\"]"}
			],
			"presets": [
				{"name": "standard", "is_default": true, "props": {"title": "Welcome"}}
			]
		},
		{"slug": "old", "version": "1.0.0", "status": "deprecated", "label": "Old"}
	]`
	reg, err := Load([]byte(catalog))
	require.NoError(t, err)
	return reg
}

func TestToRendererConfigSkipsDeprecatedAndUnbound(t *testing.T) {
	reg := testCatalog(t)
	bindings := map[string]RenderBinding{
		"hero": {Component: "Hero"},
		"old":  {Component: "Old"},
	}

	config := ToRendererConfig(reg, bindings)
	require.Len(t, config.Entries, 1)
	assert.Equal(t, "Hero", config.Entries["hero"].Binding.Component)

	// No binding for hero: it is skipped, not fatal
	config = ToRendererConfig(reg, map[string]RenderBinding{})
	assert.Empty(t, config.Entries)
}

func TestDefaultPropsPresetWinsOverFieldDefault(t *testing.T) {
	reg := testCatalog(t)
	hero, _ := reg.GetType("hero")

	props := DefaultProps(hero)
	assert.Equal(t, "Welcome", props["title"])
	assert.Equal(t, []interface{}{"a", "b"}, props["items"])
}

func TestNormalizeDefaultBadJSONDegrades(t *testing.T) {
	field := PropField{Name: "items", Type: "array", Default: "not json"}
	assert.Equal(t, []interface{}{}, normalizeDefault(field))

	field = PropField{Name: "config", Type: "object", Default: "{broken"}
	assert.Equal(t, map[string]interface{}{}, normalizeDefault(field))

	// Non-string defaults pass through untouched
	field = PropField{Name: "count", Type: "number", Default: float64(3)}
	assert.Equal(t, float64(3), normalizeDefault(field))
}

func TestDefaultBindingsPascalCase(t *testing.T) {
	assert.Equal(t, "PricingTable", pascalCase("pricing-table"))
	assert.Equal(t, "Hero", pascalCase("hero"))
	assert.Equal(t, "TextBlock", pascalCase("text-block"))
}
