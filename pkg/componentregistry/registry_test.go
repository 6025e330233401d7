package componentregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitewise/backend/pkg/constants"
)

func TestEmbeddedCatalogLoads(t *testing.T) {
	require.NoError(t, LoadError())

	reg := GetRegistry()
	assert.NotEmpty(t, reg.ListTypes())

	hero, ok := reg.GetType("hero")
	require.True(t, ok)
	assert.Equal(t, constants.ComponentStatusStable, hero.Status)
	assert.NotEmpty(t, hero.PropSchema)
}

func TestLoadRejectsEmptySlug(t *testing.T) {
	_, err := Load([]byte(`[{"slug": "", "version": "1.0.0", "status": "stable", "label": "X"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty slug")
}

func TestLoadRejectsDuplicateSlug(t *testing.T) {
	catalog := `[
		{"slug": "hero", "version": "1.0.0", "status": "stable", "label": "Hero"},
		{"slug": "hero", "version": "2.0.0", "status": "stable", "label": "Hero 2"}
	]`
	_, err := Load([]byte(catalog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate component slug 'hero'")
}

func TestLoadRejectsBadVersion(t *testing.T) {
	for _, version := range []string{"", "1", "1.0", "v1.0.0", "1.0.0-beta"} {
		_, err := Load([]byte(`[{"slug": "x", "version": "` + version + `", "status": "stable", "label": "X"}]`))
		assert.Error(t, err, "version %q should be rejected", version)
	}
}

func TestLoadRejectsUnknownStatus(t *testing.T) {
	_, err := Load([]byte(`[{"slug": "x", "version": "1.0.0", "status": "retired", "label": "X"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestListTypesPreservesCatalogOrder(t *testing.T) {
	catalog := `[
		{"slug": "b", "version": "1.0.0", "status": "stable", "label": "B"},
		{"slug": "a", "version": "1.0.0", "status": "stable", "label": "A"},
		{"slug": "c", "version": "1.0.0", "status": "stable", "label": "C"}
	]`
	reg, err := Load([]byte(catalog))
	require.NoError(t, err)

	types := reg.ListTypes()
	require.Len(t, types, 3)
	assert.Equal(t, "b", types[0].Slug)
	assert.Equal(t, "a", types[1].Slug)
	assert.Equal(t, "c", types[2].Slug)

	// Slugs() on the other hand is sorted
	assert.Equal(t, []string{"a", "b", "c"}, reg.Slugs())
}

func TestAvailableTypesExcludesDeprecated(t *testing.T) {
	catalog := `[
		{"slug": "keep", "version": "1.0.0", "status": "stable", "label": "Keep"},
		{"slug": "old", "version": "1.0.0", "status": "deprecated", "label": "Old"}
	]`
	reg, err := Load([]byte(catalog))
	require.NoError(t, err)

	available := reg.AvailableTypes()
	require.Len(t, available, 1)
	assert.Equal(t, "keep", available[0].Slug)

	// Deprecated types still resolve by slug, old content depends on it
	_, ok := reg.GetType("old")
	assert.True(t, ok)
}

func TestDefaultPreset(t *testing.T) {
	def := ComponentTypeDefinition{
		Presets: []Preset{
			{Name: "first", Props: map[string]interface{}{"a": 1}},
			{Name: "chosen", IsDefault: true, Props: map[string]interface{}{"b": 2}},
		},
	}
	preset := def.DefaultPreset()
	require.NotNil(t, preset)
	assert.Equal(t, "chosen", preset.Name)

	// Without an explicit default the first preset wins
	def.Presets[1].IsDefault = false
	assert.Equal(t, "first", def.DefaultPreset().Name)

	assert.Nil(t, ComponentTypeDefinition{}.DefaultPreset())
}
