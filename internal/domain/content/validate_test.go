package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func block(id, blockType string) map[string]interface{} {
	return map[string]interface{}{
		"type":  blockType,
		"props": map[string]interface{}{"id": id},
	}
}

func envelope(blocks ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, len(blocks))
	for i, b := range blocks {
		items[i] = b
	}
	return map[string]interface{}{
		"schemaVersion": float64(CurrentSchemaVersion),
		"data": map[string]interface{}{
			"content": items,
			"root":    map[string]interface{}{},
		},
	}
}

func TestValidateAcceptsWellFormedEnvelope(t *testing.T) {
	result := Validate(envelope(block("a", "hero"), block("b", "text-block")))

	require.True(t, result.Valid, result.Error)
	require.NotNil(t, result.Content)
	assert.Equal(t, CurrentSchemaVersion, result.Content.SchemaVersion)
	assert.Len(t, result.Content.Data.Content, 2)
	assert.Equal(t, "hero", result.Content.Data.Content[0].Type)
	assert.Equal(t, "a", result.Content.Data.Content[0].ID())
}

func TestValidateAcceptsEmptyContent(t *testing.T) {
	result := Validate(envelope())
	require.True(t, result.Valid, result.Error)
	assert.Empty(t, result.Content.Data.Content)
}

func TestValidateRejectsNonObject(t *testing.T) {
	for _, raw := range []interface{}{nil, "a string", 42, []interface{}{}} {
		result := Validate(raw)
		assert.False(t, result.Valid)
		assert.Equal(t, "Content must be an object", result.Error)
	}
}

func TestValidateRejectsMissingVersionOrData(t *testing.T) {
	cases := []map[string]interface{}{
		{"data": map[string]interface{}{"content": []interface{}{}}},
		{"schemaVersion": float64(1)},
		{"schemaVersion": "1", "data": map[string]interface{}{"content": []interface{}{}}},
		{"schemaVersion": float64(1), "data": nil},
	}
	for _, raw := range cases {
		result := Validate(raw)
		assert.False(t, result.Valid)
		assert.Equal(t, "Missing schemaVersion or data", result.Error)
	}
}

func TestValidateRejectsNewerVersion(t *testing.T) {
	raw := envelope()
	raw["schemaVersion"] = float64(CurrentSchemaVersion + 1)

	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Contains(t, result.Error, "newer than supported version")
}

func TestValidateRejectsContentNotArray(t *testing.T) {
	raw := map[string]interface{}{
		"schemaVersion": float64(1),
		"data":          map[string]interface{}{"content": "nope"},
	}
	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "data.content must be an array", result.Error)
}

func TestValidateRejectsItemWithoutType(t *testing.T) {
	b := block("a", "hero")
	delete(b, "type")
	result := Validate(envelope(b))
	require.False(t, result.Valid)
	assert.Equal(t, "Content item 0 is missing a type", result.Error)
}

func TestValidateRejectsItemWithoutPropsID(t *testing.T) {
	b := map[string]interface{}{
		"type":  "hero",
		"props": map[string]interface{}{"title": "x"},
	}
	result := Validate(envelope(block("a", "hero"), b))
	require.False(t, result.Valid)
	assert.Equal(t, "Content item 1 is missing props.id", result.Error)
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	result := Validate(envelope(block("dup", "hero"), block("dup", "text-block")))
	require.False(t, result.Valid)
	assert.Equal(t, "Content item 1 has duplicate props.id 'dup'", result.Error)
}

func withZone(raw map[string]interface{}, name string, blocks ...map[string]interface{}) map[string]interface{} {
	items := make([]interface{}, len(blocks))
	for i, b := range blocks {
		items[i] = b
	}
	data := raw["data"].(map[string]interface{})
	zones, ok := data["zones"].(map[string]interface{})
	if !ok {
		zones = map[string]interface{}{}
		data["zones"] = zones
	}
	zones[name] = items
	return raw
}

func TestValidateAcceptsZones(t *testing.T) {
	raw := withZone(envelope(block("a", "hero")), "sidebar", block("b", "text-block"))

	result := Validate(raw)
	require.True(t, result.Valid, result.Error)
	require.NotNil(t, result.Content)
	assert.Len(t, result.Content.Data.Zones["sidebar"], 1)
}

func TestValidateRejectsDuplicateIDAcrossZones(t *testing.T) {
	raw := withZone(envelope(block("dup", "hero")), "sidebar", block("dup", "text-block"))

	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "Zone 'sidebar' item 0 has duplicate props.id 'dup'", result.Error)

	// Duplicates between two zones are caught the same way
	raw = withZone(withZone(envelope(), "header", block("x", "hero")), "sidebar", block("x", "text-block"))
	result = Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "Zone 'sidebar' item 0 has duplicate props.id 'x'", result.Error)
}

func TestValidateRejectsMalformedZoneBlocks(t *testing.T) {
	raw := withZone(envelope(block("a", "hero")), "sidebar", map[string]interface{}{"props": map[string]interface{}{"id": "b"}})
	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "Zone 'sidebar' item 0 is missing a type", result.Error)

	raw = withZone(envelope(), "sidebar", map[string]interface{}{"type": "hero", "props": map[string]interface{}{}})
	result = Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "Zone 'sidebar' item 0 is missing props.id", result.Error)
}

func TestValidateRejectsNonArrayZone(t *testing.T) {
	raw := envelope(block("a", "hero"))
	raw["data"].(map[string]interface{})["zones"] = map[string]interface{}{"sidebar": "nope"}
	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "Zone 'sidebar' must be an array", result.Error)

	raw = envelope(block("a", "hero"))
	raw["data"].(map[string]interface{})["zones"] = "nope"
	result = Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "data.zones must be an object", result.Error)
}

func TestValidateRejectsNonObjectRoot(t *testing.T) {
	raw := envelope(block("a", "hero"))
	raw["data"].(map[string]interface{})["root"] = "not an object"
	result := Validate(raw)
	require.False(t, result.Valid)
	assert.Equal(t, "data.root must be an object", result.Error)
}

func TestValidateRawRoundTrip(t *testing.T) {
	original := Validate(envelope(block("a", "hero")))
	require.True(t, original.Valid)

	serialized, err := original.Content.Serialize()
	require.NoError(t, err)

	restored := ValidateRaw(serialized)
	require.True(t, restored.Valid, restored.Error)
	assert.Equal(t, original.Content.SchemaVersion, restored.Content.SchemaVersion)
	assert.Equal(t, original.Content.Data.Content, restored.Content.Data.Content)
}

func TestValidateRawRejectsBadJSON(t *testing.T) {
	result := ValidateRaw(json.RawMessage(`{"schemaVersion": `))
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "not valid JSON")
}

func TestIsBuilderContentLooseGuard(t *testing.T) {
	// The read guard accepts envelopes the strict validator would reject
	sloppy := map[string]interface{}{
		"schemaVersion": float64(1),
		"data":          map[string]interface{}{"content": "not an array"},
	}
	assert.True(t, IsBuilderContent(sloppy))

	assert.True(t, IsBuilderContent(envelope()))
	assert.False(t, IsBuilderContent(nil))
	assert.False(t, IsBuilderContent(map[string]interface{}{"content": []interface{}{}}))
	assert.False(t, IsBuilderContent(map[string]interface{}{"schemaVersion": "1", "data": map[string]interface{}{}}))
}

func TestValidateAcceptsRawBytes(t *testing.T) {
	raw := []byte(`{"schemaVersion":1,"data":{"content":[],"root":{}}}`)
	result := Validate(raw)
	require.True(t, result.Valid, result.Error)
}
