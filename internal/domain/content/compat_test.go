package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedEnvelope(t *testing.T, blocks ...map[string]interface{}) BuilderContent {
	t.Helper()
	result := Validate(envelope(blocks...))
	require.True(t, result.Valid, result.Error)
	return *result.Content
}

func TestCheckCompatibilityAllKnown(t *testing.T) {
	c := parsedEnvelope(t, block("a", "hero"), block("b", "text-block"))

	result := CheckCompatibility(c, []string{"hero", "text-block", "image"})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}

func TestCheckCompatibilityUnknownTypeWarnsOnly(t *testing.T) {
	c := parsedEnvelope(t, block("a", "hero"), block("b", "carousel"))

	result := CheckCompatibility(c, []string{"hero"})
	assert.False(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Unknown component type 'carousel'", result.Warnings[0])
}

func TestCheckCompatibilityOneWarningPerBlock(t *testing.T) {
	c := parsedEnvelope(t, block("a", "old-1"), block("b", "old-2"), block("c", "old-1"))

	result := CheckCompatibility(c, nil)
	assert.Len(t, result.Warnings, 3)
}

func TestCheckCompatibilityNewerVersionWarns(t *testing.T) {
	c := parsedEnvelope(t, block("a", "hero"))
	c.SchemaVersion = CurrentSchemaVersion + 5

	result := CheckCompatibility(c, []string{"hero"})
	assert.False(t, result.Valid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "newer than the current version")
}

func TestCheckCompatibilityCoversZones(t *testing.T) {
	c := parsedEnvelope(t, block("a", "hero"))
	c.Data.Zones = map[string][]ContentBlock{
		"sidebar": {{Type: "gone", Props: map[string]interface{}{"id": "z1"}}},
	}

	result := CheckCompatibility(c, []string{"hero"})
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Unknown component type 'gone'", result.Warnings[0])
}
