package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDProducesUniqueUUIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.True(t, IsValidUUID(id), id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("v3"))
	assert.False(t, IsValidUUID("not-a-uuid"))
}
