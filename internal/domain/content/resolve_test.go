package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownSet(slugs ...string) func(string) bool {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(slug string) bool { return set[slug] }
}

func TestResolveContentKeepsKnownBlocks(t *testing.T) {
	resolved := ResolveContent(envelope(block("a", "hero"), block("b", "text-block")), knownSet("hero", "text-block"))

	require.Len(t, resolved, 2)
	assert.True(t, resolved[0].Known)
	assert.Empty(t, resolved[0].Placeholder)
	assert.Equal(t, "hero", resolved[0].Block.Type)
}

func TestResolveContentPlaceholdsUnknownBlocks(t *testing.T) {
	resolved := ResolveContent(envelope(block("a", "hero"), block("b", "carousel")), knownSet("hero"))

	require.Len(t, resolved, 2)
	assert.True(t, resolved[0].Known)
	assert.False(t, resolved[1].Known)
	assert.Equal(t, "Unknown component: carousel", resolved[1].Placeholder)
	// The block itself is preserved, nothing is dropped
	assert.Equal(t, "carousel", resolved[1].Block.Type)
	assert.Equal(t, "b", resolved[1].Block.ID())
}

func TestResolveContentLegacyBareShape(t *testing.T) {
	legacy := map[string]interface{}{
		"content": []interface{}{block("a", "hero"), block("b", "faq")},
	}
	resolved := ResolveContent(legacy, knownSet("hero", "faq"))

	require.Len(t, resolved, 2)
	assert.Equal(t, "hero", resolved[0].Block.Type)
	assert.Equal(t, "faq", resolved[1].Block.Type)
}

func TestResolveContentIncludesZones(t *testing.T) {
	raw := envelope(block("a", "hero"))
	raw["data"].(map[string]interface{})["zones"] = map[string]interface{}{
		"sidebar": []interface{}{block("z1", "text-block")},
	}
	resolved := ResolveContent(raw, knownSet("hero", "text-block"))

	require.Len(t, resolved, 2)
	assert.Equal(t, "hero", resolved[0].Block.Type)
	assert.Equal(t, "text-block", resolved[1].Block.Type)
}

func TestResolveContentZoneOrderIsDeterministic(t *testing.T) {
	raw := envelope()
	raw["data"].(map[string]interface{})["zones"] = map[string]interface{}{
		"b-zone": []interface{}{block("b1", "faq")},
		"a-zone": []interface{}{block("a1", "hero")},
	}

	for i := 0; i < 5; i++ {
		resolved := ResolveContent(raw, knownSet("hero", "faq"))
		require.Len(t, resolved, 2)
		assert.Equal(t, "a1", resolved[0].Block.ID())
		assert.Equal(t, "b1", resolved[1].Block.ID())
	}
}

func TestResolveContentUnrecognizableInput(t *testing.T) {
	assert.Empty(t, ResolveContent(nil, knownSet()))
	assert.Empty(t, ResolveContent("garbage", knownSet()))
	assert.Empty(t, ResolveContent(map[string]interface{}{"something": "else"}, knownSet()))
}
