package content

import (
	"encoding/json"
	"fmt"
)

// ResolvedBlock is one block prepared for rendering. Unknown component types
// are kept with a visible placeholder - silent data loss is worse than a
// visible gap.
type ResolvedBlock struct {
	Block       ContentBlock `json:"block"`
	Known       bool         `json:"known"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// ResolveContent normalizes stored content to a flat ordered list of blocks
// ready for rendering. It accepts either a versioned envelope or the bare
// legacy `{content: [...]}` shape written before the envelope existed.
// isKnown reports whether a slug resolves in the current registry.
func ResolveContent(raw interface{}, isKnown func(slug string) bool) []ResolvedBlock {
	blocks := extractBlocks(raw)

	resolved := make([]ResolvedBlock, 0, len(blocks))
	for _, block := range blocks {
		rb := ResolvedBlock{Block: block, Known: isKnown(block.Type)}
		if !rb.Known {
			rb.Placeholder = fmt.Sprintf("Unknown component: %s", block.Type)
		}
		resolved = append(resolved, rb)
	}
	return resolved
}

func extractBlocks(raw interface{}) []ContentBlock {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}

	// Envelope shape: blocks under data.content (+ zones)
	if IsBuilderContent(obj) {
		parsed, err := toBuilderContent(obj)
		if err != nil {
			return nil
		}
		return parsed.AllBlocks()
	}

	// Legacy pre-envelope shape: a bare {content: [...]}
	legacyItems, ok := obj["content"].([]interface{})
	if !ok {
		return nil
	}
	blocks := make([]ContentBlock, 0, len(legacyItems))
	for _, item := range legacyItems {
		itemObj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		encoded, err := json.Marshal(itemObj)
		if err != nil {
			continue
		}
		var block ContentBlock
		if err := json.Unmarshal(encoded, &block); err != nil || block.Type == "" {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}
