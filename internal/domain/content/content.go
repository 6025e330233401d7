// Package content implements the builder-content envelope: the strict write
// validator, the permissive read guard, legacy-shape resolution and the
// registry compatibility checker.
package content

import "encoding/json"

// CurrentSchemaVersion is the envelope format version this build writes and
// the highest version it accepts. Envelopes from a newer build are refused on
// write; auto-upgrading an unknown future format is never attempted.
const CurrentSchemaVersion = 1

// ContentBlock is one component instance on a page
type ContentBlock struct {
	Type  string                 `json:"type"`
	Props map[string]interface{} `json:"props"`
}

// ID returns the block's instance id from props
func (b ContentBlock) ID() string {
	if b.Props == nil {
		return ""
	}
	id, _ := b.Props["id"].(string)
	return id
}

// PuckData is the inner payload of the envelope
type PuckData struct {
	Content []ContentBlock            `json:"content"`
	Root    map[string]interface{}    `json:"root"`
	Zones   map[string][]ContentBlock `json:"zones,omitempty"`
}

// BuilderContent is the versioned envelope around builder content. The
// schemaVersion tracks the envelope format, not any individual component.
type BuilderContent struct {
	SchemaVersion int      `json:"schemaVersion"`
	Data          PuckData `json:"data"`
}

// Serialize marshals the envelope for storage
func (c BuilderContent) Serialize() (json.RawMessage, error) {
	return json.Marshal(c)
}

// AllBlocks returns root content followed by zone blocks, flattened
func (c BuilderContent) AllBlocks() []ContentBlock {
	blocks := make([]ContentBlock, 0, len(c.Data.Content))
	blocks = append(blocks, c.Data.Content...)
	for _, zoneKey := range sortedZoneKeys(c.Data.Zones) {
		blocks = append(blocks, c.Data.Zones[zoneKey]...)
	}
	return blocks
}

// EmptyContent returns a valid empty envelope at the current format version
func EmptyContent() BuilderContent {
	return BuilderContent{
		SchemaVersion: CurrentSchemaVersion,
		Data: PuckData{
			Content: []ContentBlock{},
			Root:    map[string]interface{}{},
		},
	}
}
