package content

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ValidationResult is the outcome of strict envelope validation. Structural
// problems come back as data, never as a thrown error; callers must check
// Valid before persisting.
type ValidationResult struct {
	Valid   bool            `json:"valid"`
	Content *BuilderContent `json:"content,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func invalid(format string, args ...interface{}) ValidationResult {
	return ValidationResult{Valid: false, Error: fmt.Sprintf(format, args...)}
}

// Validate is the strict write-time validator. Checks run in order and
// short-circuit on the first failure:
//  1. raw is an object
//  2. schemaVersion (number) and data are both present
//  3. schemaVersion is not newer than this build supports
//  4. data is an object with data.content as an array
//  5. every block in data.content and data.zones has type (string) and
//     props.id (string)
//  6. data.root, if present, is an object
//
// Additionally every props.id must be unique within the document, zone
// blocks included.
func Validate(raw interface{}) ValidationResult {
	obj, ok := asObject(raw)
	if !ok {
		return invalid("Content must be an object")
	}

	versionVal, hasVersion := obj["schemaVersion"]
	dataVal, hasData := obj["data"]
	version, versionIsNumber := asNumber(versionVal)
	if !hasVersion || !versionIsNumber || !hasData || dataVal == nil {
		return invalid("Missing schemaVersion or data")
	}

	if int(version) > CurrentSchemaVersion {
		return invalid("Content schemaVersion %d is newer than supported version %d", int(version), CurrentSchemaVersion)
	}

	data, ok := dataVal.(map[string]interface{})
	if !ok {
		return invalid("data must be an object")
	}
	contentVal, hasContent := data["content"]
	items, ok := contentVal.([]interface{})
	if !hasContent || !ok {
		return invalid("data.content must be an array")
	}

	seen := make(map[string]bool, len(items))
	for i, item := range items {
		if res, ok := checkBlock(item, fmt.Sprintf("Content item %d", i), seen); !ok {
			return res
		}
	}

	// Zone blocks belong to the same document, so they go through the same
	// checks and share the props.id uniqueness set.
	if zonesVal, hasZones := data["zones"]; hasZones && zonesVal != nil {
		zones, ok := zonesVal.(map[string]interface{})
		if !ok {
			return invalid("data.zones must be an object")
		}
		names := make([]string, 0, len(zones))
		for name := range zones {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			zoneItems, ok := zones[name].([]interface{})
			if !ok {
				return invalid("Zone '%s' must be an array", name)
			}
			for i, item := range zoneItems {
				if res, ok := checkBlock(item, fmt.Sprintf("Zone '%s' item %d", name, i), seen); !ok {
					return res
				}
			}
		}
	}

	if rootVal, hasRoot := data["root"]; hasRoot && rootVal != nil {
		if _, ok := rootVal.(map[string]interface{}); !ok {
			return invalid("data.root must be an object")
		}
	}

	parsed, err := toBuilderContent(obj)
	if err != nil {
		return invalid("Failed to decode content: %v", err)
	}
	return ValidationResult{Valid: true, Content: parsed}
}

func checkBlock(item interface{}, label string, seen map[string]bool) (ValidationResult, bool) {
	block, ok := item.(map[string]interface{})
	if !ok {
		return invalid("%s is not an object", label), false
	}
	blockType, ok := block["type"].(string)
	if !ok || blockType == "" {
		return invalid("%s is missing a type", label), false
	}
	props, ok := block["props"].(map[string]interface{})
	if !ok {
		return invalid("%s is missing props", label), false
	}
	id, ok := props["id"].(string)
	if !ok || id == "" {
		return invalid("%s is missing props.id", label), false
	}
	if seen[id] {
		return invalid("%s has duplicate props.id '%s'", label, id), false
	}
	seen[id] = true
	return ValidationResult{}, true
}

// ValidateRaw decodes a stored JSON blob and runs strict validation
func ValidateRaw(raw json.RawMessage) ValidationResult {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return invalid("Content is not valid JSON: %v", err)
	}
	return Validate(decoded)
}

// IsBuilderContent is the permissive read-time guard: it only checks that the
// value looks like an envelope (schemaVersion number + data present). Render
// paths prefer tolerance over strictness so a write-side bug can never make
// historical published content unrenderable.
func IsBuilderContent(x interface{}) bool {
	obj, ok := asObject(x)
	if !ok {
		return false
	}
	if _, isNumber := asNumber(obj["schemaVersion"]); !isNumber {
		return false
	}
	data, hasData := obj["data"]
	return hasData && data != nil
}

func asObject(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case map[string]interface{}:
		return v, true
	case json.RawMessage:
		var obj map[string]interface{}
		if err := json.Unmarshal(v, &obj); err != nil {
			return nil, false
		}
		return obj, true
	case []byte:
		var obj map[string]interface{}
		if err := json.Unmarshal(v, &obj); err != nil {
			return nil, false
		}
		return obj, true
	}
	return nil, false
}

func asNumber(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func toBuilderContent(obj map[string]interface{}) (*BuilderContent, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var parsed BuilderContent
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func sortedZoneKeys(zones map[string][]ContentBlock) []string {
	keys := make([]string, 0, len(zones))
	for k := range zones {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
