package componentregistry

import (
	"encoding/json"
	"log"

	"github.com/sitewise/backend/pkg/constants"
)

// RenderBinding is the UI layer's render entry for one component slug. The
// engine never constructs bindings, it only assembles them into a config.
type RenderBinding struct {
	Component string `json:"component"`
	Module    string `json:"module,omitempty"`
}

// RendererEntry is one resolved slug in a renderer configuration
type RendererEntry struct {
	Slug         string                 `json:"slug"`
	Binding      RenderBinding          `json:"binding"`
	DefaultProps map[string]interface{} `json:"default_props"`
}

// RendererConfig maps slugs to their render entries
type RendererConfig struct {
	Entries map[string]RendererEntry `json:"entries"`
}

// ToRendererConfig builds a renderer configuration from the registry and the
// UI-supplied bindings. Deprecated types are skipped, as are slugs with no
// binding - a missing binding is a startup warning, not a crash.
func ToRendererConfig(reg *Registry, bindings map[string]RenderBinding) RendererConfig {
	config := RendererConfig{Entries: make(map[string]RendererEntry)}

	for _, def := range reg.ListTypes() {
		if def.Status == constants.ComponentStatusDeprecated {
			continue
		}

		binding, ok := bindings[def.Slug]
		if !ok {
			log.Printf("⚠️  No renderer binding for component '%s', skipping", def.Slug)
			continue
		}

		config.Entries[def.Slug] = RendererEntry{
			Slug:         def.Slug,
			Binding:      binding,
			DefaultProps: DefaultProps(def),
		}
	}

	return config
}

// DefaultBindings maps every non-deprecated catalog slug to a conventional
// frontend component name. Deployments with custom UI modules supply their
// own binding map instead.
func DefaultBindings() map[string]RenderBinding {
	bindings := make(map[string]RenderBinding)
	for _, def := range GetRegistry().ListTypes() {
		if def.Status == constants.ComponentStatusDeprecated {
			continue
		}
		bindings[def.Slug] = RenderBinding{Component: pascalCase(def.Slug)}
	}
	return bindings
}

// pascalCase turns "pricing-table" into "PricingTable"
func pascalCase(slug string) string {
	out := make([]byte, 0, len(slug))
	upper := true
	for i := 0; i < len(slug); i++ {
		ch := slug[i]
		if ch == '-' {
			upper = true
			continue
		}
		if upper && ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		upper = false
		out = append(out, ch)
	}
	return string(out)
}

// DefaultProps computes the effective default prop values for a component
// type: the default preset's props, filled in with per-field defaults for keys
// the preset does not supply.
func DefaultProps(def ComponentTypeDefinition) map[string]interface{} {
	props := make(map[string]interface{})

	if preset := def.DefaultPreset(); preset != nil {
		for k, v := range preset.Props {
			props[k] = v
		}
	}

	for _, field := range def.PropSchema {
		if _, fromPreset := props[field.Name]; fromPreset {
			continue
		}
		if field.Default == nil {
			continue
		}
		props[field.Name] = normalizeDefault(field)
	}

	return props
}

// normalizeDefault coerces array/object defaults that arrive as serialized
// strings. Invalid JSON degrades to an empty value - a bad legacy default must
// never prevent a page from rendering.
func normalizeDefault(field PropField) interface{} {
	switch field.Type {
	case "array":
		if s, ok := field.Default.(string); ok {
			var parsed []interface{}
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				log.Printf("⚠️  Invalid array default for prop '%s': %v", field.Name, err)
				return []interface{}{}
			}
			return parsed
		}
	case "object":
		if s, ok := field.Default.(string); ok {
			var parsed map[string]interface{}
			if err := json.Unmarshal([]byte(s), &parsed); err != nil {
				log.Printf("⚠️  Invalid object default for prop '%s': %v", field.Name, err)
				return map[string]interface{}{}
			}
			return parsed
		}
	}
	return field.Default
}
