package componentregistry

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/sitewise/backend/pkg/constants"
)

//go:embed componentTypes.json
var componentTypesFS embed.FS

// PropField describes one prop in a component's schema
type PropField struct {
	Name     string        `json:"name"`
	Type     string        `json:"type"` // string, number, boolean, enum, richtext, image, color, array, object
	Label    string        `json:"label,omitempty"`
	Required bool          `json:"required,omitempty"`
	Default  interface{}   `json:"default,omitempty"`
	Options  []string      `json:"options,omitempty"`
	Min      *float64      `json:"min,omitempty"`
	Max      *float64      `json:"max,omitempty"`
}

// Preset is a named default prop-set for a component type
type Preset struct {
	Name      string                 `json:"name"`
	Label     string                 `json:"label,omitempty"`
	IsDefault bool                   `json:"is_default,omitempty"`
	Props     map[string]interface{} `json:"props"`
}

// ComponentTypeDefinition is one Schema Registry entry. The slug is the join
// key referenced by stored content; it never changes once published.
type ComponentTypeDefinition struct {
	Slug        string                    `json:"slug"`
	Version     string                    `json:"version"`
	Status      constants.ComponentStatus `json:"status"`
	Category    string                    `json:"category,omitempty"`
	Icon        string                    `json:"icon,omitempty"`
	Label       string                    `json:"label"`
	Description string                    `json:"description,omitempty"`
	PropSchema  []PropField               `json:"prop_schema"`
	Presets     []Preset                  `json:"presets,omitempty"`
}

// DefaultPreset returns the canonical default preset, if any
func (d ComponentTypeDefinition) DefaultPreset() *Preset {
	for i := range d.Presets {
		if d.Presets[i].IsDefault {
			return &d.Presets[i]
		}
	}
	if len(d.Presets) > 0 {
		return &d.Presets[0]
	}
	return nil
}

// Registry holds the component type catalog. It is loaded once per process and
// never mutated afterward; catalog changes ship as a new deployment.
type Registry struct {
	types map[string]ComponentTypeDefinition
	order []string
}

var (
	defaultRegistry *Registry
	once            sync.Once
	loadErr         error
)

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// GetRegistry returns the singleton component type registry
func GetRegistry() *Registry {
	once.Do(func() {
		data, err := componentTypesFS.ReadFile("componentTypes.json")
		if err != nil {
			loadErr = err
			defaultRegistry = &Registry{types: map[string]ComponentTypeDefinition{}}
			return
		}
		defaultRegistry, loadErr = Load(data)
		if loadErr != nil {
			defaultRegistry = &Registry{types: map[string]ComponentTypeDefinition{}}
		}
	})
	return defaultRegistry
}

// LoadError reports a failure to parse the embedded catalog, checked at startup
func LoadError() error {
	GetRegistry()
	return loadErr
}

// Load parses a catalog from JSON. Duplicate slugs and malformed versions are
// rejected here so a bad catalog fails the deployment, not a request.
func Load(data []byte) (*Registry, error) {
	var defs []ComponentTypeDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse component catalog: %w", err)
	}

	r := &Registry{
		types: make(map[string]ComponentTypeDefinition, len(defs)),
		order: make([]string, 0, len(defs)),
	}
	for _, def := range defs {
		if def.Slug == "" {
			return nil, fmt.Errorf("component type with empty slug")
		}
		if _, exists := r.types[def.Slug]; exists {
			return nil, fmt.Errorf("duplicate component slug '%s'", def.Slug)
		}
		if !semverPattern.MatchString(def.Version) {
			return nil, fmt.Errorf("component '%s' has invalid version '%s'", def.Slug, def.Version)
		}
		switch def.Status {
		case constants.ComponentStatusStable, constants.ComponentStatusBeta,
			constants.ComponentStatusExperimental, constants.ComponentStatusDeprecated:
		default:
			return nil, fmt.Errorf("component '%s' has invalid status '%s'", def.Slug, def.Status)
		}
		r.types[def.Slug] = def
		r.order = append(r.order, def.Slug)
	}
	return r, nil
}

// GetType returns a component type definition by slug
func (r *Registry) GetType(slug string) (ComponentTypeDefinition, bool) {
	def, ok := r.types[slug]
	return def, ok
}

// ListTypes returns all registered component types in catalog order,
// deprecated entries included (existing content must keep resolving them).
func (r *Registry) ListTypes() []ComponentTypeDefinition {
	result := make([]ComponentTypeDefinition, 0, len(r.order))
	for _, slug := range r.order {
		result = append(result, r.types[slug])
	}
	return result
}

// AvailableTypes returns the types an editor may add to a page: everything
// except deprecated entries.
func (r *Registry) AvailableTypes() []ComponentTypeDefinition {
	result := make([]ComponentTypeDefinition, 0, len(r.order))
	for _, slug := range r.order {
		def := r.types[slug]
		if def.Status == constants.ComponentStatusDeprecated {
			continue
		}
		result = append(result, def)
	}
	return result
}

// Slugs returns every known slug, sorted
func (r *Registry) Slugs() []string {
	slugs := make([]string, 0, len(r.types))
	for slug := range r.types {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// Package-level convenience functions using the default registry

// GetType returns a component type definition by slug
func GetType(slug string) (ComponentTypeDefinition, bool) {
	return GetRegistry().GetType(slug)
}

// ListTypes returns all registered component types
func ListTypes() []ComponentTypeDefinition {
	return GetRegistry().ListTypes()
}

// AvailableTypes returns non-deprecated component types
func AvailableTypes() []ComponentTypeDefinition {
	return GetRegistry().AvailableTypes()
}

// Slugs returns every known slug
func Slugs() []string {
	return GetRegistry().Slugs()
}
