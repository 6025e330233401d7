package content

import "fmt"

// CompatibilityResult is the advisory report from reconciling stored content
// against the live registry. Warnings never block a save or publish; they are
// surfaced to editors as a banner.
type CompatibilityResult struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
}

// CheckCompatibility reports every block whose type is not in availableSlugs
// and flags envelopes written by a newer build. Registries evolve
// independently of historical content, so none of this is an error.
func CheckCompatibility(c BuilderContent, availableSlugs []string) CompatibilityResult {
	available := make(map[string]bool, len(availableSlugs))
	for _, slug := range availableSlugs {
		available[slug] = true
	}

	warnings := []string{}
	if c.SchemaVersion > CurrentSchemaVersion {
		warnings = append(warnings, fmt.Sprintf(
			"Content schemaVersion %d is newer than the current version %d",
			c.SchemaVersion, CurrentSchemaVersion))
	}

	for _, block := range c.AllBlocks() {
		if !available[block.Type] {
			warnings = append(warnings, fmt.Sprintf("Unknown component type '%s'", block.Type))
		}
	}

	return CompatibilityResult{Valid: len(warnings) == 0, Warnings: warnings}
}
