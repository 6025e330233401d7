package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/pkg/componentregistry"
)

// RegistryHandler serves the component type catalog. The catalog is embedded
// in the binary; these endpoints are read-only.
type RegistryHandler struct {
	registry *componentregistry.Registry
}

func NewRegistryHandler(registry *componentregistry.Registry) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// ListComponents handles GET /api/registry/components
// Deprecated types are hidden from the picker by default; pass ?all=true to
// include them (old content still resolves them by slug either way).
func (h *RegistryHandler) ListComponents(c *gin.Context) {
	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, gin.H{"components": h.registry.ListTypes()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"components": h.registry.AvailableTypes()})
}

// GetComponent handles GET /api/registry/components/:slug
func (h *RegistryHandler) GetComponent(c *gin.Context) {
	slug := c.Param("slug")
	def, ok := h.registry.GetType(slug)
	if !ok {
		RespondError(c, http.StatusNotFound, "Unknown component type '"+slug+"'")
		return
	}
	c.JSON(http.StatusOK, gin.H{"component": def})
}

// GetRendererConfig handles GET /api/registry/renderer
// Returns the catalog in the shape the frontend renderer consumes, with
// deprecated types dropped and defaults resolved from presets.
func (h *RegistryHandler) GetRendererConfig(c *gin.Context) {
	config := componentregistry.ToRendererConfig(h.registry, componentregistry.DefaultBindings())
	c.JSON(http.StatusOK, gin.H{"renderer": config})
}
