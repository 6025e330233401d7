package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/application/services"
)

type SiteHandler struct {
	svcMgr *services.ServiceManager
}

func NewSiteHandler(svcMgr *services.ServiceManager) *SiteHandler {
	return &SiteHandler{svcMgr: svcMgr}
}

// SiteRequest represents a site create body
type SiteRequest struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// Create handles POST /api/sites (admin only)
func (h *SiteHandler) Create(c *gin.Context) {
	var req SiteRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleCreateEnvelope(c, "site", "Site created", func() (interface{}, error) {
		return h.svcMgr.Sites.Create(c.Request.Context(), req.Slug, req.Name)
	})
}

// List handles GET /api/sites
func (h *SiteHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "sites", func() (interface{}, error) {
		return h.svcMgr.Sites.List(c.Request.Context())
	})
}

// Get handles GET /api/sites/:id
func (h *SiteHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "site", func() (interface{}, error) {
		return h.svcMgr.Sites.Get(c.Request.Context(), c.Param("id"))
	})
}
