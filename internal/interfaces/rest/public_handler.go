package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/application/services"
)

// PublicHandler serves published content to visitors. No auth; everything
// here reads through published pointers only, so drafts stay invisible no
// matter what an editor is doing.
type PublicHandler struct {
	svcMgr *services.ServiceManager
}

func NewPublicHandler(svcMgr *services.ServiceManager) *PublicHandler {
	return &PublicHandler{svcMgr: svcMgr}
}

// GetPage handles GET /public/sites/:siteSlug/pages/:pageSlug
func (h *PublicHandler) GetPage(c *gin.Context) {
	HandleGetEnvelope(c, "page", func() (interface{}, error) {
		return h.svcMgr.Pages.PublicBySlug(c.Request.Context(), c.Param("siteSlug"), c.Param("pageSlug"))
	})
}

// ListItems handles GET /public/sites/:siteSlug/collections/:collectionSlug/items
func (h *PublicHandler) ListItems(c *gin.Context) {
	HandleGetEnvelope(c, "items", func() (interface{}, error) {
		site, err := h.svcMgr.Sites.GetBySlug(c.Request.Context(), c.Param("siteSlug"))
		if err != nil {
			return nil, err
		}
		coll, err := h.svcMgr.Collections.GetBySiteAndSlug(c.Request.Context(), site.ID, c.Param("collectionSlug"))
		if err != nil {
			return nil, err
		}
		return h.svcMgr.Items.PublicList(c.Request.Context(), coll.ID)
	})
}
