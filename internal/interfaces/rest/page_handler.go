package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/application/services"
	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/utils"
)

type PageHandler struct {
	svcMgr *services.ServiceManager
}

func NewPageHandler(svcMgr *services.ServiceManager) *PageHandler {
	return &PageHandler{svcMgr: svcMgr}
}

// CreatePageRequest represents a page create body
type CreatePageRequest struct {
	SiteID string `json:"site_id" binding:"required"`
	Slug   string `json:"slug" binding:"required"`
	Title  string `json:"title" binding:"required"`
}

// Create handles POST /api/pages
func (h *PageHandler) Create(c *gin.Context) {
	var req CreatePageRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleCreateEnvelope(c, "page", "Page created", func() (interface{}, error) {
		return h.svcMgr.Pages.Create(c.Request.Context(), req.SiteID, req.Slug, req.Title, *user)
	})
}

// List handles GET /api/sites/:id/pages
func (h *PageHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "pages", func() (interface{}, error) {
		return h.svcMgr.Pages.ListBySite(c.Request.Context(), c.Param("id"))
	})
}

// Get handles GET /api/pages/:id
func (h *PageHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "page", func() (interface{}, error) {
		return h.svcMgr.Pages.Get(c.Request.Context(), c.Param("id"))
	})
}

// UpdateMetaRequest represents a page metadata update body
type UpdateMetaRequest struct {
	Slug  string `json:"slug" binding:"required"`
	Title string `json:"title" binding:"required"`
}

// UpdateMeta handles PATCH /api/pages/:id
func (h *PageHandler) UpdateMeta(c *gin.Context) {
	var req UpdateMetaRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleUpdateEnvelope(c, "page", "Page updated", func() (interface{}, error) {
		return h.svcMgr.Pages.UpdateMeta(c.Request.Context(), c.Param("id"), req.Slug, req.Title)
	})
}

// Delete handles DELETE /api/pages/:id
func (h *PageHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Page deleted", func() error {
		return h.svcMgr.Pages.Delete(c.Request.Context(), c.Param("id"))
	})
}

// SaveDraftRequest represents a draft save body. Content is kept loose so the
// strict validator owns the shape errors, not the JSON binder.
type SaveDraftRequest struct {
	Content interface{} `json:"content" binding:"required"`
	Note    *string     `json:"note"`
}

// SaveDraft handles PUT /api/pages/:id/draft
func (h *PageHandler) SaveDraft(c *gin.Context) {
	var req SaveDraftRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleUpdateEnvelope(c, "revision", "Draft saved", func() (interface{}, error) {
		return h.svcMgr.Pages.SaveDraft(c.Request.Context(), c.Param("id"), req.Content, req.Note, *user)
	})
}

// GetDraft handles GET /api/pages/:id/draft
func (h *PageHandler) GetDraft(c *gin.Context) {
	HandleGetEnvelope(c, "revision", func() (interface{}, error) {
		return h.svcMgr.Pages.GetDraft(c.Request.Context(), c.Param("id"))
	})
}

// PublishRequest optionally carries content to publish directly, or names an
// existing revision. An empty body publishes the latest revision.
type PublishRequest struct {
	Content    interface{} `json:"content"`
	RevisionID string      `json:"revision_id"`
}

// Publish handles POST /api/pages/:id/publish
func (h *PageHandler) Publish(c *gin.Context) {
	var req PublishRequest
	if c.Request.ContentLength > 0 && !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleUpdateEnvelope(c, "page", "Page published", func() (interface{}, error) {
		return h.svcMgr.Pages.Publish(c.Request.Context(), c.Param("id"), req.Content, req.RevisionID, *user)
	})
}

// Unpublish handles POST /api/pages/:id/unpublish
func (h *PageHandler) Unpublish(c *gin.Context) {
	HandleUpdateEnvelope(c, "page", "Page unpublished", func() (interface{}, error) {
		return h.svcMgr.Pages.Unpublish(c.Request.Context(), c.Param("id"))
	})
}

// ListRevisions handles GET /api/pages/:id/revisions
func (h *PageHandler) ListRevisions(c *gin.Context) {
	HandleGetEnvelope(c, "revisions", func() (interface{}, error) {
		return h.svcMgr.Pages.ListRevisions(c.Request.Context(), c.Param("id"))
	})
}

// RollbackRequest names the revision to restore, by id or version number
type RollbackRequest struct {
	RevisionID string `json:"revision_id"`
	Version    int    `json:"version"`
}

// Rollback handles POST /api/pages/:id/rollback
func (h *PageHandler) Rollback(c *gin.Context) {
	var req RollbackRequest
	if !BindJSON(c, &req) {
		return
	}
	if req.RevisionID == "" && req.Version == 0 {
		RespondError(c, http.StatusBadRequest, "Provide revision_id or version")
		return
	}
	if req.RevisionID != "" && !utils.IsValidUUID(req.RevisionID) {
		RespondError(c, http.StatusBadRequest, "revision_id must be a UUID")
		return
	}
	user := GetUserFromContext(c)
	HandleUpdateEnvelope(c, "revision", "Rolled back", func() (interface{}, error) {
		return h.svcMgr.Pages.Rollback(c.Request.Context(), c.Param("id"), req.RevisionID, req.Version, *user)
	})
}

// CheckCompatibility handles GET /api/pages/:id/compatibility
func (h *PageHandler) CheckCompatibility(c *gin.Context) {
	HandleGetEnvelope(c, "compatibility", func() (interface{}, error) {
		return h.svcMgr.Pages.CheckCompatibility(c.Request.Context(), c.Param("id"))
	})
}

// ScheduleRequest represents a scheduled publish body
type ScheduleRequest struct {
	PublishAt *time.Time `json:"publish_at"`
	Schedule  *string    `json:"schedule"`
}

// Schedule handles POST /api/pages/:id/schedule
func (h *PageHandler) Schedule(c *gin.Context) {
	var req ScheduleRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleCreateEnvelope(c, "schedule", "Publish scheduled", func() (interface{}, error) {
		return h.svcMgr.Scheduler.CreateSchedule(c.Request.Context(), models.DocumentTypePage, c.Param("id"), req.PublishAt, req.Schedule, *user)
	})
}

// ListSchedules handles GET /api/schedules
func (h *PageHandler) ListSchedules(c *gin.Context) {
	HandleGetEnvelope(c, "schedules", func() (interface{}, error) {
		return h.svcMgr.Scheduler.ListSchedules(c.Request.Context())
	})
}

// DeleteSchedule handles DELETE /api/schedules/:id
func (h *PageHandler) DeleteSchedule(c *gin.Context) {
	HandleDeleteEnvelope(c, "Schedule deleted", func() error {
		return h.svcMgr.Scheduler.DeleteSchedule(c.Request.Context(), c.Param("id"))
	})
}

