package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/application/services"
	"github.com/sitewise/backend/internal/domain/models"
	"github.com/sitewise/backend/pkg/utils"
)

type CollectionHandler struct {
	svcMgr *services.ServiceManager
}

func NewCollectionHandler(svcMgr *services.ServiceManager) *CollectionHandler {
	return &CollectionHandler{svcMgr: svcMgr}
}

// CreateCollectionRequest represents a collection create body
type CreateCollectionRequest struct {
	SiteID string                   `json:"site_id" binding:"required"`
	Slug   string                   `json:"slug" binding:"required"`
	Name   string                   `json:"name" binding:"required"`
	Fields []models.CollectionField `json:"fields"`
}

// Create handles POST /api/collections
func (h *CollectionHandler) Create(c *gin.Context) {
	var req CreateCollectionRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleCreateEnvelope(c, "collection", "Collection created", func() (interface{}, error) {
		return h.svcMgr.Collections.Create(c.Request.Context(), req.SiteID, req.Slug, req.Name, req.Fields)
	})
}

// List handles GET /api/sites/:id/collections
func (h *CollectionHandler) List(c *gin.Context) {
	HandleGetEnvelope(c, "collections", func() (interface{}, error) {
		return h.svcMgr.Collections.ListBySite(c.Request.Context(), c.Param("id"))
	})
}

// Get handles GET /api/collections/:id
func (h *CollectionHandler) Get(c *gin.Context) {
	HandleGetEnvelope(c, "collection", func() (interface{}, error) {
		return h.svcMgr.Collections.Get(c.Request.Context(), c.Param("id"))
	})
}

// UpdateSchemaRequest carries the replacement field schema
type UpdateSchemaRequest struct {
	Fields []models.CollectionField `json:"fields" binding:"required"`
}

// UpdateSchema handles PUT /api/collections/:id/schema
func (h *CollectionHandler) UpdateSchema(c *gin.Context) {
	var req UpdateSchemaRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleUpdateEnvelope(c, "collection", "Schema updated", func() (interface{}, error) {
		return h.svcMgr.Collections.UpdateSchema(c.Request.Context(), c.Param("id"), req.Fields)
	})
}

// Delete handles DELETE /api/collections/:id
func (h *CollectionHandler) Delete(c *gin.Context) {
	HandleDeleteEnvelope(c, "Collection deleted", func() error {
		return h.svcMgr.Collections.Delete(c.Request.Context(), c.Param("id"))
	})
}

// RuleRequest represents a validation rule body
type RuleRequest struct {
	Name         string `json:"name" binding:"required"`
	Condition    string `json:"condition" binding:"required"`
	ErrorMessage string `json:"error_message"`
	Active       *bool  `json:"active"`
}

// CreateRule handles POST /api/collections/:id/rules
func (h *CollectionHandler) CreateRule(c *gin.Context) {
	var req RuleRequest
	if !BindJSON(c, &req) {
		return
	}
	HandleCreateEnvelope(c, "rule", "Rule created", func() (interface{}, error) {
		return h.svcMgr.Collections.CreateRule(c.Request.Context(), c.Param("id"), req.Name, req.Condition, req.ErrorMessage)
	})
}

// ListRules handles GET /api/collections/:id/rules
func (h *CollectionHandler) ListRules(c *gin.Context) {
	HandleGetEnvelope(c, "rules", func() (interface{}, error) {
		return h.svcMgr.Collections.ListRules(c.Request.Context(), c.Param("id"))
	})
}

// UpdateRule handles PUT /api/rules/:id
func (h *CollectionHandler) UpdateRule(c *gin.Context) {
	var req RuleRequest
	if !BindJSON(c, &req) {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	HandleUpdateEnvelope(c, "rule", "Rule updated", func() (interface{}, error) {
		return h.svcMgr.Collections.UpdateRule(c.Request.Context(), c.Param("id"), req.Name, req.Condition, req.ErrorMessage, active)
	})
}

// DeleteRule handles DELETE /api/rules/:id
func (h *CollectionHandler) DeleteRule(c *gin.Context) {
	HandleDeleteEnvelope(c, "Rule deleted", func() error {
		return h.svcMgr.Collections.DeleteRule(c.Request.Context(), c.Param("id"))
	})
}

// ItemDataRequest represents an item create or draft save body
type ItemDataRequest struct {
	Data map[string]interface{} `json:"data" binding:"required"`
	Note *string                `json:"note"`
}

// CreateItem handles POST /api/collections/:id/items
func (h *CollectionHandler) CreateItem(c *gin.Context) {
	var req ItemDataRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleCreateEnvelope(c, "result", "Item created", func() (interface{}, error) {
		return h.svcMgr.Items.Create(c.Request.Context(), c.Param("id"), req.Data, *user)
	})
}

// ListItems handles GET /api/collections/:id/items
func (h *CollectionHandler) ListItems(c *gin.Context) {
	HandleGetEnvelope(c, "items", func() (interface{}, error) {
		return h.svcMgr.Items.ListByCollection(c.Request.Context(), c.Param("id"))
	})
}

// GetItem handles GET /api/items/:id
func (h *CollectionHandler) GetItem(c *gin.Context) {
	HandleGetEnvelope(c, "item", func() (interface{}, error) {
		return h.svcMgr.Items.Get(c.Request.Context(), c.Param("id"))
	})
}

// SaveItemDraft handles PUT /api/items/:id/draft
func (h *CollectionHandler) SaveItemDraft(c *gin.Context) {
	var req ItemDataRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleUpdateEnvelope(c, "result", "Draft saved", func() (interface{}, error) {
		return h.svcMgr.Items.SaveDraft(c.Request.Context(), c.Param("id"), req.Data, req.Note, *user)
	})
}

// GetItemDraft handles GET /api/items/:id/draft
func (h *CollectionHandler) GetItemDraft(c *gin.Context) {
	HandleGetEnvelope(c, "revision", func() (interface{}, error) {
		return h.svcMgr.Items.GetDraft(c.Request.Context(), c.Param("id"))
	})
}

// ItemPublishRequest optionally carries the data to publish directly, or
// names an existing revision. An empty body publishes the latest revision.
type ItemPublishRequest struct {
	Data       map[string]interface{} `json:"data"`
	RevisionID string                 `json:"revision_id"`
}

// PublishItem handles POST /api/items/:id/publish
func (h *CollectionHandler) PublishItem(c *gin.Context) {
	var req ItemPublishRequest
	if c.Request.ContentLength > 0 && !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleUpdateEnvelope(c, "item", "Item published", func() (interface{}, error) {
		return h.svcMgr.Items.Publish(c.Request.Context(), c.Param("id"), req.Data, req.RevisionID, *user)
	})
}

// UnpublishItem handles POST /api/items/:id/unpublish
func (h *CollectionHandler) UnpublishItem(c *gin.Context) {
	HandleUpdateEnvelope(c, "item", "Item unpublished", func() (interface{}, error) {
		return h.svcMgr.Items.Unpublish(c.Request.Context(), c.Param("id"))
	})
}

// ListItemRevisions handles GET /api/items/:id/revisions
func (h *CollectionHandler) ListItemRevisions(c *gin.Context) {
	HandleGetEnvelope(c, "revisions", func() (interface{}, error) {
		return h.svcMgr.Items.ListRevisions(c.Request.Context(), c.Param("id"))
	})
}

// RollbackItem handles POST /api/items/:id/rollback
func (h *CollectionHandler) RollbackItem(c *gin.Context) {
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
		return h.svcMgr.Items.Rollback(c.Request.Context(), c.Param("id"), req.RevisionID, req.Version, *user)
	})
}

// DeleteItem handles DELETE /api/items/:id
func (h *CollectionHandler) DeleteItem(c *gin.Context) {
	HandleDeleteEnvelope(c, "Item deleted", func() error {
		return h.svcMgr.Items.Delete(c.Request.Context(), c.Param("id"))
	})
}

// ScheduleItem handles POST /api/items/:id/schedule
func (h *CollectionHandler) ScheduleItem(c *gin.Context) {
	var req ScheduleRequest
	if !BindJSON(c, &req) {
		return
	}
	user := GetUserFromContext(c)
	HandleCreateEnvelope(c, "schedule", "Publish scheduled", func() (interface{}, error) {
		return h.svcMgr.Scheduler.CreateSchedule(c.Request.Context(), models.DocumentTypeItem, c.Param("id"), req.PublishAt, req.Schedule, *user)
	})
}
