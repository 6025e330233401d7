package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sitewise/backend/internal/infrastructure/database"
	"github.com/sitewise/backend/pkg/constants"
	"github.com/sitewise/backend/pkg/query"
)

// AdminHandler exposes operational endpoints for admins: table row counts and
// raw row inspection. Only the fixed system tables are reachable, so there is
// no injection surface through the table name.
type AdminHandler struct {
	db *database.Connection
}

func NewAdminHandler(db *database.Connection) *AdminHandler {
	return &AdminHandler{db: db}
}

// GetTableStats handles GET /api/admin/tables
func (h *AdminHandler) GetTableStats(c *gin.Context) {
	stats := make([]gin.H, 0, len(constants.AllTables))
	for _, table := range constants.AllTables {
		q := query.From(table).Select([]string{"COUNT(*) AS rows"}).Build()

		var count int
		if err := h.db.QueryRowContext(c.Request.Context(), q.SQL, q.Params...).Scan(&count); err != nil {
			RespondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		stats = append(stats, gin.H{"table": table, "rows": count})
	}
	c.JSON(http.StatusOK, gin.H{"tables": stats})
}

// InspectTable handles GET /api/admin/tables/:name
func (h *AdminHandler) InspectTable(c *gin.Context) {
	name := c.Param("name")
	if !isSystemTable(name) {
		RespondError(c, http.StatusNotFound, "Unknown table '"+name+"'")
		return
	}

	limit := 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}

	q := query.From(name).OrderBy(constants.FieldID, constants.SortASC).Limit(limit).Build()
	rows, err := h.db.QueryContext(c.Request.Context(), q.SQL, q.Params...)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	records, err := query.ScanRows(rows)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"table": name, "rows": records})
}

func isSystemTable(name string) bool {
	for _, table := range constants.AllTables {
		if table == name {
			return true
		}
	}
	return false
}
