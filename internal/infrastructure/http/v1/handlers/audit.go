package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/infrastructure/storage/postgres"
)

// AuditHistory reads audit rows of one entity.
type AuditHistory interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// AuditHandler serves the change history of audited entities.
type AuditHandler struct {
	*BaseHandler
	store AuditHistory
	types map[string]string
}

// NewAuditHandler creates an audit handler. types maps the URL segment
// (for example "brands") to the entity type stored in the audit rows.
func NewAuditHandler(base *BaseHandler, store AuditHistory, types map[string]string) *AuditHandler {
	return &AuditHandler{BaseHandler: base, store: store, types: types}
}

// History handles GET /audit/:entity/:id?limit=
func (h *AuditHandler) History(c *gin.Context) {
	entityType, ok := h.types[c.Param("entity")]
	if !ok {
		h.Error(c, apperror.NewNotFound("audited entity", c.Param("entity")))
		return
	}
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	entries, err := h.store.History(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
