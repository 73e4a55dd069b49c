package handlers

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/core/security"
	"trackiq/internal/domain/production"
	"trackiq/internal/infrastructure/http/v1/dto"
	"trackiq/internal/infrastructure/http/v1/middleware"
)

// ProductionHandler handles production batch endpoints.
type ProductionHandler struct {
	*BaseHandler
	service *production.Service
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(base *BaseHandler, service *production.Service) *ProductionHandler {
	return &ProductionHandler{BaseHandler: base, service: service}
}

// List handles GET /productions
func (h *ProductionHandler) List(c *gin.Context) {
	var q dto.ProductionListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToProductionFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Paginate(&filter.ListFilter)

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.MapList(result, dto.FromProduction))
}

// Get handles GET /productions/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	productionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), productionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduction(p))
}

// Create handles POST /productions. The batch number is always generated.
func (h *ProductionHandler) Create(c *gin.Context) {
	var req dto.CreateProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromProduction(p), "Production batch created successfully")
}

// Update handles PUT /productions/:id
func (h *ProductionHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	productionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Get(ctx, productionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(p); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduction(p))
}

// Delete handles DELETE /productions/:id
func (h *ProductionHandler) Delete(c *gin.Context) {
	productionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), productionID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "Production batch deleted successfully")
}

// ChangeStatus handles POST /productions/:id/status. Completing a batch posts
// its stock movements in the same transaction. Approving or rejecting a batch
// needs production:approve on top of the route's production:edit.
func (h *ProductionHandler) ChangeStatus(c *gin.Context) {
	productionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	to := production.Status(req.Status)
	if to.Terminal() && !middleware.Authorize(c, security.ModuleProduction, security.ActionApprove) {
		return
	}
	p, err := h.service.ChangeStatus(c.Request.Context(), productionID, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduction(p))
}

// CompletionCheck handles GET /productions/:id/completion-check
func (h *ProductionHandler) CompletionCheck(c *gin.Context) {
	productionID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	issues, err := h.service.CompletionCheck(c.Request.Context(), productionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewCompletionCheckResponse(issues))
}

// Summary handles GET /productions/summary?from=&to=
func (h *ProductionHandler) Summary(c *gin.Context) {
	var q dto.DateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, to, brandID, err := q.Parse()
	if err != nil {
		h.Error(c, err)
		return
	}

	rows, err := h.service.Summary(c.Request.Context(), production.SummaryFilter{From: from, To: to, BrandID: brandID})
	if err != nil {
		h.Error(c, err)
		return
	}
	if rows == nil {
		rows = []production.SummaryRow{}
	}
	h.OK(c, rows)
}
