package handlers

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/domain/bom"
	"trackiq/internal/infrastructure/http/v1/dto"
)

// BOMHandler handles bill-of-materials endpoints.
type BOMHandler struct {
	*BaseHandler
	service *bom.Service
}

// NewBOMHandler creates a new BOM handler.
func NewBOMHandler(base *BaseHandler, service *bom.Service) *BOMHandler {
	return &BOMHandler{BaseHandler: base, service: service}
}

// List handles GET /boms
func (h *BOMHandler) List(c *gin.Context) {
	var q dto.BOMListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToBOMFilter()
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
	h.OK(c, dto.MapList(result, dto.FromBOM))
}

// Get handles GET /boms/:id
func (h *BOMHandler) Get(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), bomID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBOM(b))
}

// Create handles POST /boms
func (h *BOMHandler) Create(c *gin.Context) {
	var req dto.CreateBOMRequest
	if !h.BindJSON(c, &req) {
		return
	}
	b, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), b); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromBOM(b), "BOM created successfully")
}

// Update handles PUT /boms/:id
func (h *BOMHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBOMRequest
	if !h.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Get(ctx, bomID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(b); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Update(ctx, b); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBOM(b))
}

// Delete handles DELETE /boms/:id
func (h *BOMHandler) Delete(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), bomID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "BOM deleted successfully")
}

// ChangeStatus handles POST /boms/:id/status
func (h *BOMHandler) ChangeStatus(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.StatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	b, err := h.service.ChangeStatus(c.Request.Context(), bomID, bom.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBOM(b))
}

// Recalculate handles POST /boms/:id/recalculate
func (h *BOMHandler) Recalculate(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	b, err := h.service.Recalculate(c.Request.Context(), bomID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromBOM(b))
}

// Requirements handles GET /boms/:id/requirements?quantity=Q
func (h *BOMHandler) Requirements(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	qty, ok := h.ParseQuantity(c, "quantity")
	if !ok {
		return
	}
	reqs, err := h.service.Requirements(c.Request.Context(), bomID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}
	if reqs == nil {
		reqs = []bom.Requirement{}
	}
	h.OK(c, gin.H{"quantity": qty, "materials": reqs})
}

// Availability handles GET /boms/:id/availability?quantity=Q
func (h *BOMHandler) Availability(c *gin.Context) {
	bomID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	qty, ok := h.ParseQuantity(c, "quantity")
	if !ok {
		return
	}
	shortages, err := h.service.Availability(c.Request.Context(), bomID, qty)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewAvailabilityResponse(qty, shortages))
}
