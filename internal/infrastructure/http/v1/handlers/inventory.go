package handlers

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/domain"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/export"
	"trackiq/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles the stock ledger endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
	reports *reports.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service, reportService *reports.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service, reports: reportService}
}

// AppendTransaction handles POST /inventory/transactions
func (h *InventoryHandler) AppendTransaction(c *gin.Context) {
	var req dto.TransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}
	posting, err := req.ToPosting()
	if err != nil {
		h.Error(c, err)
		return
	}

	inv, tx, err := h.service.Append(c.Request.Context(), posting)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.PostingResponse{
		Inventory:   dto.FromInventory(inv),
		Transaction: dto.FromTransaction(tx),
	}, "Transaction recorded successfully")
}

// List handles GET /inventory
func (h *InventoryHandler) List(c *gin.Context) {
	var q dto.InventoryListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToInventoryFilter()
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
	h.OK(c, dto.MapList(result, dto.FromInventory))
}

// Get handles GET /inventory/:id
func (h *InventoryHandler) Get(c *gin.Context) {
	inventoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	inv, err := h.service.Get(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInventory(inv))
}

// Transactions handles GET /inventory/:id/transactions, newest first.
func (h *InventoryHandler) Transactions(c *gin.Context) {
	inventoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var q dto.PageQuery
	if !h.BindQuery(c, &q) {
		return
	}

	page := domain.ListFilter{Limit: q.Limit, Offset: q.Offset}
	h.Paginate(&page)

	result, err := h.service.Transactions(c.Request.Context(), inventoryID, page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.MapList(result, dto.FromTransaction))
}

// Reconcile handles GET /inventory/:id/reconcile
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	inventoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Reconcile(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, r)
}

// SetLimits handles PUT /inventory/:id/limits
func (h *InventoryHandler) SetLimits(c *gin.Context) {
	inventoryID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.LimitsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.SetLimits(c.Request.Context(), inventoryID, req.Version, req.ToLimits())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInventory(inv))
}

// LowStock handles GET /inventory/low-stock?brand=
func (h *InventoryHandler) LowStock(c *gin.Context) {
	var q dto.BrandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	brandID, err := q.BrandID()
	if err != nil {
		h.Error(c, err)
		return
	}

	items, err := h.service.LowStock(c.Request.Context(), brandID)
	if err != nil {
		h.Error(c, err)
		return
	}
	out := make([]dto.InventoryResponse, len(items))
	for i, inv := range items {
		out[i] = dto.FromInventory(inv)
	}
	h.OK(c, out)
}

// Value handles GET /inventory/value, grouped by item type.
func (h *InventoryHandler) Value(c *gin.Context) {
	var q dto.BrandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	brandID, err := q.BrandID()
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.Value(c.Request.Context(), brandID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if summary == nil {
		summary = []inventory.ValueSummary{}
	}
	h.OK(c, summary)
}

// Export handles GET /inventory/export as an xlsx workbook.
func (h *InventoryHandler) Export(c *gin.Context) {
	var q dto.BrandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	brandID, err := q.BrandID()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.reports.InventoryValue(c.Request.Context(), brandID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.sendWorkbook(c, export.FileName("inventory", report.AsOf), export.InventorySheets(report)...)
}
