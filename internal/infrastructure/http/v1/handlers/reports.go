package handlers

import (
	"github.com/gin-gonic/gin"

	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/export"
	"trackiq/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ProductionSummary handles GET /reports/production-summary?from=&to=
func (h *ReportsHandler) ProductionSummary(c *gin.Context) {
	report, ok := h.productionSummary(c)
	if !ok {
		return
	}
	h.OK(c, report)
}

// ExportProductionSummary handles GET /reports/production-summary/export
func (h *ReportsHandler) ExportProductionSummary(c *gin.Context) {
	report, ok := h.productionSummary(c)
	if !ok {
		return
	}
	h.sendWorkbook(c, export.FileName("production-summary", report.To), export.ProductionSummarySheet(report))
}

func (h *ReportsHandler) productionSummary(c *gin.Context) (*reports.ProductionSummaryReport, bool) {
	var q dto.DateRangeQuery
	if !h.BindQuery(c, &q) {
		return nil, false
	}
	from, to, brandID, err := q.Parse()
	if err != nil {
		h.Error(c, err)
		return nil, false
	}

	report, err := h.service.ProductionSummary(c.Request.Context(), reports.ProductionSummaryFilter{
		From:    from,
		To:      to,
		BrandID: brandID,
	})
	if err != nil {
		h.Error(c, err)
		return nil, false
	}
	return report, true
}

// InventoryValue handles GET /reports/inventory-value
func (h *ReportsHandler) InventoryValue(c *gin.Context) {
	var q dto.BrandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	brandID, err := q.BrandID()
	if err != nil {
		h.Error(c, err)
		return
	}

	report, err := h.service.InventoryValue(c.Request.Context(), brandID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// LowStock handles GET /reports/low-stock, grouped by brand.
func (h *ReportsHandler) LowStock(c *gin.Context) {
	var q dto.BrandQuery
	if !h.BindQuery(c, &q) {
		return
	}
	brandID, err := q.BrandID()
	if err != nil {
		h.Error(c, err)
		return
	}

	groups, err := h.service.LowStockByBrand(c.Request.Context(), brandID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if groups == nil {
		groups = []reports.LowStockGroup{}
	}
	h.OK(c, groups)
}
