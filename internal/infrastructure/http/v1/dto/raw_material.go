package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/catalogs/unit"
)

// StockLimitsDTO are the catalog stock thresholds. The current level is owned
// by the inventory ledger and is not accepted here.
type StockLimitsDTO struct {
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
}

// MaterialPricingDTO is the purchase price of a material.
type MaterialPricingDTO struct {
	CostPerUnit decimal.Decimal `json:"costPerUnit"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
}

// SupplierDTO describes where a material is bought.
type SupplierDTO struct {
	Name         string `json:"name" binding:"omitempty,max=200"`
	Contact      string `json:"contact" binding:"omitempty,max=200"`
	LeadTimeDays int    `json:"leadTimeDays" binding:"omitempty,min=0"`
}

// --- Request DTOs ---

// RawMaterialFields are the editable fields of a raw material.
type RawMaterialFields struct {
	Name        string             `json:"name" binding:"required,max=200"`
	Code        string             `json:"code" binding:"required,max=20,uppercase_code"`
	Description string             `json:"description" binding:"omitempty,max=500"`
	Category    string             `json:"category" binding:"omitempty,max=100"`
	Unit        string             `json:"unit" binding:"required,unit"`
	Stock       StockLimitsDTO     `json:"stock"`
	Pricing     MaterialPricingDTO `json:"pricing"`
	Supplier    SupplierDTO        `json:"supplier"`
	Location    string             `json:"location" binding:"omitempty,max=100"`
	Notes       string             `json:"notes" binding:"omitempty,max=1000"`
	Status      string             `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

func (f *RawMaterialFields) apply(m *rawmaterial.RawMaterial) {
	m.Code = entity.NormalizeCode(f.Code)
	m.Name = strings.TrimSpace(f.Name)
	m.Description = f.Description
	m.Category = f.Category
	m.Unit = unit.Unit(f.Unit)
	m.StockMinimum = f.Stock.Minimum
	m.StockMaximum = f.Stock.Maximum
	m.CostPerUnit = f.Pricing.CostPerUnit
	if f.Pricing.Currency != "" {
		m.Currency = strings.ToUpper(f.Pricing.Currency)
	}
	m.Supplier = rawmaterial.Supplier(f.Supplier)
	m.Location = f.Location
	m.Notes = f.Notes
	if f.Status != "" {
		m.Status = rawmaterial.Status(f.Status)
	}
}

// CreateRawMaterialRequest is the request body for creating a raw material.
type CreateRawMaterialRequest struct {
	RawMaterialFields
	Brand string `json:"brand" binding:"required,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateRawMaterialRequest) ToEntity() (*rawmaterial.RawMaterial, error) {
	brandID, err := id.ParseField("brand", r.Brand)
	if err != nil {
		return nil, err
	}
	m := rawmaterial.NewRawMaterial(brandID, r.Code, r.Name, unit.Unit(r.Unit))
	r.apply(m)
	return m, nil
}

// UpdateRawMaterialRequest is the request body for updating a raw material.
type UpdateRawMaterialRequest struct {
	RawMaterialFields
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateRawMaterialRequest) ApplyTo(m *rawmaterial.RawMaterial) {
	r.apply(m)
	m.Version = r.Version
}

// --- Response DTOs ---

// MaterialStockResponse is the stock block of a material.
type MaterialStockResponse struct {
	Current decimal.Decimal `json:"current"`
	Minimum decimal.Decimal `json:"minimum"`
	Maximum decimal.Decimal `json:"maximum"`
}

// RawMaterialResponse is the response body for a raw material.
type RawMaterialResponse struct {
	BaseResponse
	Code         string                `json:"code"`
	Name         string                `json:"name"`
	Description  string                `json:"description,omitempty"`
	Category     string                `json:"category,omitempty"`
	Brand        string                `json:"brand"`
	Unit         unit.Unit             `json:"unit"`
	Stock        MaterialStockResponse `json:"stock"`
	Pricing      MaterialPricingDTO    `json:"pricing"`
	Supplier     rawmaterial.Supplier  `json:"supplier"`
	Location     string                `json:"location,omitempty"`
	Notes        string                `json:"notes,omitempty"`
	Status       rawmaterial.Status    `json:"status"`
	TotalValue   decimal.Decimal       `json:"totalValue"`
	NeedsReorder bool                  `json:"needsReorder"`
}

// FromRawMaterial creates response DTO from domain entity.
func FromRawMaterial(m *rawmaterial.RawMaterial) RawMaterialResponse {
	return RawMaterialResponse{
		BaseResponse: FromBase(m.BaseEntity),
		Code:         m.Code,
		Name:         m.Name,
		Description:  m.Description,
		Category:     m.Category,
		Brand:        m.BrandID.String(),
		Unit:         m.Unit,
		Stock: MaterialStockResponse{
			Current: m.StockCurrent,
			Minimum: m.StockMinimum,
			Maximum: m.StockMaximum,
		},
		Pricing:      MaterialPricingDTO{CostPerUnit: m.CostPerUnit, Currency: m.Currency},
		Supplier:     m.Supplier,
		Location:     m.Location,
		Notes:        m.Notes,
		Status:       m.Status,
		TotalValue:   m.TotalValue(),
		NeedsReorder: m.NeedsReorder(),
	}
}
