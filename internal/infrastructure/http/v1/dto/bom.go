package dto

import (
	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/bom"
	"trackiq/internal/domain/catalogs/unit"
)

// BatchSizeDTO is the output of one batch.
type BatchSizeDTO struct {
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit" binding:"omitempty,oneof=pieces cartons"`
}

// BOMLineDTO is one material of the formula.
type BOMLineDTO struct {
	Material       string          `json:"material" binding:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit" binding:"required,unit"`
	WastagePercent decimal.Decimal `json:"wastagePercent"`
	Notes          string          `json:"notes" binding:"omitempty,max=500"`
}

// ProcessStepDTO is one manufacturing step.
type ProcessStepDTO struct {
	Step            int    `json:"step" binding:"min=1"`
	Description     string `json:"description" binding:"required,max=500"`
	DurationMinutes int    `json:"duration" binding:"omitempty,min=0"`
}

// CostingsRequest carries the non-derived BOM costs.
type CostingsRequest struct {
	LaborCost    decimal.Decimal `json:"laborCost"`
	OverheadCost decimal.Decimal `json:"overheadCost"`
	Currency     string          `json:"currency" binding:"omitempty,len=3"`
}

// --- Request DTOs ---

// BOMFields are the editable fields of a BOM.
type BOMFields struct {
	Name         string           `json:"name" binding:"required,max=200"`
	Revision     string           `json:"revision" binding:"omitempty,max=20"`
	BatchSize    BatchSizeDTO     `json:"batchSize"`
	Materials    []BOMLineDTO     `json:"materials" binding:"dive"`
	ProcessSteps []ProcessStepDTO `json:"processSteps" binding:"dive"`
	Costings     CostingsRequest  `json:"costings"`
	Notes        string           `json:"notes" binding:"omitempty,max=1000"`
}

func (f *BOMFields) apply(b *bom.BOM) error {
	b.Name = f.Name
	if f.Revision != "" {
		b.Revision = f.Revision
	}
	b.BatchQuantity = f.BatchSize.Quantity
	if f.BatchSize.Unit != "" {
		b.BatchUnit = unit.Unit(f.BatchSize.Unit)
	}

	lines := make(bom.Lines, 0, len(f.Materials))
	for _, l := range f.Materials {
		materialID, err := id.ParseField("materials.material", l.Material)
		if err != nil {
			return err
		}
		lines = append(lines, bom.Line{
			MaterialID:     materialID,
			Quantity:       l.Quantity,
			Unit:           unit.Unit(l.Unit),
			WastagePercent: l.WastagePercent,
			Notes:          l.Notes,
		})
	}
	b.Materials = lines

	steps := make(bom.ProcessSteps, 0, len(f.ProcessSteps))
	for _, s := range f.ProcessSteps {
		steps = append(steps, bom.ProcessStep(s))
	}
	b.ProcessSteps = steps

	b.LaborCost = f.Costings.LaborCost
	b.OverheadCost = f.Costings.OverheadCost
	if f.Costings.Currency != "" {
		b.Currency = f.Costings.Currency
	}
	b.Notes = f.Notes
	return nil
}

// CreateBOMRequest is the request body for creating a BOM. The brand defaults
// to the product's brand.
type CreateBOMRequest struct {
	BOMFields
	Product string `json:"product" binding:"required,uuid"`
	Brand   string `json:"brand" binding:"omitempty,uuid"`
	Status  string `json:"status" binding:"omitempty,oneof=draft active archived"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBOMRequest) ToEntity() (*bom.BOM, error) {
	productID, err := id.ParseField("product", r.Product)
	if err != nil {
		return nil, err
	}
	brandID := id.Nil()
	if r.Brand != "" {
		if brandID, err = id.ParseField("brand", r.Brand); err != nil {
			return nil, err
		}
	}
	b := bom.NewBOM(productID, brandID, r.Name, r.BatchSize.Quantity)
	if r.Status != "" {
		b.Status = bom.Status(r.Status)
	}
	if err := r.apply(b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBOMRequest is the request body for updating a BOM.
type UpdateBOMRequest struct {
	BOMFields
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateBOMRequest) ApplyTo(b *bom.BOM) error {
	b.Version = r.Version
	return r.apply(b)
}

// BOMListQuery adds the product filter to the common list query.
type BOMListQuery struct {
	ListQuery
	Product string `form:"product" binding:"omitempty,uuid"`
}

// ToBOMFilter converts the query into a BOM filter.
func (q *BOMListQuery) ToBOMFilter() (bom.ListFilter, error) {
	base, err := q.ToFilter()
	if err != nil {
		return bom.ListFilter{}, err
	}
	productID, err := ParseOptionalID("product", q.Product)
	if err != nil {
		return bom.ListFilter{}, err
	}
	return bom.ListFilter{ListFilter: base, ProductID: productID}, nil
}

// --- Response DTOs ---

// CostingsResponse is the cost roll-up of a BOM.
type CostingsResponse struct {
	MaterialCost decimal.Decimal `json:"materialCost"`
	LaborCost    decimal.Decimal `json:"laborCost"`
	OverheadCost decimal.Decimal `json:"overheadCost"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	CostPerUnit  decimal.Decimal `json:"costPerUnit"`
	Currency     string          `json:"currency"`
}

// BOMResponse is the response body for a BOM.
type BOMResponse struct {
	BaseResponse
	Name         string           `json:"name"`
	Product      string           `json:"product"`
	Brand        string           `json:"brand"`
	Revision     string           `json:"revision"`
	Status       bom.Status       `json:"status"`
	BatchSize    BatchSizeDTO     `json:"batchSize"`
	Materials    bom.Lines        `json:"materials"`
	ProcessSteps bom.ProcessSteps `json:"processSteps"`
	Costings     CostingsResponse `json:"costings"`
	Notes        string           `json:"notes,omitempty"`
}

// FromBOM creates response DTO from domain entity.
func FromBOM(b *bom.BOM) BOMResponse {
	materials := b.Materials
	if materials == nil {
		materials = bom.Lines{}
	}
	steps := b.ProcessSteps
	if steps == nil {
		steps = bom.ProcessSteps{}
	}
	return BOMResponse{
		BaseResponse: FromBase(b.BaseEntity),
		Name:         b.Name,
		Product:      b.ProductID.String(),
		Brand:        b.BrandID.String(),
		Revision:     b.Revision,
		Status:       b.Status,
		BatchSize:    BatchSizeDTO{Quantity: b.BatchQuantity, Unit: string(b.BatchUnit)},
		Materials:    materials,
		ProcessSteps: steps,
		Costings: CostingsResponse{
			MaterialCost: b.MaterialCost,
			LaborCost:    b.LaborCost,
			OverheadCost: b.OverheadCost,
			TotalCost:    b.TotalCost(),
			CostPerUnit:  b.CostPerUnit(),
			Currency:     b.Currency,
		},
		Notes: b.Notes,
	}
}

// AvailabilityResponse is the result of an availability check.
type AvailabilityResponse struct {
	CanProduce bool           `json:"canProduce"`
	Quantity   string         `json:"quantity"`
	Shortages  []bom.Shortage `json:"shortages"`
}

// NewAvailabilityResponse wraps shortages; an empty list means the run can proceed.
func NewAvailabilityResponse(qty decimal.Decimal, shortages []bom.Shortage) AvailabilityResponse {
	if shortages == nil {
		shortages = []bom.Shortage{}
	}
	return AvailabilityResponse{CanProduce: len(shortages) == 0, Quantity: qty.String(), Shortages: shortages}
}
