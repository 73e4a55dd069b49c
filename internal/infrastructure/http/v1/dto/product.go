package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/product"
)

// WeightDTO is the net weight or volume of one piece.
type WeightDTO struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit" binding:"omitempty,oneof=g kg ml l"`
}

// PackagingDTO describes how pieces are packed.
type PackagingDTO struct {
	Type            string    `json:"type" binding:"omitempty,oneof=carton box bag bottle other"`
	UnitsPerPackage int64     `json:"unitsPerPackage" binding:"omitempty,min=1"`
	WeightPerUnit   WeightDTO `json:"weightPerUnit"`
}

// PiecesCartonsDTO is a quantity split into loose pieces and full cartons.
type PiecesCartonsDTO struct {
	Pieces  int64 `json:"pieces" binding:"min=0"`
	Cartons int64 `json:"cartons" binding:"min=0"`
}

// ProductInventoryRequest carries the stock minimum. In-stock quantities come
// from the inventory ledger only.
type ProductInventoryRequest struct {
	Minimum PiecesCartonsDTO `json:"minimum"`
}

// ProductPricingDTO is the cost and price of one piece.
type ProductPricingDTO struct {
	ManufacturingCost decimal.Decimal `json:"manufacturingCost"`
	SellingPrice      decimal.Decimal `json:"sellingPrice"`
	Currency          string          `json:"currency" binding:"omitempty,len=3"`
}

// --- Request DTOs ---

// ProductFields are the editable fields of a finished product.
type ProductFields struct {
	Name                string                  `json:"name" binding:"required,max=200"`
	Code                string                  `json:"code" binding:"required,max=20,uppercase_code"`
	Description         string                  `json:"description" binding:"omitempty,max=1000"`
	Category            string                  `json:"category" binding:"omitempty,max=100"`
	Packaging           PackagingDTO            `json:"packaging"`
	Inventory           ProductInventoryRequest `json:"inventory"`
	Pricing             ProductPricingDTO       `json:"pricing"`
	ShelfLifeDays       int                     `json:"shelfLife" binding:"omitempty,min=0"`
	StorageInstructions string                  `json:"storageInstructions" binding:"omitempty,max=500"`
	Status              string                  `json:"status" binding:"omitempty,oneof=active inactive discontinued"`
}

func (f *ProductFields) apply(p *product.FinishedProduct) {
	p.Code = entity.NormalizeCode(f.Code)
	p.Name = strings.TrimSpace(f.Name)
	p.Description = f.Description
	p.Category = f.Category
	if f.Packaging.Type != "" {
		p.PackagingType = product.PackagingType(f.Packaging.Type)
	}
	if f.Packaging.UnitsPerPackage > 0 {
		p.UnitsPerPackage = f.Packaging.UnitsPerPackage
	}
	p.WeightPerUnit = product.Weight{Amount: f.Packaging.WeightPerUnit.Value, Unit: f.Packaging.WeightPerUnit.Unit}
	p.MinimumPieces = f.Inventory.Minimum.Pieces
	p.MinimumCartons = f.Inventory.Minimum.Cartons
	p.ManufacturingCost = f.Pricing.ManufacturingCost
	p.SellingPrice = f.Pricing.SellingPrice
	if f.Pricing.Currency != "" {
		p.Currency = strings.ToUpper(f.Pricing.Currency)
	}
	p.ShelfLifeDays = f.ShelfLifeDays
	p.StorageInstructions = f.StorageInstructions
	if f.Status != "" {
		p.Status = product.Status(f.Status)
	}
}

// CreateProductRequest is the request body for creating a finished product.
type CreateProductRequest struct {
	ProductFields
	Brand string `json:"brand" binding:"required,uuid"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() (*product.FinishedProduct, error) {
	brandID, err := id.ParseField("brand", r.Brand)
	if err != nil {
		return nil, err
	}
	p := product.NewFinishedProduct(brandID, r.Code, r.Name)
	r.apply(p)
	return p, nil
}

// UpdateProductRequest is the request body for updating a finished product.
type UpdateProductRequest struct {
	ProductFields
	Version int `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.FinishedProduct) {
	r.apply(p)
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductInventoryResponse is the stock block of a product.
type ProductInventoryResponse struct {
	InStock PiecesCartonsDTO `json:"inStock"`
	Minimum PiecesCartonsDTO `json:"minimum"`
}

// ProductResponse is the response body for a finished product.
type ProductResponse struct {
	BaseResponse
	Code                string                   `json:"code"`
	Name                string                   `json:"name"`
	Description         string                   `json:"description,omitempty"`
	Category            string                   `json:"category,omitempty"`
	Brand               string                   `json:"brand"`
	Packaging           PackagingDTO             `json:"packaging"`
	Inventory           ProductInventoryResponse `json:"inventory"`
	Pricing             ProductPricingDTO        `json:"pricing"`
	ShelfLifeDays       int                      `json:"shelfLife,omitempty"`
	StorageInstructions string                   `json:"storageInstructions,omitempty"`
	Status              product.Status           `json:"status"`
	TotalPieces         int64                    `json:"totalPieces"`
	TotalValue          decimal.Decimal          `json:"totalValue"`
	NeedsProduction     bool                     `json:"needsProduction"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.FinishedProduct) ProductResponse {
	return ProductResponse{
		BaseResponse: FromBase(p.BaseEntity),
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Brand:        p.BrandID.String(),
		Packaging: PackagingDTO{
			Type:            string(p.PackagingType),
			UnitsPerPackage: p.UnitsPerPackage,
			WeightPerUnit:   WeightDTO{Value: p.WeightPerUnit.Amount, Unit: p.WeightPerUnit.Unit},
		},
		Inventory: ProductInventoryResponse{
			InStock: PiecesCartonsDTO{Pieces: p.InStockPieces, Cartons: p.InStockCartons},
			Minimum: PiecesCartonsDTO{Pieces: p.MinimumPieces, Cartons: p.MinimumCartons},
		},
		Pricing: ProductPricingDTO{
			ManufacturingCost: p.ManufacturingCost,
			SellingPrice:      p.SellingPrice,
			Currency:          p.Currency,
		},
		ShelfLifeDays:       p.ShelfLifeDays,
		StorageInstructions: p.StorageInstructions,
		Status:              p.Status,
		TotalPieces:         p.TotalPieces(),
		TotalValue:          p.TotalValue(),
		NeedsProduction:     p.NeedsProduction(),
	}
}
