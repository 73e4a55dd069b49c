// Package product provides the FinishedProduct catalog.
package product

import (
	"context"
	"database/sql/driver"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
)

// Status of a finished product.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
)

// PackagingType is the outer package of a product.
type PackagingType string

const (
	PackagingCarton PackagingType = "carton"
	PackagingBox    PackagingType = "box"
	PackagingBag    PackagingType = "bag"
	PackagingBottle PackagingType = "bottle"
	PackagingOther  PackagingType = "other"
)

// Weight is the net weight or volume of one piece.
type Weight struct {
	Amount decimal.Decimal `json:"value"`
	Unit   string          `json:"unit"`
}

func (w *Weight) Scan(src any) error         { return entity.ScanJSON(src, w) }
func (w Weight) Value() (driver.Value, error) { return entity.JSONValue(w) }

// FinishedProduct is a sellable item produced from a BOM. Code is unique per brand.
//
// InStockPieces and InStockCartons are a projection of the inventory ledger,
// whose balance is kept in pieces.
type FinishedProduct struct {
	entity.Catalog

	BrandID  id.ID  `db:"brand_id" json:"brandId"`
	Category string `db:"category" json:"category,omitempty"`

	PackagingType   PackagingType `db:"packaging_type" json:"packagingType"`
	UnitsPerPackage int64         `db:"units_per_package" json:"unitsPerPackage"`
	WeightPerUnit   Weight        `db:"weight_per_unit" json:"weightPerUnit"`

	InStockPieces  int64 `db:"in_stock_pieces" json:"inStockPieces"`
	InStockCartons int64 `db:"in_stock_cartons" json:"inStockCartons"`
	MinimumPieces  int64 `db:"minimum_pieces" json:"minimumPieces"`
	MinimumCartons int64 `db:"minimum_cartons" json:"minimumCartons"`

	ManufacturingCost decimal.Decimal `db:"manufacturing_cost" json:"manufacturingCost"`
	SellingPrice      decimal.Decimal `db:"selling_price" json:"sellingPrice"`
	Currency          string          `db:"currency" json:"currency"`

	ShelfLifeDays       int    `db:"shelf_life_days" json:"shelfLifeDays,omitempty"`
	StorageInstructions string `db:"storage_instructions" json:"storageInstructions,omitempty"`
	Status              Status `db:"status" json:"status"`
}

// NewFinishedProduct creates an active product packed one unit per package.
func NewFinishedProduct(brandID id.ID, code, name string) *FinishedProduct {
	return &FinishedProduct{
		Catalog:         entity.NewCatalog(code, name),
		BrandID:         brandID,
		PackagingType:   PackagingCarton,
		UnitsPerPackage: 1,
		Currency:        "USD",
		Status:          StatusActive,
	}
}

// GetBrandID returns the owning brand.
func (p *FinishedProduct) GetBrandID() id.ID {
	return p.BrandID
}

// Validate implements entity.Validatable.
func (p *FinishedProduct) Validate(ctx context.Context) error {
	var v entity.Violations
	p.ValidateCatalog(&v, 200, 20, 1000)
	if id.IsNil(p.BrandID) {
		v.Add("brand", "is required")
	}
	v.OneOf("packaging.type", string(p.PackagingType),
		string(PackagingCarton), string(PackagingBox), string(PackagingBag), string(PackagingBottle), string(PackagingOther))
	if p.UnitsPerPackage < 1 {
		v.Add("packaging.unitsPerPackage", "must be at least 1")
	}
	if p.WeightPerUnit.Unit != "" {
		v.OneOf("packaging.weightPerUnit.unit", p.WeightPerUnit.Unit, "g", "kg", "ml", "l")
	}
	if p.WeightPerUnit.Amount.IsNegative() {
		v.Add("packaging.weightPerUnit.value", "must not be negative")
	}
	if p.InStockPieces < 0 || p.InStockCartons < 0 {
		v.Add("inventory.inStock", "must not be negative")
	}
	if p.MinimumPieces < 0 || p.MinimumCartons < 0 {
		v.Add("inventory.minimum", "must not be negative")
	}
	if p.ManufacturingCost.IsNegative() {
		v.Add("pricing.manufacturingCost", "must not be negative")
	}
	if p.SellingPrice.IsNegative() {
		v.Add("pricing.sellingPrice", "must not be negative")
	}
	if p.ShelfLifeDays < 0 {
		v.Add("shelfLife", "must not be negative")
	}
	v.OneOf("status", string(p.Status), string(StatusActive), string(StatusInactive), string(StatusDiscontinued))
	return v.Err()
}

// TotalPieces is loose pieces plus full cartons.
func (p *FinishedProduct) TotalPieces() int64 {
	return p.InStockPieces + p.InStockCartons*p.UnitsPerPackage
}

// MinimumPiecesEquivalent expresses the minimum stock in pieces.
func (p *FinishedProduct) MinimumPiecesEquivalent() int64 {
	return p.MinimumPieces + p.MinimumCartons*p.UnitsPerPackage
}

// TotalValue is the stock valued at selling price.
func (p *FinishedProduct) TotalValue() decimal.Decimal {
	return decimal.NewFromInt(p.TotalPieces()).Mul(p.SellingPrice)
}

// NeedsProduction reports whether stock is at or below the minimum.
func (p *FinishedProduct) NeedsProduction() bool {
	return p.TotalPieces() <= p.MinimumPiecesEquivalent()
}

// SetStockPieces splits a piece balance into full cartons and loose pieces.
func (p *FinishedProduct) SetStockPieces(total int64) {
	upp := p.UnitsPerPackage
	if upp < 1 {
		upp = 1
	}
	p.InStockCartons = total / upp
	p.InStockPieces = total % upp
}
