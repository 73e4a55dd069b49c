// Package rawmaterial provides the RawMaterial catalog.
package rawmaterial

import (
	"context"
	"database/sql/driver"
	"regexp"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
)

// Status of a raw material.
type Status string

const (
	StatusActive       Status = "active"
	StatusInactive     Status = "inactive"
	StatusDiscontinued Status = "discontinued"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Supplier describes where a material is bought.
type Supplier struct {
	Name         string `json:"name,omitempty"`
	Contact      string `json:"contact,omitempty"`
	LeadTimeDays int    `json:"leadTimeDays,omitempty"`
}

func (s *Supplier) Scan(src any) error         { return entity.ScanJSON(src, s) }
func (s Supplier) Value() (driver.Value, error) { return entity.JSONValue(s) }

// RawMaterial is an input to production.
//
// StockCurrent is a projection of the inventory ledger; it is written only by
// inventory postings, never by catalog edits.
type RawMaterial struct {
	entity.Catalog

	BrandID  id.ID     `db:"brand_id" json:"brandId"`
	Category string    `db:"category" json:"category,omitempty"`
	Unit     unit.Unit `db:"unit" json:"unit"`

	StockCurrent decimal.Decimal `db:"stock_current" json:"stockCurrent"`
	StockMinimum decimal.Decimal `db:"stock_minimum" json:"stockMinimum"`
	StockMaximum decimal.Decimal `db:"stock_maximum" json:"stockMaximum"`

	CostPerUnit decimal.Decimal `db:"cost_per_unit" json:"costPerUnit"`
	Currency    string          `db:"currency" json:"currency"`

	Supplier Supplier `db:"supplier" json:"supplier"`
	Location string   `db:"location" json:"location,omitempty"`
	Notes    string   `db:"notes" json:"notes,omitempty"`
	Status   Status   `db:"status" json:"status"`
}

// NewRawMaterial creates an active material with zero stock.
func NewRawMaterial(brandID id.ID, code, name string, u unit.Unit) *RawMaterial {
	return &RawMaterial{
		Catalog:  entity.NewCatalog(code, name),
		BrandID:  brandID,
		Unit:     u,
		Currency: "USD",
		Status:   StatusActive,
	}
}

// GetBrandID returns the owning brand.
func (m *RawMaterial) GetBrandID() id.ID {
	return m.BrandID
}

// Validate implements entity.Validatable.
func (m *RawMaterial) Validate(ctx context.Context) error {
	var v entity.Violations
	m.ValidateCatalog(&v, 200, 20, 500)
	if id.IsNil(m.BrandID) {
		v.Add("brand", "is required")
	}
	v.OneOf("unit", string(m.Unit), unit.MaterialUnits...)
	if m.StockCurrent.IsNegative() {
		v.Add("stock.current", "must not be negative")
	}
	if m.StockMinimum.IsNegative() {
		v.Add("stock.minimum", "must not be negative")
	}
	if m.StockMaximum.IsPositive() && m.StockMaximum.LessThan(m.StockMinimum) {
		v.Add("stock.maximum", "must not be less than minimum")
	}
	if m.CostPerUnit.IsNegative() {
		v.Add("pricing.costPerUnit", "must not be negative")
	}
	if !currencyPattern.MatchString(m.Currency) {
		v.Add("pricing.currency", "must be a 3-letter uppercase code")
	}
	if m.Supplier.LeadTimeDays < 0 {
		v.Add("supplier.leadTime", "must not be negative")
	}
	v.OneOf("status", string(m.Status), string(StatusActive), string(StatusInactive), string(StatusDiscontinued))
	return v.Err()
}

// TotalValue is current stock valued at the current cost per unit.
func (m *RawMaterial) TotalValue() decimal.Decimal {
	return m.StockCurrent.Mul(m.CostPerUnit)
}

// NeedsReorder reports whether stock is at or below the minimum.
func (m *RawMaterial) NeedsReorder() bool {
	return m.StockCurrent.LessThanOrEqual(m.StockMinimum)
}
