// Package bom implements bills of materials: the formula engine that scales
// material requirements, checks availability and prices a batch.
package bom

import (
	"context"
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
)

// Status of a BOM.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Transitions is the BOM status graph.
var Transitions = entity.Transitions[Status]{
	StatusDraft:    {StatusActive, StatusArchived},
	StatusActive:   {StatusDraft, StatusArchived},
	StatusArchived: {StatusDraft},
}

// DefaultRevision is assigned when a BOM is created without one.
const DefaultRevision = "1.0"

var hundred = decimal.NewFromInt(100)

// Line is one material of the formula.
type Line struct {
	MaterialID     id.ID           `json:"material"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           unit.Unit       `json:"unit"`
	WastagePercent decimal.Decimal `json:"wastagePercent"`
	Notes          string          `json:"notes,omitempty"`
}

// Lines is the ordered material list, stored as JSONB.
type Lines []Line

func (l *Lines) Scan(src any) error         { return entity.ScanJSON(src, l) }
func (l Lines) Value() (driver.Value, error) { return entity.JSONValue(l) }

// MaterialIDs returns the distinct materials referenced by the lines.
func (l Lines) MaterialIDs() []id.ID {
	seen := make(map[id.ID]bool, len(l))
	out := make([]id.ID, 0, len(l))
	for _, line := range l {
		if !seen[line.MaterialID] {
			seen[line.MaterialID] = true
			out = append(out, line.MaterialID)
		}
	}
	return out
}

// ProcessStep is one manufacturing step.
type ProcessStep struct {
	Step            int    `json:"step"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// ProcessSteps is stored as JSONB.
type ProcessSteps []ProcessStep

func (p *ProcessSteps) Scan(src any) error         { return entity.ScanJSON(src, p) }
func (p ProcessSteps) Value() (driver.Value, error) { return entity.JSONValue(p) }

// BOM is the formula for one batch of a finished product.
// (product, brand, revision) is unique.
type BOM struct {
	entity.BaseEntity

	Name      string `db:"name" json:"name"`
	ProductID id.ID  `db:"product_id" json:"productId"`
	BrandID   id.ID  `db:"brand_id" json:"brandId"`
	Revision  string `db:"revision" json:"revision"`
	Status    Status `db:"status" json:"status"`

	BatchQuantity decimal.Decimal `db:"batch_quantity" json:"batchQuantity"`
	BatchUnit     unit.Unit       `db:"batch_unit" json:"batchUnit"`

	Materials    Lines        `db:"materials" json:"materials"`
	ProcessSteps ProcessSteps `db:"process_steps" json:"processSteps"`

	// MaterialCost is derived from Materials and current material prices
	MaterialCost decimal.Decimal `db:"material_cost" json:"materialCost"`
	LaborCost    decimal.Decimal `db:"labor_cost" json:"laborCost"`
	OverheadCost decimal.Decimal `db:"overhead_cost" json:"overheadCost"`
	Currency     string          `db:"currency" json:"currency"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// NewBOM creates a draft BOM.
func NewBOM(productID, brandID id.ID, name string, batchQuantity decimal.Decimal) *BOM {
	return &BOM{
		BaseEntity:    entity.NewBaseEntity(),
		Name:          name,
		ProductID:     productID,
		BrandID:       brandID,
		Revision:      DefaultRevision,
		Status:        StatusDraft,
		BatchQuantity: batchQuantity,
		BatchUnit:     unit.Pieces,
		Currency:      "USD",
	}
}

// GetBrandID returns the owning brand.
func (b *BOM) GetBrandID() id.ID {
	return b.BrandID
}

// GetCode identifies the BOM in lists and logs.
func (b *BOM) GetCode() string {
	return fmt.Sprintf("%s@%s", b.ProductID, b.Revision)
}

// Validate implements entity.Validatable.
func (b *BOM) Validate(ctx context.Context) error {
	var v entity.Violations
	v.Required("name", b.Name)
	v.MaxLen("name", b.Name, 200)
	if id.IsNil(b.ProductID) {
		v.Add("product", "is required")
	}
	if id.IsNil(b.BrandID) {
		v.Add("brand", "is required")
	}
	v.Required("revision", b.Revision)
	v.OneOf("status", string(b.Status), string(StatusDraft), string(StatusActive), string(StatusArchived))
	if b.BatchQuantity.LessThan(decimal.NewFromInt(1)) {
		v.Add("batchSize.quantity", "must be at least 1")
	}
	v.OneOf("batchSize.unit", string(b.BatchUnit), string(unit.Pieces), string(unit.Cartons))

	for i, line := range b.Materials {
		field := fmt.Sprintf("materials[%d]", i)
		if id.IsNil(line.MaterialID) {
			v.Add(field+".material", "is required")
		}
		if line.Quantity.IsNegative() {
			v.Add(field+".quantity", "must not be negative")
		}
		if !line.Unit.Valid() {
			v.Add(field+".unit", "is not a valid unit")
		}
		if line.WastagePercent.IsNegative() || line.WastagePercent.GreaterThan(hundred) {
			v.Add(field+".wastagePercent", "must be between 0 and 100")
		}
	}
	if b.LaborCost.IsNegative() {
		v.Add("costings.laborCost", "must not be negative")
	}
	if b.OverheadCost.IsNegative() {
		v.Add("costings.overheadCost", "must not be negative")
	}
	return v.Err()
}

// TotalCost is material + labor + overhead for one batch.
func (b *BOM) TotalCost() decimal.Decimal {
	return b.MaterialCost.Add(b.LaborCost).Add(b.OverheadCost)
}

// CostPerUnit is the batch total divided by the batch size.
func (b *BOM) CostPerUnit() decimal.Decimal {
	if !b.BatchQuantity.IsPositive() {
		return decimal.Zero
	}
	return b.TotalCost().Div(b.BatchQuantity)
}
