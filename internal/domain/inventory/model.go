// Package inventory keeps the stock ledger: one balance per (item type, item, brand)
// and an append-only transaction log that moves it.
package inventory

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/entity"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
)

// ItemType tags which catalog an inventory record points at.
type ItemType string

const (
	ItemRawMaterial     ItemType = "raw-material"
	ItemFinishedProduct ItemType = "finished-product"
)

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	return t == ItemRawMaterial || t == ItemFinishedProduct
}

// TxType is the kind of stock movement.
type TxType string

const (
	TxIn               TxType = "in"
	TxOut              TxType = "out"
	TxAdjustment       TxType = "adjustment"
	TxProductionUse    TxType = "production-use"
	TxProductionOutput TxType = "production-output"
)

// TxTypes lists every transaction type.
var TxTypes = []string{
	string(TxIn), string(TxOut), string(TxAdjustment),
	string(TxProductionUse), string(TxProductionOutput),
}

// Incoming reports whether t receives stock and contributes to the average cost.
func (t TxType) Incoming() bool {
	return t == TxIn || t == TxProductionOutput
}

// Outgoing reports whether t removes stock.
func (t TxType) Outgoing() bool {
	return t == TxOut || t == TxProductionUse
}

// ReferenceType names the business event behind a transaction.
type ReferenceType string

const (
	RefProduction ReferenceType = "production"
	RefPurchase   ReferenceType = "purchase"
	RefSale       ReferenceType = "sale"
	RefReturn     ReferenceType = "return"
	RefAdjustment ReferenceType = "adjustment"
	RefTransfer   ReferenceType = "transfer"
)

// ReferenceTypes lists every reference type.
var ReferenceTypes = []string{
	string(RefProduction), string(RefPurchase), string(RefSale),
	string(RefReturn), string(RefAdjustment), string(RefTransfer),
}

// Batch is a received lot.
type Batch struct {
	Number            string          `json:"number"`
	Quantity          decimal.Decimal `json:"quantity"`
	ManufacturingDate *time.Time      `json:"manufacturingDate,omitempty"`
	ExpiryDate        *time.Time      `json:"expiryDate,omitempty"`
	ReceivedAt        time.Time       `json:"receivedAt"`
}

// Batches is stored as JSONB.
type Batches []Batch

func (b *Batches) Scan(src any) error         { return entity.ScanJSON(src, b) }
func (b Batches) Value() (driver.Value, error) { return entity.JSONValue(b) }

// Limits are the replenishment thresholds of a record.
type Limits struct {
	Minimum      decimal.Decimal `json:"minimum"`
	Maximum      decimal.Decimal `json:"maximum"`
	ReorderPoint decimal.Decimal `json:"reorderPoint"`
}

// Validate checks the thresholds are consistent.
func (l Limits) Validate() error {
	var v entity.Violations
	if l.Minimum.IsNegative() {
		v.Add("limits.minimum", "must not be negative")
	}
	if l.ReorderPoint.IsNegative() {
		v.Add("limits.reorderPoint", "must not be negative")
	}
	if l.Maximum.IsPositive() && l.Maximum.LessThan(l.Minimum) {
		v.Add("limits.maximum", "must not be less than minimum")
	}
	return v.Err()
}

// Inventory is the stock balance of one item for one brand.
//
// IncomingQuantity and IncomingCost accumulate every in and production-output
// transaction; AverageCost is always their quotient.
type Inventory struct {
	entity.BaseEntity

	ItemType ItemType `db:"item_type" json:"itemType"`
	ItemID   id.ID    `db:"item_id" json:"item"`
	BrandID  id.ID    `db:"brand_id" json:"brandId"`

	CurrentStock decimal.Decimal `db:"current_stock" json:"currentStock"`
	Unit         unit.Unit       `db:"unit" json:"unit"`

	AverageCost      decimal.Decimal `db:"average_cost" json:"averageCost"`
	TotalValue       decimal.Decimal `db:"total_value" json:"totalValue"`
	IncomingQuantity decimal.Decimal `db:"incoming_quantity" json:"-"`
	IncomingCost     decimal.Decimal `db:"incoming_cost" json:"-"`
	ValueUpdatedAt   *time.Time      `db:"value_updated_at" json:"valueUpdatedAt,omitempty"`

	Minimum      decimal.Decimal `db:"minimum" json:"minimum"`
	Maximum      decimal.Decimal `db:"maximum" json:"maximum"`
	ReorderPoint decimal.Decimal `db:"reorder_point" json:"reorderPoint"`

	Location string  `db:"location" json:"location,omitempty"`
	Batches  Batches `db:"batches" json:"batches"`
}

// NewInventory creates an empty record for an item.
func NewInventory(itemType ItemType, itemID, brandID id.ID, u unit.Unit) *Inventory {
	return &Inventory{
		BaseEntity: entity.NewBaseEntity(),
		ItemType:   itemType,
		ItemID:     itemID,
		BrandID:    brandID,
		Unit:       u,
		Batches:    Batches{},
	}
}

// GetBrandID returns the owning brand.
func (inv *Inventory) GetBrandID() id.ID {
	return inv.BrandID
}

// Limits returns the record's thresholds.
func (inv *Inventory) Limits() Limits {
	return Limits{Minimum: inv.Minimum, Maximum: inv.Maximum, ReorderPoint: inv.ReorderPoint}
}

// SetLimits replaces the thresholds.
func (inv *Inventory) SetLimits(l Limits) {
	inv.Minimum, inv.Maximum, inv.ReorderPoint = l.Minimum, l.Maximum, l.ReorderPoint
}

// IsLow reports whether stock is at or below the reorder point.
func (inv *Inventory) IsLow() bool {
	return inv.CurrentStock.LessThanOrEqual(inv.ReorderPoint)
}

// Validate implements entity.Validatable.
func (inv *Inventory) Validate(ctx context.Context) error {
	var v entity.Violations
	if !inv.ItemType.Valid() {
		v.Add("itemType", "must be raw-material or finished-product")
	}
	if id.IsNil(inv.ItemID) {
		v.Add("item", "is required")
	}
	if id.IsNil(inv.BrandID) {
		v.Add("brand", "is required")
	}
	if inv.CurrentStock.IsNegative() {
		v.Add("currentStock", "must not be negative")
	}
	if err := v.Err(); err != nil {
		return err
	}
	return inv.Limits().Validate()
}

// Transaction is one ledger entry. Transactions are never updated or deleted.
type Transaction struct {
	ID          id.ID  `db:"id" json:"id"`
	InventoryID id.ID  `db:"inventory_id" json:"inventoryId"`
	Type        TxType `db:"type" json:"type"`

	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
	Unit     unit.Unit       `db:"unit" json:"unit"`

	ReferenceType   ReferenceType `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceNumber string        `db:"reference_number" json:"referenceNumber,omitempty"`

	BatchNumber       string     `db:"batch_number" json:"batchNumber,omitempty"`
	ManufacturingDate *time.Time `db:"manufacturing_date" json:"manufacturingDate,omitempty"`
	ExpiryDate        *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	LocationFrom string `db:"location_from" json:"locationFrom,omitempty"`
	LocationTo   string `db:"location_to" json:"locationTo,omitempty"`

	CostPerUnit decimal.Decimal `db:"cost_per_unit" json:"costPerUnit"`
	CostTotal   decimal.Decimal `db:"cost_total" json:"costTotal"`

	// BalanceAfter is the stock level right after this entry
	BalanceAfter decimal.Decimal `db:"balance_after" json:"balanceAfter"`

	Notes       string    `db:"notes" json:"notes,omitempty"`
	PerformedBy *id.ID    `db:"performed_by" json:"performedBy,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
