// Package reports assembles read-only summaries over production and inventory.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
)

// --- Production summary ---

// ProductionSummaryFilter bounds the production summary.
type ProductionSummaryFilter struct {
	From    time.Time
	To      time.Time
	BrandID *id.ID
}

// ProductionTotals sums every row of the summary.
type ProductionTotals struct {
	Batches    int64           `json:"batches"`
	Planned    int64           `json:"planned"`
	Produced   int64           `json:"produced"`
	Rejected   int64           `json:"rejected"`
	TotalCost  decimal.Decimal `json:"totalCost"`
	Efficiency decimal.Decimal `json:"efficiency"`
}

// ProductionSummaryReport groups batches by product.
type ProductionSummaryReport struct {
	From   time.Time               `json:"from"`
	To     time.Time               `json:"to"`
	Rows   []production.SummaryRow `json:"rows"`
	Totals ProductionTotals        `json:"totals"`
}

// --- Inventory value ---

// InventoryItem is one inventory record joined with its catalog item.
type InventoryItem struct {
	InventoryID  id.ID              `db:"inventory_id" json:"inventoryId"`
	ItemType     inventory.ItemType `db:"item_type" json:"itemType"`
	ItemID       id.ID              `db:"item_id" json:"itemId"`
	Code         string             `db:"code" json:"code"`
	Name         string             `db:"name" json:"name"`
	BrandID      id.ID              `db:"brand_id" json:"brandId"`
	BrandCode    string             `db:"brand_code" json:"brandCode"`
	CurrentStock decimal.Decimal    `db:"current_stock" json:"currentStock"`
	Unit         unit.Unit          `db:"unit" json:"unit"`
	ReorderPoint decimal.Decimal    `db:"reorder_point" json:"reorderPoint"`
	AverageCost  decimal.Decimal    `db:"average_cost" json:"averageCost"`
	TotalValue   decimal.Decimal    `db:"total_value" json:"totalValue"`
}

// Low reports whether the item is at or below its reorder point.
func (i InventoryItem) Low() bool {
	return i.CurrentStock.LessThanOrEqual(i.ReorderPoint)
}

// InventoryValueReport values current stock.
type InventoryValueReport struct {
	AsOf       time.Time                `json:"asOf"`
	ByType     []inventory.ValueSummary `json:"byType"`
	Items      []InventoryItem          `json:"items"`
	TotalValue decimal.Decimal          `json:"totalValue"`
}

// --- Low stock ---

// LowStockGroup is the low-stock items of one brand.
type LowStockGroup struct {
	BrandID   id.ID           `json:"brand"`
	BrandCode string          `json:"brandCode"`
	Items     []InventoryItem `json:"items"`
}
