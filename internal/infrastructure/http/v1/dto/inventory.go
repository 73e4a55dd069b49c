package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/inventory"
)

// TxQuantityDTO is the amount moved by a transaction.
type TxQuantityDTO struct {
	Value decimal.Decimal `json:"value"`
	Unit  string          `json:"unit" binding:"omitempty,unit"`
}

// ReferenceDTO names the business event behind a transaction.
type ReferenceDTO struct {
	Type   string `json:"type" binding:"omitempty,oneof=production purchase sale return adjustment transfer"`
	Number string `json:"number" binding:"omitempty,max=50"`
}

// BatchDTO identifies a received lot.
type BatchDTO struct {
	Number            string     `json:"number" binding:"omitempty,max=50"`
	ManufacturingDate *time.Time `json:"manufacturingDate"`
	ExpiryDate        *time.Time `json:"expiryDate"`
}

// LocationDTO is the movement between locations.
type LocationDTO struct {
	From string `json:"from" binding:"omitempty,max=100"`
	To   string `json:"to" binding:"omitempty,max=100"`
}

// TxCostDTO is the valuation of a transaction.
type TxCostDTO struct {
	PerUnit decimal.Decimal `json:"perUnit"`
	Total   decimal.Decimal `json:"total"`
}

// --- Request DTOs ---

// TransactionRequest appends one ledger entry. The quantity is always
// positive; the type gives the direction and adjustment sets the level.
type TransactionRequest struct {
	ItemType  string        `json:"itemType" binding:"required,oneof=raw-material finished-product"`
	Item      string        `json:"item" binding:"required,uuid"`
	Brand     string        `json:"brand" binding:"omitempty,uuid"`
	Type      string        `json:"type" binding:"required,oneof=in out adjustment production-use production-output"`
	Quantity  TxQuantityDTO `json:"quantity"`
	Reference ReferenceDTO  `json:"reference"`
	Batch     BatchDTO      `json:"batch"`
	Location  LocationDTO   `json:"location"`
	Cost      TxCostDTO     `json:"cost"`
	Notes     string        `json:"notes" binding:"omitempty,max=500"`
}

// ToPosting converts DTO to a ledger posting.
func (r *TransactionRequest) ToPosting() (inventory.Posting, error) {
	itemID, err := id.ParseField("item", r.Item)
	if err != nil {
		return inventory.Posting{}, err
	}
	brandID := id.Nil()
	if r.Brand != "" {
		if brandID, err = id.ParseField("brand", r.Brand); err != nil {
			return inventory.Posting{}, err
		}
	}
	costPerUnit := r.Cost.PerUnit
	if costPerUnit.IsZero() && r.Cost.Total.IsPositive() && r.Quantity.Value.IsPositive() {
		costPerUnit = r.Cost.Total.Div(r.Quantity.Value)
	}
	return inventory.Posting{
		ItemType:          inventory.ItemType(r.ItemType),
		ItemID:            itemID,
		BrandID:           brandID,
		Type:              inventory.TxType(r.Type),
		Quantity:          r.Quantity.Value,
		Unit:              unit.Unit(r.Quantity.Unit),
		ReferenceType:     inventory.ReferenceType(r.Reference.Type),
		ReferenceNumber:   r.Reference.Number,
		BatchNumber:       r.Batch.Number,
		ManufacturingDate: r.Batch.ManufacturingDate,
		ExpiryDate:        r.Batch.ExpiryDate,
		LocationFrom:      r.Location.From,
		LocationTo:        r.Location.To,
		CostPerUnit:       costPerUnit,
		Notes:             r.Notes,
	}, nil
}

// LimitsRequest replaces the replenishment thresholds of a record.
type LimitsRequest struct {
	Minimum      decimal.Decimal `json:"minimum"`
	Maximum      decimal.Decimal `json:"maximum"`
	ReorderPoint decimal.Decimal `json:"reorderPoint"`
	Version      int             `json:"version" binding:"omitempty,min=1"`
}

// ToLimits converts DTO to domain limits.
func (r *LimitsRequest) ToLimits() inventory.Limits {
	return inventory.Limits{Minimum: r.Minimum, Maximum: r.Maximum, ReorderPoint: r.ReorderPoint}
}

// InventoryListQuery adds item type and low-stock filters to the common list query.
type InventoryListQuery struct {
	ListQuery
	ItemType string `form:"itemType" binding:"omitempty,oneof=raw-material finished-product"`
	LowOnly  bool   `form:"lowStock"`
}

// ToInventoryFilter converts the query into an inventory filter.
func (q *InventoryListQuery) ToInventoryFilter() (inventory.ListFilter, error) {
	base, err := q.ToFilter()
	if err != nil {
		return inventory.ListFilter{}, err
	}
	return inventory.ListFilter{ListFilter: base, ItemType: inventory.ItemType(q.ItemType), LowOnly: q.LowOnly}, nil
}

// BrandQuery narrows a report to one brand.
type BrandQuery struct {
	Brand string `form:"brand" binding:"omitempty,uuid"`
}

// BrandID returns the parsed brand, or nil.
func (q *BrandQuery) BrandID() (*id.ID, error) {
	return ParseOptionalID("brand", q.Brand)
}

// --- Response DTOs ---

// StockLevelDTO is a quantity with its unit.
type StockLevelDTO struct {
	Value decimal.Decimal `json:"value"`
	Unit  unit.Unit       `json:"unit"`
}

// ValuationDTO is the moving-average valuation of a record.
type ValuationDTO struct {
	Average     decimal.Decimal `json:"average"`
	Total       decimal.Decimal `json:"total"`
	LastUpdated *time.Time      `json:"lastUpdated,omitempty"`
}

// LimitsDTO are the thresholds of a record.
type LimitsDTO struct {
	Minimum      decimal.Decimal `json:"minimum"`
	Maximum      decimal.Decimal `json:"maximum"`
	ReorderPoint decimal.Decimal `json:"reorderPoint"`
}

// InventoryResponse is the response body for an inventory record.
type InventoryResponse struct {
	BaseResponse
	ItemType     inventory.ItemType `json:"itemType"`
	Item         string             `json:"item"`
	Brand        string             `json:"brand"`
	CurrentStock StockLevelDTO      `json:"currentStock"`
	Value        ValuationDTO       `json:"value"`
	Limits       LimitsDTO          `json:"limits"`
	Location     string             `json:"location,omitempty"`
	Batches      inventory.Batches  `json:"batches"`
	IsLow        bool               `json:"isLow"`
}

// FromInventory creates response DTO from domain entity.
func FromInventory(inv *inventory.Inventory) InventoryResponse {
	return InventoryResponse{
		BaseResponse: FromBase(inv.BaseEntity),
		ItemType:     inv.ItemType,
		Item:         inv.ItemID.String(),
		Brand:        inv.BrandID.String(),
		CurrentStock: StockLevelDTO{Value: inv.CurrentStock, Unit: inv.Unit},
		Value: ValuationDTO{
			Average:     inv.AverageCost,
			Total:       inv.TotalValue,
			LastUpdated: inv.ValueUpdatedAt,
		},
		Limits: LimitsDTO{
			Minimum:      inv.Minimum,
			Maximum:      inv.Maximum,
			ReorderPoint: inv.ReorderPoint,
		},
		Location: inv.Location,
		Batches:  orEmpty(inv.Batches),
		IsLow:    inv.IsLow(),
	}
}

// TransactionResponse is the response body for a ledger entry.
type TransactionResponse struct {
	ID           string           `json:"id"`
	Inventory    string           `json:"inventory"`
	Type         inventory.TxType `json:"type"`
	Quantity     StockLevelDTO    `json:"quantity"`
	Reference    ReferenceDTO     `json:"reference"`
	Batch        BatchDTO         `json:"batch"`
	Location     LocationDTO      `json:"location"`
	Cost         TxCostDTO        `json:"cost"`
	BalanceAfter decimal.Decimal  `json:"balanceAfter"`
	Notes        string           `json:"notes,omitempty"`
	PerformedBy  *id.ID           `json:"performedBy,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// FromTransaction creates response DTO from a ledger entry.
func FromTransaction(t *inventory.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        t.ID.String(),
		Inventory: t.InventoryID.String(),
		Type:      t.Type,
		Quantity:  StockLevelDTO{Value: t.Quantity, Unit: t.Unit},
		Reference: ReferenceDTO{Type: string(t.ReferenceType), Number: t.ReferenceNumber},
		Batch: BatchDTO{
			Number:            t.BatchNumber,
			ManufacturingDate: t.ManufacturingDate,
			ExpiryDate:        t.ExpiryDate,
		},
		Location:     LocationDTO{From: t.LocationFrom, To: t.LocationTo},
		Cost:         TxCostDTO{PerUnit: t.CostPerUnit, Total: t.CostTotal},
		BalanceAfter: t.BalanceAfter,
		Notes:        t.Notes,
		PerformedBy:  t.PerformedBy,
		CreatedAt:    t.CreatedAt,
	}
}

// PostingResponse is the result of appending a transaction.
type PostingResponse struct {
	Inventory   InventoryResponse   `json:"inventory"`
	Transaction TransactionResponse `json:"transaction"`
}
