package inventory

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/entity"
	"trackiq/internal/core/types"
)

// NextBalance returns the stock level after applying a movement of qty.
// It does not check the result for negativity.
func NextBalance(current decimal.Decimal, t TxType, qty decimal.Decimal) decimal.Decimal {
	switch {
	case t.Incoming():
		return current.Add(qty)
	case t.Outgoing():
		return current.Sub(qty)
	default:
		return qty
	}
}

// validateTransaction checks the shape of a transaction before it touches a balance.
func validateTransaction(t *Transaction) error {
	var v entity.Violations
	if !slices.Contains(TxTypes, string(t.Type)) {
		v.Add("type", "must be one of in, out, adjustment, production-use, production-output")
	}
	if !t.Quantity.IsPositive() {
		v.Add("quantity.value", "must be greater than 0")
	}
	if t.ReferenceType != "" && !slices.Contains(ReferenceTypes, string(t.ReferenceType)) {
		v.Add("reference.type", "is not a valid reference type")
	}
	if t.CostPerUnit.IsNegative() {
		v.Add("cost.perUnit", "must not be negative")
	}
	if t.ManufacturingDate != nil && t.ExpiryDate != nil && !t.ExpiryDate.After(*t.ManufacturingDate) {
		v.Add("batch.expiryDate", "must be after the manufacturing date")
	}
	return v.Err()
}

// Apply posts t against inv. On success inv holds the new balance and valuation
// and t carries its cost and BalanceAfter. On any error neither is modified.
//
// t.Quantity must already be expressed in inv.Unit.
func Apply(inv *Inventory, t *Transaction, now time.Time) error {
	if err := validateTransaction(t); err != nil {
		return err
	}

	next := NextBalance(inv.CurrentStock, t.Type, t.Quantity)
	if next.IsNegative() {
		return apperror.NewInsufficientStock(
			inv.ItemID.String(),
			t.Quantity.String(),
			inv.CurrentStock.String(),
		)
	}

	if t.CostPerUnit.IsZero() && !t.Type.Incoming() {
		t.CostPerUnit = inv.AverageCost
	}
	t.CostTotal = t.Quantity.Mul(t.CostPerUnit)
	t.InventoryID = inv.ID
	t.Unit = inv.Unit
	t.BalanceAfter = next
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	if t.Type.Incoming() {
		inv.IncomingQuantity = inv.IncomingQuantity.Add(t.Quantity)
		inv.IncomingCost = inv.IncomingCost.Add(t.CostTotal)
		inv.AverageCost = types.SafeDiv(inv.IncomingCost, inv.IncomingQuantity)
		if t.BatchNumber != "" {
			inv.Batches = append(inv.Batches, Batch{
				Number:            t.BatchNumber,
				Quantity:          t.Quantity,
				ManufacturingDate: t.ManufacturingDate,
				ExpiryDate:        t.ExpiryDate,
				ReceivedAt:        t.CreatedAt,
			})
		}
	}
	if t.LocationTo != "" && t.Type.Incoming() {
		inv.Location = t.LocationTo
	}

	inv.CurrentStock = next
	inv.TotalValue = next.Mul(inv.AverageCost)
	stamp := t.CreatedAt
	inv.ValueUpdatedAt = &stamp
	return nil
}

// AverageCost recomputes the moving average from a full history: total cost of
// incoming transactions divided by their total quantity. Apply keeps the same
// value incrementally.
func AverageCost(history []Transaction) decimal.Decimal {
	qty, cost := decimal.Zero, decimal.Zero
	for _, t := range history {
		if t.Type.Incoming() {
			qty = qty.Add(t.Quantity)
			cost = cost.Add(t.CostTotal)
		}
	}
	return types.SafeDiv(cost, qty)
}

// Replay folds a history into a balance starting from zero.
func Replay(history []Transaction) decimal.Decimal {
	balance := decimal.Zero
	for _, t := range history {
		balance = NextBalance(balance, t.Type, t.Quantity)
	}
	return balance
}
