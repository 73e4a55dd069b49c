package bom

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/types"
	"trackiq/internal/domain/catalogs/unit"
)

// Requirement is the quantity of one material needed for a production run.
type Requirement struct {
	MaterialID id.ID           `json:"material"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       unit.Unit       `json:"unit"`
}

// Material is what the formula engine needs to know about a raw material.
type Material struct {
	Code        string
	Name        string
	Unit        unit.Unit
	CostPerUnit decimal.Decimal
	Available   decimal.Decimal
}

// Materials resolves material ids; an absent key means the material no longer exists.
type Materials map[id.ID]Material

// Shortage is a material that cannot cover a requirement.
type Shortage struct {
	MaterialID id.ID           `json:"material"`
	Code       string          `json:"code,omitempty"`
	Name       string          `json:"name,omitempty"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
	Unit       unit.Unit       `json:"unit"`
	Missing    bool            `json:"missing,omitempty"`
}

// MaterialsNeeded scales every line to productionQty and applies its wastage.
// Quantities stay in the line's unit.
func MaterialsNeeded(b *BOM, productionQty decimal.Decimal) ([]Requirement, error) {
	if !b.BatchQuantity.IsPositive() {
		return nil, apperror.NewInvalidInput("BOM batch size must be positive").
			WithDetail("batchSize", b.BatchQuantity.String())
	}
	if productionQty.IsNegative() {
		return nil, apperror.NewFieldValidation("quantity", "must not be negative")
	}

	out := make([]Requirement, 0, len(b.Materials))
	for _, line := range b.Materials {
		// multiply first, divide once
		qty := line.Quantity.
			Mul(productionQty).
			Mul(types.WastageFactor(line.WastagePercent)).
			Div(b.BatchQuantity)
		out = append(out, Requirement{MaterialID: line.MaterialID, Quantity: qty, Unit: line.Unit})
	}
	return out, nil
}

// CheckAvailability returns every requirement the current stock cannot cover.
// An empty result means the batch can be produced. Requirements for the same
// material on several lines are summed before comparing.
func CheckAvailability(b *BOM, productionQty decimal.Decimal, materials Materials) ([]Shortage, error) {
	reqs, err := MaterialsNeeded(b, productionQty)
	if err != nil {
		return nil, err
	}

	type need struct {
		qty  decimal.Decimal
		unit unit.Unit
	}
	needs := make(map[id.ID]*need)
	var order []id.ID
	for _, r := range reqs {
		m, ok := materials[r.MaterialID]
		qty, u := r.Quantity, r.Unit
		if ok {
			converted, err := unit.Convert(r.Quantity, r.Unit, m.Unit)
			if err != nil {
				return nil, lineUnitError(r.MaterialID, err)
			}
			qty, u = converted, m.Unit
		}
		if n, seen := needs[r.MaterialID]; seen {
			n.qty = n.qty.Add(qty)
			continue
		}
		needs[r.MaterialID] = &need{qty: qty, unit: u}
		order = append(order, r.MaterialID)
	}

	var shortages []Shortage
	for _, materialID := range order {
		n := needs[materialID]
		m, ok := materials[materialID]
		if !ok {
			shortages = append(shortages, Shortage{
				MaterialID: materialID,
				Required:   n.qty,
				Available:  decimal.Zero,
				Unit:       n.unit,
				Missing:    true,
			})
			continue
		}
		if n.qty.GreaterThan(m.Available) {
			shortages = append(shortages, Shortage{
				MaterialID: materialID,
				Code:       m.Code,
				Name:       m.Name,
				Required:   n.qty,
				Available:  m.Available,
				Unit:       m.Unit,
			})
		}
	}
	return shortages, nil
}

// RecomputeMaterialCost prices every line at the material's current cost:
// sum of quantity * (1 + wastage/100) * costPerUnit. It writes the result to
// b.MaterialCost and returns it; the same inputs always give the same value.
func RecomputeMaterialCost(b *BOM, materials Materials) (decimal.Decimal, error) {
	total := decimal.Zero
	for i, line := range b.Materials {
		m, ok := materials[line.MaterialID]
		if !ok {
			return decimal.Zero, apperror.NewFieldValidation(
				fmt.Sprintf("materials[%d].material", i), "material not found")
		}
		qty, err := unit.Convert(line.Quantity, line.Unit, m.Unit)
		if err != nil {
			return decimal.Zero, lineUnitError(line.MaterialID, err)
		}
		total = total.Add(qty.Mul(types.WastageFactor(line.WastagePercent)).Mul(m.CostPerUnit))
	}
	b.MaterialCost = total
	return total, nil
}

func lineUnitError(materialID id.ID, err error) error {
	return apperror.NewValidation("BOM line unit does not match the material unit").
		WithDetail("material", materialID.String()).
		WithCause(err)
}
