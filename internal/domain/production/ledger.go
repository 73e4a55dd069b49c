package production

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/id"
	"trackiq/internal/core/types"
)

// HourlyRate prices one staff hour.
var HourlyRate = decimal.NewFromInt(15)

// MaterialsCost sums the recorded cost of every consumed line.
func MaterialsCost(lines MaterialUsages) decimal.Decimal {
	total := decimal.Zero
	for _, m := range lines {
		total = total.Add(m.Cost)
	}
	return total
}

// LaborCost is staff hours times HourlyRate.
func LaborCost(staff Staff) decimal.Decimal {
	hours := decimal.Zero
	for _, s := range staff {
		hours = hours.Add(s.Hours)
	}
	return hours.Mul(HourlyRate)
}

// Recompute refreshes the derived cost fields from the material and staff lists.
func (p *Production) Recompute() {
	p.MaterialsCost = MaterialsCost(p.Materials)
	p.LaborCost = LaborCost(p.Staff)
}

// AdditionalTotal sums the additional cost items.
func (p *Production) AdditionalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Additional {
		total = total.Add(a.Amount)
	}
	return total
}

// TotalCost is materials + labor + overhead + additional.
func (p *Production) TotalCost() decimal.Decimal {
	return types.Sum(p.MaterialsCost, p.LaborCost, p.OverheadCost, p.AdditionalTotal())
}

// CostPerUnit is the total cost per produced unit, 0 when nothing was produced.
func (p *Production) CostPerUnit() decimal.Decimal {
	return types.SafeDiv(p.TotalCost(), decimal.NewFromInt(p.ProducedQty))
}

// GoodUnits is produced minus rejected.
func (p *Production) GoodUnits() int64 {
	return p.ProducedQty - p.RejectedQty
}

// Efficiency is the share of good units among produced units, in percent.
func (p *Production) Efficiency() decimal.Decimal {
	return types.Percent(decimal.NewFromInt(p.GoodUnits()), decimal.NewFromInt(p.ProducedQty))
}

// ValidateCompletion lists the reasons the batch cannot be signed off. The
// material check compares only the number of distinct materials used with the
// number the BOM plans.
func ValidateCompletion(p *Production, plannedMaterials []id.ID) []string {
	var issues []string
	if p.ProducedQty == 0 {
		issues = append(issues, "No production quantity recorded")
	}

	failed := 0
	for _, q := range p.QualityChecks {
		if q.Status == CheckFailed {
			failed++
		}
	}
	if failed > 0 {
		issues = append(issues, fmt.Sprintf("%d quality checks failed", failed))
	}

	if plannedMaterials != nil && distinct(plannedMaterials) != distinctUsed(p.Materials) {
		issues = append(issues, "Material usage does not match BOM specifications")
	}
	return issues
}

func distinct(ids []id.ID) int {
	seen := make(map[id.ID]struct{}, len(ids))
	for _, v := range ids {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func distinctUsed(lines MaterialUsages) int {
	ids := make([]id.ID, 0, len(lines))
	for _, m := range lines {
		ids = append(ids, m.MaterialID)
	}
	return distinct(ids)
}
