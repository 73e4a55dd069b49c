// Package unit defines the units of measure used by materials, BOM lines and
// inventory, with conversion between units of the same dimension.
package unit

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Unit of measure.
type Unit string

const (
	Kilogram   Unit = "kg"
	Gram       Unit = "g"
	Liter      Unit = "l"
	Milliliter Unit = "ml"
	Pieces     Unit = "pieces"
	Boxes      Unit = "boxes"
	Rolls      Unit = "rolls"
	Meters     Unit = "meters"

	// Cartons is only valid as a BOM batch size unit
	Cartons Unit = "cartons"
)

// Dimension groups units that convert into each other.
type Dimension string

const (
	Mass   Dimension = "mass"
	Volume Dimension = "volume"
	Count  Dimension = "count"
	Length Dimension = "length"
)

type info struct {
	dim Dimension
	// factor to the dimension's base unit (kg, l); zero means not convertible
	factor decimal.Decimal
}

var units = map[Unit]info{
	Kilogram:   {Mass, decimal.NewFromInt(1)},
	Gram:       {Mass, decimal.New(1, -3)},
	Liter:      {Volume, decimal.NewFromInt(1)},
	Milliliter: {Volume, decimal.New(1, -3)},
	Pieces:     {Count, decimal.Zero},
	Boxes:      {Count, decimal.Zero},
	Rolls:      {Count, decimal.Zero},
	Meters:     {Length, decimal.NewFromInt(1)},
}

// MaterialUnits are the units a raw material may be stocked in.
var MaterialUnits = []string{"kg", "g", "l", "ml", "pieces", "boxes", "rolls", "meters"}

// Valid reports whether u is a stock unit.
func (u Unit) Valid() bool {
	_, ok := units[u]
	return ok
}

// Dimension returns the unit's dimension.
func (u Unit) Dimension() Dimension {
	return units[u].dim
}

// Convert expresses q (in from) in to. Identical units always convert; count
// units only convert to themselves.
func Convert(q decimal.Decimal, from, to Unit) (decimal.Decimal, error) {
	if from == to {
		return q, nil
	}
	fi, ok1 := units[from]
	ti, ok2 := units[to]
	if !ok1 || !ok2 || fi.dim != ti.dim || fi.factor.IsZero() || ti.factor.IsZero() {
		return decimal.Zero, fmt.Errorf("cannot convert %s to %s", from, to)
	}
	return q.Mul(fi.factor).Div(ti.factor), nil
}
