package inventory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/types"
	"trackiq/internal/domain/catalogs/unit"
)

func d(s string) decimal.Decimal { return types.MustDecimal(s) }

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func post(inv *Inventory, typ TxType, qty, cost string) (*Transaction, error) {
	t := &Transaction{ID: id.New(), Type: typ, Quantity: d(qty), CostPerUnit: d(cost)}
	return t, Apply(inv, t, epoch)
}

func TestApply_InOutReject(t *testing.T) {
	inv := NewInventory(ItemFinishedProduct, id.New(), id.New(), unit.Pieces)

	_, err := post(inv, TxIn, "100", "0")
	require.NoError(t, err)
	_, err = post(inv, TxOut, "30", "0")
	require.NoError(t, err)
	assert.True(t, d("70").Equal(inv.CurrentStock))

	before := *inv
	txn, err := post(inv, TxOut, "1000", "0")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.True(t, d("70").Equal(inv.CurrentStock))
	assert.Equal(t, before, *inv)
	assert.True(t, txn.BalanceAfter.IsZero())
}

func TestApply_Adjustment(t *testing.T) {
	inv := NewInventory(ItemRawMaterial, id.New(), id.New(), unit.Kilogram)
	_, err := post(inv, TxIn, "50", "2")
	require.NoError(t, err)

	txn, err := post(inv, TxAdjustment, "42", "0")
	require.NoError(t, err)
	assert.True(t, d("42").Equal(inv.CurrentStock))
	assert.True(t, d("42").Equal(txn.BalanceAfter))
}

func TestApply_RejectsInvalid(t *testing.T) {
	cases := map[string]*Transaction{
		"zero quantity":     {Type: TxIn, Quantity: decimal.Zero},
		"negative quantity": {Type: TxOut, Quantity: d("-5")},
		"unknown type":      {Type: "gift", Quantity: d("1")},
		"unknown reference": {Type: TxIn, Quantity: d("1"), ReferenceType: "barter"},
	}
	for name, txn := range cases {
		t.Run(name, func(t *testing.T) {
			inv := NewInventory(ItemRawMaterial, id.New(), id.New(), unit.Kilogram)
			err := Apply(inv, txn, epoch)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
			assert.True(t, inv.CurrentStock.IsZero())
		})
	}
}

func TestApply_MovingAverage(t *testing.T) {
	inv := NewInventory(ItemRawMaterial, id.New(), id.New(), unit.Kilogram)
	var history []Transaction

	steps := []struct {
		typ       TxType
		qty, cost string
	}{
		{TxIn, "100", "2"},
		{TxOut, "40", "0"},
		{TxIn, "50", "5"},
		{TxProductionUse, "10", "0"},
	}
	for _, s := range steps {
		txn, err := post(inv, s.typ, s.qty, s.cost)
		require.NoError(t, err)
		history = append(history, *txn)
	}

	// (100*2 + 50*5) / 150
	assert.True(t, d("3").Equal(inv.AverageCost), inv.AverageCost.String())
	assert.True(t, AverageCost(history).Equal(inv.AverageCost))
	assert.True(t, d("100").Equal(inv.CurrentStock))
	assert.True(t, Replay(history).Equal(inv.CurrentStock))
	assert.True(t, d("300").Equal(inv.TotalValue))

	// outgoing movements are valued at the average in force
	assert.True(t, d("2").Equal(history[1].CostPerUnit))
	assert.True(t, d("80").Equal(history[1].CostTotal))
}

func TestApply_SignedSum(t *testing.T) {
	inv := NewInventory(ItemRawMaterial, id.New(), id.New(), unit.Gram)
	moves := []struct {
		typ TxType
		qty int64
	}{{TxIn, 10}, {TxIn, 5}, {TxOut, 7}, {TxProductionOutput, 3}, {TxProductionUse, 11}, {TxIn, 1}}

	var want int64
	for _, m := range moves {
		_, err := post(inv, m.typ, decimal.NewFromInt(m.qty).String(), "0")
		require.NoError(t, err)
		if m.typ.Incoming() {
			want += m.qty
		} else {
			want -= m.qty
		}
	}
	assert.True(t, decimal.NewFromInt(want).Equal(inv.CurrentStock))
}

func TestApply_RecordsBatch(t *testing.T) {
	inv := NewInventory(ItemFinishedProduct, id.New(), id.New(), unit.Pieces)
	mfg := epoch
	exp := epoch.AddDate(0, 6, 0)

	txn := &Transaction{
		Type:              TxProductionOutput,
		Quantity:          d("250"),
		BatchNumber:       "202603-0001",
		ManufacturingDate: &mfg,
		ExpiryDate:        &exp,
		LocationTo:        "WH-A",
	}
	require.NoError(t, Apply(inv, txn, epoch))
	require.Len(t, inv.Batches, 1)
	assert.Equal(t, "202603-0001", inv.Batches[0].Number)
	assert.Equal(t, "WH-A", inv.Location)
}

func TestIsLow(t *testing.T) {
	inv := NewInventory(ItemRawMaterial, id.New(), id.New(), unit.Kilogram)
	inv.ReorderPoint = d("10")
	inv.CurrentStock = d("10")
	assert.True(t, inv.IsLow())
	inv.CurrentStock = d("10.5")
	assert.False(t, inv.IsLow())
}
