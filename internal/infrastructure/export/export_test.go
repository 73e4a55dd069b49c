package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
	"trackiq/internal/domain/reports"
)

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestWrite_NoSheets(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf))
}

func TestInventorySheets(t *testing.T) {
	report := &reports.InventoryValueReport{
		AsOf: time.Now(),
		ByType: []inventory.ValueSummary{
			{ItemType: inventory.ItemRawMaterial, Items: 1, TotalValue: decimal.NewFromInt(2500)},
		},
		Items: []reports.InventoryItem{{
			ItemType:     inventory.ItemRawMaterial,
			Code:         "RM-001",
			Name:         "Sugar",
			BrandCode:    "ECO-001",
			CurrentStock: decimal.NewFromInt(1000),
			Unit:         "kg",
			ReorderPoint: decimal.NewFromInt(100),
			AverageCost:  decimal.RequireFromString("2.5"),
			TotalValue:   decimal.NewFromInt(2500),
		}},
		TotalValue: decimal.NewFromInt(2500),
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, InventorySheets(report)...))

	f := open(t, &buf)
	assert.Equal(t, []string{"Inventory", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Brand", rows[0][0])
	assert.Equal(t, []string{"ECO-001", "raw-material", "RM-001", "Sugar", "1000", "kg", "100", "2.5", "2500", "no"}, rows[1])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "total", summary[2][0])
	assert.Equal(t, "2500", summary[2][2])
}

func TestProductionSummarySheet(t *testing.T) {
	report := &reports.ProductionSummaryReport{
		Rows: []production.SummaryRow{{
			ProductCode: "FP-001",
			ProductName: "Juice",
			Batches:     2,
			Planned:     200,
			Produced:    100,
			Rejected:    10,
			TotalCost:   decimal.NewFromInt(500),
		}},
		Totals: reports.ProductionTotals{
			Batches: 2, Planned: 200, Produced: 100, Rejected: 10,
			TotalCost: decimal.NewFromInt(500), Efficiency: decimal.NewFromInt(90),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ProductionSummarySheet(report)))

	rows, err := open(t, &buf).GetRows("Production")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "FP-001", rows[1][0])
	assert.Equal(t, "90", rows[1][6])
	assert.Equal(t, "TOTAL", rows[2][0])
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "inventory-value-20260115.xlsx", FileName("inventory-value", at))
}
