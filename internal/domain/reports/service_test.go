package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
)

type stubRepo struct {
	items   []InventoryItem
	byType  []inventory.ValueSummary
	summary []production.SummaryRow
	gotSum  production.SummaryFilter
}

func (s *stubRepo) InventoryItems(_ context.Context, _ *id.ID, lowOnly bool) ([]InventoryItem, error) {
	if !lowOnly {
		return s.items, nil
	}
	var out []InventoryItem
	for _, it := range s.items {
		if it.Low() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubRepo) ValueByType(context.Context, *id.ID) ([]inventory.ValueSummary, error) {
	return s.byType, nil
}

func (s *stubRepo) ProductionSummary(_ context.Context, f production.SummaryFilter) ([]production.SummaryRow, error) {
	s.gotSum = f
	return s.summary, nil
}

func TestProductionSummary_Totals(t *testing.T) {
	repo := &stubRepo{summary: []production.SummaryRow{
		{Batches: 2, Planned: 1000, Produced: 950, Rejected: 50, TotalCost: decimal.NewFromInt(400)},
		{Batches: 1, Planned: 100, Produced: 50, Rejected: 0, TotalCost: decimal.NewFromInt(100)},
	}}
	svc := NewService(repo)
	now := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	report, err := svc.ProductionSummary(context.Background(), ProductionSummaryFilter{})
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, -1, 0), repo.gotSum.From)
	assert.Equal(t, int64(3), report.Totals.Batches)
	assert.Equal(t, int64(1000), report.Totals.Produced)
	assert.True(t, decimal.NewFromInt(500).Equal(report.Totals.TotalCost))
	assert.True(t, decimal.NewFromInt(95).Equal(report.Totals.Efficiency))
}

func TestProductionSummary_BadRange(t *testing.T) {
	svc := NewService(&stubRepo{})
	_, err := svc.ProductionSummary(context.Background(), ProductionSummaryFilter{
		From: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestLowStockByBrand(t *testing.T) {
	a, b := id.New(), id.New()
	repo := &stubRepo{items: []InventoryItem{
		{BrandID: a, BrandCode: "ECO-001", Code: "RM-001", CurrentStock: decimal.NewFromInt(5), ReorderPoint: decimal.NewFromInt(10)},
		{BrandID: b, BrandCode: "NUT-002", Code: "RM-007", CurrentStock: decimal.NewFromInt(0), ReorderPoint: decimal.NewFromInt(0)},
		{BrandID: a, BrandCode: "ECO-001", Code: "RM-002", CurrentStock: decimal.NewFromInt(50), ReorderPoint: decimal.NewFromInt(10)},
		{BrandID: a, BrandCode: "ECO-001", Code: "FP-001", CurrentStock: decimal.NewFromInt(3), ReorderPoint: decimal.NewFromInt(12)},
	}}

	groups, err := NewService(repo).LowStockByBrand(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "ECO-001", groups[0].BrandCode)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "NUT-002", groups[1].BrandCode)
}

func TestInventoryValue(t *testing.T) {
	repo := &stubRepo{byType: []inventory.ValueSummary{
		{ItemType: inventory.ItemRawMaterial, Items: 2, TotalValue: decimal.NewFromInt(2500)},
		{ItemType: inventory.ItemFinishedProduct, Items: 1, TotalValue: decimal.NewFromInt(700)},
	}}
	report, err := NewService(repo).InventoryValue(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3200).Equal(report.TotalValue))
}
