package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/core/types"
	"trackiq/internal/domain/production"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ProductionSummary groups batches scheduled within the range by product.
// The range defaults to the last month.
func (s *Service) ProductionSummary(ctx context.Context, filter ProductionSummaryFilter) (*ProductionSummaryReport, error) {
	if filter.To.IsZero() {
		filter.To = s.now()
	}
	if filter.From.IsZero() {
		filter.From = filter.To.AddDate(0, -1, 0)
	}
	if filter.From.After(filter.To) {
		return nil, apperror.NewFieldValidation("from", "must be before to")
	}

	rows, err := s.repo.ProductionSummary(ctx, production.SummaryFilter{
		From:    filter.From,
		To:      filter.To,
		BrandID: filter.BrandID,
	})
	if err != nil {
		return nil, fmt.Errorf("get production summary: %w", err)
	}

	report := &ProductionSummaryReport{From: filter.From, To: filter.To, Rows: rows}
	if report.Rows == nil {
		report.Rows = []production.SummaryRow{}
	}
	report.Totals.TotalCost = decimal.Zero
	for _, r := range rows {
		report.Totals.Batches += r.Batches
		report.Totals.Planned += r.Planned
		report.Totals.Produced += r.Produced
		report.Totals.Rejected += r.Rejected
		report.Totals.TotalCost = report.Totals.TotalCost.Add(r.TotalCost)
	}
	report.Totals.Efficiency = types.Percent(
		decimal.NewFromInt(report.Totals.Produced-report.Totals.Rejected),
		decimal.NewFromInt(report.Totals.Produced),
	)
	return report, nil
}

// InventoryValue values all stock, optionally for one brand.
func (s *Service) InventoryValue(ctx context.Context, brandID *id.ID) (*InventoryValueReport, error) {
	byType, err := s.repo.ValueByType(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("get inventory value: %w", err)
	}
	items, err := s.repo.InventoryItems(ctx, brandID, false)
	if err != nil {
		return nil, fmt.Errorf("get inventory items: %w", err)
	}

	report := &InventoryValueReport{AsOf: s.now(), ByType: byType, Items: items, TotalValue: decimal.Zero}
	for _, t := range byType {
		report.TotalValue = report.TotalValue.Add(t.TotalValue)
	}
	return report, nil
}

// LowStockByBrand groups items at or below their reorder point by brand.
func (s *Service) LowStockByBrand(ctx context.Context, brandID *id.ID) ([]LowStockGroup, error) {
	items, err := s.repo.InventoryItems(ctx, brandID, true)
	if err != nil {
		return nil, fmt.Errorf("get low stock items: %w", err)
	}

	var groups []LowStockGroup
	index := make(map[id.ID]int)
	for _, it := range items {
		i, ok := index[it.BrandID]
		if !ok {
			i = len(groups)
			index[it.BrandID] = i
			groups = append(groups, LowStockGroup{BrandID: it.BrandID, BrandCode: it.BrandCode})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups, nil
}
