// Package report_repo provides the read-side queries behind the reports API.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"trackiq/internal/core/id"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/domain/production"
	"trackiq/internal/domain/reports"
	"trackiq/internal/infrastructure/storage/postgres"
)

// ValueSource provides stock value per item type.
type ValueSource interface {
	ValueByType(ctx context.Context, brandID *id.ID) ([]inventory.ValueSummary, error)
}

// SummarySource provides the production summary aggregate.
type SummarySource interface {
	Summary(ctx context.Context, filter production.SummaryFilter) ([]production.SummaryRow, error)
}

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm         *postgres.TxManager
	builder     squirrel.StatementBuilderType
	values      ValueSource
	productions SummarySource
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a report repository. The aggregates owned by the
// inventory and production repositories are delegated to them.
func NewReportRepo(txm *postgres.TxManager, values ValueSource, productions SummarySource) *ReportRepo {
	return &ReportRepo{
		txm:         txm,
		builder:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		values:      values,
		productions: productions,
	}
}

// itemCode and itemName resolve the catalog row of either item type.
const (
	itemCode = "COALESCE(rm.code, fp.code, '') AS code"
	itemName = "COALESCE(rm.name, fp.name, '') AS name"
)

// InventoryQuery builds the joined inventory listing.
func (r *ReportRepo) InventoryQuery(brandID *id.ID, lowOnly bool) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"i.id AS inventory_id",
			"i.item_type",
			"i.item_id",
			itemCode,
			itemName,
			"i.brand_id",
			"b.code AS brand_code",
			"i.current_stock",
			"i.unit",
			"i.reorder_point",
			"i.average_cost",
			"i.total_value",
		).
		From("inventories i").
		Join("brands b ON b.id = i.brand_id").
		LeftJoin("raw_materials rm ON i.item_type = 'raw-material' AND rm.id = i.item_id").
		LeftJoin("finished_products fp ON i.item_type = 'finished-product' AND fp.id = i.item_id").
		Where(squirrel.Eq{"i.deletion_mark": false}).
		OrderBy("b.code", "i.item_type", "code")
	if brandID != nil {
		q = q.Where(squirrel.Eq{"i.brand_id": *brandID})
	}
	if lowOnly {
		q = q.Where("i.current_stock <= i.reorder_point")
	}
	return q
}

// InventoryItems lists inventory records with item and brand names.
func (r *ReportRepo) InventoryItems(ctx context.Context, brandID *id.ID, lowOnly bool) ([]reports.InventoryItem, error) {
	sql, args, err := r.InventoryQuery(brandID, lowOnly).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build inventory report: %w", err)
	}

	items := []reports.InventoryItem{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory report: %w", err)
	}
	return items, nil
}

// ValueByType delegates to the inventory repository.
func (r *ReportRepo) ValueByType(ctx context.Context, brandID *id.ID) ([]inventory.ValueSummary, error) {
	return r.values.ValueByType(ctx, brandID)
}

// ProductionSummary delegates to the production repository.
func (r *ReportRepo) ProductionSummary(ctx context.Context, filter production.SummaryFilter) ([]production.SummaryRow, error) {
	return r.productions.Summary(ctx, filter)
}
