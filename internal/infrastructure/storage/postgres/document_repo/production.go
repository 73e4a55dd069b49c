package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"trackiq/internal/domain"
	"trackiq/internal/domain/production"
	"trackiq/internal/infrastructure/storage/postgres"
)

const productionsTable = "productions"

// ProductionRepo implements production.Repository.
type ProductionRepo struct {
	*postgres.BaseRepo[*production.Production]
}

var _ production.Repository = (*ProductionRepo)(nil)

// NewProductionRepo creates a production batch repository.
func NewProductionRepo(txm *postgres.TxManager) *ProductionRepo {
	base := postgres.NewBaseRepo(txm, productionsTable, "production",
		postgres.Columns[production.Production](),
		func() *production.Production { return new(production.Production) })
	base.WithSearch("batch_number", "notes").WithOrder("start_date DESC")
	return &ProductionRepo{BaseRepo: base}
}

// List returns batches matching the filter, newest start date first.
func (r *ProductionRepo) List(ctx context.Context, filter production.ListFilter) (domain.ListResult[*production.Production], error) {
	return r.BaseRepo.List(ctx, filter.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.ProductID != nil {
			q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
		}
		if filter.From != nil {
			q = q.Where(squirrel.GtOrEq{"start_date": *filter.From})
		}
		if filter.To != nil {
			q = q.Where(squirrel.LtOrEq{"start_date": *filter.To})
		}
		return q
	})
}

// summaryCost is the total cost of one batch, additional costs included.
const summaryCost = `p.cost_materials + p.cost_labor + p.cost_overhead + COALESCE((
	SELECT SUM((a->>'amount')::numeric) FROM jsonb_array_elements(p.cost_additional) a
), 0)`

// Summary aggregates live batches per product over the start-date range.
func (r *ProductionRepo) Summary(ctx context.Context, filter production.SummaryFilter) ([]production.SummaryRow, error) {
	q := r.Builder().
		Select(
			"p.product_id",
			"fp.code AS product_code",
			"fp.name AS product_name",
			"COUNT(*) AS batches",
			"COALESCE(SUM(p.quantity_planned), 0) AS planned",
			"COALESCE(SUM(p.quantity_produced), 0) AS produced",
			"COALESCE(SUM(p.quantity_rejected), 0) AS rejected",
			"COALESCE(SUM("+summaryCost+"), 0) AS total_cost",
		).
		From(productionsTable + " p").
		Join("finished_products fp ON fp.id = p.product_id").
		Where(squirrel.Eq{"p.deletion_mark": false}).
		Where(squirrel.GtOrEq{"p.start_date": filter.From}).
		Where(squirrel.LtOrEq{"p.start_date": filter.To}).
		GroupBy("p.product_id", "fp.code", "fp.name").
		OrderBy("fp.code")
	if filter.BrandID != nil {
		q = q.Where(squirrel.Eq{"p.brand_id": *filter.BrandID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}

	rows := []production.SummaryRow{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("production summary: %w", err)
	}
	return rows, nil
}
