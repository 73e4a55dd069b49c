package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/infrastructure/storage/postgres"
)

const rawMaterialsTable = "raw_materials"

// RawMaterialRepo implements rawmaterial.Repository.
type RawMaterialRepo struct {
	*postgres.BaseRepo[*rawmaterial.RawMaterial]
}

var _ rawmaterial.Repository = (*RawMaterialRepo)(nil)

// NewRawMaterialRepo creates a raw material repository.
func NewRawMaterialRepo(txm *postgres.TxManager) *RawMaterialRepo {
	return &RawMaterialRepo{
		BaseRepo: postgres.NewBaseRepo(txm, rawMaterialsTable, "raw material",
			postgres.Columns[rawmaterial.RawMaterial](),
			func() *rawmaterial.RawMaterial { return new(rawmaterial.RawMaterial) }).
			WithManaged("stock_current"),
	}
}

// List returns raw materials matching the filter.
func (r *RawMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*rawmaterial.RawMaterial], error) {
	return r.BaseRepo.List(ctx, filter, nil)
}

// GetByIDs loads live materials by id.
func (r *RawMaterialRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*rawmaterial.RawMaterial, error) {
	out := make(map[id.ID]*rawmaterial.RawMaterial, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	items, err := r.FindMany(ctx, r.SelectAll().Where(squirrel.Eq{"id": ids, "deletion_mark": false}))
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		out[m.ID] = m
	}
	return out, nil
}

// SetStock writes the ledger balance. It is the only writer of stock_current.
func (r *RawMaterialRepo) SetStock(ctx context.Context, materialID id.ID, current decimal.Decimal) error {
	sql, args, err := r.Builder().
		Update(rawMaterialsTable).
		Set("stock_current", current).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": materialID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "raw material", "set stock")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("raw material", materialID.String())
	}
	return nil
}
