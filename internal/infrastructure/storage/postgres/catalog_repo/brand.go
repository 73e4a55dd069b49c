// Package catalog_repo provides PostgreSQL repositories for brands, raw materials and finished products.
package catalog_repo

import (
	"context"
	"fmt"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/infrastructure/storage/postgres"
)

const brandsTable = "brands"

// BrandRepo implements brand.Repository.
type BrandRepo struct {
	*postgres.BaseRepo[*brand.Brand]
}

var _ brand.Repository = (*BrandRepo)(nil)

// NewBrandRepo creates a brand repository.
func NewBrandRepo(txm *postgres.TxManager) *BrandRepo {
	return &BrandRepo{
		BaseRepo: postgres.NewBaseRepo(txm, brandsTable, "brand",
			postgres.Columns[brand.Brand](),
			func() *brand.Brand { return new(brand.Brand) }),
	}
}

// List returns brands matching the filter.
func (r *BrandRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*brand.Brand], error) {
	return r.BaseRepo.List(ctx, filter, nil)
}

// CountDependents counts live rows referencing the brand in one round trip.
func (r *BrandRepo) CountDependents(ctx context.Context, brandID id.ID) (brand.Dependents, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM raw_materials     WHERE brand_id = $1 AND deletion_mark = FALSE),
			(SELECT COUNT(*) FROM finished_products WHERE brand_id = $1 AND deletion_mark = FALSE),
			(SELECT COUNT(*) FROM boms              WHERE brand_id = $1 AND deletion_mark = FALSE),
			(SELECT COUNT(*) FROM productions       WHERE brand_id = $1 AND deletion_mark = FALSE),
			(SELECT COUNT(*) FROM inventories       WHERE brand_id = $1 AND deletion_mark = FALSE)
	`

	var d brand.Dependents
	err := r.Querier(ctx).QueryRow(ctx, query, brandID).Scan(
		&d.RawMaterials, &d.FinishedProducts, &d.BOMs, &d.Productions, &d.Inventory,
	)
	if err != nil {
		return d, fmt.Errorf("count brand dependents: %w", err)
	}
	return d, nil
}
