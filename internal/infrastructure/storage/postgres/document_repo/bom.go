// Package document_repo provides PostgreSQL repositories for BOMs and production batches.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/bom"
	"trackiq/internal/infrastructure/storage/postgres"
)

const bomsTable = "boms"

// BOMRepo implements bom.Repository.
type BOMRepo struct {
	*postgres.BaseRepo[*bom.BOM]
}

var _ bom.Repository = (*BOMRepo)(nil)

// NewBOMRepo creates a BOM repository.
func NewBOMRepo(txm *postgres.TxManager) *BOMRepo {
	base := postgres.NewBaseRepo(txm, bomsTable, "BOM",
		postgres.Columns[bom.BOM](),
		func() *bom.BOM { return new(bom.BOM) })
	base.WithSearch("name", "revision").WithOrder("created_at DESC")
	return &BOMRepo{BaseRepo: base}
}

// List returns BOMs matching the filter.
func (r *BOMRepo) List(ctx context.Context, filter bom.ListFilter) (domain.ListResult[*bom.BOM], error) {
	return r.BaseRepo.List(ctx, filter.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.ProductID != nil {
			q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
		}
		return q
	})
}

// ArchiveActive archives the product's active BOMs other than keep.
func (r *BOMRepo) ArchiveActive(ctx context.Context, productID, brandID, keep id.ID) error {
	sql, args, err := r.Builder().
		Update(bomsTable).
		Set("status", bom.StatusArchived).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"product_id":    productID,
			"brand_id":      brandID,
			"status":        bom.StatusActive,
			"deletion_mark": false,
		}).
		Where(squirrel.NotEq{"id": keep}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build archive: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "BOM", "archive")
	}
	return nil
}

// FindActive returns the product's active BOM.
func (r *BOMRepo) FindActive(ctx context.Context, productID, brandID id.ID) (*bom.BOM, error) {
	b, err := r.FindOne(ctx, r.SelectAll().
		Where(squirrel.Eq{
			"product_id":    productID,
			"brand_id":      brandID,
			"status":        bom.StatusActive,
			"deletion_mark": false,
		}).
		Limit(1))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("active BOM", productID.String())
	}
	return b, err
}

// FindRevision looks up a live BOM by (product, brand, revision).
func (r *BOMRepo) FindRevision(ctx context.Context, productID, brandID id.ID, revision string) (*bom.BOM, error) {
	return r.FindOne(ctx, r.SelectAll().
		Where(squirrel.Eq{
			"product_id":    productID,
			"brand_id":      brandID,
			"revision":      revision,
			"deletion_mark": false,
		}).
		Limit(1))
}
