package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/infrastructure/storage/postgres"
)

const productsTable = "finished_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*postgres.BaseRepo[*product.FinishedProduct]
}

var _ product.Repository = (*ProductRepo)(nil)

// NewProductRepo creates a finished product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseRepo: postgres.NewBaseRepo(txm, productsTable, "finished product",
			postgres.Columns[product.FinishedProduct](),
			func() *product.FinishedProduct { return new(product.FinishedProduct) }).
			WithManaged("in_stock_pieces", "in_stock_cartons"),
	}
}

// List returns products matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.FinishedProduct], error) {
	return r.BaseRepo.List(ctx, filter, nil)
}

// SetStock writes the ledger balance as cartons and loose pieces. Update
// leaves these columns alone.
func (r *ProductRepo) SetStock(ctx context.Context, productID id.ID, pieces, cartons int64) error {
	sql, args, err := r.Builder().
		Update(productsTable).
		SetMap(map[string]any{
			"in_stock_pieces":  pieces,
			"in_stock_cartons": cartons,
			"updated_at":       squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "finished product", "set stock")
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("finished product", productID.String())
	}
	return nil
}
