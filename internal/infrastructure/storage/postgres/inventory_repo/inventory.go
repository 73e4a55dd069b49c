// Package inventory_repo provides the PostgreSQL inventory ledger: balances and their transactions.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/inventory"
	"trackiq/internal/infrastructure/storage/postgres"
)

const (
	inventoriesTable  = "inventories"
	transactionsTable = "inventory_transactions"
)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	*postgres.BaseRepo[*inventory.Inventory]
	txCols []string
}

var _ inventory.Repository = (*InventoryRepo)(nil)

// NewInventoryRepo creates the inventory ledger repository.
func NewInventoryRepo(txm *postgres.TxManager) *InventoryRepo {
	base := postgres.NewBaseRepo(txm, inventoriesTable, "inventory",
		postgres.Columns[inventory.Inventory](),
		func() *inventory.Inventory { return new(inventory.Inventory) })
	base.WithSearch("location").WithOrder("item_type ASC, created_at ASC")
	return &InventoryRepo{
		BaseRepo: base,
		txCols:   postgres.Columns[inventory.Transaction](),
	}
}

// LockByItem loads the item's live record with FOR UPDATE.
func (r *InventoryRepo) LockByItem(ctx context.Context, itemType inventory.ItemType, itemID, brandID id.ID) (*inventory.Inventory, error) {
	inv, err := r.FindOne(ctx, r.SelectAll().
		Where(squirrel.Eq{
			"item_type":     itemType,
			"item_id":       itemID,
			"brand_id":      brandID,
			"deletion_mark": false,
		}).
		Suffix("FOR UPDATE"))
	if apperror.IsNotFound(err) {
		return nil, apperror.NewNotFound("inventory", itemID.String())
	}
	return inv, err
}

// EnsureRecord inserts inv unless a live record of the item and brand exists.
// ON CONFLICT keeps the surrounding transaction usable when a concurrent
// posting won the insert.
func (r *InventoryRepo) EnsureRecord(ctx context.Context, inv *inventory.Inventory) error {
	sql, args, err := r.ensureQuery(inv).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "inventory", "insert")
	}
	return nil
}

func (r *InventoryRepo) ensureQuery(inv *inventory.Inventory) squirrel.InsertBuilder {
	return r.InsertQuery(inv).
		Suffix("ON CONFLICT (item_type, item_id, brand_id) WHERE deletion_mark = FALSE DO NOTHING")
}

// HasRecord reports whether the item has a live record under any brand.
func (r *InventoryRepo) HasRecord(ctx context.Context, itemType inventory.ItemType, itemID id.ID) (bool, error) {
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr("EXISTS (SELECT 1 FROM "+inventoriesTable+
			" WHERE item_type = ? AND item_id = ? AND deletion_mark = FALSE)", itemType, itemID)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var exists bool
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("inventory record exists: %w", err)
	}
	return exists, nil
}

// List returns inventory records matching the filter.
func (r *InventoryRepo) List(ctx context.Context, filter inventory.ListFilter) (domain.ListResult[*inventory.Inventory], error) {
	return r.BaseRepo.List(ctx, filter.ListFilter, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		if filter.ItemType != "" {
			q = q.Where(squirrel.Eq{"item_type": filter.ItemType})
		}
		if filter.LowOnly {
			q = q.Where("current_stock <= reorder_point")
		}
		return q
	})
}

// LowStock returns live records at or below their reorder point.
func (r *InventoryRepo) LowStock(ctx context.Context, brandID *id.ID) ([]*inventory.Inventory, error) {
	q := r.SelectAll().
		Where(squirrel.Eq{"deletion_mark": false}).
		Where("current_stock <= reorder_point").
		OrderBy("brand_id", "item_type", "current_stock")
	if brandID != nil {
		q = q.Where(squirrel.Eq{"brand_id": *brandID})
	}
	items, err := r.FindMany(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*inventory.Inventory{}
	}
	return items, nil
}

// ValueByType sums stock value per item type.
func (r *InventoryRepo) ValueByType(ctx context.Context, brandID *id.ID) ([]inventory.ValueSummary, error) {
	q := r.Builder().
		Select("item_type", "COUNT(*) AS items", "COALESCE(SUM(total_value), 0) AS total_value").
		From(inventoriesTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		GroupBy("item_type").
		OrderBy("item_type")
	if brandID != nil {
		q = q.Where(squirrel.Eq{"brand_id": *brandID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build value query: %w", err)
	}
	out := []inventory.ValueSummary{}
	if err := pgxscan.Select(ctx, r.Querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("inventory value: %w", err)
	}
	return out, nil
}

// AddTransaction appends one ledger row. Transactions are never updated.
func (r *InventoryRepo) AddTransaction(ctx context.Context, t *inventory.Transaction) error {
	all := postgres.ToMap(t)
	data := make(map[string]any, len(r.txCols))
	for _, c := range r.txCols {
		data[c] = all[c]
	}

	sql, args, err := r.Builder().Insert(transactionsTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "inventory transaction", "insert")
	}
	return nil
}

// ListTransactions pages the record's transactions, newest first.
func (r *InventoryRepo) ListTransactions(ctx context.Context, inventoryID id.ID, limit, offset int) (domain.ListResult[*inventory.Transaction], error) {
	result := domain.ListResult[*inventory.Transaction]{Limit: limit, Offset: offset, Items: []*inventory.Transaction{}}
	querier := r.Querier(ctx)

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		From(transactionsTable).
		Where(squirrel.Eq{"inventory_id": inventoryID}).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count transactions: %w", err)
	}

	q := r.Builder().
		Select(r.txCols...).
		From(transactionsTable).
		Where(squirrel.Eq{"inventory_id": inventoryID}).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}
