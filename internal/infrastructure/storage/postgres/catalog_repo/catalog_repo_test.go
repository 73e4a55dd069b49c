package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
	"trackiq/internal/core/id"
	"trackiq/internal/domain"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/filter"
)

func TestBrandRepo_ListQuery(t *testing.T) {
	repo := NewBrandRepo(nil)

	q, err := repo.ApplyFilter(repo.SelectAll(), domain.ListFilter{Search: "eco", Status: "active"})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM brands WHERE deletion_mark = $1")
	assert.Contains(t, sql, "(name ILIKE $2 OR code ILIKE $3)")
	assert.Contains(t, sql, "status = $4")
	assert.Equal(t, []any{false, "%eco%", "%eco%", "active"}, args)
}

func TestRawMaterialRepo_AdvancedFilters(t *testing.T) {
	repo := NewRawMaterialRepo(nil)

	q, err := repo.ApplyFilter(repo.SelectAll(), domain.ListFilter{
		IncludeDeleted:  true,
		AdvancedFilters: []filter.Item{{Field: "stock_current", Operator: filter.Less, Value: "10"}},
	})
	require.NoError(t, err)
	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE stock_current < $1")
	assert.Equal(t, []any{"10"}, args)

	_, err = repo.ApplyFilter(repo.SelectAll(), domain.ListFilter{
		AdvancedFilters: []filter.Item{{Field: "password", Operator: filter.Equal, Value: "x"}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestProductRepo_OrderBy(t *testing.T) {
	repo := NewProductRepo(nil)

	order, err := repo.ParseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "name ASC", order)

	order, err = repo.ParseOrderBy("-selling_price")
	require.NoError(t, err)
	assert.Equal(t, "selling_price DESC", order)

	_, err = repo.ParseOrderBy("1; DROP TABLE finished_products")
	assert.Error(t, err)
}

func TestUpdate_LeavesStockProjection(t *testing.T) {
	m := rawmaterial.NewRawMaterial(id.New(), "RM-001", "Oats", unit.Kilogram)
	m.Version = 3
	sql, args, err := NewRawMaterialRepo(nil).UpdateQuery(m).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "stock_current")
	assert.Contains(t, sql, "stock_minimum")
	assert.Contains(t, sql, "WHERE id = $")
	assert.Equal(t, 3, args[len(args)-1])

	p := product.NewFinishedProduct(id.New(), "FP-001", "Granola 500g")
	sql, _, err = NewProductRepo(nil).UpdateQuery(p).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "in_stock_pieces")
	assert.NotContains(t, sql, "in_stock_cartons")
	assert.Contains(t, sql, "units_per_package")
}
