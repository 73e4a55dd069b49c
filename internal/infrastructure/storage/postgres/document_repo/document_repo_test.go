package document_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/id"
	"trackiq/internal/domain"
)

func TestBOMRepo_Columns(t *testing.T) {
	repo := NewBOMRepo(nil)

	for _, c := range []string{"revision", "version", "materials", "process_steps", "batch_unit"} {
		assert.True(t, repo.HasColumn(c), c)
	}
	order, err := repo.ParseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC", order)
}

func TestProductionRepo_FilterQuery(t *testing.T) {
	repo := NewProductionRepo(nil)
	brandID := id.New()

	q, err := repo.ApplyFilter(repo.SelectAll(), domain.ListFilter{BrandID: &brandID, Search: "2026"})
	require.NoError(t, err)

	sql, args, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(batch_number ILIKE $2 OR notes ILIKE $3)")
	assert.Contains(t, sql, "brand_id = $4")
	assert.Equal(t, brandID.String(), args[3])

	order, err := repo.ParseOrderBy("-quantity_produced")
	require.NoError(t, err)
	assert.Equal(t, "quantity_produced DESC", order)
}
