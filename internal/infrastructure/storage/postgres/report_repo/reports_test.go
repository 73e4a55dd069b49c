package report_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/id"
)

func TestInventoryQuery(t *testing.T) {
	r := NewReportRepo(nil, nil, nil)
	brandID := id.New()

	sql, args, err := r.InventoryQuery(&brandID, true).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "LEFT JOIN raw_materials rm")
	assert.Contains(t, sql, "LEFT JOIN finished_products fp")
	assert.Contains(t, sql, "i.brand_id = $2")
	assert.Contains(t, sql, "i.current_stock <= i.reorder_point")
	assert.Equal(t, []any{false, brandID.String()}, args)
}

func TestInventoryQuery_AllBrands(t *testing.T) {
	r := NewReportRepo(nil, nil, nil)

	sql, args, err := r.InventoryQuery(nil, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "reorder_point <=")
	assert.NotContains(t, sql, "i.current_stock <= i.reorder_point")
	assert.Len(t, args, 1)
}
