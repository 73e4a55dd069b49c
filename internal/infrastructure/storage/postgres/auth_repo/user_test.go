package auth_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/domain"
)

func TestUserRepo_SearchAndColumns(t *testing.T) {
	repo := NewUserRepo(nil)

	assert.True(t, repo.HasColumn("grants"))
	assert.True(t, repo.HasColumn("password_hash"))
	assert.True(t, repo.HasColumn("locked_until"))

	q, err := repo.ApplyFilter(repo.SelectAll(), domain.ListFilter{Search: "ad"})
	require.NoError(t, err)
	sql, _, err := q.ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "(username ILIKE $2 OR email ILIKE $3 OR first_name ILIKE $4 OR last_name ILIKE $5)")
}
