package postgres

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil, "brand", "insert"))
	})

	t.Run("no rows", func(t *testing.T) {
		err := MapError(pgx.ErrNoRows, "brand", "get")
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("unique violation", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23505", ConstraintName: "brands_code_key"}, "brand", "insert")
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
		assert.Equal(t, "code", appErr.Details["field"])
		assert.Equal(t, http.StatusConflict, appErr.HTTPStatus)
	})

	t.Run("foreign key", func(t *testing.T) {
		err := MapError(&pgconn.PgError{Code: "23503", ConstraintName: "boms_product_id_fkey"}, "finished product", "delete")
		assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
	})

	t.Run("app errors pass through", func(t *testing.T) {
		in := apperror.NewConcurrentModification("brand", "x")
		assert.Same(t, in, MapError(in, "brand", "update"))
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("boom")
		err := MapError(cause, "brand", "insert")
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "insert brand")
	})
}
