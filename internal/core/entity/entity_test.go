package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
)

type status string

var testGraph = Transitions[status]{
	"draft":  {"active", "archived"},
	"active": {"archived"},
}

func TestTransitions(t *testing.T) {
	assert.True(t, testGraph.Allows("draft", "active"))
	assert.True(t, testGraph.Allows("archived", "archived"))
	assert.False(t, testGraph.Allows("archived", "draft"))

	err := testGraph.Check("BOM", "active", "draft")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestValidateCatalog(t *testing.T) {
	c := NewCatalog(" eco-001 ", "EcoFresh Foods")
	assert.Equal(t, "ECO-001", c.Code)

	var v Violations
	c.ValidateCatalog(&v, 100, 10, 500)
	assert.NoError(t, v.Err())

	bad := NewCatalog("ECO 001!", "")
	var v2 Violations
	bad.ValidateCatalog(&v2, 100, 5, 500)

	appErr, ok := apperror.AsAppError(v2.Err())
	require.True(t, ok)
	fields := map[string]bool{}
	for _, fe := range appErr.FieldErrors() {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["code"])
}

func TestScanJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	require.NoError(t, ScanJSON([]byte(`{"name":"a"}`), &dst))
	assert.Equal(t, "a", dst.Name)
	require.NoError(t, ScanJSON(nil, &dst))
	assert.Error(t, ScanJSON(42, &dst))
}
